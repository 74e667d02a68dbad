package geospatial

import (
	"fmt"
	"slices"
	"strings"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

// SortKey selects how a place listing is ordered.
type SortKey string

const (
	SortByDistance   SortKey = "distance"
	SortByRating     SortKey = "rating"
	SortByPopularity SortKey = "popularity"
)

// ParseSortKey accepts the sort names used by the web client, including the
// older "popular" spelling. An empty string means distance.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "distance":
		return SortByDistance, nil
	case "rating":
		return SortByRating, nil
	case "popularity", "popular":
		return SortByPopularity, nil
	default:
		return "", fmt.Errorf("%w: unknown sort key %q", domain.ErrInvalidInput, s)
	}
}

// FindNearest returns the candidate closest to p by Haversine distance, with
// its Distance set. Ties go to the earliest candidate. It returns
// domain.ErrEmptyInput when there are no candidates.
func FindNearest(p domain.GeoPoint, candidates []domain.Place) (domain.Place, error) {
	if len(candidates) == 0 {
		return domain.Place{}, domain.ErrEmptyInput
	}

	best := 0
	bestDist := DistanceMiles(p, candidates[0].Location())
	for i := 1; i < len(candidates); i++ {
		if d := DistanceMiles(p, candidates[i].Location()); d < bestDist {
			best, bestDist = i, d
		}
	}

	nearest := candidates[best]
	nearest.Distance = &bestDist
	return nearest, nil
}

// AnnotateDistances returns a copy of places with Distance set to the
// Haversine distance from origin. The input slice is left untouched.
func AnnotateDistances(origin domain.GeoPoint, places []domain.Place) []domain.Place {
	out := make([]domain.Place, len(places))
	for i, p := range places {
		d := DistanceMiles(origin, p.Location())
		p.Distance = &d
		out[i] = p
	}
	return out
}

// SortBy returns a stably sorted copy of places. Distance sorts ascending with
// unannotated places last; rating and popularity sort descending.
func SortBy(places []domain.Place, key SortKey) []domain.Place {
	out := slices.Clone(places)

	var cmp func(a, b domain.Place) int
	switch key {
	case SortByRating:
		cmp = func(a, b domain.Place) int { return compareDesc(a.Rating, b.Rating) }
	case SortByPopularity:
		cmp = func(a, b domain.Place) int { return compareDesc(a.ReviewCount, b.ReviewCount) }
	default:
		cmp = compareDistance
	}

	slices.SortStableFunc(out, cmp)
	return out
}

func compareDistance(a, b domain.Place) int {
	switch {
	case a.Distance == nil && b.Distance == nil:
		return 0
	case a.Distance == nil:
		return 1
	case b.Distance == nil:
		return -1
	case *a.Distance < *b.Distance:
		return -1
	case *a.Distance > *b.Distance:
		return 1
	}
	return 0
}

func compareDesc[T int | float64](a, b T) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
