package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
	"github.com/oliauusc/CSCI201-Group7/internal/core/ports"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/geospatial"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/metrics"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/telemetry"
)

const placeCachePrefix = "places:"

// PlaceService handles place listing, lookup and distance ranking.
type PlaceService struct {
	places ports.PlaceRepository
	cache  ports.CacheService

	// loads collapses concurrent listings of the same filter into one query.
	loads singleflight.Group
}

// NewPlaceService creates a new PlaceService.
func NewPlaceService(places ports.PlaceRepository, cache ports.CacheService) *PlaceService {
	return &PlaceService{places: places, cache: cache}
}

// List returns places matching filter with their aggregated ratings.
func (s *PlaceService) List(ctx context.Context, filter domain.PlaceFilter) ([]domain.Place, error) {
	ctx, span := telemetry.Start(ctx, "PlaceService.List",
		attribute.String("category", filter.Category),
		attribute.String("search", filter.Search),
	)
	defer span.End()

	filter.Search = strings.TrimSpace(filter.Search)
	cacheKey := fmt.Sprintf("%slist:%s:%s", placeCachePrefix, strings.ToLower(filter.Category), strings.ToLower(filter.Search))

	var places []domain.Place
	if cacheGet(ctx, s.cache, cacheKey, "places.list", &places) {
		return places, nil
	}

	// The load is shared, so one caller going away must not fail the others.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loads.Do(cacheKey, func() (any, error) {
		places, err := s.places.List(loadCtx, filter)
		if err != nil {
			return nil, err
		}
		// Cache for 5 minutes; reviews invalidate it sooner.
		cacheSet(loadCtx, s.cache, cacheKey, places, 300)
		return places, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list places: %w", err)
	}
	return slices.Clone(v.([]domain.Place)), nil
}

// GetByID returns a single place.
func (s *PlaceService) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	ctx, span := telemetry.Start(ctx, "PlaceService.GetByID", attribute.String("place_id", id))
	defer span.End()

	cacheKey := placeCachePrefix + "id:" + id
	var cached domain.Place
	if cacheGet(ctx, s.cache, cacheKey, "places.get", &cached) {
		return &cached, nil
	}

	place, err := s.places.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, s.cache, cacheKey, place, 600) // 10 min for a single place
	return place, nil
}

// Create validates and stores a new place.
func (s *PlaceService) Create(ctx context.Context, place *domain.Place) error {
	place.Name = strings.TrimSpace(place.Name)
	if place.Name == "" {
		return fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
	}
	if place.Lat < -90 || place.Lat > 90 || place.Lng < -180 || place.Lng > 180 {
		return fmt.Errorf("%w: coordinate %g,%g out of range", domain.ErrInvalidInput, place.Lat, place.Lng)
	}
	if place.Description == "" {
		place.Description = place.Category
	}

	if err := s.places.Create(ctx, place); err != nil {
		return fmt.Errorf("create place: %w", err)
	}
	s.InvalidateCache(ctx)
	return nil
}

// Categories returns the distinct place categories.
func (s *PlaceService) Categories(ctx context.Context) ([]string, error) {
	cacheKey := placeCachePrefix + "categories"
	var categories []string
	if cacheGet(ctx, s.cache, cacheKey, "places.categories", &categories) {
		return categories, nil
	}

	categories, err := s.places.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	cacheSet(ctx, s.cache, cacheKey, categories, 600)
	return categories, nil
}

// Nearby lists places matching filter, annotated with their distance from
// origin and ordered by key.
func (s *PlaceService) Nearby(ctx context.Context, filter domain.PlaceFilter, origin domain.GeoPoint, key geospatial.SortKey) ([]domain.Place, error) {
	if filter.RadiusMiles < 0 {
		return nil, fmt.Errorf("%w: radius must not be negative", domain.ErrInvalidInput)
	}
	places, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	places = geospatial.AnnotateDistances(origin, places)

	if r := filter.RadiusMiles; r > 0 {
		box := geospatial.BoundingBox(origin, r)
		places = slices.DeleteFunc(places, func(p domain.Place) bool {
			return !geospatial.Contains(box, p.Location()) || *p.Distance > r
		})
	}
	return geospatial.SortBy(places, key), nil
}

// Nearest returns the place closest to origin with its distance set.
// domain.ErrEmptyInput is returned when there are no places at all.
func (s *PlaceService) Nearest(ctx context.Context, origin domain.GeoPoint) (*domain.Place, error) {
	places, err := s.List(ctx, domain.PlaceFilter{})
	if err != nil {
		return nil, err
	}

	nearest, err := geospatial.FindNearest(origin, places)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyInput) {
			metrics.NearestLookups.WithLabelValues("empty").Inc()
		}
		return nil, err
	}
	metrics.NearestLookups.WithLabelValues("found").Inc()
	return &nearest, nil
}

// InvalidateCache drops every cached place listing and place.
func (s *PlaceService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, placeCachePrefix); err != nil {
		slog.WarnContext(ctx, "place cache invalidation failed", "error", err)
	}
}
