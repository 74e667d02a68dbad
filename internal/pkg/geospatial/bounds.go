package geospatial

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

// ToBound converts viewport bounds into an orb.Bound (x = lng, y = lat).
func ToBound(b domain.ViewportBounds) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// Contains reports whether p lies inside b, edges included.
func Contains(b domain.ViewportBounds, p domain.GeoPoint) bool {
	return ToBound(b).Contains(orb.Point{p.Lng, p.Lat})
}

// ExpandToInclude returns b widened so that it contains p. Only the sides p
// falls beyond move, each to padding degrees past p. If p is already inside,
// b is returned unchanged with changed=false.
func ExpandToInclude(b domain.ViewportBounds, p domain.GeoPoint, padding float64) (domain.ViewportBounds, bool) {
	if Contains(b, p) {
		return b, false
	}

	out := b
	if p.Lat > b.North {
		out.North = math.Max(b.North, p.Lat+padding)
	}
	if p.Lat < b.South {
		out.South = math.Min(b.South, p.Lat-padding)
	}
	if p.Lng > b.East {
		out.East = math.Max(b.East, p.Lng+padding)
	}
	if p.Lng < b.West {
		out.West = math.Min(b.West, p.Lng-padding)
	}
	return out, out != b
}
