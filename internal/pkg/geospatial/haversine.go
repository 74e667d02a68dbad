package geospatial

import (
	"math"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

// EarthRadiusMiles is the sphere radius used for every distance this service reports.
const EarthRadiusMiles = 3959.0

// DistanceMiles returns the great-circle distance between a and b in miles,
// rounded to two decimal places.
func DistanceMiles(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return math.Round(EarthRadiusMiles*c*100) / 100
}

// DegreeDistance is the straight-line distance between a and b on raw degrees.
// It only ranks points over short ranges and is not a real distance.
func DegreeDistance(a, b domain.GeoPoint) float64 {
	return math.Hypot(b.Lat-a.Lat, b.Lng-a.Lng)
}

// BoundingBox returns a box around center extending radiusMiles in each direction.
func BoundingBox(center domain.GeoPoint, radiusMiles float64) domain.ViewportBounds {
	latDelta := radiusMiles / 69.0
	lngDelta := radiusMiles / (69.0 * math.Cos(toRad(center.Lat)))

	return domain.ViewportBounds{
		North: center.Lat + latDelta,
		South: center.Lat - latDelta,
		East:  center.Lng + lngDelta,
		West:  center.Lng - lngDelta,
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
