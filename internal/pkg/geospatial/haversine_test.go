package geospatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

var (
	campusCenter = domain.GeoPoint{Lat: 34.0224, Lng: -118.2851}
	uscVillage   = domain.GeoPoint{Lat: 34.0250, Lng: -118.2850}
)

func TestDistanceMiles(t *testing.T) {
	tests := []struct {
		name     string
		a, b     domain.GeoPoint
		expected float64
	}{
		{"same point", campusCenter, campusCenter, 0},
		{"campus to village", campusCenter, uscVillage, 0.18},
		{"campus to north-west corner", campusCenter, domain.GeoPoint{Lat: 34.03, Lng: -118.29}, 0.60},
		{"campus to south-east corner", campusCenter, domain.GeoPoint{Lat: 34.02, Lng: -118.28}, 0.34},
		{"new york to london", domain.GeoPoint{Lat: 40.7128, Lng: -74.0060}, domain.GeoPoint{Lat: 51.5074, Lng: -0.1278}, 3461.39},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DistanceMiles(tt.a, tt.b), 1e-9)
		})
	}
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	points := []domain.GeoPoint{
		campusCenter,
		uscVillage,
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 35.6762, Lng: 139.6503},
		{Lat: 0, Lng: 0},
	}
	for _, a := range points {
		for _, b := range points {
			assert.Equal(t, DistanceMiles(a, b), DistanceMiles(b, a), "%v <-> %v", a, b)
		}
	}
}

func TestDistanceMiles_RoundsToCents(t *testing.T) {
	d := DistanceMiles(campusCenter, domain.GeoPoint{Lat: 34.0265, Lng: -118.2845})
	assert.Equal(t, d, math.Round(d*100)/100)
}

func TestDistanceMiles_OutOfRangeIsNotAnError(t *testing.T) {
	d := DistanceMiles(domain.GeoPoint{Lat: 95, Lng: 0}, domain.GeoPoint{Lat: 0, Lng: 0})
	assert.False(t, math.IsNaN(d))
	assert.Greater(t, d, 0.0)
}

func TestDegreeDistance(t *testing.T) {
	assert.InDelta(t, 5.0, DegreeDistance(domain.GeoPoint{Lat: 0, Lng: 0}, domain.GeoPoint{Lat: 3, Lng: 4}), 1e-12)
	assert.Zero(t, DegreeDistance(campusCenter, campusCenter))
}

func TestBoundingBox(t *testing.T) {
	b := BoundingBox(campusCenter, 1)

	assert.InDelta(t, campusCenter.Lat+1/69.0, b.North, 1e-12)
	assert.InDelta(t, campusCenter.Lat-1/69.0, b.South, 1e-12)
	assert.Greater(t, b.East-b.West, b.North-b.South, "longitude degrees are shorter away from the equator")
	assert.True(t, Contains(b, campusCenter))
}

func TestToRad(t *testing.T) {
	assert.InDelta(t, math.Pi/2, toRad(90), 1e-12)
	assert.InDelta(t, math.Pi, toRad(180), 1e-12)
	assert.Zero(t, toRad(0))
}
