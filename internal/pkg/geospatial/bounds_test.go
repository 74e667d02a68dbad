package geospatial

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

func TestContains_EdgesInclusive(t *testing.T) {
	assert.True(t, Contains(campusBounds, campusBounds.Center()))
	assert.True(t, Contains(campusBounds, domain.GeoPoint{Lat: campusBounds.North, Lng: campusBounds.West}))
	assert.True(t, Contains(campusBounds, domain.GeoPoint{Lat: campusBounds.South, Lng: campusBounds.East}))
	assert.False(t, Contains(campusBounds, domain.GeoPoint{Lat: 34.0281, Lng: -118.2850}))
	assert.False(t, Contains(campusBounds, domain.GeoPoint{Lat: 34.0240, Lng: -118.2881}))
}

func TestExpandToInclude_InsideUnchanged(t *testing.T) {
	got, changed := ExpandToInclude(campusBounds, campusCenter, 0.001)
	assert.False(t, changed)
	assert.Equal(t, campusBounds, got)
}

func TestExpandToInclude_OnlyExceededSidesMove(t *testing.T) {
	east := domain.GeoPoint{Lat: 34.0240, Lng: -118.2700}

	got, changed := ExpandToInclude(campusBounds, east, 0.001)

	assert.True(t, changed)
	assert.InDelta(t, -118.2690, got.East, 1e-9)
	assert.Equal(t, campusBounds.North, got.North)
	assert.Equal(t, campusBounds.South, got.South)
	assert.Equal(t, campusBounds.West, got.West)
}

func TestExpandToInclude_Corner(t *testing.T) {
	sw := domain.GeoPoint{Lat: 34.0100, Lng: -118.3000}

	got, changed := ExpandToInclude(campusBounds, sw, 0.002)

	assert.True(t, changed)
	assert.InDelta(t, 34.0080, got.South, 1e-9)
	assert.InDelta(t, -118.3020, got.West, 1e-9)
	assert.Equal(t, campusBounds.North, got.North)
	assert.Equal(t, campusBounds.East, got.East)
	assert.True(t, Contains(got, sw))
}

func TestExpandToInclude_Idempotent(t *testing.T) {
	points := []domain.GeoPoint{
		{Lat: 34.0400, Lng: -118.2850},
		{Lat: 34.0000, Lng: -118.2500},
		{Lat: 34.0240, Lng: -118.4000},
	}
	for _, p := range points {
		once, changed := ExpandToInclude(campusBounds, p, 0.001)
		assert.True(t, changed)

		twice, changed := ExpandToInclude(once, p, 0.001)
		assert.False(t, changed)
		assert.Equal(t, once, twice)
	}
}

func TestExpandToInclude_NeverShrinks(t *testing.T) {
	b := campusBounds
	points := []domain.GeoPoint{
		{Lat: 34.0500, Lng: -118.2850},
		{Lat: 34.0240, Lng: -118.2000},
		campusCenter,
		{Lat: 33.9000, Lng: -118.5000},
		{Lat: 34.0260, Lng: -118.2830},
	}
	for _, p := range points {
		next, _ := ExpandToInclude(b, p, 0.0005)
		assert.True(t, next.Covers(b), "bounds shrank after %v", p)
		assert.True(t, Contains(next, p))
		b = next
	}
}

func TestExpandToInclude_ZeroPadding(t *testing.T) {
	p := domain.GeoPoint{Lat: 34.0300, Lng: -118.2850}

	got, changed := ExpandToInclude(campusBounds, p, 0)

	assert.True(t, changed)
	assert.Equal(t, p.Lat, got.North)
	assert.True(t, Contains(got, p))
}

func TestToBound(t *testing.T) {
	b := ToBound(campusBounds)
	assert.Equal(t, campusBounds.West, b.Left())
	assert.Equal(t, campusBounds.East, b.Right())
	assert.Equal(t, campusBounds.North, b.Top())
	assert.Equal(t, campusBounds.South, b.Bottom())
}
