package geospatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

var (
	campusBounds = domain.ViewportBounds{North: 34.0280, South: 34.0200, East: -118.2820, West: -118.2880}
	mapSize      = domain.ViewportSize{WidthPx: 600, HeightPx: 800}
)

func TestProject_Corners(t *testing.T) {
	tests := []struct {
		name string
		p    domain.GeoPoint
		want domain.PixelPoint
	}{
		{"north-west", domain.GeoPoint{Lat: campusBounds.North, Lng: campusBounds.West}, domain.PixelPoint{X: 0, Y: 0}},
		{"north-east", domain.GeoPoint{Lat: campusBounds.North, Lng: campusBounds.East}, domain.PixelPoint{X: 600, Y: 0}},
		{"south-west", domain.GeoPoint{Lat: campusBounds.South, Lng: campusBounds.West}, domain.PixelPoint{X: 0, Y: 800}},
		{"south-east", domain.GeoPoint{Lat: campusBounds.South, Lng: campusBounds.East}, domain.PixelPoint{X: 600, Y: 800}},
		{"center", campusBounds.Center(), domain.PixelPoint{X: 300, Y: 400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.p, campusBounds, mapSize)
			assert.InDelta(t, tt.want.X, got.X, 1e-6)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-6)
		})
	}
}

func TestProject_InsideStaysOnScreen(t *testing.T) {
	for lat := campusBounds.South; lat <= campusBounds.North; lat += 0.0005 {
		for lng := campusBounds.West; lng <= campusBounds.East; lng += 0.0005 {
			px := Project(domain.GeoPoint{Lat: lat, Lng: lng}, campusBounds, mapSize)
			assert.GreaterOrEqual(t, px.X, -1e-9)
			assert.LessOrEqual(t, px.X, mapSize.WidthPx+1e-9)
			assert.GreaterOrEqual(t, px.Y, -1e-9)
			assert.LessOrEqual(t, px.Y, mapSize.HeightPx+1e-9)
		}
	}
}

func TestProject_OutsideLeavesScreen(t *testing.T) {
	px := Project(domain.GeoPoint{Lat: 34.0300, Lng: -118.2900}, campusBounds, mapSize)
	assert.Less(t, px.X, 0.0)
	assert.Less(t, px.Y, 0.0)

	px = Project(domain.GeoPoint{Lat: 34.0100, Lng: -118.2700}, campusBounds, mapSize)
	assert.Greater(t, px.X, mapSize.WidthPx)
	assert.Greater(t, px.Y, mapSize.HeightPx)
}

func TestProject_LinearInLongitude(t *testing.T) {
	p := domain.GeoPoint{Lat: 34.024, Lng: -118.2870}
	narrow := Project(p, campusBounds, mapSize)

	wide := campusBounds
	wide.East = wide.West + 2*(campusBounds.East-campusBounds.West)
	widened := Project(p, wide, mapSize)

	assert.InDelta(t, narrow.X/2, widened.X, 1e-6)
	assert.InDelta(t, narrow.Y, widened.Y, 1e-9)
}

func TestProject_DegenerateBounds(t *testing.T) {
	flat := domain.ViewportBounds{North: 34.02, South: 34.02, East: -118.28, West: -118.28}
	px := Project(domain.GeoPoint{Lat: 34.03, Lng: -118.27}, flat, mapSize)
	assert.True(t, math.IsInf(px.X, 0) || math.IsNaN(px.X))
	assert.True(t, math.IsInf(px.Y, 0) || math.IsNaN(px.Y))
}

func TestClampToViewport(t *testing.T) {
	tests := []struct {
		name    string
		in      domain.PixelPoint
		want    domain.PixelPoint
		clamped bool
	}{
		{"inside", domain.PixelPoint{X: 300, Y: 400}, domain.PixelPoint{X: 300, Y: 400}, false},
		{"on margin", domain.PixelPoint{X: 20, Y: 780}, domain.PixelPoint{X: 20, Y: 780}, false},
		{"left of margin", domain.PixelPoint{X: 5, Y: 400}, domain.PixelPoint{X: 20, Y: 400}, true},
		{"beyond right", domain.PixelPoint{X: 900, Y: 400}, domain.PixelPoint{X: 580, Y: 400}, true},
		{"above top", domain.PixelPoint{X: 300, Y: -50}, domain.PixelPoint{X: 300, Y: 20}, true},
		{"beyond both", domain.PixelPoint{X: -10, Y: 1000}, domain.PixelPoint{X: 20, Y: 780}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped := ClampToViewport(tt.in, mapSize, 20)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.clamped, clamped)
		})
	}
}

func TestClampToViewport_Idempotent(t *testing.T) {
	inputs := []domain.PixelPoint{{X: -500, Y: -500}, {X: 1e6, Y: 3}, {X: 301.7, Y: 799.9}}
	for _, in := range inputs {
		once, _ := ClampToViewport(in, mapSize, 12)
		twice, clamped := ClampToViewport(once, mapSize, 12)
		assert.Equal(t, once, twice)
		assert.False(t, clamped)
	}
}
