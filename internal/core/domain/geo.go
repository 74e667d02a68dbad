package domain

// GeoPoint represents a geographic coordinate (WGS 84), in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ViewportBounds is the geographic box currently mapped onto the static map.
// North > South and East > West. A session's bounds only ever grow.
type ViewportBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Covers reports whether b contains every side of other.
func (b ViewportBounds) Covers(other ViewportBounds) bool {
	return b.North >= other.North && b.South <= other.South &&
		b.East >= other.East && b.West <= other.West
}

// Center returns the midpoint of the box.
func (b ViewportBounds) Center() GeoPoint {
	return GeoPoint{Lat: (b.North + b.South) / 2, Lng: (b.East + b.West) / 2}
}

// ViewportSize is the pixel size of the rendering surface.
type ViewportSize struct {
	WidthPx  float64 `json:"width"`
	HeightPx float64 `json:"height"`
}

// PixelPoint is a position relative to the viewport's top-left corner.
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
