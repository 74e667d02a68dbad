package geospatial

import (
	"math"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

// Project maps p onto the viewport by linear interpolation on each axis.
// North maps to the top edge, west to the left edge. Points outside b land
// outside [0,width]x[0,height]; a zero-area b yields NaN or Inf.
func Project(p domain.GeoPoint, b domain.ViewportBounds, size domain.ViewportSize) domain.PixelPoint {
	return domain.PixelPoint{
		X: (p.Lng - b.West) / (b.East - b.West) * size.WidthPx,
		Y: (b.North - p.Lat) / (b.North - b.South) * size.HeightPx,
	}
}

// ClampToViewport keeps p at least margin pixels inside the viewport edges and
// reports whether it had to move. margin must be below half of each dimension.
func ClampToViewport(p domain.PixelPoint, size domain.ViewportSize, margin float64) (domain.PixelPoint, bool) {
	out := domain.PixelPoint{
		X: math.Min(math.Max(p.X, margin), size.WidthPx-margin),
		Y: math.Min(math.Max(p.Y, margin), size.HeightPx-margin),
	}
	return out, out != p
}
