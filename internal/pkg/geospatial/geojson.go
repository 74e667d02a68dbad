package geospatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
)

// MarkerCollection renders places as GeoJSON points with the viewport as bbox.
func MarkerCollection(places []domain.Place, b domain.ViewportBounds) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.BBox = geojson.NewBBox(ToBound(b))

	for _, p := range places {
		f := geojson.NewFeature(orb.Point{p.Lng, p.Lat})
		f.ID = p.ID
		f.Properties["name"] = p.Name
		f.Properties["rating"] = p.Rating
		f.Properties["review_count"] = p.ReviewCount
		f.Properties["inside"] = Contains(b, p.Location())
		if p.Category != "" {
			f.Properties["category"] = p.Category
		}
		if p.Distance != nil {
			f.Properties["distance"] = *p.Distance
		}
		fc.Append(f)
	}
	return fc
}
