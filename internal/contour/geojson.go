package contour

import (
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
)

// FeatureCollection renders contours as GeoJSON polygons with threshold and
// hemisphere properties.
func FeatureCollection(contours []domain.Contour) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range contours {
		f := geojson.NewFeature(c.Polygon)
		f.Properties["threshold"] = c.Threshold
		f.Properties["hemisphere"] = string(c.Hemisphere)
		fc.Append(f)
	}
	return fc
}
