package contour

import (
	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/sphere"
)

// TaggedPoint is a score sample with the hemisphere it contributes to.
type TaggedPoint struct {
	domain.ScorePoint
	Hemisphere domain.Hemisphere
}

// Mirror augments a northern score grid with its image about the
// geomagnetic equator. Each northern point is kept and a copy is placed at
// the same position relative to the geomagnetic south pole. Southern input
// points are kept as they are.
func Mirror(points []domain.ScorePoint) []TaggedPoint {
	out := make([]TaggedPoint, 0, 2*len(points))
	for _, p := range points {
		if p.Lat < 0 {
			out = append(out, TaggedPoint{ScorePoint: p, Hemisphere: domain.South})
			continue
		}
		out = append(out, TaggedPoint{ScorePoint: p, Hemisphere: domain.North})

		lon, lat := sphere.RotateToGeomagneticSouth(p.Lon, p.Lat)
		out = append(out, TaggedPoint{
			ScorePoint: domain.ScorePoint{Lon: lon, Lat: lat, Score: p.Score},
			Hemisphere: domain.South,
		})
	}
	return out
}
