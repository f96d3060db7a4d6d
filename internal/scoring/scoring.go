// Package scoring turns predicted field vectors into a sparse 0–10 auroral
// activity grid and quantizes it for the wire.
package scoring

import (
	"math"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/sphere"
)

const (
	// MaxScore is the upper bound of every score.
	MaxScore = 10.0

	// DefaultScale is the default quantization factor for Encode.
	DefaultScale = 1000.0

	// outsideBands is the weight applied beyond the last ponderation band.
	outsideBands = 0.3
)

// IntensityScore maps the horizontal field magnitude in nT onto [0, 10]
// with a fitted logistic curve through (0, 0), (50, 2), (100, 3), (200, 4)
// and (800, 10).
func IntensityScore(b float64) float64 {
	if math.IsNaN(b) || b <= 0 {
		return 0
	}
	const (
		top   = 22.81964
		floor = -0.05732817
		knee  = 1055.17
		slope = 0.8849212
	)
	v := top + (floor-top)/(1+math.Pow(b/knee, slope))
	return clamp(v, 0, MaxScore)
}

// OvalPonderation weights a point by its distance in km from the
// geomagnetic north pole. The cubic bands pass through (0, 0.3)…(2200, 1),
// (2700, 1), (3300, 0.5) and (4000, 0.2).
func OvalPonderation(d float64) float64 {
	switch {
	case d >= 0 && d <= 2200:
		return -2.0790e-11*d*d*d - 7.6000e-67*d*d + 5.5517e-4*d
	case d > 2200 && d <= 2700:
		return -7.3879e-10*d*d*d + 4.7388e-6*d*d - 9.8701e-3*d + 7.6452
	case d > 2700 && d <= 3300:
		return 9.7750e-10*d*d*d - 9.1631e-6*d*d + 2.7665e-2*d - 26.136
	case d > 3300 && d <= 5000:
		return -1.0080e-10*d*d*d + 1.5121e-6*d*d - 7.5632e-3*d + 12.615
	default:
		return outsideBands
	}
}

// PoleDistance returns the great-circle distance in km from the geomagnetic
// north pole.
func PoleDistance(lat, lon float64) float64 {
	return sphere.Haversine(lat, lon, sphere.GeomagneticNorthLat, sphere.GeomagneticNorthLon)
}

// ScoreAt returns the weighted score of a single field vector.
func ScoreAt(f domain.FieldVector) float64 {
	b := math.Hypot(f.Bx, f.By)
	s := OvalPonderation(PoleDistance(f.Lat, f.Lon)) * IntensityScore(b)
	return math.Min(MaxScore, s)
}

// Score weights every field vector and keeps the points with a positive,
// finite score. Order follows the input.
func Score(fields []domain.FieldVector) []domain.ScorePoint {
	out := make([]domain.ScorePoint, 0, len(fields))
	for _, f := range fields {
		s := ScoreAt(f)
		if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
			continue
		}
		out = append(out, domain.ScorePoint{Lon: f.Lon, Lat: f.Lat, Score: s})
	}
	return out
}

// Encode quantizes scores as round(score × scale), saturating at the uint16
// range. A non-positive scale falls back to DefaultScale.
func Encode(points []domain.ScorePoint, scale float64) []uint16 {
	if scale <= 0 {
		scale = DefaultScale
	}
	out := make([]uint16, len(points))
	for i, p := range points {
		out[i] = uint16(clamp(math.Round(p.Score*scale), 0, math.MaxUint16))
	}
	return out
}

// Peak returns the highest scoring point, the first one on ties, or nil for
// an empty grid.
func Peak(points []domain.ScorePoint) *domain.ScorePoint {
	if len(points) == 0 {
		return nil
	}
	best := 0
	for i, p := range points[1:] {
		if p.Score > points[best].Score {
			best = i + 1
		}
	}
	peak := points[best]
	return &peak
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
