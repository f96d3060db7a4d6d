// Package contour extracts closed iso-score polygons of the auroral oval.
//
// Planar contouring breaks at the ±180° seam and near the poles, so the
// score grid is first mirrored into the southern cap, rotated onto a patch
// where both caps sit near the patch equator, rasterized and blurred there,
// contoured with marching squares and finally rotated back.
package contour

import (
	"errors"
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/sphere"
)

// Options controls rasterization and contour levels.
type Options struct {
	// CellDeg is the raster resolution on the patch in degrees.
	CellDeg float64
	// Sigma is the Gaussian blur width in cells. Zero disables blurring.
	Sigma float64
	// Levels is the number of evenly spaced thresholds used when
	// Thresholds is empty.
	Levels int
	// Thresholds are explicit levels in raster density units.
	Thresholds []float64
	// Simplify is the Douglas-Peucker tolerance in patch degrees.
	Simplify float64
}

// DefaultOptions returns the reference extractor settings.
func DefaultOptions() Options {
	return Options{CellDeg: 1, Sigma: 1.5, Levels: 3}
}

// minRingPoints is the smallest closed ring: three vertices plus the
// closing point.
const minRingPoints = 4

// Extract computes contours for every threshold in ascending order. Within a
// threshold northern polygons come before southern ones.
func Extract(points []domain.ScorePoint, opts Options) ([]domain.Contour, error) {
	if opts.CellDeg <= 0 || math.IsNaN(opts.CellDeg) {
		return nil, errors.New("contour cell size must be positive")
	}
	if opts.Sigma < 0 {
		return nil, errors.New("contour sigma must not be negative")
	}
	if len(points) == 0 {
		return nil, nil
	}

	g := newPatchRaster(opts.CellDeg)
	for _, p := range Mirror(points) {
		x, y := sphere.RotateToPatch(p.Lon, p.Lat)
		g.splat(x, y, p.Score)
	}
	g.blur(opts.Sigma)
	g.zeroBorder()

	var out []domain.Contour
	for _, t := range thresholds(g.peak(), opts) {
		polys := assemble(g.march(t), opts.Simplify)
		slices.SortStableFunc(polys, func(a, b patchPolygon) int {
			return hemisphereRank(a.hemisphere) - hemisphereRank(b.hemisphere)
		})
		for _, p := range polys {
			out = append(out, domain.Contour{
				Threshold:  t,
				Hemisphere: p.hemisphere,
				Polygon:    invertPolygon(p.polygon),
			})
		}
	}
	return out, nil
}

// thresholds returns the configured levels, or Levels fractions of peak,
// keeping only positive values in ascending order.
func thresholds(peak float64, opts Options) []float64 {
	var ts []float64
	if len(opts.Thresholds) > 0 {
		ts = slices.Clone(opts.Thresholds)
	} else if peak > 0 {
		for k := 1; k <= opts.Levels; k++ {
			ts = append(ts, peak*float64(k)/float64(opts.Levels+1))
		}
	}
	ts = slices.DeleteFunc(ts, func(t float64) bool { return !(t > 0) || math.IsInf(t, 0) })
	slices.Sort(ts)
	return slices.Compact(ts)
}

type patchPolygon struct {
	hemisphere domain.Hemisphere
	polygon    orb.Polygon
	area       float64
}

func hemisphereRank(h domain.Hemisphere) int {
	if h == domain.North {
		return 0
	}
	return 1
}

// assemble groups traced rings into polygons. Counter-clockwise rings are
// outer boundaries; each clockwise ring becomes a hole of the smallest
// outer ring containing it.
func assemble(rings []orb.Ring, tolerance float64) []patchPolygon {
	var outers []patchPolygon
	var holes []orb.Ring
	for _, r := range rings {
		r = simplifyRing(r, tolerance)
		if len(r) < minRingPoints {
			continue
		}
		switch r.Orientation() {
		case orb.CCW:
			outers = append(outers, patchPolygon{
				hemisphere: hemisphereOf(r),
				polygon:    orb.Polygon{r},
				area:       math.Abs(planar.Area(r)),
			})
		case orb.CW:
			holes = append(holes, r)
		}
	}

	for _, h := range holes {
		best := -1
		for i, o := range outers {
			if !planar.RingContains(o.polygon[0], h[0]) {
				continue
			}
			if best < 0 || o.area < outers[best].area {
				best = i
			}
		}
		if best >= 0 {
			outers[best].polygon = append(outers[best].polygon, h)
		}
	}
	return outers
}

func simplifyRing(r orb.Ring, tolerance float64) orb.Ring {
	if tolerance <= 0 {
		return r
	}
	s, ok := simplify.DouglasPeucker(tolerance).Simplify(orb.LineString(r).Clone()).(orb.LineString)
	if !ok {
		return r
	}
	return orb.Ring(s)
}

// hemisphereOf reads the hemisphere from the patch longitude: the northern
// cap is centred on 90° and the southern one on 270°.
func hemisphereOf(r orb.Ring) domain.Hemisphere {
	if r[0][0] < 180 {
		return domain.North
	}
	return domain.South
}

func invertPolygon(p orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, ring := range p {
		geo := make(orb.Ring, len(ring))
		for j, pt := range ring {
			lon, lat := sphere.InvertPatch(pt[0], pt[1])
			geo[j] = orb.Point{lon, lat}
		}
		out[i] = geo
	}
	return out
}
