package main

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/scoring"
)

// renderMap draws the score grid, the northern contours and the stations on
// an equirectangular longitude/latitude plot.
func renderMap(path string, snap domain.ScoreSnapshot, stations []domain.Observation) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Auroral score %s", snap.ID)
	p.X.Label.Text = "longitude (°E)"
	p.Y.Label.Text = "latitude (°N)"
	p.Add(plotter.NewGrid())

	if len(snap.Points) > 0 {
		scores, err := scoreScatter(snap.Points)
		if err != nil {
			return err
		}
		p.Add(scores)
	}

	for _, c := range snap.Contours {
		if c.Hemisphere != domain.North {
			continue
		}
		for i, ring := range c.Polygon {
			xys := make(plotter.XYs, len(ring))
			for j, pt := range ring {
				xys[j] = plotter.XY{X: pt.Lon(), Y: pt.Lat()}
			}
			line, err := plotter.NewLine(xys)
			if err != nil {
				return fmt.Errorf("contour line: %w", err)
			}
			line.Color = color.Black
			line.Width = vg.Points(1)
			if i > 0 {
				line.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}
			}
			p.Add(line)
		}
	}

	if len(stations) > 0 {
		xys := make(plotter.XYs, len(stations))
		for i, s := range stations {
			xys[i] = plotter.XY{X: s.Lon, Y: s.Lat}
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("station scatter: %w", err)
		}
		sc.GlyphStyle.Shape = draw.TriangleGlyph{}
		sc.GlyphStyle.Color = color.RGBA{R: 20, G: 20, B: 20, A: 255}
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add("stations", sc)
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func scoreScatter(points []domain.ScorePoint) (*plotter.Scatter, error) {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.Lon, Y: pt.Lat}
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("score scatter: %w", err)
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(0)
	cmap.SetMax(scoring.MaxScore)
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c, err := cmap.At(points[i].Score)
		if err != nil {
			c = color.Gray{Y: 128}
		}
		return draw.GlyphStyle{Color: c, Radius: vg.Points(2.5), Shape: draw.CircleGlyph{}}
	}
	return sc, nil
}
