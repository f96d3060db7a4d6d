package contour

import (
	"math"

	"github.com/paulmach/orb"
)

// raster is a regular node lattice over the rotated patch. Node (c, r) sits
// at (x0 + c·cell, y0 + r·cell); values are stored row-major.
type raster struct {
	cols, rows int
	x0, y0     float64
	cell       float64
	v          []float64
}

// newPatchRaster covers the whole patch, lon 0..360 and lat −90..90.
func newPatchRaster(cell float64) *raster {
	cols := int(math.Ceil(360/cell)) + 1
	rows := int(math.Ceil(180/cell)) + 1
	return newRaster(cols, rows, 0, -90, cell)
}

func newRaster(cols, rows int, x0, y0, cell float64) *raster {
	return &raster{cols: cols, rows: rows, x0: x0, y0: y0, cell: cell, v: make([]float64, cols*rows)}
}

func (g *raster) at(c, r int) float64 { return g.v[r*g.cols+c] }

func (g *raster) add(c, r int, w float64) { g.v[r*g.cols+c] += w }

// point returns the patch coordinates of fractional node position (c, r).
func (g *raster) point(c, r float64) orb.Point {
	return orb.Point{g.x0 + c*g.cell, g.y0 + r*g.cell}
}

// splat distributes w over the four nodes surrounding (x, y) with bilinear
// weights. Points outside the lattice are ignored.
func (g *raster) splat(x, y, w float64) {
	fx := (x - g.x0) / g.cell
	fy := (y - g.y0) / g.cell
	if fx < 0 || fy < 0 || fx > float64(g.cols-1) || fy > float64(g.rows-1) {
		return
	}
	c := min(int(fx), g.cols-2)
	r := min(int(fy), g.rows-2)
	tx, ty := fx-float64(c), fy-float64(r)

	g.add(c, r, w*(1-tx)*(1-ty))
	g.add(c+1, r, w*tx*(1-ty))
	g.add(c, r+1, w*(1-tx)*ty)
	g.add(c+1, r+1, w*tx*ty)
}

// blur applies a separable Gaussian with standard deviation sigma (in
// cells), truncated at 3σ. Values beyond the lattice count as zero.
func (g *raster) blur(sigma float64) {
	if sigma <= 0 {
		return
	}
	kernel := gaussianKernel(sigma)
	half := len(kernel) / 2
	tmp := make([]float64, len(g.v))

	for r := range g.rows {
		for c := range g.cols {
			var s float64
			for k, w := range kernel {
				cc := c + k - half
				if cc >= 0 && cc < g.cols {
					s += w * g.v[r*g.cols+cc]
				}
			}
			tmp[r*g.cols+c] = s
		}
	}
	for r := range g.rows {
		for c := range g.cols {
			var s float64
			for k, w := range kernel {
				rr := r + k - half
				if rr >= 0 && rr < g.rows {
					s += w * tmp[rr*g.cols+c]
				}
			}
			g.v[r*g.cols+c] = s
		}
	}
}

func gaussianKernel(sigma float64) []float64 {
	half := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*half+1)
	var sum float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// zeroBorder clears the outermost ring of nodes so every contour closes
// inside the lattice.
func (g *raster) zeroBorder() {
	for c := range g.cols {
		g.v[c] = 0
		g.v[(g.rows-1)*g.cols+c] = 0
	}
	for r := range g.rows {
		g.v[r*g.cols] = 0
		g.v[r*g.cols+g.cols-1] = 0
	}
}

func (g *raster) peak() float64 {
	m := math.Inf(-1)
	for _, v := range g.v {
		m = math.Max(m, v)
	}
	return m
}
