package contour

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rasterFrom(rows [][]float64) *raster {
	g := newRaster(len(rows[0]), len(rows), 0, 0, 1)
	for r, row := range rows {
		for c, v := range row {
			g.v[r*g.cols+c] = v
		}
	}
	return g
}

func TestMarch_SinglePeak(t *testing.T) {
	g := rasterFrom([][]float64{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	})
	rings := g.march(0.5)
	require.Len(t, rings, 1)

	want := orb.Ring{{1, 0.5}, {1.5, 1}, {1, 1.5}, {0.5, 1}, {1, 0.5}}
	if diff := cmp.Diff(want, rings[0]); diff != "" {
		t.Errorf("ring mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, orb.CCW, rings[0].Orientation())
}

func TestMarch_HoleIsClockwise(t *testing.T) {
	g := rasterFrom([][]float64{
		{0, 0, 0, 0, 0},
		{0, 1, 1, 1, 0},
		{0, 1, 0, 1, 0},
		{0, 1, 1, 1, 0},
		{0, 0, 0, 0, 0},
	})
	rings := g.march(0.5)
	require.Len(t, rings, 2)

	var ccw, cw int
	for _, r := range rings {
		assert.Equal(t, r[0], r[len(r)-1], "ring must be closed")
		switch r.Orientation() {
		case orb.CCW:
			ccw++
		case orb.CW:
			cw++
		}
	}
	assert.Equal(t, 1, ccw)
	assert.Equal(t, 1, cw)

	polys := assemble(rings, 0)
	require.Len(t, polys, 1)
	assert.Len(t, polys[0].polygon, 2)
}

func TestMarch_SaddleResolvedByCentre(t *testing.T) {
	g := rasterFrom([][]float64{
		{0, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 0},
	})

	// Centre average 0.5: joined below it, split above it.
	joined := g.march(0.4)
	require.Len(t, joined, 1)
	assert.Equal(t, orb.CCW, joined[0].Orientation())

	split := g.march(0.6)
	require.Len(t, split, 2)
	for _, r := range split {
		assert.Equal(t, orb.CCW, r.Orientation())
		assert.Len(t, r, 5)
	}
}

func TestMarch_IsDeterministic(t *testing.T) {
	g := rasterFrom([][]float64{
		{0, 0, 0, 0, 0, 0},
		{0, 2, 0, 3, 1, 0},
		{0, 1, 0, 0, 2, 0},
		{0, 0, 4, 0, 1, 0},
		{0, 0, 0, 0, 0, 0},
	})
	first := g.march(0.9)
	for range 5 {
		assert.Equal(t, first, g.march(0.9))
	}
}

func TestMarch_NothingAboveThreshold(t *testing.T) {
	g := rasterFrom([][]float64{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	})
	assert.Empty(t, g.march(2))
}

func TestRaster_SplatConservesWeight(t *testing.T) {
	g := newRaster(10, 10, 0, 0, 1)
	g.splat(3.25, 4.75, 2)
	var sum float64
	for _, v := range g.v {
		sum += v
	}
	assert.InDelta(t, 2, sum, 1e-12)
	assert.InDelta(t, 2*0.75*0.25, g.at(3, 4), 1e-12)
	assert.InDelta(t, 2*0.25*0.75, g.at(4, 5), 1e-12)

	g.splat(-1, 3, 5)
	g.splat(3, 20, 5)
	sum = 0
	for _, v := range g.v {
		sum += v
	}
	assert.InDelta(t, 2, sum, 1e-12, "out of range samples are ignored")
}

func TestRaster_BlurConservesInteriorMass(t *testing.T) {
	g := newRaster(40, 40, 0, 0, 1)
	g.add(20, 20, 1)
	g.blur(1.5)

	var sum float64
	for _, v := range g.v {
		sum += v
	}
	assert.InDelta(t, 1, sum, 1e-9)
	assert.Less(t, g.at(20, 20), 1.0)
	assert.InDelta(t, g.at(19, 20), g.at(21, 20), 1e-15)
	assert.InDelta(t, g.at(20, 19), g.at(19, 20), 1e-15)
}

func TestRaster_ZeroBorder(t *testing.T) {
	g := newRaster(4, 3, 0, 0, 1)
	for i := range g.v {
		g.v[i] = 1
	}
	g.zeroBorder()
	assert.Equal(t, []float64{
		0, 0, 0, 0,
		0, 1, 1, 0,
		0, 0, 0, 0,
	}, g.v)
}
