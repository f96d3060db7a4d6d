package secs

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/sphere"
)

var (
	refTargets = []domain.Location{{Lat: 50, Lon: 20}, {Lat: 51, Lon: 21}}
	refPoles   = []domain.Location{{Lat: 10, Lon: 30}, {Lat: 11, Lon: 31}, {Lat: 12, Lon: 32}}
)

// Expected tensors are laid out [target][component][pole].
var transferBelowSheet = []float64{
	-3.67250861e-11, -3.67476077e-11, -3.67074095e-11,
	9.94787927e-12, 1.11826106e-11, 1.24566687e-11,
	-1.76265553e-11, -1.84618364e-11, -1.92994257e-11,
	-3.66568665e-11, -3.67415083e-11, -3.67687370e-11,
	8.73331388e-12, 9.92220548e-12, 1.11521060e-11,
	-1.68114853e-11, -1.76472830e-11, -1.84884113e-11,
}

var transferAboveSheet = []float64{
	1.248881305890098e-11, 1.257667569294579e-11, 1.264169224772104e-11,
	-3.382897573340390e-12, -3.827189728374329e-12, -4.289961456907339e-12,
	-9.914937352303397e-12, -1.038478295394393e-11, -1.085592698421099e-11,
	1.238600079569024e-11, 1.249640680745045e-11, 1.258643444730852e-11,
	-2.950902327063451e-12, -3.374709473974890e-12, -3.817516262669339e-12,
	-9.456460477747721e-12, -9.926596671910809e-12, -1.039973133651685e-11,
}

func buildRef(t *testing.T, targetRadius, poleRadius float64) *TransferMatrix {
	t.Helper()
	poles := NewPoleGridAt(refPoles, poleRadius)
	radii := []float64{targetRadius, targetRadius}
	tm, err := BuildTransfer(context.Background(), refTargets, radii, poles)
	require.NoError(t, err)
	return tm
}

func assertTensor(t *testing.T, want []float64, tm *TransferMatrix) {
	t.Helper()
	require.Equal(t, 2, tm.Targets())
	require.Equal(t, 6, tm.Rows())
	require.Equal(t, 3, tm.Cols())

	i := 0
	for tgt := range 2 {
		for k := Bx; k <= Bz; k++ {
			for p := range 3 {
				assert.InEpsilon(t, want[i], tm.At(tgt, k, p), 1e-6, "T[%d][%d][%d]", tgt, k, p)
				i++
			}
		}
	}
}

func TestBuildTransfer_TargetBelowSheet(t *testing.T) {
	assertTensor(t, transferBelowSheet, buildRef(t, 3000, 4000))
}

func TestBuildTransfer_TargetAboveSheet(t *testing.T) {
	assertTensor(t, transferAboveSheet, buildRef(t, 4000, 3000))
}

func TestBuildTransfer_RowAliasesStorage(t *testing.T) {
	tm := buildRef(t, 3000, 4000)
	row := tm.Row(1, By)
	require.Len(t, row, 3)
	for p := range 3 {
		assert.Equal(t, tm.At(1, By, p), row[p])
	}
}

func TestBuildTransfer_Horizontal(t *testing.T) {
	tm := buildRef(t, 3000, 4000)
	a := tm.Horizontal()
	r, c := a.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 3, c)
	for p := range 3 {
		assert.Equal(t, tm.At(0, Bx, p), a.At(0, p))
		assert.Equal(t, tm.At(0, By, p), a.At(1, p))
		assert.Equal(t, tm.At(1, Bx, p), a.At(2, p))
		assert.Equal(t, tm.At(1, By, p), a.At(3, p))
	}
}

func TestBuildTransfer_RadiiMismatch(t *testing.T) {
	poles := NewPoleGridAt(refPoles, 4000)
	_, err := BuildTransfer(context.Background(), refTargets, []float64{3000}, poles)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInputShape)
}

func TestBuildTransfer_Shape(t *testing.T) {
	poles, err := NewPoleGrid(GridSpec{LatMin: 60, LatMax: 80, LatSteps: 5, LonMin: -20, LonMax: 40, LonSteps: 7}, IonosphereAltitude)
	require.NoError(t, err)
	targets, err := BuildGrid(GridSpec{LatMin: 55, LatMax: 75, LatSteps: 4, LonMin: 0, LonMax: 30, LonSteps: 3})
	require.NoError(t, err)

	radii := make([]float64, len(targets))
	for i := range radii {
		radii[i] = sphere.EarthRadius
	}
	tm, err := BuildTransfer(context.Background(), targets, radii, poles)
	require.NoError(t, err)
	assert.Equal(t, 3*len(targets), tm.Rows())
	assert.Equal(t, poles.Len(), tm.Cols())

	// Parallel construction must agree with a direct row evaluation.
	row := make([]float64, 3*poles.Len())
	TransferRow(targets[7], sphere.EarthRadius, poles, row)
	assert.Equal(t, row[:poles.Len()], tm.Row(7, Bx))
	assert.Equal(t, row[2*poles.Len():], tm.Row(7, Bz))
}

func TestBuildTransfer_CoLocatedSameShell(t *testing.T) {
	loc := domain.Location{Lat: 69.66, Lon: 18.94}
	poles := NewPoleGridAt([]domain.Location{loc}, sphere.EarthRadius)

	tm, err := BuildTransfer(context.Background(), []domain.Location{loc}, []float64{sphere.EarthRadius}, poles)
	require.NoError(t, err)
	for k := Bx; k <= Bz; k++ {
		v := tm.At(0, k, 0)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "component %d not finite", k)
		assert.Zero(t, v)
	}
}

func TestBuildTransfer_PoleDirectlyOverhead(t *testing.T) {
	loc := domain.Location{Lat: 69.66, Lon: 18.94}
	poles := NewPoleGridAt([]domain.Location{loc}, sphere.EarthRadius+IonosphereAltitude)

	tm, err := BuildTransfer(context.Background(), []domain.Location{loc}, []float64{sphere.EarthRadius}, poles)
	require.NoError(t, err)

	// No tangential field directly under the pole; the vertical field remains.
	assert.Zero(t, tm.At(0, Bx, 0))
	assert.Zero(t, tm.At(0, By, 0))
	bz := tm.At(0, Bz, 0)
	assert.False(t, math.IsNaN(bz) || math.IsInf(bz, 0))
	assert.NotZero(t, bz)
}

func TestTransferPair_NoNaNNearAntipode(t *testing.T) {
	bx, by, bz := transferPair(math.Pi, -math.Pi/2, sphere.EarthRadius, sphere.EarthRadius+IonosphereAltitude)
	for _, v := range []float64{bx, by, bz} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}
