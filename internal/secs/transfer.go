package secs

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/sphere"
)

// mu0 is the permeability constant used by the reference transfer functions.
const mu0 = 1e-7

// degenerateTol is the angular (and normalized distance) threshold below
// which a target and a pole are treated as co-located.
const degenerateTol = 1e-7

// Component indexes the field components of a transfer matrix.
type Component int

const (
	Bx Component = iota // northward
	By                  // eastward
	Bz                  // downward
)

// TransferMatrix maps pole amplitudes to field components at a set of
// targets. Storage is flat, indexed [target][component][pole].
type TransferMatrix struct {
	targets int
	poles   int
	data    []float64
}

func newTransferMatrix(targets, poles int) *TransferMatrix {
	return &TransferMatrix{
		targets: targets,
		poles:   poles,
		data:    make([]float64, targets*3*poles),
	}
}

// Targets returns the number of target locations.
func (m *TransferMatrix) Targets() int { return m.targets }

// Rows returns 3 × targets.
func (m *TransferMatrix) Rows() int { return 3 * m.targets }

// Cols returns the number of poles.
func (m *TransferMatrix) Cols() int { return m.poles }

// At returns the influence of a unit current at pole p on component k at target t.
func (m *TransferMatrix) At(t int, k Component, p int) float64 {
	return m.data[(t*3+int(k))*m.poles+p]
}

// Row returns the pole coefficients of one component at one target. The
// slice aliases the matrix storage.
func (m *TransferMatrix) Row(t int, k Component) []float64 {
	start := (t*3 + int(k)) * m.poles
	return m.data[start : start+m.poles]
}

func (m *TransferMatrix) block(t int) []float64 {
	start := t * 3 * m.poles
	return m.data[start : start+3*m.poles]
}

// Horizontal returns the design matrix used for fitting: two rows per
// target (Bx, By), one column per pole. Bz is not observed.
func (m *TransferMatrix) Horizontal() *mat.Dense {
	a := mat.NewDense(2*m.targets, m.poles, nil)
	for t := range m.targets {
		a.SetRow(2*t, m.Row(t, Bx))
		a.SetRow(2*t+1, m.Row(t, By))
	}
	return a
}

// BuildTransfer computes the divergence-free SECS transfer matrix for the
// given targets. radii holds the radius in metres of each target.
func BuildTransfer(ctx context.Context, targets []domain.Location, radii []float64, poles *PoleGrid) (*TransferMatrix, error) {
	return buildTransfer(ctx, targets, radii, poles, 0)
}

func buildTransfer(ctx context.Context, targets []domain.Location, radii []float64, poles *PoleGrid, workers int) (*TransferMatrix, error) {
	if len(radii) != len(targets) {
		return nil, fmt.Errorf("%w: %d targets but %d radii", domain.ErrInvalidInputShape, len(targets), len(radii))
	}

	m := newTransferMatrix(len(targets), poles.Len())
	err := forEachChunk(ctx, len(targets), workers, func(lo, hi int) {
		for t := lo; t < hi; t++ {
			TransferRow(targets[t], radii[t], poles, m.block(t))
		}
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// TransferRow fills dst (length 3 × poles, laid out [component][pole]) with
// the transfer coefficients of a single target.
func TransferRow(target domain.Location, radius float64, poles *PoleGrid, dst []float64) {
	n := poles.Len()
	rP := poles.Radius()
	for p := range n {
		pole := poles.Location(p)
		theta, alpha := sphere.DistanceAndBearing(target.Lat, target.Lon, pole.Lat, pole.Lon)
		bx, by, bz := transferPair(theta, alpha, radius, rP)
		dst[p] = bx
		dst[n+p] = by
		dst[2*n+p] = bz
	}
}

// transferPair evaluates the Amm & Viljanen closed forms for one
// target/pole pair and rotates the tangential part into the local frame.
func transferPair(theta, alpha, rT, rP float64) (bx, by, bz float64) {
	cosT := math.Cos(theta)

	var br, bTheta float64
	if rT <= rP {
		// Target on or below the current sheet.
		x := rT / rP
		d := math.Sqrt(1 - 2*x*cosT + x*x)
		if d > degenerateTol {
			f := 1 / d
			br = mu0 / rT * (f - 1)
			bTheta = -mu0 / rT * (f*(x-cosT) + cosT)
		}
	} else {
		// Target above the current sheet.
		x := rP / rT
		f := 1 / math.Sqrt(1-2*x*cosT+x*x)
		br = mu0 * x / rT * (f - 1)
		bTheta = -mu0 / rT * ((rT-rP*cosT)/math.Sqrt(rT*rT-2*rT*rP*cosT+rP*rP) - 1)
	}

	sinT := math.Sin(theta)
	if sinT < degenerateTol {
		bTheta = 0
	} else {
		bTheta /= sinT
	}

	sinA, cosA := math.Sincos(alpha)
	return -bTheta * sinA, -bTheta * cosA, -br
}

// forEachChunk splits [0, n) into contiguous chunks and runs fn on each in
// parallel. workers <= 0 means GOMAXPROCS.
func forEachChunk(ctx context.Context, n, workers int, fn func(lo, hi int)) error {
	if n == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := (n + workers*4 - 1) / (workers * 4)
	if chunk < 1 {
		chunk = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(lo, hi)
			return nil
		})
	}
	return g.Wait()
}
