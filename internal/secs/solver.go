package secs

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
)

// DefaultEpsilon is the reference regularization fraction.
const DefaultEpsilon = 0.1

// Solver recovers pole amplitudes x from A·x ≈ b. A must have at least one
// row; the engine handles the empty system itself.
type Solver interface {
	Solve(a *mat.Dense, b *mat.VecDense) (*mat.VecDense, error)
}

// NewSolver returns the solver registered under name ("tikhonov" or "svd").
func NewSolver(name string, epsilon float64) (Solver, error) {
	switch name {
	case "", "tikhonov":
		return TikhonovSolver{Epsilon: epsilon}, nil
	case "svd":
		return SVDSolver{Epsilon: epsilon}, nil
	default:
		return nil, fmt.Errorf("unknown solver %q", name)
	}
}

// TikhonovSolver solves the damped normal equations
//
//	(AᵗA + λI) x = Aᵗb,  λ = ε · max(diag(AᵗA))
//
// with a Gauss-Jordan inverse. Underdetermined systems use the equivalent
// dual form x = Aᵗ(AAᵗ + λI)⁻¹ b so the inverted matrix is rows × rows.
type TikhonovSolver struct {
	Epsilon float64
}

// Solve implements Solver.
func (s TikhonovSolver) Solve(a *mat.Dense, b *mat.VecDense) (*mat.VecDense, error) {
	rows, cols := a.Dims()
	if b.Len() != rows {
		return nil, fmt.Errorf("%w: %d rows but %d observations", domain.ErrInvalidInputShape, rows, b.Len())
	}
	lambda := s.Epsilon * maxNormalDiagonal(a)
	if rows >= cols {
		return solvePrimal(a, b, lambda)
	}
	return solveDual(a, b, lambda)
}

func solvePrimal(a *mat.Dense, b *mat.VecDense, lambda float64) (*mat.VecDense, error) {
	var ata mat.Dense
	ata.Mul(a.T(), a)
	addToDiagonal(&ata, lambda)

	inv, err := gaussJordanInverse(&ata)
	if err != nil {
		return nil, err
	}

	var atb mat.VecDense
	atb.MulVec(a.T(), b)

	var x mat.VecDense
	x.MulVec(inv, &atb)
	return &x, nil
}

func solveDual(a *mat.Dense, b *mat.VecDense, lambda float64) (*mat.VecDense, error) {
	var aat mat.Dense
	aat.Mul(a, a.T())
	addToDiagonal(&aat, lambda)

	inv, err := gaussJordanInverse(&aat)
	if err != nil {
		return nil, err
	}

	var y mat.VecDense
	y.MulVec(inv, b)

	var x mat.VecDense
	x.MulVec(a.T(), &y)
	return &x, nil
}

// maxNormalDiagonal returns max(diag(AᵗA)), the largest squared column norm.
func maxNormalDiagonal(a *mat.Dense) float64 {
	rows, cols := a.Dims()
	colSq := make([]float64, cols)
	for i := range rows {
		for j, v := range a.RawRowView(i) {
			colSq[j] += v * v
		}
	}
	return floats.Max(colSq)
}

func addToDiagonal(m *mat.Dense, v float64) {
	n, _ := m.Dims()
	for i := range n {
		m.Set(i, i, m.At(i, i)+v)
	}
}

// gaussJordanInverse inverts a square matrix with partial pivoting: the
// pivot is the largest magnitude entry of the active column at or below the
// diagonal.
func gaussJordanInverse(m *mat.Dense) (*mat.Dense, error) {
	n, _ := m.Dims()
	a := mat.DenseCopyOf(m)
	inv := mat.NewDense(n, n, nil)
	for i := range n {
		inv.Set(i, i, 1)
	}

	for col := range n {
		pivot, best := col, math.Abs(a.At(col, col))
		for r := col + 1; r < n; r++ {
			if v := math.Abs(a.At(r, col)); v > best {
				pivot, best = r, v
			}
		}
		if best == 0 {
			return nil, fmt.Errorf("%w: zero pivot in column %d", domain.ErrNumericalInstability, col)
		}
		if pivot != col {
			swapRows(a, pivot, col)
			swapRows(inv, pivot, col)
		}

		aRow, invRow := a.RawRowView(col), inv.RawRowView(col)
		scale := 1 / aRow[col]
		floats.Scale(scale, aRow)
		floats.Scale(scale, invRow)

		for r := range n {
			if r == col {
				continue
			}
			f := a.At(r, col)
			if f == 0 {
				continue
			}
			floats.AddScaled(a.RawRowView(r), -f, aRow)
			floats.AddScaled(inv.RawRowView(r), -f, invRow)
		}
	}
	return inv, nil
}

func swapRows(m *mat.Dense, i, j int) {
	ri, rj := m.RawRowView(i), m.RawRowView(j)
	for k := range ri {
		ri[k], rj[k] = rj[k], ri[k]
	}
}

// SVDSolver is a truncated pseudo-inverse: singular values below
// ε · s_max are discarded.
type SVDSolver struct {
	Epsilon float64
}

// Solve implements Solver.
func (s SVDSolver) Solve(a *mat.Dense, b *mat.VecDense) (*mat.VecDense, error) {
	rows, cols := a.Dims()
	if b.Len() != rows {
		return nil, fmt.Errorf("%w: %d rows but %d observations", domain.ErrInvalidInputShape, rows, b.Len())
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: singular value decomposition did not converge", domain.ErrNumericalInstability)
	}
	values := svd.Values(nil)
	if len(values) == 0 || values[0] == 0 {
		return nil, fmt.Errorf("%w: all singular values are zero", domain.ErrNumericalInstability)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cutoff := s.Epsilon * values[0]
	x := mat.NewVecDense(cols, nil)
	for i, sv := range values {
		// Values are sorted in decreasing order.
		if sv <= cutoff || sv == 0 {
			break
		}
		coef := mat.Dot(u.ColView(i), b) / sv
		x.AddScaledVec(x, coef, v.ColView(i))
	}
	return x, nil
}
