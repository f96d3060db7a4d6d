package secs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/sphere"
)

// Engine fits pole amplitudes to observations and predicts the field on
// arbitrary target grids.
//
// An Engine is not safe for concurrent use: Fit must not run concurrently
// with Predict or another Fit on the same instance.
type Engine struct {
	poles   *PoleGrid
	solver  Solver
	workers int

	amplitudes []float64
	fitted     bool

	// Design matrix of the last fit, reused while station positions repeat.
	cacheKey []stationKey
	cacheA   *mat.Dense
}

type stationKey struct {
	lat, lon, alt float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds the goroutines used for matrix construction. Zero or
// negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// NewEngine creates an engine over a fixed pole grid.
func NewEngine(poles *PoleGrid, solver Solver, opts ...Option) (*Engine, error) {
	if poles == nil || poles.Len() == 0 {
		return nil, errors.New("engine needs a non-empty pole grid")
	}
	if solver == nil {
		return nil, errors.New("engine needs a solver")
	}
	e := &Engine{poles: poles, solver: solver}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Poles returns the engine's pole grid.
func (e *Engine) Poles() *PoleGrid { return e.poles }

// Fitted reports whether a fit has succeeded.
func (e *Engine) Fitted() bool { return e.fitted }

// Amplitudes returns a copy of the fitted amplitude vector, or nil before
// the first successful fit.
func (e *Engine) Amplitudes() []float64 {
	if !e.fitted {
		return nil
	}
	return slices.Clone(e.amplitudes)
}

// Fit solves for the pole amplitudes that best explain the observed
// horizontal field. An empty observation set yields all-zero amplitudes.
// On error the previous amplitudes are kept.
func (e *Engine) Fit(ctx context.Context, obs []domain.Observation) error {
	if err := domain.ValidateObservations(obs); err != nil {
		return err
	}

	if len(obs) == 0 {
		e.amplitudes = make([]float64, e.poles.Len())
		e.fitted = true
		return nil
	}

	a, err := e.designMatrix(ctx, obs)
	if err != nil {
		return err
	}

	b := mat.NewVecDense(2*len(obs), nil)
	for i, o := range obs {
		b.SetVec(2*i, o.I)
		b.SetVec(2*i+1, o.J)
	}

	x, err := e.solver.Solve(a, b)
	if err != nil {
		return fmt.Errorf("solve amplitudes: %w", err)
	}

	amps := make([]float64, e.poles.Len())
	for i := range amps {
		amps[i] = x.AtVec(i)
	}
	if floats.HasNaN(amps) || math.IsInf(floats.Sum(amps), 0) {
		return fmt.Errorf("%w: non-finite amplitudes", domain.ErrNumericalInstability)
	}

	e.amplitudes = amps
	e.fitted = true
	return nil
}

func (e *Engine) designMatrix(ctx context.Context, obs []domain.Observation) (*mat.Dense, error) {
	key := make([]stationKey, len(obs))
	for i, o := range obs {
		key[i] = stationKey{lat: o.Lat, lon: o.Lon, alt: o.Alt}
	}
	if e.cacheA != nil && slices.Equal(key, e.cacheKey) {
		return e.cacheA, nil
	}

	locs := make([]domain.Location, len(obs))
	radii := make([]float64, len(obs))
	for i, o := range obs {
		locs[i] = o.Location()
		radii[i] = sphere.EarthRadius + o.Alt
	}
	tm, err := buildTransfer(ctx, locs, radii, e.poles, e.workers)
	if err != nil {
		return nil, fmt.Errorf("observation transfer matrix: %w", err)
	}

	e.cacheKey, e.cacheA = key, tm.Horizontal()
	return e.cacheA, nil
}

// Predict evaluates the fitted field at ground level for every target.
// Coordinates are rounded to 2 decimals and field components to whole
// nanotesla. Transfer rows are computed per target and discarded, so
// memory stays proportional to the pole count.
func (e *Engine) Predict(ctx context.Context, targets []domain.Location) ([]domain.FieldVector, error) {
	if !e.fitted {
		return nil, fmt.Errorf("%w: predict called before a successful fit", domain.ErrInvalidModelState)
	}

	n := e.poles.Len()
	amps := e.amplitudes
	out := make([]domain.FieldVector, len(targets))

	err := forEachChunk(ctx, len(targets), e.workers, func(lo, hi int) {
		row := make([]float64, 3*n)
		for t := lo; t < hi; t++ {
			TransferRow(targets[t], sphere.EarthRadius, e.poles, row)
			out[t] = domain.FieldVector{
				Lon: roundTo(targets[t].Lon, 2),
				Lat: roundTo(targets[t].Lat, 2),
				Bx:  roundTo(floats.Dot(row[:n], amps), 0),
				By:  roundTo(floats.Dot(row[n:2*n], amps), 0),
				Bz:  roundTo(floats.Dot(row[2*n:], amps), 0),
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}
