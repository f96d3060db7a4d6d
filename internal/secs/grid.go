package secs

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/sphere"
)

// IonosphereAltitude is the reference height of the current sheet in metres.
const IonosphereAltitude = 110e3

// GridSpec describes a regular latitude/longitude lattice. Both ranges are
// inclusive of their endpoints.
type GridSpec struct {
	LatMin, LatMax float64
	LatSteps       int
	LonMin, LonMax float64
	LonSteps       int
}

// DefaultPoleSpec is the reference 50×50 pole lattice.
var DefaultPoleSpec = GridSpec{
	LatMin: 45, LatMax: 85, LatSteps: 50,
	LonMin: -180, LonMax: 179, LonSteps: 50,
}

// DefaultPredictionSpec is the reference prediction lattice.
var DefaultPredictionSpec = GridSpec{
	LatMin: 45, LatMax: 85, LatSteps: 37,
	LonMin: -180, LonMax: 179, LonSteps: 130,
}

// Size returns the number of grid points.
func (s GridSpec) Size() int {
	return s.LatSteps * s.LonSteps
}

// Linspace returns num evenly spaced values over [start, end].
func Linspace(start, end float64, num int) ([]float64, error) {
	switch {
	case num < 0:
		return nil, fmt.Errorf("linspace: negative count %d", num)
	case num == 0:
		return []float64{}, nil
	case num == 1:
		return []float64{start}, nil
	case end <= start:
		return nil, errors.New("linspace: end must be greater than start")
	}

	step := (end - start) / float64(num-1)
	out := make([]float64, num)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[num-1] = end
	return out, nil
}

// BuildGrid expands a spec into locations in latitude-major order.
func BuildGrid(spec GridSpec) ([]domain.Location, error) {
	lats, err := Linspace(spec.LatMin, spec.LatMax, spec.LatSteps)
	if err != nil {
		return nil, fmt.Errorf("latitude axis: %w", err)
	}
	lons, err := Linspace(spec.LonMin, spec.LonMax, spec.LonSteps)
	if err != nil {
		return nil, fmt.Errorf("longitude axis: %w", err)
	}

	grid := make([]domain.Location, 0, len(lats)*len(lons))
	for _, lat := range lats {
		for _, lon := range lons {
			grid = append(grid, domain.Location{Lat: lat, Lon: lon})
		}
	}
	return grid, nil
}

// PoleGrid is the fixed set of elementary current locations shared by every
// fit and prediction of one engine. It is never mutated after construction.
type PoleGrid struct {
	locations []domain.Location
	radius    float64
}

// NewPoleGrid builds the pole lattice at the given altitude above the mean
// Earth radius.
func NewPoleGrid(spec GridSpec, altitude float64) (*PoleGrid, error) {
	if spec.LatSteps <= 0 || spec.LonSteps <= 0 {
		return nil, errors.New("pole grid needs at least one latitude and one longitude step")
	}
	locs, err := BuildGrid(spec)
	if err != nil {
		return nil, fmt.Errorf("pole grid: %w", err)
	}
	return &PoleGrid{locations: locs, radius: sphere.EarthRadius + altitude}, nil
}

// NewPoleGridAt wraps explicit pole locations, mostly for tests and
// synthetic current systems.
func NewPoleGridAt(locations []domain.Location, radius float64) *PoleGrid {
	locs := make([]domain.Location, len(locations))
	copy(locs, locations)
	return &PoleGrid{locations: locs, radius: radius}
}

// Len returns the number of poles.
func (g *PoleGrid) Len() int { return len(g.locations) }

// Radius returns the shell radius of the poles in metres.
func (g *PoleGrid) Radius() float64 { return g.radius }

// Location returns pole i.
func (g *PoleGrid) Location(i int) domain.Location { return g.locations[i] }

// Locations returns a copy of the pole locations.
func (g *PoleGrid) Locations() []domain.Location {
	out := make([]domain.Location, len(g.locations))
	copy(out, g.locations)
	return out
}
