package synthetic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/secs"
	"github.com/couchcryptid/aurora-oval-service/internal/sphere"
)

// Electrojet is a zonal current channel modelled by two rows of elementary
// currents of opposite sign on the ionospheric shell. The row at
// CenterLat+HalfWidth carries +A and the one at CenterLat−HalfWidth −A.
type Electrojet struct {
	CenterLat float64
	HalfWidth float64
	LonMin    float64
	LonMax    float64
	LonStep   float64
	// PeakNT is the horizontal field magnitude at the most disturbed station.
	PeakNT float64
	// Noise is the standard deviation in nT of Gaussian noise added to each
	// component. Seed makes the noise reproducible.
	Noise float64
	Seed  uint64
}

// DefaultElectrojet is a westward substorm jet centred on 70°N over
// northern Scandinavia.
func DefaultElectrojet() Electrojet {
	return Electrojet{
		CenterLat: 70,
		HalfWidth: 1,
		LonMin:    15,
		LonMax:    35,
		LonStep:   2.5,
		PeakNT:    400,
	}
}

// Poles returns the current locations and their unit signs.
func (e Electrojet) Poles() ([]domain.Location, []float64, error) {
	if e.LonStep <= 0 || e.LonMax < e.LonMin {
		return nil, nil, errors.New("electrojet longitude span is empty")
	}
	var locs []domain.Location
	var signs []float64
	for lon := e.LonMin; lon <= e.LonMax+1e-9; lon += e.LonStep {
		locs = append(locs,
			domain.Location{Lat: e.CenterLat + e.HalfWidth, Lon: lon},
			domain.Location{Lat: e.CenterLat - e.HalfWidth, Lon: lon},
		)
		signs = append(signs, 1, -1)
	}
	return locs, signs, nil
}

// Observations evaluates the jet at every station. The current amplitude is
// scaled so the largest horizontal disturbance equals PeakNT.
func (e Electrojet) Observations(ctx context.Context, stations []Station) ([]domain.Observation, error) {
	if len(stations) == 0 {
		return nil, nil
	}
	locs, signs, err := e.Poles()
	if err != nil {
		return nil, err
	}
	poles := secs.NewPoleGridAt(locs, sphere.EarthRadius+secs.IonosphereAltitude)

	targets := make([]domain.Location, len(stations))
	radii := make([]float64, len(stations))
	for i, s := range stations {
		targets[i] = s.Location()
		radii[i] = sphere.EarthRadius
	}
	tm, err := secs.BuildTransfer(ctx, targets, radii, poles)
	if err != nil {
		return nil, fmt.Errorf("electrojet transfer: %w", err)
	}

	obs := make([]domain.Observation, len(stations))
	var peak float64
	for i, s := range stations {
		o := domain.Observation{
			Lat: s.Lat,
			Lon: s.Lon,
			I:   floats.Dot(tm.Row(i, secs.Bx), signs),
			J:   floats.Dot(tm.Row(i, secs.By), signs),
			K:   floats.Dot(tm.Row(i, secs.Bz), signs),
		}
		peak = math.Max(peak, math.Hypot(o.I, o.J))
		obs[i] = o
	}
	if peak == 0 {
		return obs, nil
	}

	scale := e.PeakNT / peak
	var rng *rand.Rand
	if e.Noise > 0 {
		rng = rand.New(rand.NewPCG(e.Seed, e.Seed+1))
	}
	for i := range obs {
		obs[i].I *= scale
		obs[i].J *= scale
		obs[i].K *= scale
		if rng != nil {
			obs[i].I += rng.NormFloat64() * e.Noise
			obs[i].J += rng.NormFloat64() * e.Noise
			obs[i].K += rng.NormFloat64() * e.Noise
		}
	}
	return obs, nil
}
