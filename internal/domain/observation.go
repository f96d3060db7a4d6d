package domain

import (
	"context"
	"fmt"
	"math"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Location is a WGS-84 latitude/longitude pair in degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Observation is one station reading of the disturbance field.
type Observation struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
	I   float64 `json:"i"`
	J   float64 `json:"j"`
	K   float64 `json:"k,omitempty"`
	Alt float64 `json:"alt,omitempty"` // metres above the surface
}

// Location returns the observation's position.
func (o Observation) Location() Location {
	return Location{Lat: o.Lat, Lon: o.Lon}
}

// ObservationBatch is a network snapshot in the parallel-array wire shape.
type ObservationBatch struct {
	ID         string    `json:"id"`
	ObservedAt time.Time `json:"observed_at"`
	Lon        []float64 `json:"lon"`
	Lat        []float64 `json:"lat"`
	I          []float64 `json:"i"`
	J          []float64 `json:"j"`
	K          []float64 `json:"k,omitempty"`
	Alt        []float64 `json:"alt,omitempty"`
}

// Points validates the array lengths and returns one Observation per station.
// K and Alt may be omitted; when present they must match the other arrays.
func (b ObservationBatch) Points() ([]Observation, error) {
	n := len(b.Lon)
	if len(b.Lat) != n || len(b.I) != n || len(b.J) != n {
		return nil, fmt.Errorf("%w: lon=%d lat=%d i=%d j=%d",
			ErrInvalidInputShape, len(b.Lon), len(b.Lat), len(b.I), len(b.J))
	}
	if b.K != nil && len(b.K) != n {
		return nil, fmt.Errorf("%w: k=%d, want %d", ErrInvalidInputShape, len(b.K), n)
	}
	if b.Alt != nil && len(b.Alt) != n {
		return nil, fmt.Errorf("%w: alt=%d, want %d", ErrInvalidInputShape, len(b.Alt), n)
	}

	points := make([]Observation, n)
	for i := range n {
		points[i] = Observation{Lon: b.Lon[i], Lat: b.Lat[i], I: b.I[i], J: b.J[i]}
		if b.K != nil {
			points[i].K = b.K[i]
		}
		if b.Alt != nil {
			points[i].Alt = b.Alt[i]
		}
	}
	return points, nil
}

// NewObservationBatch flattens observations into the wire shape.
func NewObservationBatch(id string, observedAt time.Time, points []Observation) ObservationBatch {
	b := ObservationBatch{
		ID:         id,
		ObservedAt: observedAt,
		Lon:        make([]float64, len(points)),
		Lat:        make([]float64, len(points)),
		I:          make([]float64, len(points)),
		J:          make([]float64, len(points)),
		K:          make([]float64, len(points)),
	}
	for i, p := range points {
		b.Lon[i], b.Lat[i], b.I[i], b.J[i], b.K[i] = p.Lon, p.Lat, p.I, p.J, p.K
	}
	return b
}

// ValidateObservations rejects points with NaN or infinite values.
func ValidateObservations(points []Observation) error {
	for i, p := range points {
		for _, v := range [...]float64{p.Lon, p.Lat, p.I, p.J, p.Alt} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: observation %d has a non-finite value", ErrInvalidInputShape, i)
			}
		}
		if p.Lat < -90 || p.Lat > 90 {
			return fmt.Errorf("%w: observation %d latitude %.4f out of range", ErrInvalidInputShape, i, p.Lat)
		}
	}
	return nil
}
