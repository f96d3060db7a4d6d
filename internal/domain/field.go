package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// FieldVector is the predicted disturbance field at one grid point.
type FieldVector struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
	Bx  float64 `json:"bx"`
	By  float64 `json:"by"`
	Bz  float64 `json:"bz"`
}

// ScorePoint is one cell of the sparse auroral score grid.
type ScorePoint struct {
	Lon   float64 `json:"lon"`
	Lat   float64 `json:"lat"`
	Score float64 `json:"score"`
}

// Hemisphere tags a contour with the cap it was extracted from.
type Hemisphere string

const (
	North Hemisphere = "north"
	South Hemisphere = "south"
)

// Contour is one iso-score polygon of the oval. Polygon[0] is the outer
// ring and any further rings are holes.
type Contour struct {
	Threshold  float64     `json:"threshold"`
	Hemisphere Hemisphere  `json:"hemisphere"`
	Polygon    orb.Polygon `json:"polygon"`
}

// ScoreSnapshot is the output of one fit/predict/score pass.
type ScoreSnapshot struct {
	ID          string       `json:"id"`
	ObservedAt  time.Time    `json:"observed_at"`
	ProcessedAt time.Time    `json:"processed_at"`
	Stations    int          `json:"stations"`
	Points      []ScorePoint `json:"points"`
	Scale       float64      `json:"scale"`
	Encoded     []uint16     `json:"encoded"`
	Peak        *ScorePoint  `json:"peak,omitempty"`
	PeakPlace   string       `json:"peak_place,omitempty"`
	Contours    []Contour    `json:"contours,omitempty"`
}
