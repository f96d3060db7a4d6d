// Package oval is the service boundary around the SECS engine. It owns the
// engine, the prediction grid and the latest score grid and contours, and
// gates every operation through the caller allow list.
package oval

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/aurora-oval-service/internal/contour"
	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/observability"
	"github.com/couchcryptid/aurora-oval-service/internal/scoring"
	"github.com/couchcryptid/aurora-oval-service/internal/secs"
)

// Config fixes the model for the lifetime of a Service.
type Config struct {
	PoleGrid     secs.GridSpec
	PoleAltitude float64
	Epsilon      float64
	Solver       string
	PredictGrid  secs.GridSpec
	ScoreScale   float64
	Contour      contour.Options
	// Workers bounds matrix construction goroutines; zero means GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the reference model.
func DefaultConfig() Config {
	return Config{
		PoleGrid:     secs.DefaultPoleSpec,
		PoleAltitude: secs.IonosphereAltitude,
		Epsilon:      secs.DefaultEpsilon,
		Solver:       "tikhonov",
		PredictGrid:  secs.DefaultPredictionSpec,
		ScoreScale:   scoring.DefaultScale,
		Contour:      contour.DefaultOptions(),
	}
}

// Service serializes fits (writers) against reads of the stored grid.
type Service struct {
	mu       sync.RWMutex
	engine   *secs.Engine
	targets  []domain.Location
	stations int
	latest   *prediction

	scale       float64
	contourOpts contour.Options

	auth     *Authorizer
	geocoder domain.Geocoder
	metrics  *observability.Metrics
	logger   *slog.Logger
}

type prediction struct {
	points   []domain.ScorePoint
	contours []domain.Contour
}

// NewService builds the pole grid, solver, engine and prediction grid. A nil
// geocoder disables peak labelling.
func NewService(cfg Config, auth *Authorizer, geocoder domain.Geocoder, metrics *observability.Metrics, logger *slog.Logger) (*Service, error) {
	poles, err := secs.NewPoleGrid(cfg.PoleGrid, cfg.PoleAltitude)
	if err != nil {
		return nil, err
	}
	solver, err := secs.NewSolver(cfg.Solver, cfg.Epsilon)
	if err != nil {
		return nil, err
	}
	engine, err := secs.NewEngine(poles, solver, secs.WithWorkers(cfg.Workers))
	if err != nil {
		return nil, err
	}
	targets, err := secs.BuildGrid(cfg.PredictGrid)
	if err != nil {
		return nil, fmt.Errorf("prediction grid: %w", err)
	}
	if auth == nil {
		auth = NewAuthorizer("", nil)
	}

	logger.Info("secs model ready",
		"poles", poles.Len(),
		"targets", len(targets),
		"solver", cfg.Solver,
		"epsilon", cfg.Epsilon,
	)

	return &Service{
		engine:      engine,
		targets:     targets,
		scale:       cfg.ScoreScale,
		contourOpts: cfg.Contour,
		auth:        auth,
		geocoder:    geocoder,
		metrics:     metrics,
		logger:      logger,
	}, nil
}

// FitObservations solves for new pole amplitudes. The stored score grid is
// left as it is until the next prediction.
func (s *Service) FitObservations(ctx context.Context, caller string, points []domain.Observation) error {
	if err := s.auth.Authorize(caller); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fit(ctx, points)
}

// FitPredict evaluates the fitted model on the prediction grid, scores and
// contours it, and stores the result.
func (s *Service) FitPredict(ctx context.Context, caller string) ([]domain.ScorePoint, error) {
	if err := s.auth.Authorize(caller); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.predict(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(p.points), nil
}

// Predict returns the stored score grid when useCache is set and one
// exists, and otherwise runs FitPredict.
func (s *Service) Predict(ctx context.Context, caller string, useCache bool) ([]domain.ScorePoint, error) {
	if useCache {
		if err := s.auth.Authorize(caller); err != nil {
			return nil, err
		}
		s.mu.RLock()
		latest := s.latest
		s.mu.RUnlock()
		if latest != nil {
			return slices.Clone(latest.points), nil
		}
	}
	return s.FitPredict(ctx, caller)
}

// Scores returns the stored grid quantized for the wire, along with the
// scale used.
func (s *Service) Scores(_ context.Context, caller string) ([]uint16, float64, error) {
	p, err := s.stored(caller)
	if err != nil {
		return nil, 0, err
	}
	return scoring.Encode(p.points, s.scale), s.scale, nil
}

// ScorePoints returns the stored score grid.
func (s *Service) ScorePoints(_ context.Context, caller string) ([]domain.ScorePoint, error) {
	p, err := s.stored(caller)
	if err != nil {
		return nil, err
	}
	return slices.Clone(p.points), nil
}

// Contours returns the stored contour polygons.
func (s *Service) Contours(_ context.Context, caller string) ([]domain.Contour, error) {
	p, err := s.stored(caller)
	if err != nil {
		return nil, err
	}
	return slices.Clone(p.contours), nil
}

func (s *Service) stored(caller string) (*prediction, error) {
	if err := s.auth.Authorize(caller); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, fmt.Errorf("%w: no score grid has been predicted", domain.ErrInvalidModelState)
	}
	return s.latest, nil
}

// AddCaller grants id access.
func (s *Service) AddCaller(_ context.Context, caller, id string) error {
	if err := s.auth.Add(caller, id); err != nil {
		return err
	}
	s.logger.Info("caller authorized", "by", caller, "caller_id", id)
	return nil
}

// RemoveCaller revokes id.
func (s *Service) RemoveCaller(_ context.Context, caller, id string) error {
	if err := s.auth.Remove(caller, id); err != nil {
		return err
	}
	s.logger.Info("caller revoked", "by", caller, "caller_id", id)
	return nil
}

// ListCallers returns the allow list.
func (s *Service) ListCallers(_ context.Context, caller string) ([]string, error) {
	return s.auth.List(caller)
}

// Fitted reports whether the engine holds amplitudes.
func (s *Service) Fitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Fitted()
}

// Process runs a full pass for one observation batch and returns the
// resulting snapshot. It is the trusted pipeline path and is not gated by
// the allow list.
func (s *Service) Process(ctx context.Context, batch domain.ObservationBatch) (domain.ScoreSnapshot, error) {
	points, err := batch.Points()
	if err != nil {
		return domain.ScoreSnapshot{}, err
	}

	s.mu.Lock()
	if err := s.fit(ctx, points); err != nil {
		s.mu.Unlock()
		return domain.ScoreSnapshot{}, err
	}
	p, err := s.predict(ctx)
	s.mu.Unlock()
	if err != nil {
		return domain.ScoreSnapshot{}, err
	}

	peak := scoring.Peak(p.points)
	return domain.ScoreSnapshot{
		ID:          batch.ID,
		ObservedAt:  batch.ObservedAt,
		ProcessedAt: domain.Now(),
		Stations:    len(points),
		Points:      slices.Clone(p.points),
		Scale:       s.scale,
		Encoded:     scoring.Encode(p.points, s.scale),
		Peak:        peak,
		PeakPlace:   domain.LabelPeak(ctx, peak, s.geocoder, s.logger),
		Contours:    slices.Clone(p.contours),
	}, nil
}

// fit must be called with mu held for writing.
func (s *Service) fit(ctx context.Context, points []domain.Observation) error {
	start := time.Now()
	if err := s.engine.Fit(ctx, points); err != nil {
		s.metrics.ModelErrors.WithLabelValues("fit").Inc()
		return fmt.Errorf("fit: %w", err)
	}
	s.metrics.FitDuration.Observe(time.Since(start).Seconds())
	s.metrics.StationsPerFit.Observe(float64(len(points)))
	s.stations = len(points)

	s.logger.Debug("amplitudes fitted", "stations", len(points), "duration", time.Since(start))
	return nil
}

// predict must be called with mu held for writing.
func (s *Service) predict(ctx context.Context) (*prediction, error) {
	start := time.Now()
	fields, err := s.engine.Predict(ctx, s.targets)
	if err != nil {
		s.metrics.ModelErrors.WithLabelValues("predict").Inc()
		return nil, fmt.Errorf("predict: %w", err)
	}
	points := scoring.Score(fields)

	contours, err := contour.Extract(points, s.contourOpts)
	if err != nil {
		s.metrics.ModelErrors.WithLabelValues("contour").Inc()
		return nil, fmt.Errorf("contour: %w", err)
	}

	s.latest = &prediction{points: points, contours: contours}
	s.metrics.PredictDuration.Observe(time.Since(start).Seconds())
	s.metrics.ScorePoints.Set(float64(len(points)))
	s.metrics.ContoursPerUpdate.Set(float64(len(contours)))

	s.logger.Debug("score grid updated",
		"stations", s.stations,
		"points", len(points),
		"contours", len(contours),
		"duration", time.Since(start),
	)
	return s.latest, nil
}
