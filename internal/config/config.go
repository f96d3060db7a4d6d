package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/aurora-oval-service/internal/contour"
	"github.com/couchcryptid/aurora-oval-service/internal/secs"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// SECS model.
	PoleGrid     secs.GridSpec
	PoleAltitude float64
	Epsilon      float64
	Solver       string
	PredictGrid  secs.GridSpec

	// Output.
	ScoreScale float64
	Contour    contour.Options

	// Access control.
	Owner             string
	AuthorizedCallers []string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
	MapboxRateLimit float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	p := &parser{}
	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "magnetometer-observations"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "aurora-oval-scores"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "aurora-oval"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		PoleGrid:     p.grid("SECS_POLE", secs.DefaultPoleSpec),
		PoleAltitude: p.float("SECS_POLE_ALTITUDE", secs.IonosphereAltitude),
		Epsilon:      p.float("SECS_EPSILON", secs.DefaultEpsilon),
		Solver:       strings.ToLower(sharedcfg.EnvOrDefault("SECS_SOLVER", "tikhonov")),
		PredictGrid:  p.grid("PREDICT", secs.DefaultPredictionSpec),

		ScoreScale: p.float("SCORE_SCALE", 1000),
		Contour: contour.Options{
			CellDeg:    p.float("CONTOUR_CELL_DEG", 1),
			Sigma:      p.float("CONTOUR_SIGMA", 1.5),
			Levels:     p.int("CONTOUR_LEVELS", 3),
			Thresholds: p.floats("CONTOUR_THRESHOLDS"),
			Simplify:   p.float("CONTOUR_SIMPLIFY", 0),
		},

		Owner:             os.Getenv("OVAL_OWNER"),
		AuthorizedCallers: splitList(os.Getenv("OVAL_AUTHORIZED_CALLERS")),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: p.int("MAPBOX_CACHE_SIZE", 1000),
		MapboxRateLimit: p.float("MAPBOX_RATE_LIMIT", 5),
	}
	if p.err != nil {
		return nil, p.err
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if err := cfg.validateModel(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validateModel() error {
	switch {
	case c.Epsilon < 0:
		return errors.New("invalid SECS_EPSILON: must not be negative")
	case c.Solver != "tikhonov" && c.Solver != "svd":
		return fmt.Errorf("invalid SECS_SOLVER %q: want tikhonov or svd", c.Solver)
	case c.PoleAltitude <= 0:
		return errors.New("invalid SECS_POLE_ALTITUDE: must be positive")
	case c.PoleGrid.LatSteps <= 0 || c.PoleGrid.LonSteps <= 0:
		return errors.New("invalid SECS_POLE_LAT_STEPS or SECS_POLE_LON_STEPS: must be positive")
	case c.PredictGrid.LatSteps <= 0 || c.PredictGrid.LonSteps <= 0:
		return errors.New("invalid PREDICT_LAT_STEPS or PREDICT_LON_STEPS: must be positive")
	case c.ScoreScale <= 0:
		return errors.New("invalid SCORE_SCALE: must be positive")
	case c.Contour.CellDeg <= 0:
		return errors.New("invalid CONTOUR_CELL_DEG: must be positive")
	case c.Contour.Sigma < 0:
		return errors.New("invalid CONTOUR_SIGMA: must not be negative")
	case c.Contour.Levels < 0:
		return errors.New("invalid CONTOUR_LEVELS: must not be negative")
	case c.MapboxCacheSize <= 0:
		return errors.New("invalid MAPBOX_CACHE_SIZE: must be positive")
	case c.MapboxRateLimit <= 0:
		return errors.New("invalid MAPBOX_RATE_LIMIT: must be positive")
	}
	return nil
}

// parser reads typed values and keeps the first error so Load can build
// the whole struct in one expression.
type parser struct {
	err error
}

func (p *parser) float(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" || p.err != nil {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.err = fmt.Errorf("invalid %s", key)
		return def
	}
	return v
}

func (p *parser) int(key string, def int) int {
	s := os.Getenv(key)
	if s == "" || p.err != nil {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.err = fmt.Errorf("invalid %s", key)
		return def
	}
	return v
}

func (p *parser) floats(key string) []float64 {
	parts := splitList(os.Getenv(key))
	if len(parts) == 0 || p.err != nil {
		return nil
	}
	out := make([]float64, 0, len(parts))
	for _, s := range parts {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			p.err = fmt.Errorf("invalid %s", key)
			return nil
		}
		out = append(out, v)
	}
	return out
}

func (p *parser) grid(prefix string, def secs.GridSpec) secs.GridSpec {
	return secs.GridSpec{
		LatMin:   p.float(prefix+"_LAT_MIN", def.LatMin),
		LatMax:   p.float(prefix+"_LAT_MAX", def.LatMax),
		LatSteps: p.int(prefix+"_LAT_STEPS", def.LatSteps),
		LonMin:   p.float(prefix+"_LON_MIN", def.LonMin),
		LonMax:   p.float(prefix+"_LON_MAX", def.LonMax),
		LonSteps: p.int(prefix+"_LON_STEPS", def.LonSteps),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
