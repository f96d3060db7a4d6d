package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/aurora-oval-service/internal/contour"
	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/observability"
	"github.com/couchcryptid/aurora-oval-service/internal/oval"
	"github.com/couchcryptid/aurora-oval-service/internal/secs"
	"github.com/couchcryptid/aurora-oval-service/internal/synthetic"
)

type options struct {
	peak         float64
	noise        float64
	seed         uint64
	observations string
	batch        int

	solver  string
	epsilon float64
	coarse  bool

	geojsonOut string
	pngOut     string
	verbose    bool
}

// coarseGrid keeps runs fast by covering only northern Scandinavia.
var coarseGrid = secs.GridSpec{LatMin: 55, LatMax: 80, LatSteps: 11, LonMin: -10, LonMax: 50, LonSteps: 13}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "evaluate",
		Short:         "Fit, score and contour one magnetometer snapshot offline",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return evaluate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.peak, "peak", 400, "synthetic electrojet peak disturbance in nT")
	f.Float64Var(&opts.noise, "noise", 0, "Gaussian noise in nT added to each synthetic component")
	f.Uint64Var(&opts.seed, "seed", 1, "noise seed")
	f.StringVar(&opts.observations, "observations", "", "read batches from a JSON fixture instead of the synthetic jet")
	f.IntVar(&opts.batch, "batch", 0, "index of the fixture batch to evaluate")
	f.StringVar(&opts.solver, "solver", "tikhonov", "amplitude solver: tikhonov or svd")
	f.Float64Var(&opts.epsilon, "epsilon", secs.DefaultEpsilon, "regularization fraction")
	f.BoolVar(&opts.coarse, "coarse", false, "use a small pole and prediction grid over Scandinavia")
	f.StringVar(&opts.geojsonOut, "geojson", "", "write contours as a GeoJSON FeatureCollection to this path")
	f.StringVar(&opts.pngOut, "png", "", "write a score map PNG to this path")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func evaluate(ctx context.Context, w io.Writer, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	batch, err := loadBatch(ctx, opts)
	if err != nil {
		return err
	}

	cfg := oval.DefaultConfig()
	cfg.Solver = opts.solver
	cfg.Epsilon = opts.epsilon
	if opts.coarse {
		cfg.PoleGrid = coarseGrid
		cfg.PredictGrid = coarseGrid
	}
	svc, err := oval.NewService(cfg, nil, nil, observability.NewUnregisteredMetrics(), logger)
	if err != nil {
		return err
	}

	start := time.Now()
	snap, err := svc.Process(ctx, batch)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Fprintf(w, "batch %s: %d stations, %d scored points, %d contours in %s\n",
		snap.ID, snap.Stations, len(snap.Points), len(snap.Contours), elapsed.Round(time.Millisecond))
	if snap.Peak != nil {
		fmt.Fprintf(w, "peak score %.2f at %.2f°N %.2f°E\n", snap.Peak.Score, snap.Peak.Lat, snap.Peak.Lon)
	}
	for _, c := range snap.Contours {
		fmt.Fprintf(w, "  %-5s threshold %.3f: %d rings, %d outer vertices\n",
			c.Hemisphere, c.Threshold, len(c.Polygon), len(c.Polygon[0]))
	}

	if opts.geojsonOut != "" {
		data, err := json.MarshalIndent(contour.FeatureCollection(snap.Contours), "", "  ")
		if err != nil {
			return fmt.Errorf("encode geojson: %w", err)
		}
		if err := os.WriteFile(opts.geojsonOut, data, 0o644); err != nil {
			return fmt.Errorf("write geojson: %w", err)
		}
		fmt.Fprintf(w, "wrote %s\n", opts.geojsonOut)
	}
	if opts.pngOut != "" {
		points, err := batch.Points()
		if err != nil {
			return err
		}
		if err := renderMap(opts.pngOut, snap, points); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote %s\n", opts.pngOut)
	}
	return nil
}

func loadBatch(ctx context.Context, opts *options) (domain.ObservationBatch, error) {
	if opts.observations != "" {
		data, err := os.ReadFile(opts.observations)
		if err != nil {
			return domain.ObservationBatch{}, fmt.Errorf("read observations: %w", err)
		}
		var batches []domain.ObservationBatch
		if err := json.Unmarshal(data, &batches); err != nil {
			return domain.ObservationBatch{}, fmt.Errorf("decode observations: %w", err)
		}
		if opts.batch < 0 || opts.batch >= len(batches) {
			return domain.ObservationBatch{}, fmt.Errorf("batch %d out of range: fixture has %d batches", opts.batch, len(batches))
		}
		return batches[opts.batch], nil
	}

	jet := synthetic.DefaultElectrojet()
	jet.PeakNT = opts.peak
	jet.Noise = opts.noise
	jet.Seed = opts.seed
	obs, err := jet.Observations(ctx, synthetic.Network())
	if err != nil {
		return domain.ObservationBatch{}, err
	}
	return domain.NewObservationBatch(fmt.Sprintf("synthetic-%gnT", opts.peak), time.Now().UTC(), obs), nil
}
