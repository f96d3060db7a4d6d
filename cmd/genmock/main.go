// Command genmock generates the observation batch fixture used by the
// pipeline and integration tests. Each batch is the synthetic station
// network under the default westward electrojet, scaled to one of the
// requested peak disturbances and stamped one interval apart.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/observation_batches.json \
//	  -peaks 0,200,400 \
//	  -start 2026-03-10T21:00:00Z
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/synthetic"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the JSON fixture")
	peaks := flag.String("peaks", "0,200,400", "comma-separated peak disturbances in nT, one batch each")
	start := flag.String("start", "2026-03-10T21:00:00Z", "observation time of the first batch (RFC3339)")
	interval := flag.Duration("interval", time.Minute, "time between batches")
	noise := flag.Float64("noise", 0, "Gaussian noise in nT added to each component")
	seed := flag.Uint64("seed", 1, "noise seed")
	prefix := flag.String("id-prefix", "jet", "batch ID prefix")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("-out is required")
	}

	t0, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	levels, err := parsePeaks(*peaks)
	if err != nil {
		return err
	}

	clock := clockwork.NewFakeClockAt(t0.UTC())
	stations := synthetic.Network()

	batches := make([]domain.ObservationBatch, 0, len(levels))
	for i, peak := range levels {
		jet := synthetic.DefaultElectrojet()
		jet.PeakNT = peak
		jet.Noise = *noise
		jet.Seed = *seed + uint64(i)

		obs, err := jet.Observations(context.Background(), stations)
		if err != nil {
			return fmt.Errorf("batch %d: %w", i+1, err)
		}
		for j := range obs {
			obs[j].I = roundTenth(obs[j].I)
			obs[j].J = roundTenth(obs[j].J)
			obs[j].K = roundTenth(obs[j].K)
		}
		batches = append(batches, domain.NewObservationBatch(fmt.Sprintf("%s-%d", *prefix, i+1), clock.Now(), obs))
		clock.Advance(*interval)
	}

	if err := writeFixture(*out, batches); err != nil {
		return err
	}
	fmt.Printf("wrote %d batches of %d stations to %s\n", len(batches), len(stations), *out)
	return nil
}

func parsePeaks(s string) ([]float64, error) {
	var levels []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid peak %q", part)
		}
		levels = append(levels, v)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("-peaks is empty")
	}
	return levels, nil
}

func roundTenth(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}

// writeFixture writes one batch per line so diffs stay readable.
func writeFixture(path string, batches []domain.ObservationBatch) error {
	var b strings.Builder
	b.WriteString("[\n")
	for i, batch := range batches {
		line, err := json.Marshal(batch)
		if err != nil {
			return fmt.Errorf("marshal batch %s: %w", batch.ID, err)
		}
		b.Write(line)
		if i < len(batches)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]\n")
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
