package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
)

// Processor fits, predicts and scores one observation batch.
type Processor interface {
	Process(ctx context.Context, batch domain.ObservationBatch) (domain.ScoreSnapshot, error)
}

// SnapshotTransformer implements Transformer on top of a Processor.
type SnapshotTransformer struct {
	processor Processor
	logger    *slog.Logger
}

// NewTransformer creates a SnapshotTransformer.
func NewTransformer(processor Processor, logger *slog.Logger) *SnapshotTransformer {
	return &SnapshotTransformer{processor: processor, logger: logger}
}

// Transform implements Transformer.
func (t *SnapshotTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	batch, err := domain.ParseObservationBatch(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	snap, err := t.processor.Process(ctx, batch)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	t.logger.Debug("snapshot computed",
		"snapshot_id", snap.ID,
		"stations", snap.Stations,
		"points", len(snap.Points),
		"contours", len(snap.Contours),
		"peak_place", snap.PeakPlace,
	)
	return domain.SerializeSnapshot(snap)
}
