package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/aurora-oval-service/internal/domain"
	"github.com/couchcryptid/aurora-oval-service/internal/observability"
)

// BatchExtractor reads up to batchSize raw observation messages.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer turns one observation message into a serialized snapshot.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes snapshots to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline runs the extract, process, load loop one batch at a time.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil once a snapshot has been published.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no score snapshot has been published yet")
	}
	return nil
}

// Ready reports whether a snapshot has been published.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	b := backoff{current: initialBackoff}
	for ctx.Err() == nil {
		if !p.processBatch(ctx, &b) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// processBatch runs one cycle and returns false when the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, b *backoff) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return b.wait(ctx)
	}
	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	b.reset()

	loaded, ok := p.transformAndLoad(ctx, rawBatch, b)
	if !ok {
		return false
	}
	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// transformAndLoad processes each message in order, publishes the
// snapshots and commits offsets. A message that cannot be processed is
// logged, counted and committed so it is never retried.
func (p *Pipeline) transformAndLoad(ctx context.Context, rawBatch []domain.RawEvent, b *backoff) (int, bool) {
	out := make([]domain.OutputEvent, 0, len(rawBatch))
	done := make([]domain.RawEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		event, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			if ctx.Err() != nil {
				return 0, false
			}
			p.logger.Warn("observation batch skipped",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		out = append(out, event)
		done = append(done, raw)
	}

	if len(out) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, out); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(out))
		return 0, b.wait(ctx)
	}
	p.metrics.MessagesProduced.Add(float64(len(out)))

	for _, raw := range done {
		p.commit(ctx, raw)
	}
	return len(out), true
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// backoff doubles from initialBackoff up to maxBackoff between failed
// cycles and resets after a successful extract.
type backoff struct {
	current time.Duration
}

func (b *backoff) reset() { b.current = initialBackoff }

// wait sleeps for the current delay and advances it. It returns false when
// ctx ends first.
func (b *backoff) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	timer := time.NewTimer(b.current)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	b.current = min(2*b.current, maxBackoff)
	return true
}
