package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ParseObservationBatch decodes a source message. A batch without an ID gets
// a content hash; a batch without an observation time takes the message
// timestamp.
func ParseObservationBatch(raw RawEvent) (ObservationBatch, error) {
	var b ObservationBatch
	if err := json.Unmarshal(raw.Value, &b); err != nil {
		return ObservationBatch{}, fmt.Errorf("parse observation batch: %w", err)
	}
	if _, err := b.Points(); err != nil {
		return ObservationBatch{}, err
	}
	if b.ID == "" {
		b.ID = batchID(raw.Value)
	}
	if b.ObservedAt.IsZero() {
		b.ObservedAt = raw.Timestamp.UTC()
	}
	return b, nil
}

func batchID(value []byte) string {
	hash := sha256.Sum256(value)
	return "obs-" + hex.EncodeToString(hash[:8])
}

// SerializeSnapshot encodes a snapshot for the sink topic, keyed by its ID.
func SerializeSnapshot(s ScoreSnapshot) (OutputEvent, error) {
	value, err := json.Marshal(s)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return OutputEvent{
		Key:   []byte(s.ID),
		Value: value,
		Headers: map[string]string{
			"snapshot_id":  s.ID,
			"processed_at": s.ProcessedAt.Format(time.RFC3339),
			"stations":     strconv.Itoa(s.Stations),
		},
	}, nil
}
