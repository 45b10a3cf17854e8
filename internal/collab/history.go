package collab

import (
	"context"
	"time"
)

// HistoryRecord is what gets persisted per finalized session:
// audio, text, the post-processed rewrite (if any), profile, duration.
type HistoryRecord struct {
	Audio      []float32
	Text       string
	Rewritten  string
	Profile    string
	DurationS  float64
	FinishedAt time.Time
}

// History is the external history-store collaborator. The durable
// relational/full-text store itself is explicitly out of scope for the
// core; this interface is all the core depends on.
type History interface {
	Save(ctx context.Context, rec HistoryRecord) error
}

// NoOpHistory discards every record; useful when no history collaborator
// is configured.
type NoOpHistory struct{}

func (NoOpHistory) Save(context.Context, HistoryRecord) error { return nil }
