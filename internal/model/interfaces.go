package model

import (
	"context"
	"time"
)

// Provider fetches raw postings from one job board and maps them into the
// canonical shape. Normalize and ExtractDescription never fail: absent
// upstream fields become nil or "".
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]RawItem, error)
	Normalize(item RawItem) NormalizedPosting
	ExtractDescription(item RawItem) string
}

// BatchWriter persists one provider batch and reports where it landed.
type BatchWriter interface {
	Name() string
	WriteBatch(ctx context.Context, batch Batch) (location string, err error)
}

// SeenStore records which job_uids have been ingested before.
type SeenStore interface {
	HasSeen(ctx context.Context, jobUID string) (bool, error)
	MarkSeen(ctx context.Context, jobUID, source string) error
	Cleanup(ctx context.Context, olderThan time.Duration) error
	Close() error
}

// Notifier announces a completed provider batch.
type Notifier interface {
	Notify(ctx context.Context, summary BatchSummary) error
}
