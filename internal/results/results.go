// Package results persists the durable terminal outcome of a task,
// keyed by task id. Existence of a record is the signal that a task has
// terminated; status queries synthesize "working" for absent keys.
package results

import (
	"context"
	"time"
)

// Status is the terminal outcome recorded for a task.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is the durable source of truth for a finished task. The JSON
// shape matches the legacy wire format; A2A views are derived at read
// time.
type Record struct {
	TaskID          string  `json:"task_id"`
	Status          Status  `json:"status"`
	ArtifactContent string  `json:"artifact_content"`
	ProcessedAt     float64 `json:"processed_at"`
}

// UnixSeconds converts a time to the epoch-seconds form stored in records.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// Store is the result store contract. The worker is the sole writer;
// gateways only read.
type Store interface {
	// Put durably writes a record, overwriting any previous one for
	// the same task id.
	Put(ctx context.Context, rec *Record) error

	// Get returns the record for a task id, or nil with no error when
	// none exists yet.
	Get(ctx context.Context, taskID string) (*Record, error)

	// Purge removes records processed before the cutoff and returns
	// how many were dropped.
	Purge(ctx context.Context, olderThan time.Time) (int, error)
}
