// Package queue implements the durable work queue contract: at-least-once
// delivery with per-message leases. A received message stays invisible to
// other consumers until its lease expires or it is deleted.
package queue

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoMessage indicates the queue had nothing to deliver.
	ErrNoMessage = errors.New("no message available")

	// ErrLeaseLost indicates a delete arrived after the message's lease
	// expired and the message was handed to another consumer.
	ErrLeaseLost = errors.New("message lease lost")
)

// Delivery is one leased message. Receipt identifies the lease that
// delivered it; a delete with a stale receipt fails with ErrLeaseLost.
type Delivery struct {
	ID       string
	Receipt  string
	Body     []byte
	Attempts int
}

// Queue is the work distribution contract between gateway and worker.
type Queue interface {
	// Ensure makes the queue usable, creating it if needed. It is
	// idempotent so concurrent submissions can race on it safely.
	Ensure(ctx context.Context) error

	// Send enqueues a message body and returns its message id.
	Send(ctx context.Context, body []byte) (string, error)

	// Receive leases at most one message for the given duration.
	// Returns ErrNoMessage when the queue is empty. Messages whose
	// lease has expired are redelivered by later calls.
	Receive(ctx context.Context, lease time.Duration) (*Delivery, error)

	// Delete acknowledges a delivery and removes the message for good.
	Delete(ctx context.Context, d *Delivery) error
}
