// Package worker runs the single-consumer loop that drains the work
// queue, calls the translation provider and publishes durable results.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dohr-michael/lingo/internal/auditlog"
	"github.com/dohr-michael/lingo/internal/events"
	"github.com/dohr-michael/lingo/internal/jobs"
	"github.com/dohr-michael/lingo/internal/queue"
	"github.com/dohr-michael/lingo/internal/results"
	"github.com/dohr-michael/lingo/internal/translator"
)

// Config holds the loop's timing knobs.
type Config struct {
	// Lease is the visibility timeout for received messages. It must
	// exceed the worst-case provider latency.
	Lease time.Duration

	// PollInterval is how long to wait when the queue is empty.
	PollInterval time.Duration
}

func (c *Config) applyDefaults() {
	if c.Lease <= 0 {
		c.Lease = 5 * time.Minute
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
}

// Worker leases one message at a time, resolves it fully, then moves on.
type Worker struct {
	queue    queue.Queue
	results  results.Store
	provider translator.Provider
	audit    *auditlog.Log
	bus      *events.Bus
	cfg      Config
	now      func() time.Time
}

// Option configures optional collaborators.
type Option func(*Worker)

// WithAudit records lifecycle events in the audit log.
func WithAudit(l *auditlog.Log) Option {
	return func(w *Worker) { w.audit = l }
}

// WithBus publishes lifecycle events on the bus.
func WithBus(b *events.Bus) Option {
	return func(w *Worker) { w.bus = b }
}

// New creates a Worker.
func New(q queue.Queue, rs results.Store, p translator.Provider, cfg Config, opts ...Option) *Worker {
	cfg.applyDefaults()
	w := &Worker{
		queue:    q,
		results:  rs,
		provider: p,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls the queue until ctx is cancelled. The only fatal condition
// is failing to ensure the queue exists at startup; per-message errors
// never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.queue.Ensure(ctx); err != nil {
		return fmt.Errorf("worker startup: %w", err)
	}

	slog.Info("worker started", "lease", w.cfg.Lease, "poll_interval", w.cfg.PollInterval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped")
			return nil
		default:
		}

		if err := w.iterate(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			slog.Error("queue receive failed", "error", err)
			w.wait(ctx)
		}
	}
}

// iterate performs one loop step: lease at most one message and resolve it.
func (w *Worker) iterate(ctx context.Context) error {
	d, err := w.queue.Receive(ctx, w.cfg.Lease)
	if errors.Is(err, queue.ErrNoMessage) {
		w.wait(ctx)
		return nil
	}
	if err != nil {
		return err
	}

	w.process(ctx, d)
	return nil
}

func (w *Worker) process(ctx context.Context, d *queue.Delivery) {
	payload, err := jobs.Decode(d.Body)
	if err != nil {
		// Poison: a message that can never be processed must not block
		// the queue, so it is deleted without retry.
		slog.Error("poison message discarded", "message_id", d.ID, "error", err)
		if derr := w.queue.Delete(ctx, d); derr != nil {
			slog.Warn("failed to delete poison message", "message_id", d.ID, "error", derr)
		}
		w.record(ctx, "", auditlog.EventPoison, events.EventTaskPoison, err.Error())
		return
	}

	log := slog.With("task_id", payload.TaskID, "attempt", d.Attempts)

	// A terminal record means a previous attempt already finished and
	// only the acknowledgment was lost. Skip reprocessing.
	if existing, err := w.results.Get(ctx, payload.TaskID); err == nil && existing != nil {
		log.Info("result already recorded, skipping redelivered message")
		if derr := w.queue.Delete(ctx, d); derr != nil {
			log.Warn("failed to delete redelivered message", "error", derr)
		}
		return
	}

	log.Info("processing translation task", "target_language", payload.TargetLanguage)

	translated, err := w.provider.Translate(ctx, payload.DocumentContent, payload.TargetLanguage)
	if err != nil {
		// Leave the message leased; it becomes redelivery-eligible once
		// the lease expires.
		log.Error("translation failed, message left for redelivery", "error", err)
		w.record(ctx, payload.TaskID, auditlog.EventFailed, events.EventTaskFailed, err.Error())
		return
	}

	rec := &results.Record{
		TaskID:          payload.TaskID,
		Status:          results.StatusCompleted,
		ArtifactContent: translated,
		ProcessedAt:     results.UnixSeconds(w.now()),
	}

	// The result must be durably visible before the message disappears,
	// else a crash between the two loses the job silently.
	if err := w.results.Put(ctx, rec); err != nil {
		log.Error("failed to store result, message left for redelivery", "error", err)
		return
	}

	if err := w.queue.Delete(ctx, d); err != nil {
		// The result is stored; a redelivery will hit the idempotence
		// check and clean up.
		log.Warn("failed to delete processed message", "error", err)
	}

	log.Info("task completed")
	w.record(ctx, payload.TaskID, auditlog.EventCompleted, events.EventTaskCompleted,
		fmt.Sprintf("translated %d chars to %s", len(payload.DocumentContent), payload.TargetLanguage))
}

func (w *Worker) record(ctx context.Context, taskID string, ev auditlog.Event, et events.EventType, detail string) {
	if w.audit != nil {
		if err := w.audit.Append(ctx, taskID, ev, detail); err != nil {
			slog.Warn("audit append failed", "task_id", taskID, "error", err)
		}
	}
	if w.bus != nil {
		w.bus.Publish(events.NewEvent(et, events.SourceWorker, taskID, map[string]any{"detail": detail}))
	}
}

func (w *Worker) wait(ctx context.Context) {
	timer := time.NewTimer(w.cfg.PollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
