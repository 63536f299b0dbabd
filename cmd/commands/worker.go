package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/lingo/internal/auditlog"
	"github.com/dohr-michael/lingo/internal/events"
	"github.com/dohr-michael/lingo/internal/queue"
	"github.com/dohr-michael/lingo/internal/translator"
	"github.com/dohr-michael/lingo/internal/worker"
)

// NewWorkerCommand returns the worker subcommand.
func NewWorkerCommand() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Start a translation worker",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "admin-port",
				Usage: "Port for the worker's event/health endpoint (0 = disabled)",
			},
		},
		Action: runWorker,
	}
}

func runWorker(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.Translator.Endpoint == "" {
		return fmt.Errorf("translator.endpoint is not configured")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Queue.Addr,
		Password: cfg.Queue.Password,
		DB:       cfg.Queue.DB,
	})
	defer rdb.Close()

	q := queue.NewRedisQueue(rdb, cfg.Queue.Name)

	store, err := openResultStore(cfg, rdb)
	if err != nil {
		return err
	}

	audit, err := auditlog.Open(cfg.Audit.Path)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer audit.Close()

	provider := translator.NewHTTPProvider(
		cfg.Translator.Endpoint,
		cfg.Translator.Region,
		cfg.Translator.APIKey,
	)

	sweeper, err := worker.NewSweeper(store, cfg.Results.Retention.Duration(), cfg.Results.SweepSchedule)
	if err != nil {
		return fmt.Errorf("init sweeper: %w", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	// The bus is per-process; the admin endpoint is where this worker's
	// lifecycle events can be read.
	if port := cmd.Int("admin-port"); port > 0 {
		admin := worker.NewAdmin(fmt.Sprintf("127.0.0.1:%d", port), bus)
		go func() {
			if err := admin.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("worker admin failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			admin.Shutdown(shutdownCtx)
		}()
	}

	w := worker.New(q, store, provider, worker.Config{
		Lease:        cfg.Queue.Lease.Duration(),
		PollInterval: cfg.Queue.PollInterval.Duration(),
	}, worker.WithAudit(audit), worker.WithBus(bus))

	slog.Info("worker starting", "queue", cfg.Queue.Name, "lease", cfg.Queue.Lease.Duration())
	return w.Run(ctx)
}
