package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/lingo/internal/auditlog"
	"github.com/dohr-michael/lingo/internal/config"
	"github.com/dohr-michael/lingo/internal/events"
	"github.com/dohr-michael/lingo/internal/gateway"
	"github.com/dohr-michael/lingo/internal/queue"
	"github.com/dohr-michael/lingo/internal/results"
)

// NewGatewayCommand returns the gateway subcommand.
func NewGatewayCommand() *cli.Command {
	return &cli.Command{
		Name:  "gateway",
		Usage: "Start the lingo gateway server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runGateway,
	}
}

func runGateway(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = int(cmd.Int("port"))
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

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	server := gateway.NewServer(gateway.Options{
		Host:            cfg.Gateway.Host,
		Port:            cfg.Gateway.Port,
		PublicURL:       cfg.Gateway.PublicURL,
		DefaultLanguage: cfg.Translator.DefaultLanguage,
		Queue:           q,
		Results:         store,
		Audit:           audit,
		Bus:             bus,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// openResultStore builds the configured result store backend.
func openResultStore(cfg *config.Config, rdb *redis.Client) (results.Store, error) {
	switch cfg.Results.Backend {
	case "file":
		return results.NewFileStore(cfg.Results.Dir), nil
	case "redis":
		if cfg.Results.Addr != cfg.Queue.Addr {
			rdb = redis.NewClient(&redis.Options{Addr: cfg.Results.Addr})
		}
		return results.NewRedisStore(rdb, cfg.Results.Retention.Duration()), nil
	default:
		return nil, fmt.Errorf("unknown results backend %q", cfg.Results.Backend)
	}
}
