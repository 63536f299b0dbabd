package commands

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/lingo/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "lingo",
		Usage: "Asynchronous document translation service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewGatewayCommand(),
			NewWorkerCommand(),
			NewTranslateCommand(),
			NewStatusCommand(),
		},
	}
}

// loadConfig applies the shared --debug and --config flags.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	return config.Load(cmd.String("config"))
}
