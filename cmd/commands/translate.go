package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/lingo/clients/rpc"
	"github.com/dohr-michael/lingo/internal/a2a"
)

// NewTranslateCommand returns the translate subcommand.
func NewTranslateCommand() *cli.Command {
	return &cli.Command{
		Name:      "translate",
		Usage:     "Submit a document for translation and wait for the result",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "gateway",
				Usage: "Gateway base URL",
				Value: "http://127.0.0.1:5000",
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Target language code (empty = gateway default)",
			},
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Polling timeout in seconds",
				Value: 300,
			},
		},
		Action: runTranslate,
	}
}

func runTranslate(_ context.Context, cmd *cli.Command) error {
	text := cmd.Args().First()
	if text == "" {
		return fmt.Errorf("usage: lingo translate <text>")
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cmd.Int("timeout"))*time.Second)
	defer cancel()

	client := rpc.New(cmd.String("gateway"))

	task, err := client.SendMessage(ctx, text, cmd.String("language"))
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fmt.Fprintf(os.Stderr, "task: %s\n", task.ID)

	task, err = client.WaitForCompletion(ctx, task.ID, 3*time.Second)
	if err != nil {
		return fmt.Errorf("wait for result: %w", err)
	}

	if task.Status.State != a2a.StateCompleted {
		return fmt.Errorf("task ended in state %s", task.Status.State)
	}

	for _, artifact := range task.Artifacts {
		for _, part := range artifact.Parts {
			if part.Kind == a2a.PartKindText {
				fmt.Println(part.Text)
			}
		}
	}
	return nil
}
