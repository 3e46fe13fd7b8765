package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/vk/phasegrid/internal/cli"
)

// main is the entrypoint for the phasegrid application.
func main() {
	// Use a minimal logger until a command configures its own.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		stop()
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Commands report their own errors, so a non-zero status carries
// no message.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	code, err := cli.Run(ctx, args, outW, errW)
	if err != nil {
		return fmt.Errorf("dispatching command: %w", err)
	}
	if code != 0 {
		return &cli.ExitError{Code: code}
	}
	return nil
}
