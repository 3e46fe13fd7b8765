package cli

import (
	"flag"
	"io"
	"log/slog"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/vk/phasegrid/internal/ctxlog"
	"github.com/vk/phasegrid/internal/stream"
)

// WatchCommand prints ticks from a running stream and can send inputs.
type WatchCommand struct {
	Meta
}

func (c *WatchCommand) Run(args []string) int {
	var (
		opts    stream.WatchOptions
		inputs  inputList
		verbose bool
	)
	flagSet := flag.NewFlagSet("watch", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&opts.URL, "url", "", "Stream URL, e.g. http://localhost:8090.")
	flagSet.StringVar(&opts.Namespace, "namespace", "/", "Socket.IO namespace.")
	flagSet.IntVar(&opts.Limit, "limit", 0, "Stop after N ticks (0 = until interrupted).")
	flagSet.BoolVar(&opts.InsecureSkipVerify, "insecure-skip-verify", false, "Skip TLS certificate verification.")
	flagSet.Var(&inputs, "set", "Input to send on connect, group.role=value. Repeatable.")
	flagSet.BoolVar(&verbose, "verbose", false, "Log connection events.")

	if err := flagSet.Parse(args); err != nil {
		c.Ui.Error(err.Error())
		return cli.RunResultHelp
	}
	if opts.URL == "" {
		c.Ui.Error("the -url flag is required")
		return cli.RunResultHelp
	}
	opts.Set = inputs

	ctx := c.Ctx
	if verbose {
		logger := slog.New(slog.NewTextHandler(c.Log, &slog.HandlerOptions{Level: slog.LevelDebug}))
		ctx = ctxlog.WithLogger(ctx, logger)
	}
	err := stream.Watch(ctx, opts, func(ev stream.TickEvent) {
		c.Ui.Output(ev.String())
	})
	if err != nil {
		c.Ui.Error(err.Error())
		return ExitFailure
	}
	return 0
}

func (c *WatchCommand) Help() string {
	helpText := `
Usage: phasegrid watch -url=URL [options]

  Connects to the stream of a "phasegrid run -stream-port=PORT" process
  and prints every tick it publishes. Inputs given with -set are sent
  once connected and applied on the next tick.

Options:

  -url=URL                Stream URL, e.g. http://localhost:8090.
  -namespace=NS           Socket.IO namespace. Defaults to /.
  -limit=N                Stop after N ticks.
  -set=GROUP.ROLE=VALUE   Input to send. Repeatable.
  -insecure-skip-verify   Skip TLS certificate verification.
  -verbose                Log connection events.
`
	return strings.TrimSpace(helpText)
}

func (c *WatchCommand) Synopsis() string {
	return "Print ticks from a running stream"
}
