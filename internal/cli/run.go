package cli

import (
	"flag"
	"io"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/vk/phasegrid/internal/app"
)

// RunCommand drives the tick loop of a page or scene.
type RunCommand struct {
	Meta
}

func (c *RunCommand) Run(args []string) int {
	var (
		g               graphFlags
		hz              int
		ticks           uint64
		streamPort      int
		healthcheckPort int
		snapshot        string
	)
	flagSet := flag.NewFlagSet("run", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	g.register(flagSet, "info")
	flagSet.IntVar(&hz, "hz", 60, "Tick rate.")
	flagSet.Uint64Var(&ticks, "ticks", 0, "Stop after N ticks (0 = run until interrupted).")
	flagSet.IntVar(&streamPort, "stream-port", 0, "Port for the Socket.IO stream. 0 is disabled.")
	flagSet.IntVar(&healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	flagSet.StringVar(&snapshot, "snapshot", "", "Write a PNG of the final frame to this path.")

	if err := flagSet.Parse(args); err != nil {
		c.Ui.Error(err.Error())
		return cli.RunResultHelp
	}

	raw := g.config()
	raw.Hz = hz
	raw.Ticks = ticks
	raw.StreamPort = streamPort
	raw.HealthcheckPort = healthcheckPort
	raw.SnapshotPath = snapshot
	cfg, err := app.NewConfig(raw)
	if err != nil {
		c.Ui.Error(err.Error())
		return ExitUsage
	}

	a, err := app.NewApp(c.Log, cfg, c.FS)
	if err != nil {
		c.Ui.Error(err.Error())
		return ExitFailure
	}
	if err := a.Run(c.Ctx); err != nil {
		c.Ui.Error(err.Error())
		return ExitFailure
	}
	return 0
}

func (c *RunCommand) Help() string {
	helpText := `
Usage: phasegrid run [options]

  Builds a page, or loads a scene, and advances it at a fixed tick rate
  until interrupted or until --ticks ticks have run. Readings can be
  streamed to "phasegrid watch" and the final frame saved as a PNG.

Options:

  -page=NAME              Page to build: simple, combination, game, fourier.
  -scene=PATH             Scene .hcl file or directory. Excludes -page.
  -rows=N                 Random rows for the fourier page.
  -seed=N                 Seed for random rows. Defaults to 1.
  -hz=N                   Tick rate. Defaults to 60.
  -ticks=N                Stop after N ticks. 0 runs until interrupted.
  -time-step=F            Clock advance per tick. Defaults to 0.02.
  -workers=N              Parallel evaluators per wave. Defaults to 1.
  -stream-port=PORT       Serve the Socket.IO stream on PORT.
  -healthcheck-port=PORT  Serve /health on PORT.
  -snapshot=PATH          Save the final frame as a PNG.
  -log-level=LEVEL        debug, info, warn or error.
  -log-format=FORMAT      text or json.
`
	return strings.TrimSpace(helpText)
}

func (c *RunCommand) Synopsis() string {
	return "Run a page or scene"
}
