package cli

import (
	"flag"
	"io"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/vk/phasegrid/internal/app"
)

// DescribeCommand prints the dependency tree after a few ticks.
type DescribeCommand struct {
	Meta
}

func (c *DescribeCommand) Run(args []string) int {
	var (
		g     graphFlags
		ticks uint64
	)
	flagSet := flag.NewFlagSet("describe", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	g.register(flagSet, "warn")
	flagSet.Uint64Var(&ticks, "ticks", 1, "Ticks to run before describing.")

	if err := flagSet.Parse(args); err != nil {
		c.Ui.Error(err.Error())
		return cli.RunResultHelp
	}

	raw := g.config()
	raw.Hz = 1
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
	if err := a.RunTicks(c.Ctx, ticks); err != nil {
		c.Ui.Error(err.Error())
		return ExitFailure
	}
	if err := a.Describe(c.Out); err != nil {
		c.Ui.Error(err.Error())
		return ExitFailure
	}
	return 0
}

func (c *DescribeCommand) Help() string {
	helpText := `
Usage: phasegrid describe [options]

  Builds a page or loads a scene, runs it for a few ticks without pacing
  and prints every group with its quantities, their values and what each
  dependent reads.

Options:

  -page=NAME          Page to build: simple, combination, game, fourier.
  -scene=PATH         Scene .hcl file or directory. Excludes -page.
  -rows=N             Random rows for the fourier page.
  -seed=N             Seed for random rows. Defaults to 1.
  -ticks=N            Ticks to run first. Defaults to 1.
  -time-step=F        Clock advance per tick. Defaults to 0.02.
  -workers=N          Parallel evaluators per wave. Defaults to 1.
  -log-level=LEVEL    debug, info, warn or error. Defaults to warn.
  -log-format=FORMAT  text or json.
`
	return strings.TrimSpace(helpText)
}

func (c *DescribeCommand) Synopsis() string {
	return "Print the dependency tree with current values"
}
