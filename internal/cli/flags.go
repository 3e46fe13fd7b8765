package cli

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/phasegrid/internal/app"
	"github.com/vk/phasegrid/internal/graph"
	"github.com/vk/phasegrid/internal/pages"
	"github.com/vk/phasegrid/internal/quantity"
)

// graphFlags are shared by the commands that build a graph.
type graphFlags struct {
	page      string
	scene     string
	rows      int
	seed      uint64
	timeStep  float64
	workers   int
	logLevel  string
	logFormat string
}

func (g *graphFlags) register(fs *flag.FlagSet, defaultLogLevel string) {
	fs.StringVar(&g.page, "page", "", fmt.Sprintf("Page to build: %s. Defaults to %s unless --scene is set.", strings.Join(pages.Names(), ", "), pages.SimpleName))
	fs.StringVar(&g.scene, "scene", "", "Path to a scene .hcl file or a directory of them.")
	fs.IntVar(&g.rows, "rows", 0, "Random rows to add to the fourier page.")
	fs.Uint64Var(&g.seed, "seed", 1, "Seed for random fourier rows.")
	fs.Float64Var(&g.timeStep, "time-step", graph.DefaultTimeStep, "Clock advance per tick. Negative freezes the clock.")
	fs.IntVar(&g.workers, "workers", 1, "Parallel evaluators per wave.")
	fs.StringVar(&g.logLevel, "log-level", defaultLogLevel, "Set the logging level. Options: "+strings.Join(app.LogLevels, ", ")+".")
	fs.StringVar(&g.logFormat, "log-format", "text", "Log output format. Options: "+strings.Join(app.LogFormats, ", ")+".")
}

// config fills the graph part of an app config.
func (g *graphFlags) config() app.Config {
	page := g.page
	if page == "" && g.scene == "" {
		page = pages.SimpleName
	}
	return app.Config{
		Page:        page,
		ScenePath:   g.scene,
		FourierRows: g.rows,
		Seed:        g.seed,
		TimeStep:    g.timeStep,
		Workers:     g.workers,
		LogLevel:    g.logLevel,
		LogFormat:   g.logFormat,
	}
}

// inputList collects repeated --set flags of the form group.role=value.
type inputList []graph.Input

func (l *inputList) String() string {
	parts := make([]string, len(*l))
	for i, in := range *l {
		parts[i] = in.String()
	}
	return strings.Join(parts, ", ")
}

func (l *inputList) Set(raw string) error {
	in, err := parseInput(raw)
	if err != nil {
		return err
	}
	*l = append(*l, in)
	return nil
}

// parseInput reads group.role=value. A bare role addresses the global group.
func parseInput(raw string) (graph.Input, error) {
	key, val, ok := strings.Cut(raw, "=")
	if !ok {
		return graph.Input{}, fmt.Errorf("input %q: expected group.role=value", raw)
	}
	addr, err := quantity.ParseAddress(strings.TrimSpace(key), quantity.Global)
	if err != nil {
		return graph.Input{}, fmt.Errorf("input %q: %w", raw, err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return graph.Input{}, fmt.Errorf("input %q: invalid value: %w", raw, err)
	}
	return graph.Input{Group: addr.Group, Role: quantity.Role(addr.Name), Value: v}, nil
}
