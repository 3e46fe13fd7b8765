package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync/atomic"

	"github.com/spf13/afero"
	"github.com/vk/phasegrid/internal/ctxlog"
	"github.com/vk/phasegrid/internal/drawing"
	"github.com/vk/phasegrid/internal/graph"
	"github.com/vk/phasegrid/internal/pages"
	"github.com/vk/phasegrid/internal/scene"
	"github.com/vk/phasegrid/internal/stream"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	ctx    context.Context
	config *Config
	fs     afero.Fs

	graph *graph.Manager
	page  pages.Page   // nil when running a scene
	scene *scene.Scene // nil when running a page
	won   bool

	ticks      atomic.Uint64
	stream     *stream.Server
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It builds an isolated
// logger and a graph holding the configured page or scene. Scene files and
// snapshots go through fs.
func NewApp(outW io.Writer, cfg *Config, fs afero.Fs) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:   outW,
		logger: logger,
		ctx:    ctx,
		config: cfg,
		fs:     fs,
		graph:  graph.New(graph.Options{TimeStep: cfg.TimeStep, Workers: cfg.Workers}),
	}

	if cfg.ScenePath != "" {
		if err := a.loadScene(ctx); err != nil {
			return nil, err
		}
	} else if err := a.buildPage(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Graph ready.", "quantities", a.graph.Store().Len(), "bindings", a.graph.Bindings().Len())
	return a, nil
}

func (a *App) buildPage(ctx context.Context) error {
	page, err := pages.Build(ctx, a.config.Page, a.graph)
	if err != nil {
		return fmt.Errorf("failed to build page: %w", err)
	}
	a.page = page

	if f, ok := page.(*pages.Fourier); ok && a.config.FourierRows > 0 {
		rng := rand.New(rand.NewPCG(a.config.Seed, a.config.Seed))
		for i := 0; i < a.config.FourierRows; i++ {
			if _, err := f.AddRow(ctx, pages.RandomRow(rng)); err != nil {
				return fmt.Errorf("failed to add fourier row: %w", err)
			}
		}
	}
	a.logger.Info("Page built.", "page", page.Name(), "drawables", len(page.Drawables()))
	return nil
}

// loadScene declares the scene and binds every quantity it names so the
// stream publishes all of them.
func (a *App) loadScene(ctx context.Context) error {
	sc, err := scene.NewLoader(a.fs).Load(ctx, a.graph, a.config.ScenePath)
	if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}
	a.scene = sc
	a.graph.Clock()
	for _, addr := range sc.Order {
		if _, err := a.graph.Bind(sc.IDs[addr]); err != nil {
			return fmt.Errorf("binding %s: %w", addr, err)
		}
	}
	a.logger.Info("Scene loaded.", "files", len(sc.Files), "quantities", len(sc.Order))
	return nil
}

// Graph returns the application's graph. This is primarily for testing.
func (a *App) Graph() *graph.Manager {
	return a.graph
}

// Page returns the running page, or nil for a scene.
func (a *App) Page() pages.Page {
	return a.page
}

// Scene returns the loaded scene, or nil for a page.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// Ticks reports completed ticks. Safe to call from any goroutine.
func (a *App) Ticks() uint64 {
	return a.ticks.Load()
}

// Drawables returns the current shapes. Pages such as fourier change theirs
// as rows come and go.
func (a *App) Drawables() []drawing.Drawable {
	if a.page == nil {
		return nil
	}
	return a.page.Drawables()
}
