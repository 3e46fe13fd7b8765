package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vk/phasegrid/internal/ctxlog"
	"github.com/vk/phasegrid/internal/drawing"
	"github.com/vk/phasegrid/internal/pages"
	"github.com/vk/phasegrid/internal/stream"
)

// Run drives the tick loop at the configured rate until ctx is canceled or
// the tick limit is reached, then writes the snapshot if one is configured.
// Cancellation is a normal way to stop and is not reported as an error.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	if err := a.startStream(ctx); err != nil {
		return err
	}
	defer a.closeStream()

	a.logger.Info("🚀 Starting tick loop...", "hz", a.config.Hz, "ticks", a.config.Ticks)
	err := a.loop(ctx)
	if errors.Is(err, context.Canceled) {
		a.logger.Info("Tick loop canceled.", "ticks", a.Ticks())
		err = nil
	}
	if err != nil {
		return err
	}
	a.logger.Info("🏁 Tick loop finished.", "ticks", a.Ticks())

	if a.config.SnapshotPath != "" {
		if err := a.Snapshot(a.config.SnapshotPath); err != nil {
			return err
		}
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) loop(ctx context.Context) error {
	d := time.Second / time.Duration(a.config.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid hz: %d", a.config.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := a.step(ctx); err != nil {
				return err
			}
			if a.config.Ticks > 0 && a.Ticks() >= a.config.Ticks {
				return nil
			}
		}
	}
}

// step runs one tick and feeds its results to every consumer.
func (a *App) step(ctx context.Context) error {
	report, err := a.graph.Tick(ctx)
	if err != nil {
		return err
	}
	a.ticks.Store(report.Tick)

	drawing.SampleAll(a.Drawables())
	if a.stream != nil {
		a.stream.Publish(stream.TickEvent{Tick: report.Tick, Values: a.graph.Readings()})
	}
	a.checkGame()

	if report.Tick%uint64(a.config.Hz) == 0 && a.logger.Enabled(ctx, slog.LevelDebug) {
		a.logger.Debug("Values.", "tick", report.Tick, "values", a.graph.Values())
	}
	return nil
}

// checkGame announces the first tick on which the game page is won.
func (a *App) checkGame() {
	g, ok := a.page.(*pages.Game)
	if !ok || a.won {
		return
	}
	won, err := g.Won()
	if err != nil {
		a.logger.Warn("Cannot check game.", "error", err)
		return
	}
	if won {
		a.won = true
		a.logger.Info("🎉 Game won.", "tick", a.Ticks(), "equation", g.Equation())
	}
}

// RunTicks runs n ticks back to back without pacing.
func (a *App) RunTicks(ctx context.Context, n uint64) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	for i := uint64(0); i < n; i++ {
		if err := a.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Describe writes the dependency tree with current values to w.
func (a *App) Describe(w io.Writer) error {
	return a.graph.Describe(w)
}

// Snapshot renders the current drawables to a PNG at path.
func (a *App) Snapshot(path string) error {
	img := drawing.Render(a.config.SnapshotWidth, a.config.SnapshotHeight, a.Drawables())
	if err := drawing.SavePNG(a.fs, path, img); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	a.logger.Info("📸 Snapshot saved.", "path", path, "width", a.config.SnapshotWidth, "height", a.config.SnapshotHeight)
	return nil
}

func (a *App) startStream(ctx context.Context) error {
	if a.config.StreamPort <= 0 {
		a.logger.Debug("Stream server not started: disabled")
		return nil
	}
	s := stream.NewServer(ctx, a.graph)
	if err := s.Start(fmt.Sprintf(":%d", a.config.StreamPort)); err != nil {
		return err
	}
	a.stream = s
	return nil
}

func (a *App) closeStream() {
	if a.stream == nil {
		return
	}
	if err := a.stream.Close(context.WithoutCancel(a.ctx)); err != nil {
		a.logger.Error("Stream server shutdown failed", "error", err)
	}
	a.stream = nil
}
