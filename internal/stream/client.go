package stream

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"

	"github.com/vk/phasegrid/internal/ctxlog"
	"github.com/vk/phasegrid/internal/graph"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	// Set is emitted once the connection is up.
	Set []graph.Input
	// Limit stops the watch after this many ticks. Zero watches until ctx ends.
	Limit int
}

// Watch connects to a stream server and calls onTick for every tick event
// until ctx is done or Limit ticks were received.
func Watch(ctx context.Context, opts WatchOptions, onTick func(TickEvent)) error {
	logger := ctxlog.FromContext(ctx).With("component", "watch", "url", opts.URL)

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("failed to parse URL: %q needs a scheme and host", opts.URL)
	}
	path := parsedURL.Path
	if path == "" || path == "/" {
		path = DefaultPath
	}

	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)
	defer func() {
		logger.Debug("Disconnecting stream client")
		io.Disconnect()
	}()

	failed := make(chan error, 1)
	finished := make(chan struct{})
	ticks := make(chan TickEvent, 64)

	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		for _, in := range opts.Set {
			logger.Info("Emitting input", "input", in.String())
			io.Emit(EventSet, map[string]any{
				"group": string(in.Group),
				"role":  string(in.Role),
				"name":  in.Name,
				"value": in.Value,
			})
		}
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		select {
		case failed <- connectError(errs...):
		default:
		}
	})

	io.On(types.EventName(EventTick), func(data ...any) {
		if len(data) == 0 {
			return
		}
		ev, err := DecodeTick(data[0])
		if err != nil {
			logger.Warn("Ignoring malformed tick.", "error", err)
			return
		}
		select {
		case ticks <- ev:
		case <-finished:
		}
	})

	io.Connect()
	defer close(finished)

	received := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-failed:
			return fmt.Errorf("stream connection failed: %w", err)
		case ev := <-ticks:
			onTick(ev)
			received++
			if opts.Limit > 0 && received >= opts.Limit {
				return nil
			}
		}
	}
}

// connectError normalizes the payload of a connect_error event.
func connectError(args ...any) error {
	if len(args) == 0 {
		return errors.New("connect error")
	}
	if err, ok := args[0].(error); ok {
		return err
	}
	return fmt.Errorf("connect error: %v", args[0])
}
