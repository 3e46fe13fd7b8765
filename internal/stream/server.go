package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/vk/phasegrid/internal/ctxlog"
	"github.com/vk/phasegrid/internal/graph"
	"github.com/zishang520/socket.io/v2/socket"
)

// Sink receives inputs decoded from "set" events.
type Sink interface {
	Enqueue(graph.Input)
}

// Server publishes ticks to every connected Socket.IO client.
type Server struct {
	io      *socket.Server
	sink    Sink
	logger  *slog.Logger
	clients atomic.Int64

	httpServer *http.Server
	addr       net.Addr
}

// NewServer creates a server that forwards "set" events to sink.
func NewServer(ctx context.Context, sink Sink) *Server {
	s := &Server{
		io:     socket.NewServer(nil, nil),
		sink:   sink,
		logger: ctxlog.FromContext(ctx).With("component", "stream"),
	}
	s.io.On("connection", s.onConnection)
	return s
}

func (s *Server) onConnection(clients ...any) {
	if len(clients) == 0 {
		return
	}
	client, ok := clients[0].(*socket.Socket)
	if !ok {
		return
	}
	s.clients.Add(1)
	s.logger.Info("Stream client connected.", "sid", client.Id(), "clients", s.clients.Load())

	client.On(EventSet, func(args ...any) {
		s.handleSet(args...)
	})
	client.On("disconnect", func(...any) {
		s.clients.Add(-1)
		s.logger.Info("Stream client disconnected.", "sid", client.Id(), "clients", s.clients.Load())
	})
}

// Handler serves the Socket.IO protocol. Mount it at DefaultPath.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Clients reports how many clients are connected.
func (s *Server) Clients() int64 {
	return s.clients.Load()
}

// Publish emits ev to all clients.
func (s *Server) Publish(ev TickEvent) {
	if s.clients.Load() == 0 {
		return
	}
	s.io.Emit(EventTick, ev.payload())
}

func (s *Server) handleSet(args ...any) {
	if len(args) == 0 {
		s.logger.Warn("Ignoring empty set event.")
		return
	}
	in, err := DecodeInput(args[0])
	if err != nil {
		s.logger.Warn("Ignoring set event.", "error", err)
		return
	}
	s.logger.Debug("Queued input.", "input", in.String())
	s.sink.Enqueue(in)
}

// Start listens on addr and serves in the background. Port 0 picks a free
// port; Addr reports the bound address.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("stream server: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle(DefaultPath, s.Handler())
	s.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	s.addr = ln.Addr()

	go func() {
		s.logger.Info("📡 Stream server starting", "address", fmt.Sprintf("http://%s%s", s.addr, DefaultPath))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Stream server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

// Addr is the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Close stops the HTTP listener.
func (s *Server) Close(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	s.logger.Info("📡 Shutting down stream server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("stream server shutdown: %w", err)
	}
	return nil
}
