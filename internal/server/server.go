// Package server implements the ephemeral content API server: an HTTP server
// wrapping the content store, bound to an OS-assigned free local port for the
// duration of one build only.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/tahongtrung/phenomic/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Server serves the content store over HTTP on a freshly allocated local
// port. It is started once per build and closed exactly once regardless of
// build success or failure; Close is idempotent.
type Server struct {
	st   *store.Store
	srv  *http.Server
	ln   net.Listener
	port int

	closeOnce sync.Once
	closeErr  error
	closed    bool
	mu        sync.Mutex
}

// New constructs a server over the given store.
func New(st *store.Store) *Server {
	s := &Server{st: st}
	s.srv = &http.Server{Handler: s.routes()}
	return s
}

// Start binds a fresh localhost port and begins serving. It returns once the
// listener is accepting connections.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("bind content server: %w", err)
	}
	s.ln = ln
	s.port = ln.Addr().(*net.TCPAddr).Port

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("content server error", "error", err)
		}
	}()

	slog.Debug("content server started", "port", s.port)
	return nil
}

// Port returns the bound port. Valid only after Start.
func (s *Server) Port() int { return s.port }

// Close shuts the server down. Safe to call multiple times; only the first
// call performs the shutdown.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.closeErr = s.srv.Shutdown(ctx)
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		slog.Debug("content server stopped", "port", s.port)
	})
	return s.closeErr
}

// Closed reports whether Close has completed.
func (s *Server) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
