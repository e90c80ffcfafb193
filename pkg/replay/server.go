package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mike10004/har-replay-proxy/pkg/logging"
)

// Default server settings.
const (
	DefaultPort         = 8080
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
)

// ServerConfig holds listener settings for the replay server.
type ServerConfig struct {
	// Port is the TCP port to listen on.
	Port int

	// ReadTimeout and WriteTimeout bound each request's transport I/O.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns sensible listener defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:         DefaultPort,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Server runs the replay handler behind an HTTP listener with graceful
// shutdown.
type Server struct {
	cfg        *ServerConfig
	handler    http.Handler
	log        *slog.Logger
	httpServer *http.Server
	listener   net.Listener

	mu      sync.RWMutex
	running bool
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithServerLogger sets the operational logger for the server.
func WithServerLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServer creates a Server for the given handler.
func NewServer(cfg *ServerConfig, handler http.Handler, opts ...ServerOption) *Server {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	s := &Server{
		cfg:     cfg,
		handler: handler,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and begins serving in a background goroutine.
// It returns once the listener is bound, so Addr is valid on return.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.cfg.Port, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.running = true

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server stopped unexpectedly", "error", err)
		}
	}()

	s.log.Info("replay server listening", "addr", ln.Addr().String())
	return nil
}

// Stop shuts the server down gracefully, waiting for in-flight requests
// up to the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Running reports whether the server is accepting requests.
func (s *Server) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
