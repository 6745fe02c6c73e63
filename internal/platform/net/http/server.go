package http

import (
	"context"
	"errors"
	"net"
	stdhttp "net/http"
	"strings"
	"sync"
	"time"

	"sharerelay/internal/platform/config"
	"sharerelay/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// ShutdownGrace bounds how long Run waits for in flight requests after ctx ends
const ShutdownGrace = 10 * time.Second

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	addr  string
	mux   *chi.Mux
	srv   *stdhttp.Server
	ready chan struct{}

	mu    sync.Mutex
	bound string
}

// ListenAddr resolves the listen address: ADDR wins, else ":"+PORT (default 8080)
func ListenAddr(cfg config.Conf) string {
	if a := cfg.MayString("ADDR", ""); a != "" {
		return a
	}
	port := cfg.MayString("PORT", "8080")
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// NewServer creates a server; opts receive the *chi.Mux before any route is added.
// There is no write timeout because event streams stay open indefinitely
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	addr := ListenAddr(cfg)
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	return &Server{
		addr:  addr,
		mux:   m,
		ready: make(chan struct{}),
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Router returns a Router facade over the internal chi mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr returns the configured listening address
func (s *Server) Addr() string { return s.addr }

// Ready is closed once the listener is bound
func (s *Server) Ready() <-chan struct{} { return s.ready }

// BoundAddr returns the actual listener address once Ready is closed
func (s *Server) BoundAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

// Run serves until ctx ends, then shuts down gracefully. Request contexts derive
// from ctx so long lived streams observe the shutdown and return
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.bound = ln.Addr().String()
	s.mu.Unlock()
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }
	close(s.ready)

	errc := make(chan error, 1)
	go func() { errc <- s.srv.Serve(ln) }()
	log.Info().Str("addr", s.BoundAddr()).Msg("http listening")

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("http shutting down")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownGrace)
	defer cancel()
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
