// Package server runs the HTTP listener and tears components down in order
// when the process is asked to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

// ShutdownFunc stops one component.
type ShutdownFunc func(ctx context.Context) error

type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	log             zerolog.Logger

	mu            sync.Mutex
	shutdownFuncs []namedShutdown
}

type namedShutdown struct {
	name string
	fn   ShutdownFunc
}

func New(handler http.Handler, port string, shutdownTimeout time.Duration, log zerolog.Logger) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort("", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		log:             log,
	}
}

// OnShutdown registers fn to run after the listener stops. Components stop in
// reverse registration order.
func (s *Server) OnShutdown(name string, fn ShutdownFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownFuncs = append(s.shutdownFuncs, namedShutdown{name: name, fn: fn})
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return errors.Join(fmt.Errorf("listen %s: %w", s.httpServer.Addr, err), s.stopComponents())
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serverErr := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("server starting")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return errors.Join(fmt.Errorf("server error: %w", err), s.stopComponents())
		}
		return s.stopComponents()
	case <-ctx.Done():
		s.log.Info().Msg("shutdown requested")
		return s.shutdown()
	}
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.httpServer.SetKeepAlivesEnabled(false)
	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error().Err(err).Msg("http server shutdown")
		errs = append(errs, err)
	}
	s.log.Info().Msg("http server stopped")

	return errors.Join(append(errs, s.stopComponentsCtx(ctx))...)
}

func (s *Server) stopComponents() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.stopComponentsCtx(ctx)
}

// stopComponentsCtx runs the registered hooks newest first. Each runs once.
func (s *Server) stopComponentsCtx(ctx context.Context) error {
	var errs []error

	s.mu.Lock()
	funcs := s.shutdownFuncs
	s.shutdownFuncs = nil
	s.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		f := funcs[i]
		if err := f.fn(ctx); err != nil {
			s.log.Error().Err(err).Str("component", f.name).Msg("component shutdown")
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
			continue
		}
		s.log.Info().Str("component", f.name).Msg("component stopped")
	}

	return errors.Join(errs...)
}
