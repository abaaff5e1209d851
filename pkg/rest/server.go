// Package rest binds the REST interface listener from a validated
// config.RestConfig: bind address, optional TLS and CORS policy. Routes
// are supplied by the caller.
package rest

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/gossipnode/pkg/config"
	"github.com/DeBrosOfficial/gossipnode/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

// Server is the REST interface listener
type Server struct {
	logger    *logging.ColoredLogger
	config    config.RestConfig
	router    chi.Router
	tlsConfig *tls.Config
	server    *http.Server
}

// NewServer prepares a server for cfg. The PKCS#12 bundle, when configured,
// is loaded here so that a bad bundle fails before anything listens.
func NewServer(logger *logging.ColoredLogger, cfg config.RestConfig, handler http.Handler) (*Server, error) {
	if logger == nil {
		var err error
		logger, err = logging.NewColoredLogger(true)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	if handler == nil {
		handler = http.HandlerFunc(notFound)
	}

	s := &Server{
		logger: logger,
		config: cfg,
		router: chi.NewRouter(),
	}

	if cfg.TLSEnabled() {
		tlsConfig, err := LoadTLSConfig(*cfg.Pkcs12)
		if err != nil {
			return nil, err
		}
		s.tlsConfig = tlsConfig
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(func(next http.Handler) http.Handler {
		return CORSHandler(cfg.Cors, next)
	})
	// Mounted chi routers without their own handlers inherit these.
	s.router.NotFound(notFound)
	s.router.MethodNotAllowed(methodNotAllowed)
	s.router.Mount("/", handler)

	s.logger.ComponentInfo(logging.ComponentREST, "REST interface initialized",
		zap.String("listen", cfg.Listen.String()),
		zap.Bool("tls", cfg.TLSEnabled()),
		zap.Bool("cors", cfg.Cors != nil),
	)

	return s, nil
}

// Handler returns the router with CORS applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until ctx is done.
// It returns early with the serve error if the server fails.
func (s *Server) Start(ctx context.Context) error {
	addr := s.config.Listen.HostPort()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.serveUntil(ctx, ln)
}

func (s *Server) serveUntil(ctx context.Context, ln net.Listener) error {
	errCh := s.Serve(ln)

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("REST server failed: %w", err)
	case <-ctx.Done():
		return s.Stop()
	}
}

// Serve serves on ln in a goroutine, wrapping it with TLS when configured.
// The returned channel yields the error that ended serving, if any, and is
// closed once the server has stopped.
func (s *Server) Serve(ln net.Listener) <-chan error {
	if s.tlsConfig != nil {
		ln = tls.NewListener(ln, s.tlsConfig)
	}
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.ComponentInfo(logging.ComponentREST, "REST server starting",
		zap.String("addr", ln.Addr().String()),
	)

	errCh := make(chan error, 1)
	srv := s.server
	go func() {
		defer close(errCh)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ComponentError(logging.ComponentREST, "REST server error", zap.Error(err))
			errCh <- err
		}
	}()
	return errCh
}

// Stop gracefully stops the server
func (s *Server) Stop() error {
	if s == nil || s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.ComponentInfo(logging.ComponentREST, "REST server shutting down")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.ComponentError(logging.ComponentREST, "REST server shutdown error", zap.Error(err))
		return err
	}
	return nil
}
