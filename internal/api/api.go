package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sensor-bot/internal/logging"
)

// Server runs the status API until its context is cancelled.
type Server struct {
	srv    *http.Server
	hub    *Hub
	logger *logging.Logger
}

func NewServer(listen string, handler http.Handler, hub *Hub, logger *logging.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              listen,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		hub:    hub,
		logger: logger,
	}
}

// Run serves until ctx is done, then shuts down within one second.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting API server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Hijacked websocket connections are not closed by Shutdown.
	s.hub.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnf("API server shutdown: %v", err)
	}
	s.logger.Infof("API server stopped")
	return nil
}
