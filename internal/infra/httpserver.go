package infra

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

const defaultDrainTimeout = 10 * time.Second

// HTTPServer runs the API until its context ends, then drains it.
type HTTPServer struct {
	server       *http.Server
	drainTimeout time.Duration
	// closeStreams cancels the base context of every request when shutdown
	// starts, so open event streams end instead of holding the drain open.
	closeStreams context.CancelFunc
}

// NewHTTPServer creates the server from cfg. A zero HTTP write timeout keeps
// event streams open indefinitely.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	streams, closeStreams := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return streams },
	}
	srv.RegisterOnShutdown(closeStreams)

	return &HTTPServer{
		server:       srv,
		drainTimeout: defaultDrainTimeout,
		closeStreams: closeStreams,
	}
}

func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

// Run listens on the configured address until ctx is done.
func (s *HTTPServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down within
// the drain timeout. A graceful stop returns nil.
func (s *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.closeStreams()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drainTimeout)
	defer cancel()
	if err := s.server.Shutdown(drainCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
