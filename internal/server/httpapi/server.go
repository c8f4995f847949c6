package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
)

type ServerOptions struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server runs the HTTP API until its context is cancelled.
type Server struct {
	address string
	srv     *http.Server
	opts    ServerOptions
	logger  logging.Logger
}

func NewServer(address string, h http.Handler, opts ServerOptions, l logging.Logger) *Server {
	return &Server{
		address: address,
		srv: &http.Server{
			Handler:      h,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
		opts:   opts,
		logger: l.With("module", "http_server"),
	}
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")

		sctx := context.Background()
		if s.opts.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(sctx, s.opts.ShutdownTimeout)
			defer cancel()
		}
		if err := s.srv.Shutdown(sctx); err != nil {
			s.logger.Error(sctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := s.srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
