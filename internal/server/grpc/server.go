// Package grpc serves the standard gRPC health service for the files
// manager so orchestrators can probe it without speaking HTTP.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "filesmanager"

// Probe reports whether every backing store is reachable.
type Probe func(ctx context.Context) bool

type HealthServer struct {
	address  string
	probe    Probe
	interval time.Duration
	health   *health.Server
	logger   logging.Logger
}

func NewHealthServer(a string, l logging.Logger, probe Probe, interval time.Duration) *HealthServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &HealthServer{
		address:  a,
		probe:    probe,
		interval: interval,
		health:   health.NewServer(),
		logger:   l.With("module", "grpc_server"),
	}
}

// refresh runs the probe once and publishes the result.
func (s *HealthServer) refresh(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if !s.probe(pctx) {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn(ctx, "health probe failed")
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.refresh(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
