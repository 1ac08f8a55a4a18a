// Package grpc exposes the standard gRPC health service for orchestration
// probes. Status follows periodic database pings.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/slothapp/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "sloth.API"

const (
	defaultInterval = 15 * time.Second
	pingTimeout     = 3 * time.Second
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthServer struct {
	address  string
	db       Pinger
	interval time.Duration
	logger   logging.Logger
	health   *health.Server
}

func NewHealthServer(a string, l logging.Logger, db Pinger, interval time.Duration) *HealthServer {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &HealthServer{
		address:  a,
		db:       db,
		interval: interval,
		logger:   l.With("module", "grpc_server"),
		health:   health.NewServer(),
	}
}

func (s *HealthServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// check pings the database once and publishes the result.
func (s *HealthServer) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn(ctx, "database ping failed", "error", err)
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
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

	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
