// Package grpcapi exposes the standard grpc.health.v1 service so kiosks and
// orchestrators can check the access service over gRPC.
package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// AccessServiceName is the health entry for the scan path.
const AccessServiceName = "clubgate.Access"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

// NewServer listens on addr. Both the overall and the access entries start
// NOT_SERVING until SetServing(true).
func NewServer(addr string, logger *slog.Logger) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return NewServerWithListener(lis, logger), nil
}

func NewServerWithListener(lis net.Listener, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	s := &Server{
		listener:   lis,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger.With("component", "grpc"),
	}
	s.SetServing(false)
	return s
}

func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(AccessServiceName, status)
}

// WatchDB pings db every interval and flips the access entry accordingly
// until ctx ends.
func (s *Server) WatchDB(ctx context.Context, db Pinger, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pingCtx, cancel := context.WithTimeout(ctx, interval)
		err := db.PingContext(pingCtx)
		cancel()
		if ctx.Err() != nil {
			return
		}

		if ok := err == nil; ok != healthy {
			healthy = ok
			status := healthpb.HealthCheckResponse_SERVING
			if !ok {
				status = healthpb.HealthCheckResponse_NOT_SERVING
				s.logger.Warn("database unreachable, reporting NOT_SERVING", "error", err)
			} else {
				s.logger.Info("database reachable again")
			}
			s.health.SetServingStatus(AccessServiceName, status)
		}
	}
}

// Serve blocks until ctx ends or the server fails. On cancellation every
// entry goes NOT_SERVING before a graceful stop.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("grpc health listening", "addr", s.Addr())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}
