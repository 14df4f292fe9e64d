package grpc

import (
	"context"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
	"github.com/SARVESHVARADKAR123/courtroom/internal/observability"
)

// Service is the health service name for the courtroom core.
const Service = "courtroom.Courtroom"

// Server exposes the standard gRPC health service. The courtroom service
// reports NOT_SERVING while the insolvency lockout is active.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
}

func NewServer(locked bool) *Server {
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	h := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, h)
	reflection.Register(grpcServer)

	s := &Server{grpcServer: grpcServer, health: h}
	s.setLocked(locked)
	return s
}

func (s *Server) setLocked(locked bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if locked {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(Service, status)
}

func (s *Server) Name() string { return "grpc_health" }

func (s *Server) HandleEvent(ctx context.Context, ev application.Event) error {
	switch ev.Type {
	case application.EventLocked:
		s.setLocked(true)
	case application.EventReset:
		s.setLocked(false)
	}
	return nil
}

// Check answers a health query in process.
func (s *Server) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	res, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return res.GetStatus(), nil
}

func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	observability.GetLogger(context.Background()).Info("gRPC health server listening", zap.String("addr", addr))
	return s.grpcServer.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
