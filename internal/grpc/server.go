package grpc

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServicePrefix namespaces per-tier health entries, e.g. "responders.seed".
const ServicePrefix = "responders."

// TierReporter reports whether each resolution tier is configured.
type TierReporter interface {
	TierStatus() map[string]bool
}

// Server exposes the standard grpc.health.v1 service. The empty service name
// reports the process; each tier gets its own entry.
type Server struct {
	tiers      TierReporter
	health     *health.Server
	grpcServer *grpc.Server
}

func NewServer(tiers TierReporter) *Server {
	s := &Server{
		tiers:      tiers,
		health:     health.NewServer(),
		grpcServer: grpc.NewServer(),
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	reflection.Register(s.grpcServer)

	s.Refresh()
	return s
}

// Refresh re-reads tier availability.
func (s *Server) Refresh() {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	if s.tiers == nil {
		return
	}

	for name, ok := range s.tiers.TierStatus() {
		st := healthpb.HealthCheckResponse_NOT_SERVING
		if ok {
			st = healthpb.HealthCheckResponse_SERVING
		}
		s.health.SetServingStatus(ServicePrefix+name, st)
	}
}

func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	slog.Info("gRPC server listening", "addr", addr)
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
