package server

import (
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/vaibhav-sd/MissionControlProject/internal/config"
	"github.com/vaibhav-sd/MissionControlProject/internal/health"
)

// GRPCServer serves the standard gRPC health service.
type GRPCServer struct {
	server *grpc.Server
	bridge *health.GRPCHealthBridge
	port   int
	logger *zap.Logger
}

// NewGRPCServer creates a gRPC server whose health follows monitor.
func NewGRPCServer(cfg config.GRPCConfig, monitor *health.ReachabilityMonitor, logger *zap.Logger) *GRPCServer {
	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(1024 * 1024), // 1MB
		grpc.MaxSendMsgSize(1024 * 1024), // 1MB
	}
	if cfg.KeepaliveTime > 0 {
		opts = append(opts,
			grpc.KeepaliveParams(keepalive.ServerParameters{
				Time:    cfg.KeepaliveTime,
				Timeout: cfg.KeepaliveTimeout,
			}),
			// Watch clients may ping with no active stream.
			grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
				MinTime:             cfg.KeepaliveTime / 2,
				PermitWithoutStream: true,
			}),
		)
	}
	grpcServer := grpc.NewServer(opts...)

	bridge := health.NewGRPCHealthBridge(monitor)
	healthpb.RegisterHealthServer(grpcServer, bridge.Server())

	return &GRPCServer{
		server: grpcServer,
		bridge: bridge,
		port:   cfg.Port,
		logger: logger,
	}
}

// Start listens on the configured port and serves until Stop.
func (s *GRPCServer) Start() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	return s.Serve(lis)
}

// Serve serves on lis until Stop.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.logger.Info("starting gRPC health server", zap.String("address", lis.Addr().String()))
	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("gRPC server failed: %w", err)
	}
	return nil
}

// Stop marks every service NOT_SERVING and stops gracefully.
func (s *GRPCServer) Stop() {
	s.bridge.Shutdown()
	s.server.GracefulStop()
}
