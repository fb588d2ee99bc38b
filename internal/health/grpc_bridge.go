package health

import (
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vaibhav-sd/MissionControlProject/internal/model"
)

// RemoteServiceName is the gRPC health service name that mirrors reachability.
const RemoteServiceName = "missioncontrol.remote"

// GRPCHealthBridge exposes the reachability signal through the standard
// grpc.health.v1 service. The overall ("") service is always SERVING while
// the process runs; RemoteServiceName follows the monitor.
type GRPCHealthBridge struct {
	server *health.Server
}

// NewGRPCHealthBridge creates a health server and subscribes it to monitor.
func NewGRPCHealthBridge(monitor *ReachabilityMonitor) *GRPCHealthBridge {
	b := &GRPCHealthBridge{server: health.NewServer()}
	b.server.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	b.server.SetServingStatus(RemoteServiceName, ServingStatus(monitor.Signal()))

	// Listeners may run out of order; always install the latest signal.
	monitor.Subscribe(func(_, _ model.ReachabilitySignal) {
		b.server.SetServingStatus(RemoteServiceName, ServingStatus(monitor.Signal()))
	})
	return b
}

// Server returns the health server for registration on a grpc.Server.
func (b *GRPCHealthBridge) Server() *health.Server {
	return b.server
}

// Shutdown marks every service NOT_SERVING.
func (b *GRPCHealthBridge) Shutdown() {
	b.server.Shutdown()
}

// ServingStatus maps a reachability signal to a gRPC serving status.
func ServingStatus(signal model.ReachabilitySignal) healthpb.HealthCheckResponse_ServingStatus {
	switch signal {
	case model.ReachabilityReachable:
		return healthpb.HealthCheckResponse_SERVING
	case model.ReachabilityUnreachable:
		return healthpb.HealthCheckResponse_NOT_SERVING
	default:
		return healthpb.HealthCheckResponse_UNKNOWN
	}
}
