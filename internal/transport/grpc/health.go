// Package grpc reports storefront readiness through the standard gRPC health service.
package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name the storefront reports under.
// The empty name reports the same status for the whole server.
const ServiceName = "storefront.Storefront"

// ReadinessProbe tells whether the storefront can serve requests.
type ReadinessProbe interface {
	Ready() bool
}

// HealthReporter mirrors the probe into a grpc health server.
type HealthReporter struct {
	server *health.Server
	probe  ReadinessProbe
}

// NewHealthReporter starts in NOT_SERVING until the first Refresh sees a loaded catalog.
func NewHealthReporter(probe ReadinessProbe) *HealthReporter {
	h := &HealthReporter{server: health.NewServer(), probe: probe}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register adds the health service to s.
func (h *HealthReporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Refresh publishes the current probe state.
func (h *HealthReporter) Refresh() {
	if h.probe.Ready() {
		h.set(healthpb.HealthCheckResponse_SERVING)
		return
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
}

// Run refreshes every interval until ctx is done, then marks the server as shutting down.
func (h *HealthReporter) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Refresh()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return nil
		case <-ticker.C:
			h.Refresh()
		}
	}
}

func (h *HealthReporter) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}
