package infrastructure

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"go-storefront/pkg/logger"
)

// OrdersServiceName is the health service name reported for this process
const OrdersServiceName = "storefront.orders"

// Pinger reports whether a dependency is reachable
type Pinger func(ctx context.Context) error

// HealthServer exposes grpc.health.v1 backed by a dependency probe
type HealthServer struct {
	health *health.Server
	ping   Pinger
	log    *logger.Logger
}

// NewHealthServer creates a health server. The process starts NOT_SERVING
// until the first successful probe.
func NewHealthServer(ping Pinger, log *logger.Logger) *HealthServer {
	h := &HealthServer{
		health: health.NewServer(),
		ping:   ping,
		log:    log,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register attaches the health and reflection services to server
func (h *HealthServer) Register(server *grpc.Server) {
	healthpb.RegisterHealthServer(server, h.health)
	reflection.Register(server)
}

// Probe runs the dependency check once and updates the served status
func (h *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if h.ping != nil {
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.ping(probeCtx); err != nil {
			h.log.WithContext(ctx).Warn("health probe failed", zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.set(status)
	return status
}

// Watch probes every interval until ctx is done
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	h.Probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

// Shutdown reports NOT_SERVING and stops answering further status changes
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
}

func (h *HealthServer) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(OrdersServiceName, status)
}
