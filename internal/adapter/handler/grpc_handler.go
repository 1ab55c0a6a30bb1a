package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const CartServiceName = "storefront.Cart"

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthProber drives the gRPC health service from store reachability.
type HealthProber struct {
	server   *health.Server
	store    Pinger
	interval time.Duration
	logger   *zap.Logger
}

func NewHealthProber(store Pinger, interval time.Duration, logger *zap.Logger) *HealthProber {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthProber{
		server:   health.NewServer(),
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

func (p *HealthProber) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, p.server)
	reflection.Register(s)
}

// Probe pings the store once and publishes the result.
func (p *HealthProber) Probe(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := p.store.Ping(ctx); err != nil {
		p.logger.Warn("store health probe failed", zap.Error(err))
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}

	p.server.SetServingStatus("", status)
	p.server.SetServingStatus(CartServiceName, status)
	return status
}

// Run probes until ctx is done, then marks every service NOT_SERVING.
func (p *HealthProber) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			p.server.Shutdown()
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
