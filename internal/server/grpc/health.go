// Package grpcserver serves the operational gRPC endpoint: the standard
// grpc.health.v1 service backed by a periodic database ping.
package grpcserver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check service name reported next to the overall ("") status.
const ServiceName = "zest.API"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health keeps the health status in sync with database reachability.
type Health struct {
	srv      *health.Server
	db       Pinger
	interval time.Duration
	log      *zap.Logger
	serving  bool
}

// NewHealth constructs Health. The status starts as NOT_SERVING until the
// first successful ping.
func NewHealth(db Pinger, interval time.Duration, log *zap.Logger) *Health {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	h := &Health{srv: health.NewServer(), db: db, interval: interval, log: log}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register attaches the health service to s.
func (h *Health) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.srv)
}

func (h *Health) set(st healthpb.HealthCheckResponse_ServingStatus) {
	h.srv.SetServingStatus("", st)
	h.srv.SetServingStatus(ServiceName, st)
}

// Check pings the database once and updates the status.
func (h *Health) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.interval)
	defer cancel()

	err := h.db.Ping(ctx)
	ok := err == nil
	if ok != h.serving {
		if ok {
			h.log.Info("database reachable, serving")
		} else {
			h.log.Warn("database unreachable, not serving", zap.Error(err))
		}
	}
	h.serving = ok
	if ok {
		h.set(healthpb.HealthCheckResponse_SERVING)
	} else {
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	}
}

// Run checks immediately and then every interval. When ctx is done all
// statuses switch to NOT_SERVING permanently.
func (h *Health) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		if ctx.Err() == nil {
			h.Check(ctx)
		}
		select {
		case <-ctx.Done():
			h.srv.Shutdown()
			return
		case <-t.C:
		}
	}
}
