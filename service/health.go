package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dkrizic/memorylove/meta"
	"github.com/dkrizic/memorylove/service/grpcauth"
	"github.com/dkrizic/memorylove/service/memory"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/stats"
)

const healthProbeInterval = 10 * time.Second

// newGRPCServer creates the gRPC server carrying the health and reflection
// services. Reflection shares the HTTP basic auth credentials.
func newGRPCServer(config Config) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler(otelgrpc.WithFilter(
			func(info *stats.RPCTagInfo) bool {
				return !strings.Contains(info.FullMethodName, "grpc.health")
			},
		))),
		grpc.UnaryInterceptor(grpcauth.SelectiveInterceptor(config.AuthEnabled, config.AuthUsername, config.AuthPassword)),
		grpc.StreamInterceptor(grpcauth.SelectiveStreamInterceptor(config.AuthEnabled, config.AuthUsername, config.AuthPassword)),
	)

	// reflection
	reflection.Register(grpcServer)

	// health
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	return grpcServer, healthServer
}

// probeHealth sets the serving status from whether the store answers.
func probeHealth(ctx context.Context, store *memory.Store, hs *health.Server) grpc_health_v1.HealthCheckResponse_ServingStatus {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if _, err := store.Count(ctx); err != nil {
		slog.WarnContext(ctx, "Storage probe failed", "error", err)
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	hs.SetServingStatus("", status)
	hs.SetServingStatus(meta.Service, status)
	return status
}

// watchHealth probes until ctx is done.
func watchHealth(ctx context.Context, store *memory.Store, hs *health.Server, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probeHealth(ctx, store, hs)
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			probeHealth(ctx, store, hs)
		}
	}
}
