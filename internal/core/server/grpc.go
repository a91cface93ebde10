// Package server provides gRPC server lifecycle management and the
// Prometheus metrics endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/solatis/automata/internal/core/api"
	"github.com/solatis/automata/internal/core/auth"
	"github.com/solatis/automata/internal/core/config"
	"github.com/solatis/automata/internal/core/metrics"
)

const (
	shutdownTimeout       = 30 * time.Second
	httpReadHeaderTimeout = 5 * time.Second
)

// publicMethods skip API-key authentication.
var publicMethods = []string{
	grpc_health_v1.Health_Check_FullMethodName,
	grpc_health_v1.Health_Watch_FullMethodName,
}

// GRPCServer manages the gRPC server and the metrics HTTP server.
type GRPCServer struct {
	server  *grpc.Server
	health  *health.Server
	metrics *http.Server
	config  *config.Config
	logger  *slog.Logger
}

// NewGRPCServer creates the gRPC server with tracing, metrics, timeout and
// auth interceptors, and registers the automation and health services.
// m may be nil to disable metrics.
func NewGRPCServer(cfg *config.Config, service api.AutomationServer, authenticator *auth.Authenticator, m *metrics.Metrics, logger *slog.Logger) (*GRPCServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if authenticator == nil {
		return nil, fmt.Errorf("authenticator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	interceptors := []grpc.UnaryServerInterceptor{}
	if m != nil {
		interceptors = append(interceptors, m.UnaryServerInterceptor())
	}
	interceptors = append(interceptors,
		TimeoutInterceptor(cfg.Server.RequestTimeout),
		authenticator.UnaryInterceptor(publicMethods...),
	)

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors...),
	)
	api.RegisterAutomationServer(server, service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(api.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	s := &GRPCServer{
		server: server,
		health: healthServer,
		config: cfg,
		logger: logger,
	}
	if m != nil && cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		s.metrics = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: httpReadHeaderTimeout,
		}
	}
	return s, nil
}

// TimeoutInterceptor bounds every request by d.
func TimeoutInterceptor(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if d <= 0 {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return handler(ctx, req)
	}
}

// Start binds listeners and serves until Shutdown. The metrics endpoint, if
// configured, is served alongside.
func (s *GRPCServer) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, fmt.Sprint(s.config.Server.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves gRPC on listener.
func (s *GRPCServer) Serve(ctx context.Context, listener net.Listener) error {
	if s.metrics != nil {
		go func() {
			s.logger.InfoContext(ctx, "metrics endpoint listening", "addr", s.metrics.Addr)
			if err := s.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.ErrorContext(ctx, "metrics server error", "error", err)
			}
		}()
	}

	s.logger.InfoContext(ctx, "gRPC server listening", "addr", listener.Addr().String())
	return s.server.Serve(listener)
}

// Shutdown marks the server not serving and stops it gracefully, forcing a
// stop when ctx ends or after 30 seconds.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	if s.metrics != nil {
		mctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := s.metrics.Shutdown(mctx); err != nil {
			s.logger.Warn("metrics server shutdown error", "error", err)
		}
	}

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-time.After(shutdownTimeout):
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}
