package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/varia"
	"github.com/aretw0/varia/internal/logging"
	httpAdapter "github.com/aretw0/varia/pkg/adapters/http"
	redisAdapter "github.com/aretw0/varia/pkg/adapters/redis"
	"github.com/aretw0/varia/pkg/observability"
	"github.com/aretw0/varia/pkg/ports"
	"github.com/aretw0/varia/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
)

// ServeOptions configures the HTTP server.
type ServeOptions struct {
	Port string
	// RedisAddr, when set, also publishes every session's actions on "varia:actions:<session>".
	RedisAddr string
	Logger    *slog.Logger
}

// Server bundles the handler with the resources it owns.
type Server struct {
	Handler  http.Handler
	Sessions *session.Manager
	Registry *prometheus.Registry

	redis  *backend.Client
	logger *slog.Logger
}

// NewServer wires sessions, metrics and the optional Redis publisher behind the HTTP API.
func NewServer(ctx context.Context, opts ServeOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	s := &Server{Registry: reg, logger: logger}

	var extra func(sessionID string) ports.ActionDispatcher
	if opts.RedisAddr != "" {
		s.redis = backend.NewClient(&backend.Options{Addr: opts.RedisAddr})
		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.redis.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.RedisAddr, err)
		}
		extra = func(sessionID string) ports.ActionDispatcher {
			return redisAdapter.NewFromClient(s.redis,
				redisAdapter.WithChannel("actions:"+sessionID),
				redisAdapter.WithLogger(logger),
			)
		}
	}

	factory := session.NewFactory(extra,
		varia.WithLogger(logger),
		varia.WithLifecycleHooks(observability.Compose(metrics.Hooks(), observability.LoggingHooks(logger))),
	)
	s.Sessions = session.NewManager(factory, session.WithLogger(logger))
	s.Handler = httpAdapter.NewHandler(s.Sessions,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)
	return s, nil
}

// Close releases every session and the Redis connection.
func (s *Server) Close(ctx context.Context) error {
	err := s.Sessions.CloseAll(ctx)
	if s.redis != nil {
		err = errors.Join(err, s.redis.Close())
	}
	return err
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, out io.Writer, opts ServeOptions) error {
	s, err := NewServer(ctx, opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Requests inherit ctx so open SSE streams end when shutdown begins.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(out, "Starting Varia Server on %s", srv.Addr)
		if opts.RedisAddr != "" {
			printSystemMessage(out, "Publishing actions to redis at %s", opts.RedisAddr)
		}
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		_ = s.Close(context.Background())
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	// Give outstanding requests (including SSE streams) a deadline for completion.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Close(shutdownCtx); err != nil {
		s.logger.Warn("session cleanup failed", "err", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		printSystemMessage(out, "Graceful shutdown did not complete in %v: %v", 5*time.Second, err)
		if err := srv.Close(); err != nil {
			return fmt.Errorf("error killing server: %w", err)
		}
	}
	printSystemMessage(out, "Varia Server stopped gracefully")
	return nil
}
