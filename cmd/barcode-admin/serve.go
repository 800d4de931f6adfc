package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/YonathanKevin20/barcode-generator-fe/internal/adapter/api"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/adapter/httpserver"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/adapter/metrics"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/adapter/redis"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/app"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/guard"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/platform/config"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/platform/logging"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/platform/retry"
	"github.com/YonathanKevin20/barcode-generator-fe/internal/uisession"
)

const (
	shutdownTimeout    = 10 * time.Second
	minEvictInterval   = time.Minute
	startupProbeBudget = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
			slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "api", cfg.APIBaseURL)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	m := metrics.New()

	guards, err := guard.Load(cfg.GuardsFile)
	if err != nil {
		return err
	}

	client, err := api.NewClient(cfg.APIBaseURL, api.Options{
		Timeout: cfg.UpstreamTimeout,
		Metrics: m.Upstream,
	})
	if err != nil {
		return err
	}

	// Untyped nil keeps the lookup cache memory-only without Redis.
	var rdb goredis.Cmdable
	healthChecks := []httpserver.HealthCheck{{Name: "backend", Check: backendCheck(client)}}
	if cfg.RedisURL != "" {
		redisClient, err := setupRedis(ctx, cfg, m)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		rdb = redisClient
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	lookups := redis.NewLookupCache(rdb, client, cfg.LookupCacheTTL, redis.WithCacheMetrics(m.Cache))
	appSvc := app.NewService(client, lookups)

	waitForBackend(ctx, appSvc)

	pages := uisession.NewRegistry(cfg.PageSessionIdleTimeout, uisession.WithMetrics(m.UI))

	srv, err := httpserver.NewServer(cfg, httpserver.Deps{
		App:          appSvc,
		Guards:       guards,
		Pages:        pages,
		Metrics:      m,
		HealthChecks: healthChecks,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pages.Run(gctx, evictInterval(cfg.PageSessionIdleTimeout))
		return nil
	})
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		pages.CloseAll()
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server error", "error", err)
		return err
	}
	slog.Info("Server stopped")
	return nil
}

func setupRedis(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*goredis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL, m.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// backendCheck fails fast while the circuit breaker is open instead of
// sending another probe to a backend known to be down.
func backendCheck(client *api.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if client.BreakerState() == circuitbreaker.OpenState {
			return errors.New("circuit breaker open")
		}
		return client.Ping(ctx)
	}
}

// waitForBackend logs whether the backend answers at startup. The server
// starts either way; pages show a backend error until it is reachable.
func waitForBackend(ctx context.Context, appSvc *app.Service) {
	ctx, cancel := context.WithTimeout(ctx, startupProbeBudget)
	defer cancel()

	policy := retry.Policy{
		MaxAttempts:      5,
		InitialBackoff:   500 * time.Millisecond,
		MaxBackoff:       8 * time.Second,
		RateLimitBackoff: 5 * time.Second,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("Backend not reachable yet", "attempt", attempt, "retry_in", backoff, "error", err)
		},
	}
	err := retry.DoVoid(ctx, policy, classifyProbe, appSvc.CheckBackend)
	var permanent *retry.PermanentError
	switch {
	case errors.As(err, &permanent):
		slog.Error("Backend misconfigured, check API_BASE_URL; serving anyway", "error", permanent.Err)
	case err != nil:
		slog.Error("Backend unreachable at startup, serving anyway", "error", err)
	default:
		slog.Info("Backend reachable")
	}
}

// classifyProbe stops on failures that retrying cannot fix: an unknown host
// or a certificate the backend will keep presenting.
func classifyProbe(err error) retry.Action {
	if errors.Is(err, api.ErrRateLimited) {
		return retry.After
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return retry.Stop
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return retry.Stop
	}
	return retry.Retry
}

func evictInterval(idle time.Duration) time.Duration {
	if every := idle / 4; every > minEvictInterval {
		return every
	}
	return minEvictInterval
}
