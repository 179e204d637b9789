package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/tradehub/internal/config"
	"github.com/jcmexdev/tradehub/internal/pkg/cache"
	"github.com/jcmexdev/tradehub/internal/pkg/telemetry"
	"github.com/jcmexdev/tradehub/internal/storefront/core/auth"
	"github.com/jcmexdev/tradehub/internal/storefront/core/checkout"
	"github.com/jcmexdev/tradehub/internal/storefront/core/ports"
	"github.com/jcmexdev/tradehub/internal/storefront/core/service"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/adapters/gateway"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/adapters/memory"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/adapters/sqlite"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/httpx"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/httpx/middlewares"
)

const cacheNamespace = "storefront"

func serveCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().String("addr", "", "Listen address, overrides PORT")

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := telemetry.InitLogger(cfg.Telemetry.LogLevel)

	shutdownTracer, err := telemetry.SetupTracer(ctx, telemetry.TracerOptions{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Environment: cfg.Telemetry.Environment,
	})
	if err != nil {
		return fmt.Errorf("setup tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Error("failed to shutdown tracer", "error", err)
		}
	}()

	handler, closeStores, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpx.NewRouter(handler, httpx.RouterOptions{
			RateLimiter: middlewares.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
			TrustProxy:  cfg.Server.TrustProxy,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening",
			"addr", cfg.Server.Addr,
			"payment_mode", cfg.Payment.Mode,
			"version", Version,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down storefront", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// logStore is the audit trail for webhooks and checkout steps.
type logStore interface {
	ports.WebhookLogRepository
	ports.CheckoutLogRepository
}

// buildHandler wires repositories, the gateway and the services. The
// returned func releases the durable stores.
func buildHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*httpx.Handler, func(), error) {
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var logs logStore = memory.NewLogRepository()
	if cfg.Storage.SQLitePath != "" {
		repo, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open audit store: %w", err)
		}
		closers = append(closers, func() {
			if err := repo.Close(); err != nil {
				logger.Error("failed to close audit store", "error", err)
			}
		})
		logs = repo
		logger.Info("audit logs persisted to sqlite", "path", cfg.Storage.SQLitePath)
	}

	replay := replayCache(ctx, cfg.Storage.RedisAddr, logger)

	var gw ports.PaymentGateway
	if cfg.Payment.IsProduction() {
		gw = gateway.NewOPayClient(cfg.Payment.APIURL, cfg.Payment.SecretKey, cfg.Payment.GatewayTimeout)
	} else {
		gw = gateway.NewDemoCashier(cfg.Payment.DemoCashierURL)
	}

	directory := memory.NewDirectory()
	policy := auth.DefaultPolicy()
	if err := auth.SeedAccounts(directory, policy, cfg.Auth.DemoPassword, cfg.Auth.BcryptCost, time.Now()); err != nil {
		closeAll()
		return nil, nil, err
	}

	orderRepo := memory.NewOrderRepository()
	paymentRepo := memory.NewPaymentRepository()

	orders := service.NewOrderService(orderRepo)
	payments := service.NewPaymentService(cfg.Payment, paymentRepo, logs, gw,
		service.WithReplayGuard(replay, cfg.Storage.ReplayTTL),
		service.WithOrderLinker(orders),
	)

	handler := httpx.NewHandler(httpx.Services{
		Orders:   orders,
		Payments: payments,
		Admin:    service.NewAdminService(orderRepo, paymentRepo, memory.NewCatalogRepository(time.Now()), directory, policy),
		Checkout: checkout.NewService(orders, payments, logs),
		Auth:     auth.NewAuthenticator(directory, auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)),
		Policy:   policy,
	}, cfg.Server.PingMessage, cfg.Payment.WebhookSignatureHeader)

	return handler, closeAll, nil
}

// replayCache prefers Redis so duplicate callbacks are caught across
// replicas, and falls back to process memory when it is not reachable.
func replayCache(ctx context.Context, addr string, logger *slog.Logger) cache.Cache {
	if addr == "" {
		return cache.NewMemoryCache(cacheNamespace)
	}

	c := cache.NewRedisCache(addr, cacheNamespace)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx, c); err != nil {
		logger.Warn("redis unreachable, using in-memory replay cache", "addr", addr, "error", err)
		return cache.NewMemoryCache(cacheNamespace)
	}
	logger.Info("replay cache backed by redis", "addr", addr)
	return c
}
