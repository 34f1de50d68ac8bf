package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/raaksss/Monies/internal/auth"
	"github.com/raaksss/Monies/internal/config"
	"github.com/raaksss/Monies/internal/events"
	"github.com/raaksss/Monies/internal/lock"
	"github.com/raaksss/Monies/internal/middleware"
	"github.com/raaksss/Monies/internal/service"
	"github.com/raaksss/Monies/internal/storage/sqlite"
	"github.com/raaksss/Monies/pkg/api"
	"github.com/raaksss/Monies/pkg/logging"
)

func main() {
	config.LoadEnvFile()
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	locker, closeLocker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	// A nil publisher makes the expense service settle reciprocal splits inline.
	var publisher events.Publisher
	if cfg.AutoSettleMode == config.AutoSettleAsync {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		publisher = client
		logger.Info("Publishing group changes", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)
	settler := service.NewSettler(store, locker, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	// Auth runs first so the inner interceptors see the caller. Rejected requests
	// are still logged by LogRequests.
	opts := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, api.PublicProcedures),
		middleware.LoggingInterceptor(logger),
		metrics.Interceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, logger), opts))
	mux.Handle(api.NewGroupServiceHandler(service.NewGroupService(store, logger), opts))
	mux.Handle(api.NewExpenseServiceHandler(service.NewExpenseService(store, settler, publisher, logger), opts))
	mux.Handle(api.NewDebtServiceHandler(service.NewDebtService(store, logger), opts))
	mux.Handle(service.ExportPattern, middleware.RequireAuthHTTP(jwtManager, service.NewExportHandler(store, logger)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// h2c serves HTTP/2 without TLS, which Connect's gRPC protocol needs.
	handler := h2c.NewHandler(middleware.LogRequests(logger, middleware.CORS(mux)), &http2.Server{})
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Connect server starting", "address", srv.Addr, "auto_settle", cfg.AutoSettleMode)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newLocker returns Redis locks when REDIS_ADDR is set and in-process locks otherwise.
func newLocker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (lock.Locker, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("Using in-process group locks")
		return lock.NewLocal(), func() {}, nil
	}

	client, err := lock.Dial(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Using Redis group locks", "addr", cfg.RedisAddr, "ttl", cfg.LockTTL)
	return lock.NewRedis(client, cfg.LockTTL), func() { client.Close() }, nil
}
