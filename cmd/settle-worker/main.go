// Command settle-worker consumes group-changed events and settles reciprocal
// splits for each changed group.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/raaksss/Monies/internal/config"
	"github.com/raaksss/Monies/internal/events"
	"github.com/raaksss/Monies/internal/lock"
	"github.com/raaksss/Monies/internal/service"
	"github.com/raaksss/Monies/internal/storage"
	"github.com/raaksss/Monies/internal/storage/sqlite"
	"github.com/raaksss/Monies/pkg/logging"
)

func main() {
	config.LoadEnvFile()
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel)

	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Settle worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Settle worker stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisAddr != "" {
		client, err := lock.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer client.Close()
		locker = lock.NewRedis(client, cfg.LockTTL)
	} else {
		logger.Warn("REDIS_ADDR not set; group locks are not shared with the server")
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	settler := service.NewSettler(store, locker, logger)
	return client.Consume(ctx, settleHandler(settler, logger))
}

// settleHandler settles a changed group. Deleted groups are acknowledged and skipped.
func settleHandler(settler *service.Settler, logger *slog.Logger) events.Handler {
	return func(ctx context.Context, msg *events.GroupChangedMessage) error {
		pairs, err := settler.AutoSettle(ctx, msg.GroupID)
		if errors.Is(err, storage.ErrNotFound) {
			logger.Info("Group no longer exists", "group_id", msg.GroupID)
			return nil
		}
		if err != nil {
			return err
		}
		logger.Debug("Group processed", "group_id", msg.GroupID, "reason", msg.Reason, "pairs", len(pairs))
		return nil
	}
}
