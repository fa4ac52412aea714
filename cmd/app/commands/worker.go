package commands

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/dealgrid/vendorsync/internal/app"
	"github.com/dealgrid/vendorsync/internal/config"
)

// RunWorker runs the outbox replay worker on its own, without the API server.
// It blocks until the context is cancelled or SIGINT/SIGTERM is received.
func RunWorker(ctx context.Context) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	worker, err := container.OutboxUseCase()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting standalone worker process",
		slog.String("db_driver", cfg.DBDriver),
	)

	if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("worker stopped")
	return nil
}
