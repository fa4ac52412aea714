// Package usecase implements the outbox worker: the periodic process that
// drains sync_outbox by replaying the unfinished half of partially-failed
// operations.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dealgrid/vendorsync/internal/database"
	"github.com/dealgrid/vendorsync/internal/metrics"
	"github.com/dealgrid/vendorsync/internal/outbox/domain"
)

// Config holds outbox worker configuration
type Config struct {
	Interval          time.Duration
	BatchSize         int
	MaxAttempts       int
	BaseInterval      time.Duration
	BackoffMultiplier float64
}

// OutboxRepository defines the outbox persistence operations the worker needs.
type OutboxRepository interface {
	GetEligible(ctx context.Context, limit, maxAttempts int, baseInterval time.Duration, multiplier float64) ([]*domain.OutboxEntry, error)
	Update(ctx context.Context, entry *domain.OutboxEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListExhausted(ctx context.Context, maxAttempts, limit int) ([]*domain.OutboxEntry, error)
	CountPending(ctx context.Context, maxAttempts int) (int, error)
	CountExhausted(ctx context.Context, maxAttempts int) (int, error)
}

// EntryProcessor replays one entry. Implementations must be idempotent.
type EntryProcessor interface {
	Process(ctx context.Context, entry *domain.OutboxEntry) error
}

// UseCase defines the interface for the outbox worker
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEntries(ctx context.Context) error
}

// OutboxUseCase drains eligible entries on a fixed interval. Entries are
// claimed with row locks inside one transaction per run, so concurrent
// worker instances never replay the same entry twice.
type OutboxUseCase struct {
	config     Config
	txManager  database.TxManager
	outboxRepo OutboxRepository
	processor  EntryProcessor
	metrics    metrics.BusinessMetrics
	logger     *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxRepository,
	processor EntryProcessor,
	m metrics.BusinessMetrics,
	logger *slog.Logger,
) *OutboxUseCase {
	if m == nil {
		m = metrics.NewNoOpBusinessMetrics()
	}
	return &OutboxUseCase{
		config:     config,
		txManager:  txManager,
		outboxRepo: outboxRepo,
		processor:  processor,
		metrics:    m,
		logger:     logger,
	}
}

// Start runs the processing loop until the context is cancelled.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	if uc.logger != nil {
		uc.logger.Info("starting outbox worker",
			slog.Duration("interval", uc.config.Interval),
			slog.Int("batch_size", uc.config.BatchSize),
			slog.Int("max_attempts", uc.config.MaxAttempts),
		)
	}

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if uc.logger != nil {
				uc.logger.Info("stopping outbox worker")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEntries(ctx); err != nil {
				if uc.logger != nil {
					uc.logger.Error("failed to process outbox entries", slog.Any("error", err))
				}
			}
		}
	}
}

// ProcessEntries claims and replays one batch of eligible entries inside a
// transaction. Entries are processed independently; one entry's failure
// leaves the others untouched.
func (uc *OutboxUseCase) ProcessEntries(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		entries, err := uc.outboxRepo.GetEligible(
			ctx,
			uc.config.BatchSize,
			uc.config.MaxAttempts,
			uc.config.BaseInterval,
			uc.config.BackoffMultiplier,
		)
		if err != nil {
			return err
		}

		if len(entries) > 0 {
			if uc.logger != nil {
				uc.logger.Info("processing outbox entries", slog.Int("count", len(entries)))
			}
			for _, entry := range entries {
				if err := uc.processEntry(ctx, entry); err != nil {
					return err
				}
			}
		}

		uc.observeDepth(ctx)
		return nil
	})
}

// processEntry replays one entry and resolves or ages it. Only repository
// errors bubble up; a replay failure is recorded on the entry itself and
// never raised further, since no caller waits on outbox completion.
func (uc *OutboxUseCase) processEntry(ctx context.Context, entry *domain.OutboxEntry) error {
	if uc.logger != nil {
		uc.logger.Info("replaying outbox entry",
			slog.String("entry_id", entry.ID.String()),
			slog.String("entry_type", entry.Type),
			slog.Int("attempts", entry.Attempts),
		)
	}

	// The replay runs inside a savepoint so a failed statement does not abort
	// the claim transaction. Rolling back to the savepoint keeps the
	// transaction usable for the attempt bookkeeping and the rest of the
	// batch.
	start := time.Now()
	err := database.WithSavepoint(ctx, "outbox_entry", func(ctx context.Context) error {
		return uc.processor.Process(ctx, entry)
	})

	if err == nil {
		uc.metrics.RecordOperation(ctx, "outbox", "entry_replay", "success")
		uc.metrics.RecordDuration(ctx, "outbox", "entry_replay", time.Since(start), "success")
		return uc.outboxRepo.Delete(ctx, entry.ID)
	}

	uc.metrics.RecordOperation(ctx, "outbox", "entry_replay", "error")
	uc.metrics.RecordDuration(ctx, "outbox", "entry_replay", time.Since(start), "error")

	entry.RecordFailure(err)
	if uc.logger != nil {
		uc.logger.Error("outbox replay failed",
			slog.String("entry_id", entry.ID.String()),
			slog.String("entry_type", entry.Type),
			slog.Int("attempts", entry.Attempts),
			slog.Any("error", err),
		)
	}

	if entry.Exhausted(uc.config.MaxAttempts) && uc.logger != nil {
		// The entry stays in the table for operator inspection; the
		// eligibility query will never select it again.
		uc.logger.Error("outbox entry exhausted its retry budget",
			slog.String("entry_id", entry.ID.String()),
			slog.String("entry_type", entry.Type),
			slog.Int("attempts", entry.Attempts),
		)
	}

	return uc.outboxRepo.Update(ctx, entry)
}

// observeDepth reports queue depth; failures here never fail the run.
func (uc *OutboxUseCase) observeDepth(ctx context.Context) {
	pending, err := uc.outboxRepo.CountPending(ctx, uc.config.MaxAttempts)
	if err != nil {
		return
	}
	exhausted, err := uc.outboxRepo.CountExhausted(ctx, uc.config.MaxAttempts)
	if err != nil {
		return
	}
	uc.metrics.RecordOutboxDepth(ctx, pending, exhausted)
}
