package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dealgrid/vendorsync/internal/database"
	"github.com/dealgrid/vendorsync/internal/outbox/domain"

	apperrors "github.com/dealgrid/vendorsync/internal/errors"
)

// MySQLOutboxRepository handles outbox entry persistence for MySQL
type MySQLOutboxRepository struct {
	db *sql.DB
}

// NewMySQLOutboxRepository creates a new MySQLOutboxRepository
func NewMySQLOutboxRepository(db *sql.DB) *MySQLOutboxRepository {
	return &MySQLOutboxRepository{
		db: db,
	}
}

// Create inserts a new outbox entry
func (r *MySQLOutboxRepository) Create(ctx context.Context, entry *domain.OutboxEntry) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sync_outbox (id, entry_type, payload, attempts, last_error, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		entry.ID.String(), entry.Type, entry.Payload, entry.Attempts, entry.LastError)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox entry")
	}
	return nil
}

// GetByID retrieves an outbox entry by ID
func (r *MySQLOutboxRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OutboxEntry, error) {
	var entry domain.OutboxEntry
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, entry_type, payload, attempts, last_error, created_at, updated_at
			  FROM sync_outbox WHERE id = ?`

	err := querier.QueryRowContext(ctx, query, id.String()).Scan(
		&entry.ID, &entry.Type, &entry.Payload, &entry.Attempts, &entry.LastError,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOutboxEntryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get outbox entry by id")
	}

	return &entry, nil
}

// GetEligible claims entries that are due for a retry attempt. Same backoff
// window and locking semantics as the PostgreSQL implementation; requires
// MySQL 8.0 for SKIP LOCKED. Must run inside a transaction.
func (r *MySQLOutboxRepository) GetEligible(
	ctx context.Context,
	limit int,
	maxAttempts int,
	baseInterval time.Duration,
	multiplier float64,
) ([]*domain.OutboxEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, entry_type, payload, attempts, last_error, created_at, updated_at
			  FROM sync_outbox
			  WHERE attempts < ?
			    AND (attempts = 0 OR DATE_ADD(updated_at, INTERVAL (? * POW(?, attempts)) SECOND) <= NOW())
			  ORDER BY created_at ASC
			  LIMIT ?
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, maxAttempts, baseInterval.Seconds(), multiplier, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get eligible outbox entries")
	}
	defer rows.Close()

	return scanOutboxEntries(rows)
}

// Update persists attempt count and last error changes
func (r *MySQLOutboxRepository) Update(ctx context.Context, entry *domain.OutboxEntry) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_outbox SET attempts = ?, last_error = ?, updated_at = NOW() WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, entry.Attempts, entry.LastError, entry.ID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox entry")
	}
	return ensureRowAffected(result, domain.ErrOutboxEntryNotFound)
}

// Delete removes an outbox entry after successful replay
func (r *MySQLOutboxRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM sync_outbox WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete outbox entry")
	}
	return ensureRowAffected(result, domain.ErrOutboxEntryNotFound)
}

// ListExhausted returns entries that have used up their retry budget
func (r *MySQLOutboxRepository) ListExhausted(ctx context.Context, maxAttempts, limit int) ([]*domain.OutboxEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, entry_type, payload, attempts, last_error, created_at, updated_at
			  FROM sync_outbox
			  WHERE attempts >= ?
			  ORDER BY created_at ASC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list exhausted outbox entries")
	}
	defer rows.Close()

	return scanOutboxEntries(rows)
}

// CountPending counts entries still inside their retry budget
func (r *MySQLOutboxRepository) CountPending(ctx context.Context, maxAttempts int) (int, error) {
	var count int
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM sync_outbox WHERE attempts < ?`

	err := querier.QueryRowContext(ctx, query, maxAttempts).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count pending outbox entries")
	}
	return count, nil
}

// CountExhausted counts entries that have used up their retry budget
func (r *MySQLOutboxRepository) CountExhausted(ctx context.Context, maxAttempts int) (int, error) {
	var count int
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM sync_outbox WHERE attempts >= ?`

	err := querier.QueryRowContext(ctx, query, maxAttempts).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count exhausted outbox entries")
	}
	return count, nil
}
