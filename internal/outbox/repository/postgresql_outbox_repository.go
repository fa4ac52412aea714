// Package repository provides data persistence implementations for outbox entries.
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

// PostgreSQLOutboxRepository handles outbox entry persistence for PostgreSQL
type PostgreSQLOutboxRepository struct {
	db *sql.DB
}

// NewPostgreSQLOutboxRepository creates a new PostgreSQLOutboxRepository
func NewPostgreSQLOutboxRepository(db *sql.DB) *PostgreSQLOutboxRepository {
	return &PostgreSQLOutboxRepository{
		db: db,
	}
}

// Create inserts a new outbox entry
func (r *PostgreSQLOutboxRepository) Create(ctx context.Context, entry *domain.OutboxEntry) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sync_outbox (id, entry_type, payload, attempts, last_error, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		entry.ID, entry.Type, entry.Payload, entry.Attempts, entry.LastError)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox entry")
	}
	return nil
}

// GetByID retrieves an outbox entry by ID
func (r *PostgreSQLOutboxRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OutboxEntry, error) {
	var entry domain.OutboxEntry
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, entry_type, payload, attempts, last_error, created_at, updated_at
			  FROM sync_outbox WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
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

// GetEligible claims entries that are due for a retry attempt. The backoff
// window for an entry grows as baseInterval * multiplier^attempts from its
// last update; entries that have never been attempted are due immediately.
// Rows are locked with SKIP LOCKED so concurrent workers never claim the
// same entry, and entries at or past maxAttempts are left alone for
// operator inspection. Must run inside a transaction.
func (r *PostgreSQLOutboxRepository) GetEligible(
	ctx context.Context,
	limit int,
	maxAttempts int,
	baseInterval time.Duration,
	multiplier float64,
) ([]*domain.OutboxEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, entry_type, payload, attempts, last_error, created_at, updated_at
			  FROM sync_outbox
			  WHERE attempts < $1
			    AND (attempts = 0 OR updated_at + ($2 * power($3, attempts)) * interval '1 second' <= NOW())
			  ORDER BY created_at ASC
			  LIMIT $4
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, maxAttempts, baseInterval.Seconds(), multiplier, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get eligible outbox entries")
	}
	defer rows.Close()

	return scanOutboxEntries(rows)
}

// Update persists attempt count and last error changes
func (r *PostgreSQLOutboxRepository) Update(ctx context.Context, entry *domain.OutboxEntry) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE sync_outbox SET attempts = $1, last_error = $2, updated_at = NOW() WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, entry.Attempts, entry.LastError, entry.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox entry")
	}
	return ensureRowAffected(result, domain.ErrOutboxEntryNotFound)
}

// Delete removes an outbox entry after successful replay
func (r *PostgreSQLOutboxRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM sync_outbox WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete outbox entry")
	}
	return ensureRowAffected(result, domain.ErrOutboxEntryNotFound)
}

// ListExhausted returns entries that have used up their retry budget
func (r *PostgreSQLOutboxRepository) ListExhausted(ctx context.Context, maxAttempts, limit int) ([]*domain.OutboxEntry, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, entry_type, payload, attempts, last_error, created_at, updated_at
			  FROM sync_outbox
			  WHERE attempts >= $1
			  ORDER BY created_at ASC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list exhausted outbox entries")
	}
	defer rows.Close()

	return scanOutboxEntries(rows)
}

// CountPending counts entries still inside their retry budget
func (r *PostgreSQLOutboxRepository) CountPending(ctx context.Context, maxAttempts int) (int, error) {
	var count int
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM sync_outbox WHERE attempts < $1`

	err := querier.QueryRowContext(ctx, query, maxAttempts).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count pending outbox entries")
	}
	return count, nil
}

// CountExhausted counts entries that have used up their retry budget
func (r *PostgreSQLOutboxRepository) CountExhausted(ctx context.Context, maxAttempts int) (int, error) {
	var count int
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM sync_outbox WHERE attempts >= $1`

	err := querier.QueryRowContext(ctx, query, maxAttempts).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count exhausted outbox entries")
	}
	return count, nil
}

func scanOutboxEntries(rows *sql.Rows) ([]*domain.OutboxEntry, error) {
	var entries []*domain.OutboxEntry
	for rows.Next() {
		var entry domain.OutboxEntry
		err := rows.Scan(
			&entry.ID, &entry.Type, &entry.Payload, &entry.Attempts, &entry.LastError,
			&entry.CreatedAt, &entry.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox entry")
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate outbox entries")
	}
	return entries, nil
}

// ensureRowAffected maps a zero-row update/delete to the given domain error.
func ensureRowAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read rows affected")
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
