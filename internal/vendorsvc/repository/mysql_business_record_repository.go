package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/dealgrid/vendorsync/internal/database"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"

	apperrors "github.com/dealgrid/vendorsync/internal/errors"
)

// MySQLBusinessRecordRepository handles business record persistence for MySQL
type MySQLBusinessRecordRepository struct {
	db *sql.DB
}

// NewMySQLBusinessRecordRepository creates a new MySQLBusinessRecordRepository
func NewMySQLBusinessRecordRepository(db *sql.DB) *MySQLBusinessRecordRepository {
	return &MySQLBusinessRecordRepository{
		db: db,
	}
}

// Create inserts a new business record
func (r *MySQLBusinessRecordRepository) Create(ctx context.Context, record *domain.BusinessRecord) error {
	querier := database.GetTx(ctx, r.db)

	documents, err := marshalDocuments(record.Documents)
	if err != nil {
		return err
	}

	query := `INSERT INTO business_records
			  (id, profile_id, business_name, category, email, phone, verification_status, documents, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	_, err = querier.ExecContext(ctx, query,
		record.ID.String(), record.ProfileID.String(), record.BusinessName, record.Category,
		record.Email, record.Phone, record.VerificationStatus, documents)
	if err != nil {
		return apperrors.Wrap(err, "failed to create business record")
	}
	return nil
}

// GetByID retrieves a business record by ID
func (r *MySQLBusinessRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BusinessRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, profile_id, business_name, category, email, phone, verification_status, documents, created_at, updated_at
			  FROM business_records WHERE id = ?`

	record, err := scanBusinessRecord(querier.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBusinessRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get business record by id")
	}
	return record, nil
}

// ListByProfileID retrieves all business records belonging to a profile
func (r *MySQLBusinessRecordRepository) ListByProfileID(ctx context.Context, profileID uuid.UUID) ([]*domain.BusinessRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, profile_id, business_name, category, email, phone, verification_status, documents, created_at, updated_at
			  FROM business_records WHERE profile_id = ? ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, profileID.String())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list business records by profile id")
	}
	defer rows.Close()

	var records []*domain.BusinessRecord
	for rows.Next() {
		record, err := scanBusinessRecord(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan business record")
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate business records")
	}
	return records, nil
}

// CountByProfileID counts business records belonging to a profile
func (r *MySQLBusinessRecordRepository) CountByProfileID(ctx context.Context, profileID uuid.UUID) (int, error) {
	var count int
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM business_records WHERE profile_id = ?`

	err := querier.QueryRowContext(ctx, query, profileID.String()).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count business records")
	}
	return count, nil
}

// UpdateEmailByProfileID updates the contact email on every record of a profile
func (r *MySQLBusinessRecordRepository) UpdateEmailByProfileID(ctx context.Context, profileID uuid.UUID, email string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE business_records SET email = ?, updated_at = NOW() WHERE profile_id = ?`

	_, err := querier.ExecContext(ctx, query, email, profileID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to update business record email")
	}
	return nil
}

// UpdatePhoneByProfileID updates the contact phone on every record of a profile
func (r *MySQLBusinessRecordRepository) UpdatePhoneByProfileID(ctx context.Context, profileID uuid.UUID, phone string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE business_records SET phone = ?, updated_at = NOW() WHERE profile_id = ?`

	_, err := querier.ExecContext(ctx, query, phone, profileID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to update business record phone")
	}
	return nil
}

// UpdateStatusByProfileID updates the verification status on every record of a profile
func (r *MySQLBusinessRecordRepository) UpdateStatusByProfileID(ctx context.Context, profileID uuid.UUID, status domain.VerificationStatus) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE business_records SET verification_status = ?, updated_at = NOW() WHERE profile_id = ?`

	_, err := querier.ExecContext(ctx, query, status, profileID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to update business record status")
	}
	return nil
}

// Delete removes a business record
func (r *MySQLBusinessRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM business_records WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete business record")
	}
	return ensureRowAffected(result, domain.ErrBusinessRecordNotFound)
}
