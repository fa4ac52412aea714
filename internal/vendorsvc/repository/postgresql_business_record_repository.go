package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/dealgrid/vendorsync/internal/database"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"

	apperrors "github.com/dealgrid/vendorsync/internal/errors"
)

// PostgreSQLBusinessRecordRepository handles business record persistence for PostgreSQL
type PostgreSQLBusinessRecordRepository struct {
	db *sql.DB
}

// NewPostgreSQLBusinessRecordRepository creates a new PostgreSQLBusinessRecordRepository
func NewPostgreSQLBusinessRecordRepository(db *sql.DB) *PostgreSQLBusinessRecordRepository {
	return &PostgreSQLBusinessRecordRepository{
		db: db,
	}
}

// Create inserts a new business record
func (r *PostgreSQLBusinessRecordRepository) Create(ctx context.Context, record *domain.BusinessRecord) error {
	querier := database.GetTx(ctx, r.db)

	documents, err := marshalDocuments(record.Documents)
	if err != nil {
		return err
	}

	query := `INSERT INTO business_records
			  (id, profile_id, business_name, category, email, phone, verification_status, documents, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`

	_, err = querier.ExecContext(ctx, query,
		record.ID, record.ProfileID, record.BusinessName, record.Category,
		record.Email, record.Phone, record.VerificationStatus, documents)
	if err != nil {
		return apperrors.Wrap(err, "failed to create business record")
	}
	return nil
}

// GetByID retrieves a business record by ID
func (r *PostgreSQLBusinessRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BusinessRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, profile_id, business_name, category, email, phone, verification_status, documents, created_at, updated_at
			  FROM business_records WHERE id = $1`

	record, err := scanBusinessRecord(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBusinessRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get business record by id")
	}
	return record, nil
}

// ListByProfileID retrieves all business records belonging to a profile
func (r *PostgreSQLBusinessRecordRepository) ListByProfileID(ctx context.Context, profileID uuid.UUID) ([]*domain.BusinessRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, profile_id, business_name, category, email, phone, verification_status, documents, created_at, updated_at
			  FROM business_records WHERE profile_id = $1 ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, profileID)
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
func (r *PostgreSQLBusinessRecordRepository) CountByProfileID(ctx context.Context, profileID uuid.UUID) (int, error) {
	var count int
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM business_records WHERE profile_id = $1`

	err := querier.QueryRowContext(ctx, query, profileID).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count business records")
	}
	return count, nil
}

// UpdateEmailByProfileID updates the contact email on every record of a profile
func (r *PostgreSQLBusinessRecordRepository) UpdateEmailByProfileID(ctx context.Context, profileID uuid.UUID, email string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE business_records SET email = $1, updated_at = NOW() WHERE profile_id = $2`

	_, err := querier.ExecContext(ctx, query, email, profileID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update business record email")
	}
	return nil
}

// UpdatePhoneByProfileID updates the contact phone on every record of a profile
func (r *PostgreSQLBusinessRecordRepository) UpdatePhoneByProfileID(ctx context.Context, profileID uuid.UUID, phone string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE business_records SET phone = $1, updated_at = NOW() WHERE profile_id = $2`

	_, err := querier.ExecContext(ctx, query, phone, profileID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update business record phone")
	}
	return nil
}

// UpdateStatusByProfileID updates the verification status on every record of a profile
func (r *PostgreSQLBusinessRecordRepository) UpdateStatusByProfileID(ctx context.Context, profileID uuid.UUID, status domain.VerificationStatus) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE business_records SET verification_status = $1, updated_at = NOW() WHERE profile_id = $2`

	_, err := querier.ExecContext(ctx, query, status, profileID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update business record status")
	}
	return nil
}

// Delete removes a business record
func (r *PostgreSQLBusinessRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM business_records WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete business record")
	}
	return ensureRowAffected(result, domain.ErrBusinessRecordNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBusinessRecord(row rowScanner) (*domain.BusinessRecord, error) {
	var record domain.BusinessRecord
	var documents []byte

	err := row.Scan(
		&record.ID, &record.ProfileID, &record.BusinessName, &record.Category,
		&record.Email, &record.Phone, &record.VerificationStatus, &documents,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalDocuments(documents, &record.Documents); err != nil {
		return nil, err
	}
	return &record, nil
}

func marshalDocuments(documents []string) ([]byte, error) {
	if documents == nil {
		documents = []string{}
	}
	data, err := json.Marshal(documents)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal documents")
	}
	return data, nil
}

func unmarshalDocuments(data []byte, documents *[]string) error {
	if len(data) == 0 {
		*documents = nil
		return nil
	}
	if err := json.Unmarshal(data, documents); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal documents")
	}
	return nil
}
