// Package repository provides data persistence implementations for vendor entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dealgrid/vendorsync/internal/database"
	"github.com/dealgrid/vendorsync/internal/vendorsvc/domain"

	apperrors "github.com/dealgrid/vendorsync/internal/errors"
)

// PostgreSQLProfileRepository handles profile persistence for PostgreSQL
type PostgreSQLProfileRepository struct {
	db *sql.DB
}

// NewPostgreSQLProfileRepository creates a new PostgreSQLProfileRepository
func NewPostgreSQLProfileRepository(db *sql.DB) *PostgreSQLProfileRepository {
	return &PostgreSQLProfileRepository{
		db: db,
	}
}

// Create inserts a new profile
func (r *PostgreSQLProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO profiles (id, external_identity_id, email, phone, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		profile.ID, profile.ExternalIdentityID, profile.Email, profile.Phone)
	if err != nil {
		// Local uniqueness is a backstop; the provider's conflict answer is authoritative.
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrVendorAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create profile")
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *PostgreSQLProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, external_identity_id, email, phone, created_at, updated_at
			  FROM profiles WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&profile.ID, &profile.ExternalIdentityID, &profile.Email, &profile.Phone,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get profile by id")
	}

	return &profile, nil
}

// GetByExternalIdentityID retrieves a profile by its external identity reference
func (r *PostgreSQLProfileRepository) GetByExternalIdentityID(
	ctx context.Context,
	externalIdentityID string,
) (*domain.Profile, error) {
	var profile domain.Profile
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, external_identity_id, email, phone, created_at, updated_at
			  FROM profiles WHERE external_identity_id = $1`

	err := querier.QueryRowContext(ctx, query, externalIdentityID).Scan(
		&profile.ID, &profile.ExternalIdentityID, &profile.Email, &profile.Phone,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get profile by external identity id")
	}

	return &profile, nil
}

// UpdateEmail updates a profile's email
func (r *PostgreSQLProfileRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE profiles SET email = $1, updated_at = NOW() WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, email, id)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrVendorAlreadyExists
		}
		return apperrors.Wrap(err, "failed to update profile email")
	}
	return ensureRowAffected(result, domain.ErrProfileNotFound)
}

// UpdatePhone updates a profile's phone
func (r *PostgreSQLProfileRepository) UpdatePhone(ctx context.Context, id uuid.UUID, phone string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE profiles SET phone = $1, updated_at = NOW() WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, phone, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update profile phone")
	}
	return ensureRowAffected(result, domain.ErrProfileNotFound)
}

// Delete removes a profile
func (r *PostgreSQLProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM profiles WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete profile")
	}
	return ensureRowAffected(result, domain.ErrProfileNotFound)
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
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
