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

// MySQLProfileRepository handles profile persistence for MySQL
type MySQLProfileRepository struct {
	db *sql.DB
}

// NewMySQLProfileRepository creates a new MySQLProfileRepository
func NewMySQLProfileRepository(db *sql.DB) *MySQLProfileRepository {
	return &MySQLProfileRepository{
		db: db,
	}
}

// Create inserts a new profile
func (r *MySQLProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO profiles (id, external_identity_id, email, phone, created_at, updated_at)
			  VALUES (?, ?, ?, ?, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		profile.ID.String(), profile.ExternalIdentityID, profile.Email, profile.Phone)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrVendorAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create profile")
	}
	return nil
}

// GetByID retrieves a profile by ID
func (r *MySQLProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, external_identity_id, email, phone, created_at, updated_at
			  FROM profiles WHERE id = ?`

	err := querier.QueryRowContext(ctx, query, id.String()).Scan(
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
func (r *MySQLProfileRepository) GetByExternalIdentityID(
	ctx context.Context,
	externalIdentityID string,
) (*domain.Profile, error) {
	var profile domain.Profile
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, external_identity_id, email, phone, created_at, updated_at
			  FROM profiles WHERE external_identity_id = ?`

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
func (r *MySQLProfileRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE profiles SET email = ?, updated_at = NOW() WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, email, id.String())
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrVendorAlreadyExists
		}
		return apperrors.Wrap(err, "failed to update profile email")
	}
	return ensureRowAffected(result, domain.ErrProfileNotFound)
}

// UpdatePhone updates a profile's phone
func (r *MySQLProfileRepository) UpdatePhone(ctx context.Context, id uuid.UUID, phone string) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE profiles SET phone = ?, updated_at = NOW() WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, phone, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to update profile phone")
	}
	return ensureRowAffected(result, domain.ErrProfileNotFound)
}

// Delete removes a profile
func (r *MySQLProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM profiles WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, id.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete profile")
	}
	return ensureRowAffected(result, domain.ErrProfileNotFound)
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "error 1062")
}
