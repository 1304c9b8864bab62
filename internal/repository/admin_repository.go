package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"veganbite/internal/domain"
)

var (
	ErrAdminNotFound = errors.New("admin not found")
)

// AdminRepository defines the interface for admin data access
type AdminRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Admin, error)
	FindByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*domain.Admin, error)
	// LinkGoogleProfile stores the Google id and profile of an admin on sign-in.
	LinkGoogleProfile(ctx context.Context, admin *domain.Admin) error
}

type adminRepository struct {
	db *sql.DB
}

// NewAdminRepository creates a new instance of AdminRepository
func NewAdminRepository(db *sql.DB) AdminRepository {
	return &adminRepository{db: db}
}

const adminColumns = `id, google_id, name, email, avatar, role, created_at, updated_at`

func scanAdmin(row interface{ Scan(...any) error }, a *domain.Admin) error {
	var googleID sql.NullString
	if err := row.Scan(&a.ID, &googleID, &a.Name, &a.Email, &a.Avatar, &a.Role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return err
	}
	a.GoogleID = nullableString(googleID)
	return nil
}

// FindByID retrieves an admin by ID
func (r *adminRepository) FindByID(ctx context.Context, id int64) (*domain.Admin, error) {
	admin := &domain.Admin{}
	if err := scanAdmin(r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id), admin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to find admin by ID: %w", err)
	}
	return admin, nil
}

// FindByGoogleIDOrEmail matches a Google identity to a provisioned admin,
// preferring an exact Google id match over an email match.
func (r *adminRepository) FindByGoogleIDOrEmail(ctx context.Context, googleID, email string) (*domain.Admin, error) {
	query := `
		SELECT ` + adminColumns + `
		FROM admins
		WHERE google_id = $1 OR LOWER(email) = LOWER($2)
		ORDER BY (google_id = $1) DESC NULLS LAST
		LIMIT 1
	`

	admin := &domain.Admin{}
	if err := scanAdmin(r.db.QueryRowContext(ctx, query, googleID, email), admin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return admin, nil
}

func (r *adminRepository) LinkGoogleProfile(ctx context.Context, admin *domain.Admin) error {
	query := `
		UPDATE admins
		SET google_id = $2, name = $3, avatar = $4
		WHERE id = $1
		RETURNING ` + adminColumns

	if err := scanAdmin(r.db.QueryRowContext(ctx, query, admin.ID, admin.GoogleID, admin.Name, admin.Avatar), admin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAdminNotFound
		}
		return fmt.Errorf("failed to update admin profile: %w", err)
	}
	return nil
}
