package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/srakshitha0802/Book-review-application/internal/domain"
	"github.com/srakshitha0802/Book-review-application/pkg/database"
	apperrors "github.com/srakshitha0802/Book-review-application/pkg/errors"
)

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID retrieves a profile by user id.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM profiles
		WHERE id = $1`

	var p domain.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile", id)
		}
		return nil, dbError("scan profile", err)
	}

	return &p, nil
}

// Upsert inserts the profile or updates its name if it already exists.
func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}

	query := `
		INSERT INTO profiles (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, query, p.ID, p.Name, p.CreatedAt, p.UpdatedAt); err != nil {
		return dbError("upsert profile", err)
	}

	return nil
}
