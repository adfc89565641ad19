// FilePath: internal/repository/postgres/postgres.profile.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/fieldworks/meterhub/internal/database"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/models"
)

type ProfileRepo struct {
	PostgresBaseRepo
}

func NewProfileRepository(db database.DB) *ProfileRepo {
	repo := &PostgresBaseRepo{db: db}
	return &ProfileRepo{PostgresBaseRepo: *repo}
}

// Create inserts a profile row. Idempotent on id: a concurrent insert for
// the same account (for example a backend trigger) wins and is not an error.
func (r *ProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, name, role, created_at, updated_at)
		VALUES (:id, :email, :name, :role, :created_at, :updated_at)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, profile)
	if err != nil {
		return errors.NewWriteError("failed to create profile", err)
	}
	return nil
}

func (r *ProfileRepo) Get(ctx context.Context, id string) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `SELECT * FROM profiles WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, profile, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("profile not found", err)
		}
		return nil, errors.NewQueryError("failed to get profile", err)
	}
	return profile, nil
}

func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	profile := &models.Profile{}
	query := `SELECT * FROM profiles WHERE email = $1`

	err := r.db.GetDB().GetContext(ctx, profile, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("profile not found", err)
		}
		return nil, errors.NewQueryError("failed to get profile", err)
	}
	return profile, nil
}
