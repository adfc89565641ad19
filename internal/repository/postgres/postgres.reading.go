// FilePath: internal/repository/postgres/postgres.reading.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/fieldworks/meterhub/internal/database"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/models"
	"github.com/fieldworks/meterhub/internal/repository"
)

type ReadingRepo struct {
	PostgresBaseRepo
}

func NewReadingRepository(db database.DB) *ReadingRepo {
	repo := &PostgresBaseRepo{db: db}
	return &ReadingRepo{PostgresBaseRepo: *repo}
}

func (r *ReadingRepo) Create(ctx context.Context, reading *models.Reading) error {
	query := `
		INSERT INTO readings (
			id, owner_id, meter_number, meter_value, notes,
			meter_photo_url, facade_photo_url, location, map_link,
			status, created_at, updated_at
		) VALUES (
			:id, :owner_id, :meter_number, :meter_value, :notes,
			:meter_photo_url, :facade_photo_url, :location, :map_link,
			:status, :created_at, :updated_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, reading)
	if err != nil {
		return errors.NewWriteError("failed to create reading", err)
	}
	return nil
}

func (r *ReadingRepo) Get(ctx context.Context, id string) (*models.Reading, error) {
	reading := &models.Reading{}
	query := `
		SELECT r.id, r.owner_id, r.meter_number, r.meter_value, r.notes,
		       r.meter_photo_url, r.facade_photo_url, r.location, r.map_link,
		       r.status, COALESCE(r.reviewed_by, '') AS reviewed_by, r.reviewed_at,
		       COALESCE(r.review_notes, '') AS review_notes, r.created_at, r.updated_at,
		       COALESCE(p.name, '') AS owner_name, COALESCE(p.email, '') AS owner_email
		FROM readings r
		LEFT JOIN profiles p ON p.id = r.owner_id
		WHERE r.id = $1`

	err := r.db.GetDB().GetContext(ctx, reading, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("reading not found", err)
		}
		return nil, errors.NewQueryError("failed to get reading", err)
	}
	return reading, nil
}

func (r *ReadingRepo) List(ctx context.Context, scope repository.ReadingScope, filters models.ReadingFilters, offset, limit int) ([]*models.Reading, error) {
	readings := []*models.Reading{}
	query := `
		SELECT r.id, r.owner_id, r.meter_number, r.meter_value, r.notes,
		       r.meter_photo_url, r.facade_photo_url, r.location, r.map_link,
		       r.status, COALESCE(r.reviewed_by, '') AS reviewed_by, r.reviewed_at,
		       COALESCE(r.review_notes, '') AS review_notes, r.created_at, r.updated_at,
		       COALESCE(p.name, '') AS owner_name, COALESCE(p.email, '') AS owner_email
		FROM readings r
		LEFT JOIN profiles p ON p.id = r.owner_id
		WHERE ($1 = '' OR r.owner_id = $1)
		  AND ($2 = '' OR r.status = $2)
		  AND ($3 = '' OR r.meter_number ILIKE '%' || $3 || '%' OR r.notes ILIKE '%' || $3 || '%')
		  AND ($4 = '' OR r.meter_number = $4)
		  AND ($5::timestamptz IS NULL OR r.created_at >= $5)
		  AND ($6::timestamptz IS NULL OR r.created_at <= $6)
		ORDER BY r.created_at DESC
		LIMIT $7 OFFSET $8`

	err := r.db.GetDB().SelectContext(ctx, &readings, query,
		scope.OwnerID, string(filters.Status), filters.Search,
		filters.MeterNumber, filters.CreatedAfter, filters.CreatedBefore,
		limit, offset)
	if err != nil {
		return nil, errors.NewQueryError("failed to list readings", err)
	}
	return readings, nil
}

func (r *ReadingRepo) UpdateStatus(ctx context.Context, id string, status models.ReadingStatus, reviewerID, reviewNotes string, reviewedAt time.Time) error {
	query := `
		UPDATE readings SET
			status = $1,
			reviewed_by = $2,
			review_notes = $3,
			reviewed_at = $4,
			updated_at = $4
		WHERE id = $5`

	result, err := r.db.GetDB().ExecContext(ctx, query, status, reviewerID, reviewNotes, reviewedAt, id)
	if err != nil {
		return errors.NewWriteError("failed to update reading status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewWriteError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("reading not found", nil)
	}
	return nil
}

func (r *ReadingRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM readings WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewWriteError("failed to delete reading", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewWriteError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("reading not found", nil)
	}
	return nil
}

func (r *ReadingRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM readings WHERE owner_id = $1`

	err := r.db.GetDB().GetContext(ctx, &count, query, ownerID)
	if err != nil {
		return 0, errors.NewQueryError("failed to count readings", err)
	}
	return count, nil
}
