// FilePath: internal/repository/postgres/postgres.meter.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/fieldworks/meterhub/internal/database"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/models"
	"github.com/fieldworks/meterhub/internal/repository"
)

type MeterRepo struct {
	PostgresBaseRepo
}

func NewMeterRepository(db database.DB) *MeterRepo {
	repo := &PostgresBaseRepo{db: db}
	return &MeterRepo{PostgresBaseRepo: *repo}
}

func (r *MeterRepo) Create(ctx context.Context, meter *models.Meter) error {
	query := `
		INSERT INTO meters (
			id, meter_number, owner_id, current_reading, previous_reading,
			consumption, reading_date, latitude, longitude, address,
			created_at, updated_at
		) VALUES (
			:id, :meter_number, :owner_id, :current_reading, :previous_reading,
			:consumption, :reading_date, :latitude, :longitude, :address,
			:created_at, :updated_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, meter)
	if err != nil {
		return errors.NewWriteError("failed to create meter", err)
	}
	return nil
}

func (r *MeterRepo) Get(ctx context.Context, id string) (*models.Meter, error) {
	meter := &models.Meter{}
	query := `SELECT * FROM meters WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, meter, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("meter not found", err)
		}
		return nil, errors.NewQueryError("failed to get meter", err)
	}
	return meter, nil
}

func (r *MeterRepo) Update(ctx context.Context, meter *models.Meter) error {
	query := `
		UPDATE meters SET
			meter_number = :meter_number,
			current_reading = :current_reading,
			previous_reading = :previous_reading,
			consumption = :consumption,
			reading_date = :reading_date,
			latitude = :latitude,
			longitude = :longitude,
			address = :address,
			updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, meter)
	if err != nil {
		return errors.NewWriteError("failed to update meter", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewWriteError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("meter not found", nil)
	}
	return nil
}

func (r *MeterRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM meters WHERE id = $1`

	result, err := r.db.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return errors.NewWriteError("failed to delete meter", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewWriteError("failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("meter not found", nil)
	}
	return nil
}

func (r *MeterRepo) List(ctx context.Context, scope repository.ReadingScope, offset, limit int) ([]*models.Meter, error) {
	meters := []*models.Meter{}
	query := `
		SELECT * FROM meters
		WHERE ($1 = '' OR owner_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	err := r.db.GetDB().SelectContext(ctx, &meters, query, scope.OwnerID, limit, offset)
	if err != nil {
		return nil, errors.NewQueryError("failed to list meters", err)
	}
	return meters, nil
}
