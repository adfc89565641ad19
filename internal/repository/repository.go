// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fieldworks/meterhub/internal/database"
	"github.com/fieldworks/meterhub/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicate indicates that a resource already exists
	ErrDuplicate = errors.New("resource already exists")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// ReadingScope narrows a reading query to one owner. A zero OwnerID means
// no owner filter (admin reads).
type ReadingScope struct {
	OwnerID string
}

// ReadingRepository defines the interface for reading record operations
type ReadingRepository interface {
	database.Repository
	Create(ctx context.Context, reading *models.Reading) error
	Get(ctx context.Context, id string) (*models.Reading, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, scope ReadingScope, filters models.ReadingFilters, offset, limit int) ([]*models.Reading, error)
	UpdateStatus(ctx context.Context, id string, status models.ReadingStatus, reviewerID, reviewNotes string, reviewedAt time.Time) error
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

// MeterRepository defines the interface for meter registry operations
type MeterRepository interface {
	database.Repository
	Create(ctx context.Context, meter *models.Meter) error
	Get(ctx context.Context, id string) (*models.Meter, error)
	Update(ctx context.Context, meter *models.Meter) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, scope ReadingScope, offset, limit int) ([]*models.Meter, error)
}

// ProfileRepository defines the interface for user profile operations
type ProfileRepository interface {
	database.Repository
	Create(ctx context.Context, profile *models.Profile) error
	Get(ctx context.Context, id string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
}

// BlobRepository defines the interface for photo blob storage
type BlobRepository interface {
	Upload(ctx context.Context, path string, data []byte, mimeType string) error
	PublicURL(path string) string
	Delete(ctx context.Context, path string) error
	Open(ctx context.Context, path string) ([]byte, error)
}
