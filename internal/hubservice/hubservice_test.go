package hubservice

import (
	"context"
	"testing"
	"time"

	"github.com/fieldworks/meterhub/internal/capture"
	"github.com/fieldworks/meterhub/internal/config"
	"github.com/fieldworks/meterhub/internal/database"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/gateway"
	"github.com/fieldworks/meterhub/internal/models"
	"github.com/fieldworks/meterhub/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scopedReadingRepo records the scope and pagination of every List call
// and serves a fixed set of readings.
type scopedReadingRepo struct {
	readings []*models.Reading

	lastScope   repository.ReadingScope
	lastFilters models.ReadingFilters
	lastOffset  int
	lastLimit   int

	updatedID       string
	updatedStatus   models.ReadingStatus
	updatedReviewer string
}

func (f *scopedReadingRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (f *scopedReadingRepo) Create(ctx context.Context, reading *models.Reading) error {
	f.readings = append(f.readings, reading)
	return nil
}

func (f *scopedReadingRepo) Get(ctx context.Context, id string) (*models.Reading, error) {
	for _, r := range f.readings {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.NewNotFoundError("reading not found", nil)
}

func (f *scopedReadingRepo) Delete(ctx context.Context, id string) error {
	for i, r := range f.readings {
		if r.ID == id {
			f.readings = append(f.readings[:i], f.readings[i+1:]...)
			return nil
		}
	}
	return errors.NewNotFoundError("reading not found", nil)
}

func (f *scopedReadingRepo) List(ctx context.Context, scope repository.ReadingScope, filters models.ReadingFilters, offset, limit int) ([]*models.Reading, error) {
	f.lastScope = scope
	f.lastFilters = filters
	f.lastOffset = offset
	f.lastLimit = limit

	var out []*models.Reading
	for _, r := range f.readings {
		if scope.OwnerID == "" || r.OwnerID == scope.OwnerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *scopedReadingRepo) UpdateStatus(ctx context.Context, id string, status models.ReadingStatus, reviewerID, reviewNotes string, reviewedAt time.Time) error {
	f.updatedID = id
	f.updatedStatus = status
	f.updatedReviewer = reviewerID
	return nil
}

func (f *scopedReadingRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	for _, r := range f.readings {
		if r.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func newTestService(repo repository.ReadingRepository) *HubService {
	return New(&gateway.Gateway{Readings: repo}, nil, config.CaptureConfig{
		LocationTimeout:    time.Second,
		RequireFacadePhoto: true,
	})
}

type fakeGeolocation struct {
	pos *capture.Position
	err error
}

func (f *fakeGeolocation) CurrentPosition(ctx context.Context) (*capture.Position, error) {
	if f.err != nil {
		return nil, f.err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return f.pos, nil
	}
}

func admin() *models.Profile {
	return &models.Profile{ID: "adm1", Email: "admin@example.com", Role: models.RoleAdmin}
}

func medidor(id string) *models.Profile {
	return &models.Profile{ID: id, Email: id + "@example.com", Role: models.RoleMedidor}
}

func seedRepo() *scopedReadingRepo {
	return &scopedReadingRepo{readings: []*models.Reading{
		{ID: "rd_1", OwnerID: "u1", MeterNumber: "m1", MeterValue: 10, Status: models.StatusPending, CreatedAt: time.Now()},
		{ID: "rd_2", OwnerID: "u1", MeterNumber: "m1", MeterValue: 25, Status: models.StatusApproved, ReviewedBy: "adm1", ReviewNotes: "ok", CreatedAt: time.Now()},
		{ID: "rd_3", OwnerID: "u2", MeterNumber: "m9", MeterValue: 7, Status: models.StatusPending, CreatedAt: time.Now()},
	}}
}

func TestListReadingsScoping(t *testing.T) {
	t.Run("field agent sees only own readings", func(t *testing.T) {
		repo := seedRepo()
		svc := newTestService(repo)

		readings, err := svc.ListReadings(context.Background(), medidor("u1"), models.ReadingFilters{}, 0, 50)
		require.NoError(t, err)

		assert.Equal(t, "u1", repo.lastScope.OwnerID)
		require.Len(t, readings, 2)
		for _, r := range readings {
			assert.Equal(t, "u1", r.OwnerID)
		}
	})

	t.Run("admin sees everything", func(t *testing.T) {
		repo := seedRepo()
		svc := newTestService(repo)

		readings, err := svc.ListReadings(context.Background(), admin(), models.ReadingFilters{}, 0, 50)
		require.NoError(t, err)

		assert.Empty(t, repo.lastScope.OwnerID)
		assert.Len(t, readings, 3)
	})

	t.Run("pagination is clamped", func(t *testing.T) {
		repo := seedRepo()
		svc := newTestService(repo)

		_, err := svc.ListReadings(context.Background(), admin(), models.ReadingFilters{}, -5, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, repo.lastOffset)
		assert.Equal(t, 50, repo.lastLimit)

		_, err = svc.ListReadings(context.Background(), admin(), models.ReadingFilters{}, 0, 500)
		require.NoError(t, err)
		assert.Equal(t, 100, repo.lastLimit)
	})

	t.Run("filters pass through to the repository", func(t *testing.T) {
		repo := seedRepo()
		svc := newTestService(repo)

		after := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		before := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		filters := models.ReadingFilters{
			Search:        "torre",
			Status:        models.StatusPending,
			MeterNumber:   "m1",
			CreatedAfter:  &after,
			CreatedBefore: &before,
		}

		_, err := svc.ListReadings(context.Background(), admin(), filters, 0, 50)
		require.NoError(t, err)
		assert.Equal(t, filters, repo.lastFilters)
	})
}

func TestGetReadingOwnership(t *testing.T) {
	repo := seedRepo()
	svc := newTestService(repo)

	t.Run("owner reads own record", func(t *testing.T) {
		reading, err := svc.GetReading(context.Background(), medidor("u1"), "rd_1")
		require.NoError(t, err)
		assert.Equal(t, "rd_1", reading.ID)
	})

	t.Run("cross-owner read is rejected", func(t *testing.T) {
		_, err := svc.GetReading(context.Background(), medidor("u2"), "rd_1")
		require.Error(t, err)
		apiErr, ok := err.(*errors.APIError)
		require.True(t, ok)
		assert.Equal(t, errors.ErrorTypeAuthorize, apiErr.Type)
	})

	t.Run("admin reads any record", func(t *testing.T) {
		reading, err := svc.GetReading(context.Background(), admin(), "rd_3")
		require.NoError(t, err)
		assert.Equal(t, "u2", reading.OwnerID)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := svc.GetReading(context.Background(), admin(), "rd_missing")
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestReadingFieldFiltering(t *testing.T) {
	repo := seedRepo()
	svc := newTestService(repo)

	t.Run("review fields are hidden from field agents", func(t *testing.T) {
		reading, err := svc.GetReading(context.Background(), medidor("u1"), "rd_2")
		require.NoError(t, err)

		assert.Equal(t, "rd_2", reading.ID)
		assert.Equal(t, models.StatusApproved, reading.Status)
		assert.Empty(t, reading.ReviewedBy)
		assert.Empty(t, reading.ReviewNotes)
	})

	t.Run("review fields are visible to admins", func(t *testing.T) {
		reading, err := svc.GetReading(context.Background(), admin(), "rd_2")
		require.NoError(t, err)

		assert.Equal(t, "adm1", reading.ReviewedBy)
		assert.Equal(t, "ok", reading.ReviewNotes)
	})
}

func TestDeleteReadingOwnership(t *testing.T) {
	repo := seedRepo()
	svc := newTestService(repo)

	err := svc.DeleteReading(context.Background(), medidor("u2"), "rd_1")
	require.Error(t, err)

	require.NoError(t, svc.DeleteReading(context.Background(), medidor("u1"), "rd_1"))
	_, err = repo.Get(context.Background(), "rd_1")
	assert.True(t, errors.IsNotFound(err))
}

func TestReviewReading(t *testing.T) {
	t.Run("only admins may review", func(t *testing.T) {
		svc := newTestService(seedRepo())

		err := svc.ReviewReading(context.Background(), medidor("u1"), "rd_1", models.StatusApproved, "")
		require.Error(t, err)
		apiErr, ok := err.(*errors.APIError)
		require.True(t, ok)
		assert.Equal(t, errors.ErrorTypeAuthorize, apiErr.Type)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		svc := newTestService(seedRepo())

		err := svc.ReviewReading(context.Background(), admin(), "rd_1", models.ReadingStatus("archived"), "")
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("records the reviewer", func(t *testing.T) {
		repo := seedRepo()
		svc := newTestService(repo)

		require.NoError(t, svc.ReviewReading(context.Background(), admin(), "rd_1", models.StatusRejected, "blurry photo"))
		assert.Equal(t, "rd_1", repo.updatedID)
		assert.Equal(t, models.StatusRejected, repo.updatedStatus)
		assert.Equal(t, "adm1", repo.updatedReviewer)
	})
}

func TestConsumptionSummaryScoping(t *testing.T) {
	repo := seedRepo()
	svc := newTestService(repo)

	summary, err := svc.ConsumptionSummary(context.Background(), medidor("u1"))
	require.NoError(t, err)
	assert.Equal(t, "u1", repo.lastScope.OwnerID)
	assert.Equal(t, 2, summary.ReadingCount)

	summary, err = svc.ConsumptionSummary(context.Background(), admin())
	require.NoError(t, err)
	assert.Empty(t, repo.lastScope.OwnerID)
	assert.Equal(t, 3, summary.ReadingCount)
}

func TestNewCaptureSession(t *testing.T) {
	svc := newTestService(seedRepo())
	sess := svc.NewCaptureSession()
	require.NotNil(t, sess)

	// Facade photo requirement comes from config
	result := sess.Validate()
	assert.Contains(t, result.Reasons, "facade photo is required")
}

func TestAcquireLocation(t *testing.T) {
	svc := newTestService(seedRepo())

	t.Run("records the fix within the configured timeout", func(t *testing.T) {
		sess := svc.NewCaptureSession()
		geo := &fakeGeolocation{pos: &capture.Position{Latitude: -0.18, Longitude: -78.47}}

		require.NoError(t, svc.AcquireLocation(context.Background(), sess, geo))
		require.NotNil(t, sess.Location())
		assert.Equal(t, -0.18, sess.Location().Latitude)
		assert.True(t, sess.LocationAcquired)
	})

	t.Run("denial falls back to manual mode", func(t *testing.T) {
		sess := svc.NewCaptureSession()
		geo := &fakeGeolocation{err: capture.ErrPermissionDenied}

		err := svc.AcquireLocation(context.Background(), sess, geo)
		require.Error(t, err)
		assert.True(t, sess.ManualLocationMode)
	})
}
