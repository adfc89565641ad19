package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fieldworks/meterhub/internal/capture"
	"github.com/fieldworks/meterhub/internal/database"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/models"
	"github.com/fieldworks/meterhub/internal/repository"
	"github.com/fieldworks/meterhub/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fakes

type fakeBlobStore struct {
	failOnUpload int // 1-based upload index to fail on; 0 = never
	uploads      []string
	deleted      []string
}

func (f *fakeBlobStore) Upload(ctx context.Context, path string, data []byte, mimeType string) error {
	if f.failOnUpload > 0 && len(f.uploads)+1 == f.failOnUpload {
		return errors.NewUploadError("storage rejected blob", nil)
	}
	f.uploads = append(f.uploads, path)
	return nil
}

func (f *fakeBlobStore) PublicURL(path string) string {
	return "http://blobs.local/" + path
}

func (f *fakeBlobStore) Delete(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeBlobStore) Open(ctx context.Context, path string) ([]byte, error) {
	return nil, errors.NewNotFoundError("blob not found", nil)
}

type fakeReadingRepo struct {
	created    []*models.Reading
	failCreate bool
}

func (f *fakeReadingRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (f *fakeReadingRepo) Create(ctx context.Context, reading *models.Reading) error {
	if f.failCreate {
		return errors.NewWriteError("insert failed", nil)
	}
	f.created = append(f.created, reading)
	return nil
}

func (f *fakeReadingRepo) Get(ctx context.Context, id string) (*models.Reading, error) {
	return nil, errors.NewNotFoundError("reading not found", nil)
}

func (f *fakeReadingRepo) Delete(ctx context.Context, id string) error { return nil }

func (f *fakeReadingRepo) List(ctx context.Context, scope repository.ReadingScope, filters models.ReadingFilters, offset, limit int) ([]*models.Reading, error) {
	return nil, nil
}

func (f *fakeReadingRepo) UpdateStatus(ctx context.Context, id string, status models.ReadingStatus, reviewerID, reviewNotes string, reviewedAt time.Time) error {
	return nil
}

func (f *fakeReadingRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	return int64(len(f.created)), nil
}

func testIdentity() *session.Identity {
	return &session.Identity{ID: "u1", Email: "agent@example.com", Role: models.RoleMedidor}
}

func completeSession() *capture.Session {
	s := capture.NewSession(true)
	s.MeterNumber = "100045"
	s.SetMeterValue(120)
	s.AttachPhoto(capture.SlotMeter, &capture.Photo{Data: []byte("meter"), MimeType: "image/jpeg"})
	s.AttachPhoto(capture.SlotFacade, &capture.Photo{Data: []byte("facade"), MimeType: "image/jpeg"})
	_ = s.SetLocationManually("-0.18", "-78.47")
	return s
}

func TestSubmit(t *testing.T) {
	t.Run("persists the composite record", func(t *testing.T) {
		repo := &fakeReadingRepo{}
		store := &fakeBlobStore{}
		p := New(repo, store, Options{})

		reading, err := p.Submit(context.Background(), testIdentity(), completeSession())
		require.NoError(t, err)
		require.Len(t, repo.created, 1)

		assert.Equal(t, "u1", reading.OwnerID)
		assert.Equal(t, 120.0, reading.MeterValue)
		assert.Equal(t, models.StatusPending, reading.Status)
		assert.Equal(t, "https://www.google.com/maps?q=-0.18,-78.47", reading.MapLink)
		assert.True(t, strings.HasPrefix(reading.MeterPhotoURL, "http://blobs.local/meters/u1/"))
		assert.True(t, strings.HasPrefix(reading.FacadePhotoURL, "http://blobs.local/facades/u1/"))

		require.Len(t, store.uploads, 2)
		assert.True(t, strings.HasPrefix(store.uploads[0], "meters/u1/"))
		assert.True(t, strings.HasPrefix(store.uploads[1], "facades/u1/"))
	})

	t.Run("owner is never taken from caller input", func(t *testing.T) {
		repo := &fakeReadingRepo{}
		p := New(repo, &fakeBlobStore{}, Options{})

		reading, err := p.Submit(context.Background(), &session.Identity{ID: "real-owner"}, completeSession())
		require.NoError(t, err)
		assert.Equal(t, "real-owner", reading.OwnerID)
	})

	t.Run("incomplete session fails validation before any upload", func(t *testing.T) {
		store := &fakeBlobStore{}
		p := New(&fakeReadingRepo{}, store, Options{})

		s := capture.NewSession(true)
		_, err := p.Submit(context.Background(), testIdentity(), s)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
		assert.Empty(t, store.uploads)
	})

	t.Run("second upload failure aborts and leaves session intact", func(t *testing.T) {
		repo := &fakeReadingRepo{}
		store := &fakeBlobStore{failOnUpload: 2}
		p := New(repo, store, Options{})

		s := completeSession()
		_, err := p.Submit(context.Background(), testIdentity(), s)
		require.Error(t, err)
		assert.True(t, errors.IsUpload(err))

		// Nothing persisted, no rollback of the first upload
		assert.Empty(t, repo.created)
		require.Len(t, store.uploads, 1)
		assert.Empty(t, store.deleted)

		// Session keeps everything the user entered
		assert.NotNil(t, s.Photo(capture.SlotMeter))
		assert.NotNil(t, s.Photo(capture.SlotFacade))
		assert.NotNil(t, s.Location())
		value, ok := s.MeterValue()
		assert.True(t, ok)
		assert.Equal(t, 120.0, value)
		assert.False(t, s.Submitting())
	})

	t.Run("insert failure leaves orphaned blobs by default", func(t *testing.T) {
		repo := &fakeReadingRepo{failCreate: true}
		store := &fakeBlobStore{}
		p := New(repo, store, Options{})

		_, err := p.Submit(context.Background(), testIdentity(), completeSession())
		require.Error(t, err)

		assert.Len(t, store.uploads, 2)
		assert.Empty(t, store.deleted)
	})

	t.Run("insert failure cleans up blobs when enabled", func(t *testing.T) {
		repo := &fakeReadingRepo{failCreate: true}
		store := &fakeBlobStore{}
		p := New(repo, store, Options{CleanupOrphans: true})

		_, err := p.Submit(context.Background(), testIdentity(), completeSession())
		require.Error(t, err)

		assert.Len(t, store.deleted, 2)
		assert.Equal(t, store.uploads, store.deleted)
	})

	t.Run("submit while in flight is rejected", func(t *testing.T) {
		p := New(&fakeReadingRepo{}, &fakeBlobStore{}, Options{})

		s := completeSession()
		require.NoError(t, s.BeginSubmit())

		_, err := p.Submit(context.Background(), testIdentity(), s)
		assert.ErrorIs(t, err, capture.ErrSubmitInFlight)
	})

	t.Run("missing identity is an auth error", func(t *testing.T) {
		p := New(&fakeReadingRepo{}, &fakeBlobStore{}, Options{})

		_, err := p.Submit(context.Background(), nil, completeSession())
		require.Error(t, err)
		apiErr, ok := err.(*errors.APIError)
		require.True(t, ok)
		assert.Equal(t, errors.ErrorTypeAuth, apiErr.Type)
	})
}

func TestMapLink(t *testing.T) {
	cases := []struct {
		lat, lon float64
		want     string
	}{
		{-0.18, -78.47, "https://www.google.com/maps?q=-0.18,-78.47"},
		{0, 0, "https://www.google.com/maps?q=0,0"},
		{51.5007, -0.1246, "https://www.google.com/maps?q=51.5007,-0.1246"},
	}

	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			got := MapLink(models.Location{Latitude: tc.lat, Longitude: tc.lon})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMapLinkDeterminism(t *testing.T) {
	loc := models.Location{Latitude: -0.18, Longitude: -78.47, Accuracy: 99}
	assert.Equal(t, MapLink(loc), MapLink(loc))
	assert.Equal(t, fmt.Sprintf("https://www.google.com/maps?q=%v,%v", loc.Latitude, loc.Longitude), MapLink(loc))
}
