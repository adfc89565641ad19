// FilePath: internal/pipeline/pipeline.go

// Package pipeline turns a validated capture session into a persisted
// reading: photo uploads, map-link derivation, record insert.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fieldworks/meterhub/internal/capture"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/models"
	"github.com/fieldworks/meterhub/internal/repository"
	"github.com/fieldworks/meterhub/internal/repository/blobs"
	"github.com/fieldworks/meterhub/internal/session"
	nuts "github.com/vaudience/go-nuts"
)

// Options tune pipeline behavior.
type Options struct {
	// CleanupOrphans deletes blobs uploaded by this attempt when the final
	// insert fails. Off by default: orphaned blobs stay in storage.
	CleanupOrphans bool
}

// Pipeline persists completed capture sessions. Uploads are sequential
// (meter photo, then facade) and attempt-once: the first failure aborts
// the submission and is surfaced unchanged.
type Pipeline struct {
	readings repository.ReadingRepository
	store    repository.BlobRepository
	opts     Options
}

// New creates a submission pipeline
func New(readings repository.ReadingRepository, store repository.BlobRepository, opts Options) *Pipeline {
	return &Pipeline{
		readings: readings,
		store:    store,
		opts:     opts,
	}
}

// Submit validates the session, uploads its photos and inserts the
// composite record. The owner is always taken from the given identity,
// never from session data. On any failure the session is left intact so
// the caller can retry without re-entering anything; on success the
// persisted reading is returned and the caller should reset the session.
func (p *Pipeline) Submit(ctx context.Context, identity *session.Identity, s *capture.Session) (*models.Reading, error) {
	if identity == nil {
		return nil, errors.NewAuthError("not signed in", nil)
	}
	if err := s.BeginSubmit(); err != nil {
		return nil, err
	}
	defer s.EndSubmit()

	if result := s.Validate(); !result.Valid {
		return nil, errors.NewValidationError("capture session is incomplete", nil).
			WithDetails(result.Reasons)
	}

	now := time.Now()
	var uploaded []string

	meterURL, path, err := p.uploadPhoto(ctx, "meters", identity.ID, s.Photo(capture.SlotMeter), now)
	if err != nil {
		return nil, err
	}
	uploaded = append(uploaded, path)

	var facadeURL string
	if photo := s.Photo(capture.SlotFacade); photo != nil {
		facadeURL, path, err = p.uploadPhoto(ctx, "facades", identity.ID, photo, now)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, path)
	}

	loc := s.Location()
	value, _ := s.MeterValue()

	reading := &models.Reading{
		ID:             nuts.NID("rd", 12),
		OwnerID:        identity.ID,
		MeterNumber:    s.MeterNumber,
		MeterValue:     value,
		Notes:          s.Notes,
		MeterPhotoURL:  meterURL,
		FacadePhotoURL: facadeURL,
		Location:       *loc,
		MapLink:        MapLink(*loc),
		Status:         models.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := p.readings.Create(ctx, reading); err != nil {
		// Photos uploaded by this attempt are already in storage. Without
		// cleanup they stay there as orphans.
		if p.opts.CleanupOrphans {
			p.removeOrphans(ctx, uploaded)
		}
		return nil, err
	}

	nuts.L.Infof("[Pipeline] Reading %s submitted by %s", reading.ID, identity.ID)
	return reading, nil
}

// MapLink derives the map URL from a coordinate. Deterministic in the
// location and never stored independently of it.
func MapLink(loc models.Location) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s",
		strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
		strconv.FormatFloat(loc.Longitude, 'f', -1, 64),
	)
}

func (p *Pipeline) uploadPhoto(ctx context.Context, folder, ownerID string, photo *capture.Photo, now time.Time) (url, path string, err error) {
	path = blobs.PhotoPath(folder, ownerID, photo.MimeType, now)
	if err := p.store.Upload(ctx, path, photo.Data, photo.MimeType); err != nil {
		return "", "", errors.NewUploadError("failed to upload "+folder+" photo", err)
	}
	return p.store.PublicURL(path), path, nil
}

func (p *Pipeline) removeOrphans(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := p.store.Delete(ctx, path); err != nil {
			nuts.L.Warnf("[Pipeline] Failed to remove orphaned blob %s: %v", path, err)
		}
	}
}
