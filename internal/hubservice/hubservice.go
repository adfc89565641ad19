package hubservice

import (
	"context"

	"github.com/fieldworks/meterhub/internal/capture"
	"github.com/fieldworks/meterhub/internal/config"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/gateway"
	"github.com/fieldworks/meterhub/internal/models"
	"github.com/fieldworks/meterhub/internal/pipeline"
	"github.com/fieldworks/meterhub/internal/repository"
)

// HubService contains the gateway and service-wide dependencies
type HubService struct {
	Gateway    *gateway.Gateway
	Submission *pipeline.Pipeline
	Capture    config.CaptureConfig
}

// New creates a new HubService instance
func New(gw *gateway.Gateway, submission *pipeline.Pipeline, captureCfg config.CaptureConfig) *HubService {
	return &HubService{
		Gateway:    gw,
		Submission: submission,
		Capture:    captureCfg,
	}
}

// NewCaptureSession creates an empty capture session in the configured
// photo variant.
func (s *HubService) NewCaptureSession() *capture.Session {
	return capture.NewSession(s.Capture.RequireFacadePhoto)
}

// AcquireLocation captures a device GPS fix into the session, bounded by
// the configured acquisition timeout.
func (s *HubService) AcquireLocation(ctx context.Context, sess *capture.Session, geo capture.Geolocation) error {
	return sess.AcquireLocation(ctx, geo, s.Capture.LocationTimeout)
}

// Validate checks if all required dependencies are initialized
func (s *HubService) Validate() error {
	if s.Gateway == nil {
		return errors.NewInternalError("missing gateway", nil)
	}
	if err := s.Gateway.Validate(); err != nil {
		return err
	}
	if s.Submission == nil {
		return errors.NewInternalError("missing submission pipeline", nil)
	}
	return nil
}

// clampPagination normalizes list pagination: limit defaults to 50,
// capped at 100; negative offsets become 0.
func clampPagination(offset, limit int) (int, int) {
	if limit <= 0 {
		limit = 50 // Default limit
	} else if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// scopeFor narrows queries to the caller's own records unless the caller
// is an admin. Applied on every read, not only at the edges: this is the
// only access-control enforcement visible at this layer.
func scopeFor(caller *models.Profile) repository.ReadingScope {
	if caller.IsAdmin() {
		return repository.ReadingScope{}
	}
	return repository.ReadingScope{OwnerID: caller.ID}
}
