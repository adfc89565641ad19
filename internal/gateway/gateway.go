// FilePath: internal/gateway/gateway.go

// Package gateway bundles every remote-facing dependency (auth, table
// repositories, blob storage, cache) behind one explicitly constructed
// value. Built once at startup and passed by reference; there is no
// implicit first-access construction anywhere.
package gateway

import (
	"github.com/fieldworks/meterhub/internal/auth"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/repository"
	"github.com/fieldworks/meterhub/internal/session"
)

// Gateway is the single capability surface over the backing services.
type Gateway struct {
	Auth     *auth.Service
	Readings repository.ReadingRepository
	Meters   repository.MeterRepository
	Profiles repository.ProfileRepository
	Blobs    repository.BlobRepository
	Sessions *session.Store
}

// New creates a gateway instance
func New(
	authSvc *auth.Service,
	readings repository.ReadingRepository,
	meters repository.MeterRepository,
	profiles repository.ProfileRepository,
	blobs repository.BlobRepository,
	sessions *session.Store,
) *Gateway {
	return &Gateway{
		Auth:     authSvc,
		Readings: readings,
		Meters:   meters,
		Profiles: profiles,
		Blobs:    blobs,
		Sessions: sessions,
	}
}

// Validate checks if all required collaborators are initialized
func (g *Gateway) Validate() error {
	if g.Auth == nil {
		return ErrMissingCollaborator("auth")
	}
	if g.Readings == nil {
		return ErrMissingCollaborator("readings")
	}
	if g.Meters == nil {
		return ErrMissingCollaborator("meters")
	}
	if g.Profiles == nil {
		return ErrMissingCollaborator("profiles")
	}
	if g.Blobs == nil {
		return ErrMissingCollaborator("blobs")
	}
	if g.Sessions == nil {
		return ErrMissingCollaborator("sessions")
	}
	return nil
}

func ErrMissingCollaborator(name string) error {
	return errors.NewInternalError("missing gateway collaborator: "+name, nil)
}
