// FilePath: internal/hubservice/hubservice.meters.go
package hubservice

import (
	"context"
	"time"

	"github.com/fieldworks/meterhub/internal/aggregate"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// CreateMeter registers a meter for the caller. Consumption is derived
// from the two stored readings; the owner is always the caller.
func (s *HubService) CreateMeter(ctx context.Context, caller *models.Profile, meter *models.Meter) error {
	if meter.MeterNumber == "" {
		return errors.NewValidationError("meter number is required", nil)
	}

	if meter.ID == "" {
		meter.ID = nuts.NID("mt", 12)
	}
	meter.OwnerID = caller.ID
	meter.Consumption = meter.CurrentReading - meter.PreviousReading

	now := time.Now()
	meter.CreatedAt = now
	meter.UpdatedAt = now
	if meter.ReadingDate.IsZero() {
		meter.ReadingDate = now
	}

	nuts.L.Infof("[MeterService] Creating meter %s (%s)", meter.MeterNumber, meter.ID)
	return s.Gateway.Meters.Create(ctx, meter)
}

// GetMeter retrieves one meter. Non-admin callers may only read their own.
func (s *HubService) GetMeter(ctx context.Context, caller *models.Profile, id string) (*models.Meter, error) {
	meter, err := s.Gateway.Meters.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && meter.OwnerID != caller.ID {
		return nil, errors.NewAuthorizationError("meter belongs to another user", nil)
	}
	return meter, nil
}

// UpdateMeter updates a meter's readings and metadata, rederiving the
// consumption figure.
func (s *HubService) UpdateMeter(ctx context.Context, caller *models.Profile, meter *models.Meter) error {
	existing, err := s.GetMeter(ctx, caller, meter.ID)
	if err != nil {
		return err
	}

	meter.OwnerID = existing.OwnerID
	meter.Consumption = meter.CurrentReading - meter.PreviousReading
	meter.UpdatedAt = time.Now()

	return s.Gateway.Meters.Update(ctx, meter)
}

// DeleteMeter removes a meter. Non-admin callers may only delete their own.
func (s *HubService) DeleteMeter(ctx context.Context, caller *models.Profile, id string) error {
	if _, err := s.GetMeter(ctx, caller, id); err != nil {
		return err
	}
	nuts.L.Infof("[MeterService] Deleting meter %s", id)
	return s.Gateway.Meters.Delete(ctx, id)
}

// ListMeters retrieves a paginated, owner-scoped list of meters.
func (s *HubService) ListMeters(ctx context.Context, caller *models.Profile, offset, limit int) ([]*models.Meter, error) {
	offset, limit = clampPagination(offset, limit)
	return s.Gateway.Meters.List(ctx, scopeFor(caller), offset, limit)
}

// FleetStats recomputes fleet-wide consumption statistics over the
// caller-visible meter set.
func (s *HubService) FleetStats(ctx context.Context, caller *models.Profile) (*aggregate.FleetStats, error) {
	meters, err := s.Gateway.Meters.List(ctx, scopeFor(caller), 0, 1000)
	if err != nil {
		return nil, err
	}

	stats := aggregate.FleetSummary(meters)
	return &stats, nil
}
