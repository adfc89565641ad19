// FilePath: internal/hubservice/hubservice.readings.go
package hubservice

import (
	"context"
	"time"

	"github.com/fieldworks/meterhub/internal/aggregate"
	"github.com/fieldworks/meterhub/internal/capture"
	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/models"
	"github.com/fieldworks/meterhub/internal/session"
	"github.com/itsatony/struccy"
	nuts "github.com/vaudience/go-nuts"
)

// SubmitReading runs the submission pipeline for the caller's capture
// session.
func (s *HubService) SubmitReading(ctx context.Context, caller *models.Profile, sess *capture.Session) (*models.Reading, error) {
	identity := &session.Identity{
		ID:    caller.ID,
		Email: caller.Email,
		Name:  caller.Name,
		Role:  caller.Role,
	}
	return s.Submission.Submit(ctx, identity, sess)
}

// GetReading retrieves one reading with role-based field filtering.
// Non-admin callers may only read their own records.
func (s *HubService) GetReading(ctx context.Context, caller *models.Profile, id string) (*models.Reading, error) {
	reading, err := s.Gateway.Readings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && reading.OwnerID != caller.ID {
		return nil, errors.NewAuthorizationError("reading belongs to another user", nil)
	}
	return filterReading(reading, caller)
}

// ListReadings retrieves a paginated, owner-scoped list of readings.
func (s *HubService) ListReadings(ctx context.Context, caller *models.Profile, filters models.ReadingFilters, offset, limit int) ([]*models.Reading, error) {
	offset, limit = clampPagination(offset, limit)

	readings, err := s.Gateway.Readings.List(ctx, scopeFor(caller), filters, offset, limit)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Reading, 0, len(readings))
	for _, reading := range readings {
		fr, err := filterReading(reading, caller)
		if err != nil {
			nuts.L.Warnf("[ReadingService] Failed to filter reading %s: %v", reading.ID, err)
			continue
		}
		filtered = append(filtered, fr)
	}
	return filtered, nil
}

// DeleteReading removes a reading. Non-admin callers may only delete
// their own records.
func (s *HubService) DeleteReading(ctx context.Context, caller *models.Profile, id string) error {
	reading, err := s.Gateway.Readings.Get(ctx, id)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() && reading.OwnerID != caller.ID {
		return errors.NewAuthorizationError("reading belongs to another user", nil)
	}

	nuts.L.Infof("[ReadingService] Deleting reading %s", id)
	return s.Gateway.Readings.Delete(ctx, id)
}

// ReviewReading sets the review status of a reading. Admin only; the
// reviewer identity and time are recorded.
func (s *HubService) ReviewReading(ctx context.Context, caller *models.Profile, id string, status models.ReadingStatus, notes string) error {
	if !caller.IsAdmin() {
		return errors.NewAuthorizationError("only administrators may review readings", nil)
	}
	switch status {
	case models.StatusApproved, models.StatusRejected, models.StatusPending:
	default:
		return errors.NewValidationError("unknown review status", nil)
	}

	nuts.L.Infof("[ReadingService] Reading %s reviewed by %s: %s", id, caller.ID, status)
	return s.Gateway.Readings.UpdateStatus(ctx, id, status, caller.ID, notes, time.Now())
}

// ConsumptionSummary recomputes the consumption figures over the
// caller-visible reading set. Pure recomputation on every call.
func (s *HubService) ConsumptionSummary(ctx context.Context, caller *models.Profile) (*aggregate.ConsumptionSummary, error) {
	readings, err := s.Gateway.Readings.List(ctx, scopeFor(caller), models.ReadingFilters{}, 0, 1000)
	if err != nil {
		return nil, err
	}

	summary := aggregate.Summarize(readings)
	return &summary, nil
}

// filterReading strips fields the caller's role may not read.
func filterReading(reading *models.Reading, caller *models.Profile) (*models.Reading, error) {
	roles := []string{caller.Role}

	filteredMap, err := struccy.StructToMapFieldsWithReadXS(reading, roles)
	if err != nil {
		return nil, errors.NewInternalError("failed to filter reading fields", err)
	}
	filtered := &models.Reading{}
	_, err = struccy.MergeMapStringFieldsToStruct(filtered, filteredMap, roles)
	if err != nil {
		return nil, errors.NewInternalError("failed to map filtered fields to reading struct", err)
	}
	return filtered, nil
}
