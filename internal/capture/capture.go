// FilePath: internal/capture/capture.go
package capture

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/fieldworks/meterhub/internal/errors"
	"github.com/fieldworks/meterhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// PhotoSlot names one of the photo positions on a capture session.
type PhotoSlot string

const (
	SlotMeter  PhotoSlot = "meter"
	SlotFacade PhotoSlot = "facade"
)

// ErrSubmitInFlight is returned when a second submit attempt arrives
// while one is already running. The attempt is rejected, not queued.
var ErrSubmitInFlight = errors.NewValidationError("a submission is already in progress", nil)

// ValidationResult is the structured outcome of Validate. Never an error:
// an invalid session is a normal state, not a failure.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons,omitempty"`
}

// Session is the transient client-side state of one in-progress reading.
// Owned by a single capture flow; the mutex only guards the submit flag,
// which doubles as the resubmission lock.
type Session struct {
	MeterNumber string
	Notes       string

	meterValue    *float64
	photos        map[PhotoSlot]*Photo
	location      *models.Location
	requireFacade bool

	LocationAcquired   bool
	ManualLocationMode bool

	mu         sync.Mutex
	submitting bool
}

// NewSession creates an empty capture session. requireFacade selects the
// two-photo variant; the one-photo variant needs only the meter shot.
func NewSession(requireFacade bool) *Session {
	return &Session{
		photos:        make(map[PhotoSlot]*Photo),
		requireFacade: requireFacade,
	}
}

// SetMeterValue accepts any number; negative values are rejected at
// submission time, not at entry time.
func (s *Session) SetMeterValue(v float64) {
	s.meterValue = &v
}

// MeterValue returns the entered value and whether one has been entered.
func (s *Session) MeterValue() (float64, bool) {
	if s.meterValue == nil {
		return 0, false
	}
	return *s.meterValue, true
}

// AttachPhoto overwrites any existing blob in the slot. The image content
// is not inspected.
func (s *Session) AttachPhoto(slot PhotoSlot, photo *Photo) {
	s.photos[slot] = photo
}

// ClearPhoto empties the slot. Idempotent.
func (s *Session) ClearPhoto(slot PhotoSlot) {
	delete(s.photos, slot)
}

// Photo returns the blob attached to the slot, or nil.
func (s *Session) Photo(slot PhotoSlot) *Photo {
	return s.photos[slot]
}

// Location returns the captured coordinate, or nil if none is set.
func (s *Session) Location() *models.Location {
	return s.location
}

// AcquireLocation asks the device for a position with a bounded timeout.
// On failure or denial it flips the session into manual-entry mode and
// leaves the location unset. No automatic retry.
func (s *Session) AcquireLocation(ctx context.Context, geo Geolocation, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pos, err := geo.CurrentPosition(ctx)
	if err != nil {
		s.ManualLocationMode = true
		nuts.L.Warnf("[Capture] Location acquisition failed, falling back to manual entry: %v", err)
		return errors.NewPermissionError("could not acquire device location", err)
	}

	s.location = &models.Location{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Accuracy:  pos.Accuracy,
	}
	s.LocationAcquired = true
	s.ManualLocationMode = false
	return nil
}

// SetLocationManually parses and sets a user-typed coordinate pair. On a
// parse failure the stored location is left unchanged.
func (s *Session) SetLocationManually(lat, lon string) error {
	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return errors.NewValidationError("latitude is not a number", err)
	}
	longitude, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return errors.NewValidationError("longitude is not a number", err)
	}

	s.location = &models.Location{Latitude: latitude, Longitude: longitude}
	s.ManualLocationMode = false
	return nil
}

// Validate checks the submission invariant: meter value present and
// non-negative, required photo slots filled, location set.
func (s *Session) Validate() ValidationResult {
	var reasons []string

	if s.meterValue == nil {
		reasons = append(reasons, "meter value is required")
	} else if *s.meterValue < 0 {
		reasons = append(reasons, "meter value must be non-negative")
	}

	if s.photos[SlotMeter] == nil {
		reasons = append(reasons, "meter photo is required")
	}
	if s.requireFacade && s.photos[SlotFacade] == nil {
		reasons = append(reasons, "facade photo is required")
	}

	if s.location == nil {
		reasons = append(reasons, "location is required")
	}

	return ValidationResult{Valid: len(reasons) == 0, Reasons: reasons}
}

// BeginSubmit marks the session as submitting. A second call before
// EndSubmit is rejected outright.
func (s *Session) BeginSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrSubmitInFlight
	}
	s.submitting = true
	return nil
}

// EndSubmit clears the submitting flag.
func (s *Session) EndSubmit() {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
}

// Submitting reports whether a submission is in flight.
func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Reset clears all captured state, as on navigating away or after a
// successful submission.
func (s *Session) Reset() {
	s.MeterNumber = ""
	s.Notes = ""
	s.meterValue = nil
	s.photos = make(map[PhotoSlot]*Photo)
	s.location = nil
	s.LocationAcquired = false
	s.ManualLocationMode = false
}
