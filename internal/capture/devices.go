// FilePath: internal/capture/devices.go
package capture

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied is returned when the user denied a device capability.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrTimeout is returned when a capability did not answer in time.
	ErrTimeout = errors.New("capability timed out")
	// ErrCancelled is returned when the user dismissed the capability UI.
	ErrCancelled = errors.New("cancelled by user")
)

// Position is a device GPS fix.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// Geolocation abstracts the device location capability.
type Geolocation interface {
	CurrentPosition(ctx context.Context) (*Position, error)
}

// Camera abstracts the device camera capability.
type Camera interface {
	Capture(ctx context.Context) (*Photo, error)
}

// Photo is a captured image blob with its mime type.
type Photo struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
}
