// FilePath: internal/models/models.reading.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ReadingStatus tracks the review state of a submitted reading.
type ReadingStatus string

const (
	StatusPending  ReadingStatus = "pending"
	StatusApproved ReadingStatus = "approved"
	StatusRejected ReadingStatus = "rejected"
)

// Location is a GPS fix captured with a reading.
type Location struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty" db:"accuracy"`
}

// Value implements the driver.Valuer interface
func (l Location) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *Location) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Reading is one submitted meter-value record. Append-only from the
// client's perspective; only the review fields are mutated afterwards,
// and only by an admin.
type Reading struct {
	ID             string        `json:"id" db:"id"`
	OwnerID        string        `json:"owner_id" db:"owner_id"`
	MeterNumber    string        `json:"meter_number" db:"meter_number"`
	MeterValue     float64       `json:"meter_value" db:"meter_value"`
	Notes          string        `json:"notes,omitempty" db:"notes"`
	MeterPhotoURL  string        `json:"meter_photo_url" db:"meter_photo_url"`
	FacadePhotoURL string        `json:"facade_photo_url,omitempty" db:"facade_photo_url"`
	Location       Location      `json:"location" db:"location"`
	MapLink        string        `json:"map_link" db:"map_link"`
	Status         ReadingStatus `json:"status" db:"status"`
	ReviewedBy     string        `json:"reviewed_by,omitempty" db:"reviewed_by" readxs:"admin,system"`
	ReviewedAt     *time.Time    `json:"reviewed_at,omitempty" db:"reviewed_at" readxs:"admin,system"`
	ReviewNotes    string        `json:"review_notes,omitempty" db:"review_notes" readxs:"admin,system"`
	OwnerName      string        `json:"owner_name,omitempty" db:"owner_name"`
	OwnerEmail     string        `json:"owner_email,omitempty" db:"owner_email"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}
