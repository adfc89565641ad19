// FilePath: internal/models/models.meter.go
package models

import "time"

// Meter is one registered utility meter with its running consumption.
type Meter struct {
	ID              string    `json:"id" db:"id"`
	MeterNumber     string    `json:"meter_number" db:"meter_number"`
	OwnerID         string    `json:"owner_id" db:"owner_id"`
	CurrentReading  float64   `json:"current_reading" db:"current_reading"`
	PreviousReading float64   `json:"previous_reading" db:"previous_reading"`
	Consumption     float64   `json:"consumption" db:"consumption"`
	ReadingDate     time.Time `json:"reading_date" db:"reading_date"`
	Latitude        float64   `json:"latitude" db:"latitude"`
	Longitude       float64   `json:"longitude" db:"longitude"`
	Address         string    `json:"address,omitempty" db:"address"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
