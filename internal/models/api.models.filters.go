// FilePath: internal/models/api.models.filters.go
package models

import "time"

// ReadingFilters defines the available filter options for reading lists.
// Decoded from query parameters via gorilla/schema; timestamps arrive as
// RFC 3339.
type ReadingFilters struct {
	Search        string        `json:"search" schema:"search"`
	Status        ReadingStatus `json:"status" schema:"status"`
	MeterNumber   string        `json:"meter_number" schema:"meter_number"`
	CreatedAfter  *time.Time    `json:"created_after,omitempty" schema:"created_after"`
	CreatedBefore *time.Time    `json:"created_before,omitempty" schema:"created_before"`
}
