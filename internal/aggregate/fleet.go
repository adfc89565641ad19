// FilePath: internal/aggregate/fleet.go
package aggregate

import "github.com/fieldworks/meterhub/internal/models"

// Consumption range boundaries, in the meter's unit.
const (
	lowRangeMax    = 10
	mediumRangeMax = 20
)

// RangeCounts groups meters by consumption band.
type RangeCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// FleetStats is the derived statistics view over a set of meters.
type FleetStats struct {
	MeterCount         int         `json:"meter_count"`
	TotalConsumption   float64     `json:"total_consumption"`
	AverageConsumption float64     `json:"average_consumption"`
	MaxConsumption     float64     `json:"max_consumption"`
	Ranges             RangeCounts `json:"ranges"`
}

// FleetSummary computes fleet-wide consumption statistics for a snapshot
// of meters.
func FleetSummary(meters []*models.Meter) FleetStats {
	stats := FleetStats{MeterCount: len(meters)}

	for _, m := range meters {
		stats.TotalConsumption += m.Consumption
		if m.Consumption > stats.MaxConsumption {
			stats.MaxConsumption = m.Consumption
		}
		switch {
		case m.Consumption < lowRangeMax:
			stats.Ranges.Low++
		case m.Consumption < mediumRangeMax:
			stats.Ranges.Medium++
		default:
			stats.Ranges.High++
		}
	}

	if len(meters) > 0 {
		stats.AverageConsumption = stats.TotalConsumption / float64(len(meters))
	}
	return stats
}
