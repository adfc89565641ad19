// FilePath: internal/aggregate/aggregate.go

// Package aggregate computes consumption figures from reading snapshots.
// Everything here is a pure function over its input; results are
// recomputed wholesale on every refresh and never cached.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/fieldworks/meterhub/internal/models"
)

// MonthlyCount is one bucket of the readings-per-month series.
type MonthlyCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// ConsumptionSummary is the derived consumption view over a reading set.
type ConsumptionSummary struct {
	TotalConsumption   float64        `json:"total_consumption"`
	AverageConsumption float64        `json:"average_consumption"`
	ReadingCount       int            `json:"reading_count"`
	MonthlyCounts      []MonthlyCount `json:"monthly_counts"`
}

// Summarize computes the consumption summary for a snapshot of readings.
// Input order is irrelevant: records are re-sorted by creation time, with
// missing timestamps sorting first. Fewer than two records yields zeros
// and no monthly buckets. The total is last minus first with no clamping;
// inconsistent input data passes through uncorrected.
func Summarize(readings []*models.Reading) ConsumptionSummary {
	summary := ConsumptionSummary{
		ReadingCount: len(readings),
	}
	if len(readings) < 2 {
		return summary
	}
	summary.MonthlyCounts = monthlyCounts(readings)

	ordered := make([]*models.Reading, len(readings))
	copy(ordered, readings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	first := ordered[0].MeterValue
	last := ordered[len(ordered)-1].MeterValue
	summary.TotalConsumption = last - first

	var deltaSum float64
	for i := 1; i < len(ordered); i++ {
		deltaSum += ordered[i].MeterValue - ordered[i-1].MeterValue
	}
	summary.AverageConsumption = deltaSum / float64(len(ordered)-1)

	return summary
}

// monthlyCounts buckets readings by month/year of creation, ascending by
// period. Records without a timestamp are excluded.
func monthlyCounts(readings []*models.Reading) []MonthlyCount {
	buckets := make(map[string]int)
	for _, r := range readings {
		if r.CreatedAt.IsZero() {
			continue
		}
		buckets[monthKey(r.CreatedAt)]++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return periodBefore(keys[i], keys[j])
	})

	counts := make([]MonthlyCount, 0, len(keys))
	for _, k := range keys {
		counts = append(counts, MonthlyCount{Period: k, Count: buckets[k]})
	}
	return counts
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Year())
}

func periodBefore(a, b string) bool {
	var am, ay, bm, by int
	fmt.Sscanf(a, "%d/%d", &am, &ay)
	fmt.Sscanf(b, "%d/%d", &bm, &by)
	if ay != by {
		return ay < by
	}
	return am < bm
}
