package metrics

import (
	"time"

	"github.com/sadopc/lifeos/internal/store"
)

type Bucket int

const (
	BucketEmpty Bucket = iota
	BucketPartial
	BucketSuccess
)

func (b Bucket) String() string {
	switch b {
	case BucketSuccess:
		return "success"
	case BucketPartial:
		return "partial"
	default:
		return "empty"
	}
}

// HeatmapCell is one day of the habit consistency heatmap.
type HeatmapCell struct {
	Date       string
	Count      int
	Total      int
	Percentage float64
	Bucket     Bucket
}

func (c HeatmapCell) IsSuccess() bool { return c.Bucket == BucketSuccess }

// HabitHeatmap builds p.HeatmapDays cells ending at today, oldest first.
//
// A day's count is the number of habit log rows dated that day, whatever
// their completed flag says.
func HabitHeatmap(logs []store.HabitLog, activeHabits int, today time.Time, p Params) []HeatmapCell {
	days := p.HeatmapDays
	if days <= 0 {
		days = DefaultParams().HeatmapDays
	}

	byDate := make(map[string]int, len(logs))
	for _, l := range logs {
		byDate[l.Date]++
	}

	start := truncateDay(today).AddDate(0, 0, -(days - 1))
	cells := make([]HeatmapCell, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format(store.DateLayout)
		count := byDate[date]
		pct := 0.0
		if activeHabits > 0 {
			pct = clampPercent(float64(count) / float64(activeHabits) * 100)
		}
		cells = append(cells, HeatmapCell{
			Date:       date,
			Count:      count,
			Total:      activeHabits,
			Percentage: pct,
			Bucket:     classify(pct, p.SuccessThreshold),
		})
	}
	return cells
}

func classify(pct, threshold float64) Bucket {
	switch {
	case pct >= threshold:
		return BucketSuccess
	case pct > 0:
		return BucketPartial
	default:
		return BucketEmpty
	}
}

// HeatmapWindow returns the inclusive date range HabitHeatmap covers.
func HeatmapWindow(today time.Time, p Params) (from, to time.Time) {
	days := p.HeatmapDays
	if days <= 0 {
		days = DefaultParams().HeatmapDays
	}
	to = truncateDay(today)
	return to.AddDate(0, 0, -(days - 1)), to
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
