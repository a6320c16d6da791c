package metrics

import (
	"fmt"
	"time"

	"github.com/sadopc/lifeos/internal/store"
)

type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

func ScoreLevel(score int) Level {
	switch {
	case score >= 8:
		return LevelHigh
	case score >= 5:
		return LevelMedium
	default:
		return LevelLow
	}
}

// TimelineEntry is one day on the productivity timeline.
type TimelineEntry struct {
	Date     string
	Score    int // productivity score scaled to 0-100
	Level    Level
	DeepWork float64
	Summary  string
}

// ProductivityTimeline maps up to limit logs, keeping their order.
// Callers pass logs newest first.
func ProductivityTimeline(logs []store.DailyLog, limit int) []TimelineEntry {
	if limit <= 0 || limit > len(logs) {
		limit = len(logs)
	}
	out := make([]TimelineEntry, 0, limit)
	for _, l := range logs[:limit] {
		out = append(out, TimelineEntry{
			Date:     l.Date,
			Score:    l.ProductivityScore * 10,
			Level:    ScoreLevel(l.ProductivityScore),
			DeepWork: l.DeepWorkHours,
			Summary:  fmt.Sprintf("Deep Work: %gh", l.DeepWorkHours),
		})
	}
	return out
}

// AverageProductivity is the mean score rounded to one decimal.
func AverageProductivity(logs []store.DailyLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	sum := 0
	for _, l := range logs {
		sum += l.ProductivityScore
	}
	return round1(float64(sum) / float64(len(logs)))
}

// TotalDeepWork sums deep work hours.
func TotalDeepWork(logs []store.DailyLog) float64 {
	var sum float64
	for _, l := range logs {
		sum += l.DeepWorkHours
	}
	return round1(sum)
}

// HourlyFocus averages focus scores per local hour of day. Hours without
// data are 0.
func HourlyFocus(logs []store.FocusLog, loc *time.Location) [24]float64 {
	if loc == nil {
		loc = time.Local
	}
	var sums [24]int
	var counts [24]int
	for _, l := range logs {
		h := l.CreatedAt.In(loc).Hour()
		sums[h] += l.FocusScore
		counts[h]++
	}

	var out [24]float64
	for h := range out {
		if counts[h] > 0 {
			out[h] = float64(sums[h]) / float64(counts[h])
		}
	}
	return out
}

// PeakFocusHour returns the hour with the highest average, or -1 when
// there is no data.
func PeakFocusHour(hourly [24]float64) int {
	peak := -1
	best := 0.0
	for h, v := range hourly {
		if v > best {
			best = v
			peak = h
		}
	}
	return peak
}
