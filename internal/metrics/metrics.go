// Package metrics derives the dashboard scores from raw activity records.
//
// Every function here is pure: inputs are never mutated and the result
// depends only on the arguments. Empty inputs produce zero values.
package metrics

import (
	"math"
	"time"
)

// Params holds the tunable constants behind the scores.
type Params struct {
	HabitsPerDay     int           // assumed trackable habits per day (monthly consistency)
	WeeklyGoal       int           // completions that make a 100% week
	GoodDayHabits    int           // habit logs needed for a "good" day
	SuccessThreshold float64       // heatmap percentage counted as success
	OverduePenalty   float64       // health points lost per overdue task
	HeatmapDays      int           // trailing window of the heatmap
	VelocityWindow   time.Duration // trailing window for velocity
}

func DefaultParams() Params {
	return Params{
		HabitsPerDay:     4,
		WeeklyGoal:       7,
		GoodDayHabits:    3,
		SuccessThreshold: 80,
		OverduePenalty:   10,
		HeatmapDays:      30,
		VelocityWindow:   24 * time.Hour,
	}
}

// Settings is the subset of the settings store used by LoadParams.
type Settings interface {
	GetIntSetting(key string, fallback int) int
}

// Settings keys read by LoadParams.
const (
	KeyHabitsPerDay     = "habits_per_day"
	KeyWeeklyGoal       = "weekly_goal"
	KeyGoodDayHabits    = "good_day_habits"
	KeySuccessThreshold = "success_threshold"
	KeyOverduePenalty   = "overdue_penalty"
)

// LoadParams overlays stored settings on the defaults.
func LoadParams(s Settings) Params {
	p := DefaultParams()
	p.HabitsPerDay = s.GetIntSetting(KeyHabitsPerDay, p.HabitsPerDay)
	p.WeeklyGoal = s.GetIntSetting(KeyWeeklyGoal, p.WeeklyGoal)
	p.GoodDayHabits = s.GetIntSetting(KeyGoodDayHabits, p.GoodDayHabits)
	p.SuccessThreshold = float64(s.GetIntSetting(KeySuccessThreshold, int(p.SuccessThreshold)))
	p.OverduePenalty = float64(s.GetIntSetting(KeyOverduePenalty, int(p.OverduePenalty)))
	return p
}

func clampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
