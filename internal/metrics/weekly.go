package metrics

import (
	"math"

	"github.com/sadopc/lifeos/internal/store"
)

// HabitStat is one habit's completion rate against the weekly goal.
type HabitStat struct {
	HabitID        string
	Name           string
	Kind           store.HabitKind
	Completed      int
	CompletionRate int
}

// WeeklyHabitStats normalizes each habit's completed-log count to
// p.WeeklyGoal. Logs with completed=false are ignored.
func WeeklyHabitStats(habits []store.Habit, logs []store.HabitLog, p Params) []HabitStat {
	completed := make(map[string]int, len(habits))
	for _, l := range logs {
		if l.Completed {
			completed[l.HabitID]++
		}
	}

	goal := p.WeeklyGoal
	if goal <= 0 {
		goal = DefaultParams().WeeklyGoal
	}

	stats := make([]HabitStat, 0, len(habits))
	for _, h := range habits {
		kind := h.Kind
		if kind == "" {
			kind = store.HabitGood
		}
		n := completed[h.ID]
		rate := math.Min(math.Round(float64(n)/float64(goal)*100), 100)
		stats = append(stats, HabitStat{
			HabitID:        h.ID,
			Name:           h.Name,
			Kind:           kind,
			Completed:      n,
			CompletionRate: int(rate),
		})
	}
	return stats
}
