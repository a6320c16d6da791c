package metrics

import (
	"math"
	"time"

	"github.com/sadopc/lifeos/internal/store"
)

// Correlation compares deep work on good habit days with the rest.
type Correlation struct {
	GoodDays    int
	BadDays     int
	GoodDaysAvg float64
	BadDaysAvg  float64
	Diff        float64
}

// DeepWorkCorrelation partitions the daily logs by how many habit logs
// share their date. Days with at least p.GoodDayHabits are good.
func DeepWorkCorrelation(daily []store.DailyLog, habitLogs []store.HabitLog, p Params) Correlation {
	byDate := make(map[string]int, len(habitLogs))
	for _, l := range habitLogs {
		byDate[l.Date]++
	}

	var c Correlation
	var goodWork, badWork float64
	for _, d := range daily {
		if byDate[d.Date] >= p.GoodDayHabits {
			goodWork += d.DeepWorkHours
			c.GoodDays++
		} else {
			badWork += d.DeepWorkHours
			c.BadDays++
		}
	}

	var avgGood, avgBad float64
	if c.GoodDays > 0 {
		avgGood = goodWork / float64(c.GoodDays)
	}
	if c.BadDays > 0 {
		avgBad = badWork / float64(c.BadDays)
	}
	c.GoodDaysAvg = round1(avgGood)
	c.BadDaysAvg = round1(avgBad)
	c.Diff = round1(avgGood - avgBad)
	return c
}

// MonthlyConsistency estimates how many of the month's habit slots were
// filled, assuming p.HabitsPerDay habits for each elapsed day.
func MonthlyConsistency(habitLogsThisMonth, daysElapsed int, p Params) int {
	estimated := daysElapsed * p.HabitsPerDay
	if estimated <= 0 {
		return 0
	}
	pct := math.Round(float64(habitLogsThisMonth) / float64(estimated) * 100)
	return int(math.Min(100, pct))
}

// MonthlyConsistencyAt counts the logs dated from the first of today's month.
func MonthlyConsistencyAt(habitLogs []store.HabitLog, today time.Time, p Params) int {
	first := MonthStart(today).Format(store.DateLayout)
	n := 0
	for _, l := range habitLogs {
		if l.Date >= first {
			n++
		}
	}
	return MonthlyConsistency(n, today.Day(), p)
}

func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
