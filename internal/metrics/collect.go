package metrics

import (
	"context"
	"time"

	"github.com/sadopc/lifeos/internal/store"
	"go.uber.org/zap"
)

// Repository is the read side of the activity store.
type Repository interface {
	RecentDailyLogs(ctx context.Context, userID string, limit int) ([]store.DailyLog, error)
	QueryHabitLogs(ctx context.Context, userID string, from, to time.Time) ([]store.HabitLog, error)
	QueryActiveHabits(ctx context.Context, userID string) ([]store.Habit, error)
	QueryHabits(ctx context.Context, userID string) ([]store.Habit, error)
	QueryTasks(ctx context.Context, userID string, f store.TaskFilter) ([]store.Task, error)
	QueryActiveProjects(ctx context.Context, userID string) ([]store.Project, error)
	QueryFocusLogs(ctx context.Context, userID string, since time.Time) ([]store.FocusLog, error)
}

const (
	timelineRows  = 60
	timelineShown = 30
	analyticsRows = 7
)

// Snapshot is everything the dashboard and analytics views display.
type Snapshot struct {
	Heatmap      []HeatmapCell
	Monthly      int
	Correlation  Correlation
	Timeline     []TimelineEntry
	Projects     []ProjectHealth
	HabitStats   []HabitStat
	Recent       []store.DailyLog // last analyticsRows logs, oldest first
	AvgScore     float64
	DeepWork     float64
	HourlyFocus  [24]float64
	ActiveHabits int
}

// Collect queries the repository and derives a Snapshot. A failed query is
// logged and treated as no data.
func Collect(ctx context.Context, repo Repository, log *zap.Logger, userID string, now time.Time, p Params) Snapshot {
	if log == nil {
		log = zap.NewNop()
	}
	warn := func(query string, err error) {
		log.Warn("query failed, rendering empty", zap.String("query", query), zap.Error(err))
	}

	var snap Snapshot
	today := truncateDay(now)

	// Habits first: the denominator must be known before logs are read.
	habits, err := repo.QueryActiveHabits(ctx, userID)
	if err != nil {
		warn("active_habits", err)
		habits = nil
	}
	snap.ActiveHabits = len(habits)

	from, to := HeatmapWindow(today, p)
	windowLogs, err := repo.QueryHabitLogs(ctx, userID, from, to)
	if err != nil {
		warn("habit_logs_window", err)
		windowLogs = nil
	}
	snap.Heatmap = HabitHeatmap(windowLogs, len(habits), today, p)

	allHabitLogs, err := repo.QueryHabitLogs(ctx, userID, time.Time{}, today)
	if err != nil {
		warn("habit_logs", err)
		allHabitLogs = nil
	}
	snap.Monthly = MonthlyConsistencyAt(allHabitLogs, today, p)

	daily, err := repo.RecentDailyLogs(ctx, userID, timelineRows)
	if err != nil {
		warn("daily_logs", err)
		daily = nil
	}
	snap.Correlation = DeepWorkCorrelation(daily, allHabitLogs, p)
	snap.Timeline = ProductivityTimeline(daily, timelineShown)

	n := min(analyticsRows, len(daily))
	recent := make([]store.DailyLog, 0, n)
	for i := n - 1; i >= 0; i-- {
		recent = append(recent, daily[i])
	}
	snap.Recent = recent
	snap.AvgScore = AverageProductivity(recent)
	snap.DeepWork = TotalDeepWork(recent)

	projects, err := repo.QueryActiveProjects(ctx, userID)
	if err != nil {
		warn("active_projects", err)
		projects = nil
	}
	if len(projects) > 0 {
		tasks, err := repo.QueryTasks(ctx, userID, store.TaskFilter{})
		if err != nil {
			warn("tasks", err)
			tasks = nil
		}
		snap.Projects = ProjectsHealth(projects, tasks, now, p)
	}

	allHabits, err := repo.QueryHabits(ctx, userID)
	if err != nil {
		warn("habits", err)
		allHabits = nil
	}
	snap.HabitStats = WeeklyHabitStats(allHabits, allHabitLogs, p)

	focus, err := repo.QueryFocusLogs(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		warn("focus_logs", err)
		focus = nil
	}
	snap.HourlyFocus = HourlyFocus(focus, now.Location())

	return snap
}
