package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/lifeos/internal/metrics"
	"github.com/spf13/cobra"
)

func newDashboardCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print habit, project and productivity metrics",
		Args:  cobra.NoArgs,
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			userID, err := e.user()
			if err != nil {
				return err
			}
			p := metrics.LoadParams(e.store)
			snap := metrics.Collect(context.Background(), e.store, e.log.Named("metrics"), userID, e.now(), p)
			printDashboard(cmd.OutOrStdout(), snap, p)
			return nil
		}),
	}
}

func printDashboard(w io.Writer, snap metrics.Snapshot, p metrics.Params) {
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Habits, last %d days", len(snap.Heatmap))))
	if snap.ActiveHabits == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No active habits."))
	} else {
		success := 0
		for _, c := range snap.Heatmap {
			if c.IsSuccess() {
				success++
			}
		}
		fmt.Fprintf(w, "  %s  %d success days\n", heatmapStrip(snap.Heatmap), success)
	}
	fmt.Fprintf(w, "  Monthly consistency %d%%\n\n", snap.Monthly)

	c := snap.Correlation
	fmt.Fprintln(w, headingStyle.Render("Deep work"))
	fmt.Fprintf(w, "  Good habit days (%d)  %.1fh\n", c.GoodDays, c.GoodDaysAvg)
	fmt.Fprintf(w, "  Other days (%d)       %.1fh\n", c.BadDays, c.BadDaysAvg)
	fmt.Fprintf(w, "  Difference           %+.1fh\n", c.Diff)
	fmt.Fprintf(w, "  Last %d check-ins: avg score %.1f, %.1fh deep work\n\n", len(snap.Recent), snap.AvgScore, snap.DeepWork)

	fmt.Fprintln(w, headingStyle.Render("Projects"))
	if len(snap.Projects) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No active projects."))
	}
	for _, h := range snap.Projects {
		band := metrics.HealthBand(h.HealthScore)
		fmt.Fprintf(w, "  %-24s %s  %d/%d done  %d overdue  velocity %d\n",
			truncate(h.Name, 24),
			bandStyle(band).Render(fmt.Sprintf("%3.0f %-4s", h.HealthScore, band)),
			h.TasksCompleted, h.TotalTasks, h.OverdueTasks, h.Velocity)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Habits vs weekly goal of %d", p.WeeklyGoal)))
	if len(snap.HabitStats) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No habits yet."))
	}
	for _, s := range snap.HabitStats {
		fmt.Fprintf(w, "  %-4s %-24s %3d%% (%d)\n", s.Kind, truncate(s.Name, 24), s.CompletionRate, s.Completed)
	}

	if peak := metrics.PeakFocusHour(snap.HourlyFocus); peak >= 0 {
		fmt.Fprintf(w, "\n%s %02d:00 (%.1f)\n", headingStyle.Render("Peak focus"), peak, snap.HourlyFocus[peak])
	}
}

func heatmapStrip(cells []metrics.HeatmapCell) string {
	var b strings.Builder
	for _, c := range cells {
		switch c.Bucket {
		case metrics.BucketSuccess:
			b.WriteString(goodStyle.Render("■"))
		case metrics.BucketPartial:
			b.WriteString(warnStyle.Render("■"))
		default:
			b.WriteString(mutedStyle.Render("·"))
		}
	}
	return b.String()
}

func bandStyle(b metrics.Band) lipgloss.Style {
	switch b {
	case metrics.BandGood:
		return goodStyle
	case metrics.BandFair:
		return warnStyle
	}
	return badStyle
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
