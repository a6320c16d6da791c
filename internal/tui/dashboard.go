package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/lifeos/internal/metrics"
	"github.com/sadopc/lifeos/internal/store"
	"go.uber.org/zap"
)

type dashboardModel struct {
	store  *store.Store
	log    *zap.Logger
	userID string
	now    func() time.Time
	width  int
	height int

	snap   metrics.Snapshot
	params metrics.Params
}

func newDashboardModel(s *store.Store, log *zap.Logger, userID string, now func() time.Time) dashboardModel {
	return dashboardModel{
		store:  s,
		log:    log,
		userID: userID,
		now:    now,
		params: metrics.DefaultParams(),
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	snap   metrics.Snapshot
	params metrics.Params
}

func (d dashboardModel) loadData() tea.Cmd {
	s, log, userID, now := d.store, d.log, d.userID, d.now()
	return func() tea.Msg {
		p := metrics.LoadParams(s)
		return dashboardDataMsg{
			snap:   metrics.Collect(context.Background(), s, log, userID, now, p),
			params: p,
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.snap = msg.snap
		d.params = msg.params
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	heatmap := d.renderHeatmapPanel(contentWidth)
	stats := d.renderStatsPanel(contentWidth)

	half := (contentWidth - 1) / 2
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		d.renderTimelinePanel(half),
		" ",
		d.renderHealthPanel(contentWidth-half-1),
	)

	return lipgloss.JoinVertical(lipgloss.Left, heatmap, stats, bottom)
}

func cellStyle(b metrics.Bucket) lipgloss.Style {
	switch b {
	case metrics.BucketSuccess:
		return cellSuccessStyle
	case metrics.BucketPartial:
		return cellPartialStyle
	}
	return cellEmptyStyle
}

func (d dashboardModel) renderHeatmapPanel(w int) string {
	title := titleStyle.Render(fmt.Sprintf("Habits, last %d days", d.params.HeatmapDays))

	if d.snap.ActiveHabits == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No active habits. Add one with `lifeos habit add`."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var cells strings.Builder
	successes := 0
	for _, c := range d.snap.Heatmap {
		cells.WriteString(cellStyle(c.Bucket).Render("■"))
		cells.WriteString(" ")
		if c.IsSuccess() {
			successes++
		}
	}

	legend := fmt.Sprintf("%s none  %s partial  %s ≥%.0f%%   %s",
		cellEmptyStyle.Render("■"),
		cellPartialStyle.Render("■"),
		cellSuccessStyle.Render("■"),
		d.params.SuccessThreshold,
		highlightStyle.Render(fmt.Sprintf("%d success days", successes)),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, title, cells.String(), mutedStyle.Render(legend))
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderStatsPanel(w int) string {
	c := d.snap.Correlation

	monthly := lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Render("Monthly consistency"),
		statStyle.Render(fmt.Sprintf("%d%%", d.snap.Monthly)),
	)

	diff := fmt.Sprintf("%+.1fh", c.Diff)
	diffStyle := successStyle
	if c.Diff < 0 {
		diffStyle = errorStyle
	}
	correlation := lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Render("Deep work on good habit days"),
		statStyle.Render(formatHours(c.GoodDaysAvg))+mutedStyle.Render(fmt.Sprintf(" vs %s", formatHours(c.BadDaysAvg)))+"  "+diffStyle.Render(diff),
		mutedStyle.Render(fmt.Sprintf("%d good days, %d other days", c.GoodDays, c.BadDays)),
	)

	avg := lipgloss.JoinVertical(lipgloss.Left,
		subtitleStyle.Render("Avg productivity"),
		statStyle.Render(fmt.Sprintf("%.1f", d.snap.AvgScore)),
	)

	row := lipgloss.JoinHorizontal(lipgloss.Top, monthly, "    ", correlation, "    ", avg)
	return panelStyle.Width(w).Render(row)
}

func levelStyle(l metrics.Level) lipgloss.Style {
	switch l {
	case metrics.LevelHigh:
		return successStyle
	case metrics.LevelMedium:
		return warningStyle
	}
	return errorStyle
}

func (d dashboardModel) renderTimelinePanel(w int) string {
	title := titleStyle.Render("Productivity")
	if len(d.snap.Timeline) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No check-ins yet"),
		))
	}

	rows := []string{title}
	limit := len(d.snap.Timeline)
	if d.height > 0 {
		limit = min(limit, max(3, d.height-20))
	}
	for _, e := range d.snap.Timeline[:limit] {
		rows = append(rows, fmt.Sprintf("  %s %s  %s",
			e.Date,
			levelStyle(e.Level).Render(fmt.Sprintf("%3d", e.Score)),
			mutedStyle.Render(e.Summary),
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func bandStyle(b metrics.Band) lipgloss.Style {
	switch b {
	case metrics.BandGood:
		return successStyle
	case metrics.BandFair:
		return warningStyle
	}
	return errorStyle
}

func (d dashboardModel) renderHealthPanel(w int) string {
	title := titleStyle.Render("Project health")
	if len(d.snap.Projects) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No active projects"),
		))
	}

	rows := []string{title}
	for _, p := range d.snap.Projects {
		style := bandStyle(metrics.HealthBand(p.HealthScore))
		rows = append(rows, fmt.Sprintf("  %-18s %s %s",
			truncate(p.Name, 18),
			style.Render(fmt.Sprintf("%3.0f", p.HealthScore)),
			mutedStyle.Render(fmt.Sprintf("%d/%d done, %d overdue", p.TasksCompleted, p.TotalTasks, p.OverdueTasks)),
		))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
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
