package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/lifeos/internal/metrics"
	"github.com/sadopc/lifeos/internal/store"
	"go.uber.org/zap"
)

type analyticsModel struct {
	store  *store.Store
	log    *zap.Logger
	userID string
	now    func() time.Time
	width  int
	height int

	snap metrics.Snapshot

	scoreChart barchart.Model
	deepChart  barchart.Model
}

func newAnalyticsModel(s *store.Store, log *zap.Logger, userID string, now func() time.Time) analyticsModel {
	return analyticsModel{
		store:      s,
		log:        log,
		userID:     userID,
		now:        now,
		scoreChart: barchart.New(30, 10),
		deepChart:  barchart.New(30, 10),
	}
}

func (r *analyticsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type analyticsDataMsg struct {
	snap metrics.Snapshot
}

func (r analyticsModel) refresh() tea.Cmd {
	s, log, userID, now := r.store, r.log, r.userID, r.now()
	return func() tea.Msg {
		p := metrics.LoadParams(s)
		return analyticsDataMsg{snap: metrics.Collect(context.Background(), s, log, userID, now, p)}
	}
}

func (r analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		r.snap = msg.snap
		r.buildCharts()
	}
	return r, nil
}

func (r analyticsModel) chartSize() (int, int) {
	chartWidth := (r.width - 12) / 2
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 34 {
		chartHeight = 14
	}
	return chartWidth, chartHeight
}

func (r *analyticsModel) buildCharts() {
	w, h := r.chartSize()
	r.scoreChart = barchart.New(w, h)
	r.deepChart = barchart.New(w, h)

	var scores, deep []barchart.BarData
	for _, l := range r.snap.Recent {
		label := l.Date
		if t, err := time.Parse(store.DateLayout, l.Date); err == nil {
			label = t.Format("01/02")
		}
		scores = append(scores, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  "score",
				Value: float64(l.ProductivityScore),
				Style: levelStyle(metrics.ScoreLevel(l.ProductivityScore)),
			}},
		})
		deep = append(deep, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  "deep work",
				Value: l.DeepWorkHours,
				Style: lipgloss.NewStyle().Foreground(colorHighlight),
			}},
		})
	}

	if len(scores) == 0 {
		empty := barchart.BarData{Values: []barchart.BarValue{{Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}}
		scores = []barchart.BarData{empty}
		deep = []barchart.BarData{empty}
	}

	r.scoreChart.PushAll(scores)
	r.scoreChart.Draw()
	r.deepChart.PushAll(deep)
	r.deepChart.Draw()
}

func (r analyticsModel) view() string {
	w := r.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"),
		"  ",
		mutedStyle.Render(fmt.Sprintf("last %d check-ins  avg %.1f  deep work %s",
			len(r.snap.Recent), r.snap.AvgScore, formatHours(r.snap.DeepWork))),
	)

	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, subtitleStyle.Render("Productivity"), r.scoreChart.View()),
		"    ",
		lipgloss.JoinVertical(lipgloss.Left, subtitleStyle.Render("Deep work (h)"), r.deepChart.View()),
	)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", charts, "",
			r.renderHabitStats(w), "",
			r.renderHourlyFocus(),
		),
	)
}

func (r analyticsModel) renderHabitStats(w int) string {
	title := titleStyle.Render("Habits vs weekly goal")
	if len(r.snap.HabitStats) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("  No habits yet"))
	}

	barWidth := max(10, min(30, w-50))
	rows := []string{title}
	for _, s := range r.snap.HabitStats {
		kind := successStyle.Render("+")
		if s.Kind == store.HabitBad {
			kind = errorStyle.Render("-")
		}
		rows = append(rows, fmt.Sprintf("  %s %-20s %s %3d%%  %s",
			kind,
			truncate(s.Name, 20),
			accentStyle.Render(percentBar(float64(s.CompletionRate), barWidth)),
			s.CompletionRate,
			mutedStyle.Render(fmt.Sprintf("(%d)", s.Completed)),
		))
	}
	return strings.Join(rows, "\n")
}

var focusLevels = []rune(" ▁▂▃▄▅▆▇█")

// focusStrip renders one glyph per hour, scaled to the 1-5 focus range.
func focusStrip(hourly [24]float64) string {
	var b strings.Builder
	for _, v := range hourly {
		i := int(v / 5 * float64(len(focusLevels)-1))
		i = max(0, min(i, len(focusLevels)-1))
		b.WriteRune(focusLevels[i])
	}
	return b.String()
}

func (r analyticsModel) renderHourlyFocus() string {
	title := titleStyle.Render("Focus by hour, last 7 days")
	peak := metrics.PeakFocusHour(r.snap.HourlyFocus)
	if peak < 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("  No focus scores yet"))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"  "+highlightStyle.Render(focusStrip(r.snap.HourlyFocus)),
		mutedStyle.Render("  0     6     12    18   23"),
		mutedStyle.Render(fmt.Sprintf("  peak %02d:00 (%.1f)", peak, r.snap.HourlyFocus[peak])),
	)
}
