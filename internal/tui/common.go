package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/lifeos/internal/checkin"
	"github.com/sadopc/lifeos/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewCheckin
	viewProjects
	viewAnalytics
	viewSettings
)

var viewNames = []string{"Dashboard", "Check-in", "Projects", "Analytics", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// gateRanMsg reports a check-in evaluation and whether the bridge took it.
type gateRanMsg struct {
	decision  checkin.Decision
	delivered bool
}

type checkinSavedMsg struct {
	log *store.DailyLog
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatHours(h float64) string {
	return fmt.Sprintf("%.1fh", h)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("Jan 02")
}

func percentBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := max(0, min(int(pct/100*float64(width)), width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
