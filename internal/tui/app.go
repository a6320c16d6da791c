package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/lifeos/internal/checkin"
	"github.com/sadopc/lifeos/internal/export"
	"github.com/sadopc/lifeos/internal/shell"
	"github.com/sadopc/lifeos/internal/store"
	"go.uber.org/zap"
)

// Deps is what the App needs from the outside.
type Deps struct {
	Store      *store.Store
	Controller *shell.Controller
	Bridge     *shell.Bridge
	Evaluator  *checkin.Evaluator
	Session    *checkin.Session
	Log        *zap.Logger
	Location   *time.Location
	Now        func() time.Time
	// Bell receives the terminal bell on reveal. Defaults to stderr.
	Bell io.Writer
}

// App is the root Bubble Tea model. Nothing but the controller's own view is
// drawn until the controller makes the window visible.
type App struct {
	store   *store.Store
	ctrl    *shell.Controller
	bridge  *shell.Bridge
	eval    *checkin.Evaluator
	session *checkin.Session
	log     *zap.Logger
	loc     *time.Location
	now     func() time.Time
	bell    io.Writer

	width  int
	height int
	sized  bool

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	checkin   checkinModel
	projects  projectsModel
	analytics analyticsModel
	settings  settingsModel

	help   help.Model
	status string
}

func NewApp(d Deps) App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Bell == nil {
		d.Bell = os.Stderr
	}
	h := help.New()
	h.ShowAll = false

	userID := d.Session.ID()
	clock := func() time.Time { return d.Now().In(d.Location) }
	log := d.Log.Named("tui")

	return App{
		store:      d.Store,
		ctrl:       d.Controller,
		bridge:     d.Bridge,
		eval:       d.Evaluator,
		session:    d.Session,
		log:        log,
		loc:        d.Location,
		now:        clock,
		bell:       d.Bell,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(d.Store, log, userID, clock),
		checkin:    newCheckinModel(d.Store, userID, clock),
		projects:   newProjectsModel(d.Store, userID, clock),
		analytics:  newAnalyticsModel(d.Store, log, userID, clock),
		settings:   newSettingsModel(d.Store),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.ctrl.Init(),
		a.runGate(),
	)
}

// runGate evaluates the check-in and hands the decision to the shell.
func (a App) runGate() tea.Cmd {
	eval, session, bridge := a.eval, a.session, a.bridge
	return func() tea.Msg {
		d := eval.Decide(context.Background(), session)
		return gateRanMsg{decision: d, delivered: bridge.Send(d)}
	}
}

// forward hands msg to the controller. A reactivation re-runs the gate and,
// since the terminal size is already known, signals readiness again.
func (a App) forward(msg tea.Msg) tea.Cmd {
	before := a.ctrl.State()
	cmd := a.ctrl.Update(msg)
	if before == shell.Closed && a.ctrl.State() == shell.Initializing {
		cmds := []tea.Cmd{cmd, a.runGate()}
		if a.sized {
			cmds = append(cmds, func() tea.Msg { return shell.ReadyMsg{} })
		}
		return tea.Batch(cmds...)
	}
	return cmd
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.checkin.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		if a.sized {
			return a, nil
		}
		a.sized = true
		return a, a.forward(shell.ReadyMsg{})

	case shell.RevealedMsg:
		if a.ctrl.LastDecision() == checkin.Show {
			a.status = "No check-in yet today"
		}
		bell := a.bell
		return a, tea.Batch(
			func() tea.Msg { fmt.Fprint(bell, "\a"); return nil },
			a.refreshCurrentView(),
		)

	case gateRanMsg:
		if !msg.delivered {
			a.log.Debug("gate decision not delivered", zap.String("decision", string(msg.decision)))
		}
		return a, nil

	case checkinSavedMsg:
		a.status = "Logged " + msg.log.Date
		var cmd tea.Cmd
		a.checkin, cmd = a.checkin.update(msg)
		return a, tea.Batch(cmd, a.runGate(), a.dashboard.loadData())

	case tea.KeyMsg:
		if !a.ctrl.Visible() {
			return a, a.forward(msg)
		}

		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, a.forward(shell.WindowClosedMsg{})
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Refresh):
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewCheckin
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewProjects
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewAnalytics
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}
		return a.updateActiveView(msg)

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	// Everything else may belong to the controller (bridge, tray, timeout)
	// or to a view (data loads, form internals).
	cmds := []tea.Cmd{a.forward(msg)}
	var cmd tea.Cmd
	a.dashboard, cmd = a.dashboard.update(msg)
	cmds = append(cmds, cmd)
	a.checkin, cmd = a.checkin.update(msg)
	cmds = append(cmds, cmd)
	a.projects, cmd = a.projects.update(msg)
	cmds = append(cmds, cmd)
	a.analytics, cmd = a.analytics.update(msg)
	cmds = append(cmds, cmd)
	a.settings, cmd = a.settings.update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a App) updateActiveView(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewCheckin:
		a.checkin, cmd = a.checkin.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewCheckin:
		return a.checkin.formActive
	case viewProjects:
		return a.projects.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewCheckin:
		return a.checkin.refresh()
	case viewProjects:
		return a.projects.refresh()
	case viewAnalytics:
		return a.analytics.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if !a.ctrl.Visible() {
		return a.ctrl.View()
	}
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewCheckin:
		content = a.checkin.view()
	case viewProjects:
		content = a.projects.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("lifeos")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Gate indicator
	gate := warningStyle.Render(" ● check-in due")
	if a.ctrl.LastDecision() == checkin.StayHidden {
		gate = successStyle.Render(" ✓ checked in")
	}

	left := footerStyle.Render(helpView)
	right := gate + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Daily Logs")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	s, userID, now := a.store, a.session.ID(), a.now()
	return func() tea.Msg {
		logs, err := s.AllDailyLogs(context.Background(), userID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		home, _ := os.UserHomeDir()
		dateStr := now.Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("lifeos-export-%s.csv", dateStr))
			if err := export.ToCSV(logs, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("lifeos-export-%s.json", dateStr))
			if err := export.ToJSON(logs, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
