package tui

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/lifeos/internal/checkin"
	"github.com/sadopc/lifeos/internal/metrics"
	"github.com/sadopc/lifeos/internal/shell"
	"github.com/sadopc/lifeos/internal/store"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestApp(t *testing.T, userID string, keepAlive bool) (App, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	bridge := shell.NewBridge(4, zap.NewNop())
	ctrl := shell.NewController(bridge, zap.NewNop(), shell.Options{
		Timeout:          time.Hour,
		KeepAliveOnClose: keepAlive,
	})
	eval := checkin.NewEvaluator(s, zap.NewNop(), time.UTC).WithClock(clock)

	var session *checkin.Session
	if userID != "" {
		session = &checkin.Session{UserID: userID}
	}
	app := NewApp(Deps{
		Store:      s,
		Controller: ctrl,
		Bridge:     bridge,
		Evaluator:  eval,
		Session:    session,
		Location:   time.UTC,
		Now:        clock,
		Bell:       io.Discard,
	})
	return app, s
}

func update(app App, msg tea.Msg) (App, tea.Cmd) {
	m, cmd := app.Update(msg)
	return m.(App), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// reveal sizes the terminal and delivers a show decision.
func reveal(t *testing.T, app App) App {
	t.Helper()
	app, _ = update(app, tea.WindowSizeMsg{Width: 120, Height: 40})
	app, _ = update(app, shell.DecisionMsg{Decision: checkin.Show})
	if !app.ctrl.Visible() {
		t.Fatalf("window should be visible, state %s", app.ctrl.State())
	}
	return app
}

// ============================================================
// App model: gating
// ============================================================

func TestNewApp(t *testing.T) {
	app, _ := newTestApp(t, "u1", false)

	if app.activeView != viewDashboard {
		t.Fatal("default view should be dashboard")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.ctrl.State() != shell.Initializing {
		t.Fatalf("controller should start initializing, got %s", app.ctrl.State())
	}
}

func TestAppFirstResizeSignalsReady(t *testing.T) {
	app, _ := newTestApp(t, "u1", false)

	app, _ = update(app, tea.WindowSizeMsg{Width: 100, Height: 30})
	if app.ctrl.State() != shell.Hidden {
		t.Fatalf("expected hidden after first paint, got %s", app.ctrl.State())
	}
	if app.View() != "" {
		t.Fatal("hidden window without tray should render nothing")
	}

	// A later resize is not a second ready signal
	app, _ = update(app, tea.WindowSizeMsg{Width: 80, Height: 20})
	if app.ctrl.State() != shell.Hidden {
		t.Fatalf("state changed on resize: %s", app.ctrl.State())
	}
	if app.width != 80 {
		t.Fatal("size not recorded")
	}
}

func TestAppGateAnonymousShows(t *testing.T) {
	app, _ := newTestApp(t, "", false)

	msg := app.runGate()()
	gm, ok := msg.(gateRanMsg)
	if !ok {
		t.Fatalf("expected gateRanMsg, got %T", msg)
	}
	if gm.decision != checkin.Show {
		t.Fatalf("anonymous session should show, got %s", gm.decision)
	}
	if !gm.delivered {
		t.Fatal("decision should be delivered to an open bridge")
	}
}

func TestAppGateLoggedTodayStaysHidden(t *testing.T) {
	app, s := newTestApp(t, "u1", false)
	if _, err := s.CreateDailyLog("u1", fixedNow, 7, 2, "", fixedNow.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	gm := app.runGate()().(gateRanMsg)
	if gm.decision != checkin.StayHidden {
		t.Fatalf("expected stay-hidden, got %s", gm.decision)
	}
}

func TestAppGateNotLoggedShows(t *testing.T) {
	app, s := newTestApp(t, "u1", false)
	// Yesterday's log does not count
	if _, err := s.CreateDailyLog("u1", fixedNow.AddDate(0, 0, -1), 7, 2, "", fixedNow.Add(-24*time.Hour)); err != nil {
		t.Fatal(err)
	}

	gm := app.runGate()().(gateRanMsg)
	if gm.decision != checkin.Show {
		t.Fatalf("expected show, got %s", gm.decision)
	}
}

func TestAppRevealFlow(t *testing.T) {
	app, _ := newTestApp(t, "", false)
	app, _ = update(app, tea.WindowSizeMsg{Width: 120, Height: 40})

	app, cmd := update(app, shell.DecisionMsg{Decision: checkin.Show})
	if !app.ctrl.Visible() {
		t.Fatal("show decision should reveal a hidden window")
	}
	if cmd == nil {
		t.Fatal("reveal should produce a command")
	}

	app, _ = update(app, shell.RevealedMsg{})
	if app.status != "No check-in yet today" {
		t.Fatalf("unexpected status %q", app.status)
	}
	if app.View() == "" {
		t.Fatal("visible window should render")
	}
}

func TestAppStayHiddenKeepsWindowHidden(t *testing.T) {
	app, _ := newTestApp(t, "u1", false)
	app, _ = update(app, tea.WindowSizeMsg{Width: 120, Height: 40})
	app, _ = update(app, shell.DecisionMsg{Decision: checkin.StayHidden})

	if app.ctrl.State() != shell.Hidden {
		t.Fatalf("expected hidden, got %s", app.ctrl.State())
	}
}

func TestAppKeysIgnoredWhileHidden(t *testing.T) {
	app, _ := newTestApp(t, "u1", false)
	app, _ = update(app, tea.WindowSizeMsg{Width: 120, Height: 40})

	app, _ = update(app, keyRunes("3"))
	app, _ = update(app, keyRunes("e"))
	if app.activeView != viewDashboard {
		t.Fatal("view keys must not work while hidden")
	}
	if app.exportPicking {
		t.Fatal("export picker must not open while hidden")
	}
}

func TestAppCloseWithoutKeepAliveQuits(t *testing.T) {
	app, _ := newTestApp(t, "", false)
	app = reveal(t, app)

	app, cmd := update(app, tea.KeyMsg{Type: tea.KeyCtrlC})
	if app.ctrl.State() != shell.Destroyed {
		t.Fatalf("expected destroyed, got %s", app.ctrl.State())
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestAppKeepAliveCloseAndReactivate(t *testing.T) {
	app, _ := newTestApp(t, "", true)
	app = reveal(t, app)

	app, _ = update(app, keyRunes("q"))
	if app.ctrl.State() != shell.Closed {
		t.Fatalf("expected closed, got %s", app.ctrl.State())
	}
	if !strings.Contains(app.View(), "background") {
		t.Fatalf("closed view should mention background, got %q", app.View())
	}

	app, cmd := update(app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.ctrl.State() != shell.Initializing {
		t.Fatalf("expected initializing after reactivation, got %s", app.ctrl.State())
	}
	if cmd == nil {
		t.Fatal("reactivation should re-run the gate")
	}

	app, _ = update(app, shell.ReadyMsg{})
	if app.ctrl.State() != shell.Hidden {
		t.Fatalf("expected hidden after ready, got %s", app.ctrl.State())
	}
	app, _ = update(app, shell.DecisionMsg{Decision: checkin.Show})
	if !app.ctrl.Visible() {
		t.Fatal("second show should reveal again")
	}
}

func TestAppTabSwitching(t *testing.T) {
	app, _ := newTestApp(t, "u1", false)
	app = reveal(t, app)

	app, _ = update(app, keyRunes("3"))
	if app.activeView != viewProjects {
		t.Fatalf("expected projects, got %d", app.activeView)
	}
	app, _ = update(app, tea.KeyMsg{Type: tea.KeyTab})
	if app.activeView != viewAnalytics {
		t.Fatalf("expected analytics, got %d", app.activeView)
	}
	app, _ = update(app, keyRunes("5"))
	app, _ = update(app, tea.KeyMsg{Type: tea.KeyTab})
	if app.activeView != viewDashboard {
		t.Fatal("tab should wrap to dashboard")
	}
}

func TestAppExportPicker(t *testing.T) {
	app, _ := newTestApp(t, "u1", false)
	app = reveal(t, app)

	app, _ = update(app, keyRunes("e"))
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	app, _ = update(app, tea.KeyMsg{Type: tea.KeyDown})
	if app.exportCursor != 1 {
		t.Fatalf("cursor = %d, want 1", app.exportCursor)
	}
	app, _ = update(app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestAppDoExport(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	app, s := newTestApp(t, "u1", false)
	s.CreateDailyLog("u1", fixedNow, 8, 3, "good day", fixedNow)
	s.CreateDailyLog("u2", fixedNow, 1, 0, "", fixedNow)

	for format, ext := range []string{".csv", ".json"} {
		msg := app.doExport(format)()
		done, ok := msg.(exportDoneMsg)
		if !ok {
			t.Fatalf("expected exportDoneMsg, got %#v", msg)
		}
		if !strings.HasSuffix(done.path, ext) || !strings.HasPrefix(done.path, home) {
			t.Fatalf("unexpected path %q", done.path)
		}
		data, err := os.ReadFile(done.path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "good day") {
			t.Fatalf("export missing the user's log: %s", data)
		}
	}
}

func TestAppViewStates(t *testing.T) {
	app, _ := newTestApp(t, "u1", false)
	app = reveal(t, app)

	// Test all views render without panic
	views := []viewState{viewDashboard, viewCheckin, viewProjects, viewAnalytics, viewSettings}
	for _, v := range views {
		app.activeView = v
		output := app.View()
		if output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	app, _ := newTestApp(t, "", false)
	app, _ = update(app, shell.ReadyMsg{})
	app, _ = update(app, shell.DecisionMsg{Decision: checkin.Show})

	// Visible but width 0 means not yet sized
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _ := newTestApp(t, "u1", false)
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppFooterGateIndicator(t *testing.T) {
	app, _ := newTestApp(t, "u1", false)
	app.width = 120
	app.height = 40

	if !strings.Contains(app.renderFooter(), "check-in due") {
		t.Fatal("footer should show the check-in as due before any decision")
	}

	app, _ = update(app, shell.DecisionMsg{Decision: checkin.StayHidden})
	if !strings.Contains(app.renderFooter(), "checked in") {
		t.Fatal("footer should show checked in after stay-hidden")
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _ := newTestApp(t, "u1", false)
	app.width = 120
	app.height = 40

	app, _ = update(app, statusMsg{text: "test status"})
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppCheckinSaved(t *testing.T) {
	app, _ := newTestApp(t, "u1", false)
	app = reveal(t, app)

	app, cmd := update(app, checkinSavedMsg{log: &store.DailyLog{Date: "2026-03-04"}})
	if app.status != "Logged 2026-03-04" {
		t.Fatalf("unexpected status %q", app.status)
	}
	if cmd == nil {
		t.Fatal("a saved check-in should re-run the gate")
	}
}

func TestAppRoutesDataToInactiveView(t *testing.T) {
	app, _ := newTestApp(t, "u1", false)
	app = reveal(t, app)
	app.activeView = viewCheckin

	snap := metrics.Snapshot{Monthly: 42}
	app, _ = update(app, dashboardDataMsg{snap: snap, params: metrics.DefaultParams()})
	if app.dashboard.snap.Monthly != 42 {
		t.Fatal("dashboard data should reach the dashboard while another view is active")
	}
}

// ============================================================
// Dashboard
// ============================================================

func TestDashboardLoadData(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("u1", "Read", store.HabitGood)
	s.LogHabit("u1", h.ID, fixedNow, true)
	s.LogHabit("u1", h.ID, fixedNow.AddDate(0, 0, -1), true)
	s.CreateDailyLog("u1", fixedNow, 9, 4, "", fixedNow)

	d := newDashboardModel(s, zap.NewNop(), "u1", clock)
	d.setSize(120, 40)
	msg := d.loadData()()
	data, ok := msg.(dashboardDataMsg)
	if !ok {
		t.Fatalf("expected dashboardDataMsg, got %T", msg)
	}
	d, _ = d.update(data)

	if d.snap.ActiveHabits != 1 {
		t.Fatalf("active habits = %d, want 1", d.snap.ActiveHabits)
	}
	if len(d.snap.Heatmap) != 30 {
		t.Fatalf("heatmap cells = %d, want 30", len(d.snap.Heatmap))
	}
	if last := d.snap.Heatmap[len(d.snap.Heatmap)-1]; last.Date != "2026-03-04" || !last.IsSuccess() {
		t.Fatalf("today's cell should be a success: %+v", last)
	}
	if len(d.snap.Timeline) != 1 || d.snap.Timeline[0].Score != 90 {
		t.Fatalf("unexpected timeline %+v", d.snap.Timeline)
	}

	view := d.view()
	for _, want := range []string{"Monthly consistency", "Productivity", "Project health"} {
		if !strings.Contains(view, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}
}

func TestDashboardEmpty(t *testing.T) {
	s := newTestStore(t)
	d := newDashboardModel(s, zap.NewNop(), "nobody", clock)
	d.setSize(120, 40)
	d, _ = d.update(d.loadData()())

	view := d.view()
	if !strings.Contains(view, "No active habits") {
		t.Fatal("empty dashboard should say there are no habits")
	}
	if !strings.Contains(view, "No check-ins yet") {
		t.Fatal("empty dashboard should say there are no check-ins")
	}
}

func TestDashboardTooSmall(t *testing.T) {
	d := newDashboardModel(nil, zap.NewNop(), "u1", clock)
	d.setSize(10, 10)
	if d.view() != "Terminal too small" {
		t.Fatal("tiny terminal should not render panels")
	}
}

// ============================================================
// Check-in view
// ============================================================

func TestCheckinSave(t *testing.T) {
	s := newTestStore(t)
	c := newCheckinModel(s, "u1", clock)
	*c.formScore = 8
	*c.formHours = " 2.5 "
	*c.formNotes = "wrote tests"
	*c.formFocus = 4

	msg := c.save()()
	saved, ok := msg.(checkinSavedMsg)
	if !ok {
		t.Fatalf("expected checkinSavedMsg, got %#v", msg)
	}
	if saved.log.ProductivityScore != 8 || saved.log.DeepWorkHours != 2.5 {
		t.Fatalf("unexpected log %+v", saved.log)
	}
	if saved.log.Date != "2026-03-04" {
		t.Fatalf("date = %q, want 2026-03-04", saved.log.Date)
	}

	focus, err := s.QueryFocusLogs(context.Background(), "u1", fixedNow.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(focus) != 1 || focus[0].FocusScore != 4 {
		t.Fatalf("expected one focus log of 4, got %+v", focus)
	}

	c, _ = c.update(c.refresh()())
	if len(c.today) != 1 {
		t.Fatalf("today = %d logs, want 1", len(c.today))
	}
}

func TestCheckinSaveWithoutFocus(t *testing.T) {
	s := newTestStore(t)
	c := newCheckinModel(s, "u1", clock)
	*c.formHours = "0"

	if _, ok := c.save()().(checkinSavedMsg); !ok {
		t.Fatal("save should succeed")
	}
	focus, _ := s.QueryFocusLogs(context.Background(), "u1", time.Time{})
	if len(focus) != 0 {
		t.Fatal("skipped focus score should not be logged")
	}
}

func TestCheckinAnonymousCannotOpenForm(t *testing.T) {
	s := newTestStore(t)
	c := newCheckinModel(s, "", clock)
	c.setSize(100, 30)

	c, cmd := c.showForm()
	if c.formActive {
		t.Fatal("form must not open for an anonymous session")
	}
	msg, ok := cmd().(statusMsg)
	if !ok || !msg.isError {
		t.Fatal("expected an error status")
	}
	if !strings.Contains(c.view(), "Anonymous") {
		t.Fatal("view should explain the anonymous session")
	}
}

func TestCheckinFormOpens(t *testing.T) {
	s := newTestStore(t)
	c := newCheckinModel(s, "u1", clock)
	c.setSize(100, 30)

	c, _ = c.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !c.formActive || c.form == nil {
		t.Fatal("enter should open the check-in form")
	}
	c, _ = c.update(tea.KeyMsg{Type: tea.KeyEsc})
	if c.formActive {
		t.Fatal("esc should cancel the form")
	}
}

func TestValidateHours(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"0", true},
		{"2.5", true},
		{" 8 ", true},
		{"24", true},
		{"-1", false},
		{"25", false},
		{"two", false},
		{"", false},
	}
	for _, tt := range tests {
		if err := validateHours(tt.in); (err == nil) != tt.valid {
			t.Errorf("validateHours(%q) err = %v, valid want %v", tt.in, err, tt.valid)
		}
	}
}

// ============================================================
// Projects view
// ============================================================

func TestProjectsRefreshWithHealth(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("u1", "Launch", "", nil)
	past := fixedNow.Add(-48 * time.Hour)
	s.CreateTask("u1", &p.ID, "late", "", &past)
	done, _ := s.CreateTask("u1", &p.ID, "done", "High", nil)
	s.SetTaskCompleted(done.ID, true)

	pm := newProjectsModel(s, "u1", clock)
	pm.setSize(120, 40)
	pm, _ = pm.update(pm.refresh()())

	if len(pm.projects) != 1 || len(pm.health) != 1 {
		t.Fatalf("projects = %d, health = %d", len(pm.projects), len(pm.health))
	}
	h := pm.health[0]
	if h.TotalTasks != 2 || h.TasksCompleted != 1 || h.OverdueTasks != 1 {
		t.Fatalf("unexpected health %+v", h)
	}
	// 50% done minus one overdue task at 10 points
	if h.HealthScore != 40 {
		t.Fatalf("health = %v, want 40", h.HealthScore)
	}
	if !strings.Contains(pm.view(), "Launch") {
		t.Fatal("project list should show the project")
	}
}

func TestProjectsToggleTask(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("u1", "Launch", "", nil)
	task, _ := s.CreateTask("u1", &p.ID, "write docs", "", nil)

	pm := newProjectsModel(s, "u1", clock)
	pm.setSize(120, 40)
	pm, _ = pm.update(pm.refresh()())

	pm, cmd := pm.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !pm.viewingTasks {
		t.Fatal("enter should open the task view")
	}
	pm, _ = pm.update(cmd())
	if len(pm.tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(pm.tasks))
	}

	pm, _ = pm.update(keyRunes("x"))
	got, _ := s.GetTask(task.ID)
	if !got.IsCompleted {
		t.Fatal("x should complete the task")
	}
}

func TestProjectsArchive(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("u1", "Old", "", nil)

	pm := newProjectsModel(s, "u1", clock)
	pm, _ = pm.update(pm.refresh()())
	pm, _ = pm.update(keyRunes("d"))

	got, _ := s.GetProject(p.ID)
	if got.Status != store.ProjectArchived {
		t.Fatalf("status = %s, want archived", got.Status)
	}
}

func TestProjectsSubmitTask(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("u1", "Launch", "", nil)

	pm := newProjectsModel(s, "u1", clock)
	pm, _ = pm.update(pm.refresh()())
	pm.formType = "task"
	*pm.formName = "ship it"
	*pm.formEnergy = "Low"
	*pm.formDate = "2026-03-10"
	pm.submit()

	tasks, _ := s.QueryTasks(context.Background(), "u1", store.TaskFilter{ProjectID: &p.ID})
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(tasks))
	}
	if tasks[0].EnergyLevel != "Low" || tasks[0].DueDate == nil {
		t.Fatalf("unexpected task %+v", tasks[0])
	}
}

func TestParseOptionalDate(t *testing.T) {
	if parseOptionalDate("", time.UTC) != nil {
		t.Fatal("empty date should be nil")
	}
	if parseOptionalDate("not a date", time.UTC) != nil {
		t.Fatal("invalid date should be nil")
	}
	d := parseOptionalDate("2026-03-10", time.UTC)
	if d == nil || d.Format("2006-01-02 15:04:05") != "2026-03-10 23:59:59" {
		t.Fatalf("unexpected date %v", d)
	}
}

func TestValidateDate(t *testing.T) {
	if validateDate("") != nil {
		t.Fatal("empty date is allowed")
	}
	if validateDate("2026-03-10") != nil {
		t.Fatal("valid date rejected")
	}
	if validateDate("03/10/2026") == nil {
		t.Fatal("wrong layout accepted")
	}
}

// ============================================================
// Analytics view
// ============================================================

func TestAnalyticsRefresh(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 9; i++ {
		day := fixedNow.AddDate(0, 0, -i)
		s.CreateDailyLog("u1", day, i%10, float64(i)/2, "", day)
	}
	s.LogFocus("u1", 5, fixedNow.Add(-2*time.Hour))

	r := newAnalyticsModel(s, zap.NewNop(), "u1", clock)
	r.setSize(120, 40)
	r, _ = r.update(r.refresh()())

	if len(r.snap.Recent) != 7 {
		t.Fatalf("recent = %d, want 7", len(r.snap.Recent))
	}
	if r.snap.Recent[0].Date != "2026-02-26" {
		t.Fatalf("recent should be oldest first, got %s", r.snap.Recent[0].Date)
	}

	view := r.view()
	for _, want := range []string{"Analytics", "Deep work (h)", "peak 13:00"} {
		if !strings.Contains(view, want) {
			t.Fatalf("analytics view missing %q", want)
		}
	}
}

func TestAnalyticsEmpty(t *testing.T) {
	s := newTestStore(t)
	r := newAnalyticsModel(s, zap.NewNop(), "u1", clock)
	r.setSize(120, 40)
	r, _ = r.update(r.refresh()())

	view := r.view()
	if !strings.Contains(view, "No habits yet") || !strings.Contains(view, "No focus scores yet") {
		t.Fatal("empty analytics should say so")
	}
}

func TestFocusStrip(t *testing.T) {
	var hourly [24]float64
	hourly[9] = 5
	hourly[14] = 2.5

	strip := []rune(focusStrip(hourly))
	if len(strip) != 24 {
		t.Fatalf("strip has %d glyphs, want 24", len(strip))
	}
	if strip[0] != ' ' {
		t.Fatalf("empty hour should be blank, got %q", strip[0])
	}
	if strip[9] != '█' {
		t.Fatalf("max focus should be a full block, got %q", strip[9])
	}
	if strip[14] != '▄' {
		t.Fatalf("half focus should be a half block, got %q", strip[14])
	}
}

// ============================================================
// Settings view
// ============================================================

func TestSettingsSave(t *testing.T) {
	s := newTestStore(t)
	sm := newSettingsModel(s)
	*sm.habitsPerDay = "5"
	*sm.weeklyGoal = "6"
	*sm.goodDayHabits = " 2 "
	*sm.successThreshold = "75"
	*sm.overduePenalty = "15"

	if err := sm.saveSettings(); err != nil {
		t.Fatal(err)
	}

	p := metrics.LoadParams(s)
	if p.HabitsPerDay != 5 || p.WeeklyGoal != 6 || p.GoodDayHabits != 2 {
		t.Fatalf("unexpected params %+v", p)
	}
	if p.SuccessThreshold != 75 || p.OverduePenalty != 15 {
		t.Fatalf("unexpected params %+v", p)
	}
}

func TestSettingsRefreshAndView(t *testing.T) {
	s := newTestStore(t)
	sm := newSettingsModel(s)
	sm.setSize(100, 30)
	sm, _ = sm.update(sm.refresh()())

	if len(sm.settings) != 5 {
		t.Fatalf("settings = %d, want 5", len(sm.settings))
	}
	view := sm.view()
	if !strings.Contains(view, "Weekly goal") || !strings.Contains(view, "80%") {
		t.Fatal("settings view should show labels and formatted values")
	}
}

func TestSettingsValidators(t *testing.T) {
	if positiveInt("3") != nil {
		t.Fatal("3 is a positive int")
	}
	for _, bad := range []string{"0", "-2", "x", ""} {
		if positiveInt(bad) == nil {
			t.Fatalf("positiveInt(%q) should fail", bad)
		}
	}
	if percentage("100") != nil {
		t.Fatal("100 is a valid percentage")
	}
	if percentage("101") == nil {
		t.Fatal("101 is not a valid percentage")
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{metrics.KeySuccessThreshold, "80", "80%"},
		{metrics.KeyOverduePenalty, "10", "10 pts"},
		{metrics.KeyWeeklyGoal, "7", "7 / week"},
		{metrics.KeyHabitsPerDay, "4", "4"},
		{"unknown", "x", "x"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.key, tt.value); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0.0h"},
		{1.5, "1.5h"},
		{10, "10.0h"},
	}
	for _, tt := range tests {
		if got := formatHours(tt.hours); got != tt.want {
			t.Errorf("formatHours(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestPercentBar(t *testing.T) {
	if got := percentBar(50, 10); got != "█████░░░░░" {
		t.Fatalf("percentBar(50, 10) = %q", got)
	}
	if got := percentBar(150, 4); got != "████" {
		t.Fatalf("over 100 should clamp, got %q", got)
	}
	if got := percentBar(-5, 3); got != "░░░" {
		t.Fatalf("negative should clamp, got %q", got)
	}
	if percentBar(50, 0) != "" {
		t.Fatal("zero width should be empty")
	}
}

func TestTruncate(t *testing.T) {
	if truncate("short", 10) != "short" {
		t.Fatal("short strings are unchanged")
	}
	if got := truncate("a long project name", 6); got != "a lon…" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestViewNames(t *testing.T) {
	if len(viewNames) != int(viewSettings)+1 {
		t.Fatalf("viewNames has %d entries for %d views", len(viewNames), viewSettings+1)
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	bindings := keys.ShortHelp()
	if len(bindings) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test: just verify they don't panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"cellEmpty", func() string { return cellEmptyStyle.Render("test") }},
		{"cellPartial", func() string { return cellPartialStyle.Render("test") }},
		{"cellSuccess", func() string { return cellSuccessStyle.Render("test") }},
		{"stat", func() string { return statStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"subtitle", func() string { return subtitleStyle.Render("test") }},
		{"accent", func() string { return accentStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
	}

	for _, s := range styles {
		result := s.fn()
		if result == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
