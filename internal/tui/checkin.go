package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/lifeos/internal/checkin"
	"github.com/sadopc/lifeos/internal/store"
)

type checkinModel struct {
	store  *store.Store
	userID string
	now    func() time.Time
	width  int
	height int

	today []store.DailyLog

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formScore *int
	formHours *string
	formNotes *string
	formFocus *int
}

func newCheckinModel(s *store.Store, userID string, now func() time.Time) checkinModel {
	score, hours, notes, focus := 5, "0", "", 0
	return checkinModel{
		store:     s,
		userID:    userID,
		now:       now,
		formScore: &score,
		formHours: &hours,
		formNotes: &notes,
		formFocus: &focus,
	}
}

func (c *checkinModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type checkinDataMsg struct {
	today []store.DailyLog
}

func (c checkinModel) refresh() tea.Cmd {
	s, userID, now := c.store, c.userID, c.now()
	return func() tea.Msg {
		from, to := checkin.DayBounds(now, now.Location())
		logs, _ := s.QueryDailyLogsCreated(context.Background(), userID, from, to)
		return checkinDataMsg{today: logs}
	}
}

func (c checkinModel) update(msg tea.Msg) (checkinModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case checkinDataMsg:
		c.today = msg.today
		return c, nil

	case checkinSavedMsg:
		return c, c.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return c.showForm()
		}
	}
	return c, nil
}

func validateHours(s string) error {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("enter a number of hours")
	}
	if h < 0 || h > 24 {
		return errors.New("hours must be between 0 and 24")
	}
	return nil
}

func (c checkinModel) showForm() (checkinModel, tea.Cmd) {
	if c.userID == "" {
		return c, func() tea.Msg {
			return statusMsg{text: "No user configured. Set session.user_id or pass --user.", isError: true}
		}
	}

	*c.formScore = 5
	*c.formHours = "0"
	*c.formNotes = ""
	*c.formFocus = 0

	scoreOptions := make([]huh.Option[int], 0, 11)
	for i := 10; i >= 0; i-- {
		scoreOptions = append(scoreOptions, huh.NewOption(strconv.Itoa(i), i))
	}
	focusOptions := []huh.Option[int]{huh.NewOption("skip", 0)}
	for i := 1; i <= 5; i++ {
		focusOptions = append(focusOptions, huh.NewOption(strconv.Itoa(i), i))
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().Title("Productivity (0-10)").Options(scoreOptions...).Value(c.formScore),
			huh.NewInput().Title("Deep work (hours)").Validate(validateHours).Value(c.formHours),
			huh.NewText().Title("Notes").Value(c.formNotes),
			huh.NewSelect[int]().Title("Focus right now (1-5)").Options(focusOptions...).Value(c.formFocus),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c checkinModel) updateForm(msg tea.Msg) (checkinModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		return c, c.save()
	}

	return c, cmd
}

// save writes today's DailyLog and the optional focus score.
func (c checkinModel) save() tea.Cmd {
	s, userID, now := c.store, c.userID, c.now()
	score, notes, focus := *c.formScore, strings.TrimSpace(*c.formNotes), *c.formFocus
	hoursText := *c.formHours
	return func() tea.Msg {
		if userID == "" {
			return statusMsg{text: "No user configured", isError: true}
		}
		hours, err := strconv.ParseFloat(strings.TrimSpace(hoursText), 64)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Deep work: %v", err), isError: true}
		}
		log, err := s.CreateDailyLog(userID, now, score, hours, notes, now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if focus > 0 {
			if _, err := s.LogFocus(userID, focus, now); err != nil {
				return statusMsg{text: fmt.Sprintf("Focus: %v", err), isError: true}
			}
		}
		return checkinSavedMsg{log: log}
	}
}

func (c checkinModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		title := titleStyle.Render("Check in for " + c.now().Format("Monday, Jan 02"))
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View())
		return activePanelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Today")
	if c.userID == "" {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			warningStyle.Render("Anonymous session: check-ins need a user."),
			mutedStyle.Render("Set session.user_id in config.yaml or pass --user."),
		))
	}

	if len(c.today) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			warningStyle.Render("● Not logged yet"),
			"",
			mutedStyle.Render("Press enter to check in."),
		))
	}

	rows := []string{title, "", successStyle.Render("✓ Logged")}
	for _, l := range c.today {
		line := fmt.Sprintf("  %s  score %s  deep work %s",
			l.CreatedAt.In(c.now().Location()).Format("15:04"),
			highlightStyle.Render(strconv.Itoa(l.ProductivityScore)),
			highlightStyle.Render(formatHours(l.DeepWorkHours)),
		)
		if l.Notes != "" {
			line += mutedStyle.Render("  " + truncate(l.Notes, max(10, w-50)))
		}
		rows = append(rows, line)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: log again"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
