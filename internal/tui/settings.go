package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/lifeos/internal/metrics"
	"github.com/sadopc/lifeos/internal/store"
)

var settingLabels = map[string]string{
	metrics.KeyHabitsPerDay:     "Habits per day",
	metrics.KeyWeeklyGoal:       "Weekly goal",
	metrics.KeyGoodDayHabits:    "Habits for a good day",
	metrics.KeySuccessThreshold: "Heatmap success",
	metrics.KeyOverduePenalty:   "Overdue penalty",
}

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	habitsPerDay     *string
	weeklyGoal       *string
	goodDayHabits    *string
	successThreshold *string
	overduePenalty   *string
}

func newSettingsModel(s *store.Store) settingsModel {
	hp, wg, gd, st, op := "", "", "", "", ""
	return settingsModel{
		store:            s,
		habitsPerDay:     &hp,
		weeklyGoal:       &wg,
		goodDayHabits:    &gd,
		successThreshold: &st,
		overduePenalty:   &op,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	st := s.store
	return func() tea.Msg {
		settings, _ := st.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func positiveInt(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return errors.New("enter a whole number above zero")
	}
	return nil
}

func percentage(v string) error {
	if err := positiveInt(v); err != nil {
		return err
	}
	if n, _ := strconv.Atoi(strings.TrimSpace(v)); n > 100 {
		return errors.New("at most 100")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	p := metrics.LoadParams(s.store)
	*s.habitsPerDay = strconv.Itoa(p.HabitsPerDay)
	*s.weeklyGoal = strconv.Itoa(p.WeeklyGoal)
	*s.goodDayHabits = strconv.Itoa(p.GoodDayHabits)
	*s.successThreshold = strconv.Itoa(int(p.SuccessThreshold))
	*s.overduePenalty = strconv.Itoa(int(p.OverduePenalty))

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Habits per day").
				Description("Expected habit logs per day, for monthly consistency").
				Validate(positiveInt).Value(s.habitsPerDay),
			huh.NewInput().Title("Weekly goal").
				Description("Completions that make a habit 100%").
				Validate(positiveInt).Value(s.weeklyGoal),
			huh.NewInput().Title("Habits for a good day").
				Description("Habit logs that split good days from the rest").
				Validate(positiveInt).Value(s.goodDayHabits),
		).Title("Habits"),
		huh.NewGroup(
			huh.NewInput().Title("Heatmap success (%)").Validate(percentage).Value(s.successThreshold),
			huh.NewInput().Title("Overdue penalty (points per task)").Validate(percentage).Value(s.overduePenalty),
		).Title("Scores"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	values := map[string]string{
		metrics.KeyHabitsPerDay:     *s.habitsPerDay,
		metrics.KeyWeeklyGoal:       *s.weeklyGoal,
		metrics.KeyGoodDayHabits:    *s.goodDayHabits,
		metrics.KeySuccessThreshold: *s.successThreshold,
		metrics.KeyOverduePenalty:   *s.overduePenalty,
	}
	for k, v := range values {
		values[k] = strings.TrimSpace(v)
	}
	return s.store.SetSettings(values)
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		name, ok := settingLabels[setting.Key]
		if !ok {
			name = setting.Key
		}
		label := lipgloss.NewStyle().Width(24).Render(name)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case metrics.KeySuccessThreshold:
		return v + "%"
	case metrics.KeyOverduePenalty:
		return v + " pts"
	case metrics.KeyWeeklyGoal:
		return v + " / week"
	}
	return v
}
