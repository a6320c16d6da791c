package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/lifeos/internal/metrics"
	"github.com/sadopc/lifeos/internal/store"
)

var energyLevels = []string{"", "High", "Medium", "Low"}

type projectsModel struct {
	store  *store.Store
	userID string
	now    func() time.Time
	width  int
	height int

	projects     []store.Project
	health       []metrics.ProjectHealth
	tasks        []store.Task
	cursor       int
	taskCursor   int
	viewingTasks bool // true = viewing tasks of selected project

	formActive bool
	form       *huh.Form
	formType   string // "project", "task"

	// Form field pointers (survive value copies)
	formName   *string
	formDesc   *string
	formDate   *string
	formEnergy *string
}

func newProjectsModel(s *store.Store, userID string, now func() time.Time) projectsModel {
	name, desc, date, energy := "", "", "", ""
	return projectsModel{
		store:      s,
		userID:     userID,
		now:        now,
		formName:   &name,
		formDesc:   &desc,
		formDate:   &date,
		formEnergy: &energy,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type projectsDataMsg struct {
	projects []store.Project
	health   []metrics.ProjectHealth
}

type tasksDataMsg struct {
	tasks []store.Task
}

func (p projectsModel) refresh() tea.Cmd {
	s, userID, now := p.store, p.userID, p.now()
	return func() tea.Msg {
		ctx := context.Background()
		projects, _ := s.QueryActiveProjects(ctx, userID)
		tasks, _ := s.QueryTasks(ctx, userID, store.TaskFilter{})
		return projectsDataMsg{
			projects: projects,
			health:   metrics.ProjectsHealth(projects, tasks, now, metrics.LoadParams(s)),
		}
	}
}

func (p projectsModel) refreshTasks() tea.Cmd {
	if p.cursor >= len(p.projects) {
		return nil
	}
	s, userID, pid := p.store, p.userID, p.projects[p.cursor].ID
	return func() tea.Msg {
		tasks, _ := s.QueryTasks(context.Background(), userID, store.TaskFilter{ProjectID: &pid})
		return tasksDataMsg{tasks: tasks}
	}
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		p.projects = msg.projects
		p.health = msg.health
		if p.cursor >= len(p.projects) {
			p.cursor = max(0, len(p.projects)-1)
		}
		if len(p.projects) == 0 {
			p.viewingTasks = false
		}
		return p, nil

	case tasksDataMsg:
		p.tasks = msg.tasks
		if p.taskCursor >= len(p.tasks) {
			p.taskCursor = max(0, len(p.tasks)-1)
		}
		return p, nil

	case tea.KeyMsg:
		if p.viewingTasks {
			return p.updateTaskView(msg)
		}
		return p.updateProjectList(msg)
	}
	return p, nil
}

func (p projectsModel) updateProjectList(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(p.projects) > 0 {
			p.viewingTasks = true
			p.taskCursor = 0
			return p, p.refreshTasks()
		}
	case key.Matches(msg, keys.New):
		return p.showNewProjectForm()
	case key.Matches(msg, keys.Done):
		return p.setStatus(store.ProjectCompleted)
	case key.Matches(msg, keys.Archive):
		return p.setStatus(store.ProjectArchived)
	}
	return p, nil
}

func (p projectsModel) setStatus(status store.ProjectStatus) (projectsModel, tea.Cmd) {
	if len(p.projects) == 0 {
		return p, nil
	}
	proj := p.projects[p.cursor]
	if err := p.store.SetProjectStatus(proj.ID, status); err != nil {
		return p, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return p, tea.Batch(
		p.refresh(),
		func() tea.Msg { return statusMsg{text: fmt.Sprintf("%s marked %s", proj.Name, status)} },
	)
}

func (p projectsModel) updateTaskView(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		p.viewingTasks = false
		return p, p.refresh()
	case key.Matches(msg, keys.Up):
		if p.taskCursor > 0 {
			p.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.taskCursor < len(p.tasks)-1 {
			p.taskCursor++
		}
	case key.Matches(msg, keys.New):
		return p.showNewTaskForm()
	case key.Matches(msg, keys.Done), key.Matches(msg, keys.Enter):
		if len(p.tasks) > 0 {
			task := p.tasks[p.taskCursor]
			if err := p.store.SetTaskCompleted(task.ID, !task.IsCompleted); err != nil {
				return p, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
				}
			}
			return p, p.refreshTasks()
		}
	}
	return p, nil
}

func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(store.DateLayout, strings.TrimSpace(s)); err != nil {
		return errors.New("use YYYY-MM-DD or leave empty")
	}
	return nil
}

func requireName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("name is required")
	}
	return nil
}

// parseOptionalDate reads a validated YYYY-MM-DD field as end of day in loc.
func parseOptionalDate(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := time.ParseInLocation(store.DateLayout, s, loc)
	if err != nil {
		return nil
	}
	d = d.Add(24*time.Hour - time.Second)
	return &d
}

func (p projectsModel) showNewProjectForm() (projectsModel, tea.Cmd) {
	*p.formName = ""
	*p.formDesc = ""
	*p.formDate = ""
	p.formType = "project"

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Validate(requireName).Value(p.formName),
			huh.NewInput().Title("Description").Value(p.formDesc),
			huh.NewInput().Title("Deadline (YYYY-MM-DD, optional)").Validate(validateDate).Value(p.formDate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showNewTaskForm() (projectsModel, tea.Cmd) {
	*p.formName = ""
	*p.formDate = ""
	*p.formEnergy = ""
	p.formType = "task"

	energyOptions := make([]huh.Option[string], len(energyLevels))
	for i, e := range energyLevels {
		label := e
		if label == "" {
			label = "unset"
		}
		energyOptions[i] = huh.NewOption(label, e)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Validate(requireName).Value(p.formName),
			huh.NewSelect[string]().Title("Energy").Options(energyOptions...).Value(p.formEnergy),
			huh.NewInput().Title("Due (YYYY-MM-DD, optional)").Validate(validateDate).Value(p.formDate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		return p, p.submit()
	}

	return p, cmd
}

func (p projectsModel) submit() tea.Cmd {
	name := strings.TrimSpace(*p.formName)
	if name == "" {
		return nil
	}
	loc := p.now().Location()
	switch p.formType {
	case "project":
		deadline := parseOptionalDate(*p.formDate, loc)
		if _, err := p.store.CreateProject(p.userID, name, strings.TrimSpace(*p.formDesc), deadline); err != nil {
			return func() tea.Msg { return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true} }
		}
		return p.refresh()
	case "task":
		if p.cursor >= len(p.projects) {
			return nil
		}
		pid := p.projects[p.cursor].ID
		due := parseOptionalDate(*p.formDate, loc)
		if _, err := p.store.CreateTask(p.userID, &pid, name, *p.formEnergy, due); err != nil {
			return func() tea.Msg { return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true} }
		}
		return p.refreshTasks()
	}
	return nil
}

func (p projectsModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Project")
		if p.formType == "task" {
			title = titleStyle.Render("New Task")
		}
		formView := p.form.View()
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", formView)
		return panelStyle.Width(p.width - 4).Render(content)
	}

	if p.viewingTasks && p.cursor < len(p.projects) {
		return p.renderTaskView()
	}
	return p.renderProjectList()
}

func (p projectsModel) healthOf(id string) (metrics.ProjectHealth, bool) {
	for _, h := range p.health {
		if h.ProjectID == id {
			return h, true
		}
	}
	return metrics.ProjectHealth{}, false
}

func (p projectsModel) renderProjectList() string {
	w := p.width - 4
	title := titleStyle.Render("Active Projects")

	if len(p.projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No active projects. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	// Table header
	header := mutedStyle.Render(fmt.Sprintf("  %-24s %-8s %-12s %-10s %s", "Name", "Health", "Tasks", "Velocity", "Deadline"))
	rows = append(rows, header)

	for i, proj := range p.projects {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		h, _ := p.healthOf(proj.ID)
		score := bandStyle(metrics.HealthBand(h.HealthScore)).Render(fmt.Sprintf("%-8.0f", h.HealthScore))
		row := style.Render(fmt.Sprintf("%s%-24s ", cursor, truncate(proj.Name, 24))) +
			score +
			fmt.Sprintf(" %-12s %-10d %s",
				fmt.Sprintf("%d/%d", h.TasksCompleted, h.TotalTasks),
				h.Velocity,
				formatDate(proj.Deadline),
			)
		if h.OverdueTasks > 0 {
			row += errorStyle.Render(fmt.Sprintf("  %d overdue", h.OverdueTasks))
		}
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  x: complete  d: archive  enter: tasks"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p projectsModel) renderTaskView() string {
	w := p.width - 4
	proj := p.projects[p.cursor]
	title := titleStyle.Render(proj.Name + " / Tasks")

	if len(p.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	now := p.now()
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, task := range p.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == p.taskCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		if task.IsCompleted {
			check = successStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %s", cursor, check, style.Render(task.Title))
		if task.EnergyLevel != "" {
			line += mutedStyle.Render(" [" + task.EnergyLevel + "]")
		}
		if task.DueDate != nil {
			due := "due " + formatDate(task.DueDate)
			if !task.IsCompleted && task.DueDate.Before(now) {
				line += " " + errorStyle.Render(due)
			} else {
				line += " " + mutedStyle.Render(due)
			}
		}
		rows = append(rows, line)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new task  x: toggle done  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
