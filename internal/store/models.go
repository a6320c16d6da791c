package store

import "time"

type Profile struct {
	ID        string
	Name      string
	ChatID    string // reminder destination; empty means no reminders
	CreatedAt time.Time
}

// DailyLog is one check-in. Several may exist for the same user and day.
type DailyLog struct {
	ID                string
	UserID            string
	Date              string // calendar day in the user's zone, DateLayout
	ProductivityScore int    // 0-10
	DeepWorkHours     float64
	Notes             string
	CreatedAt         time.Time
}

type HabitKind string

const (
	HabitGood HabitKind = "good"
	HabitBad  HabitKind = "bad"
)

type Habit struct {
	ID        string
	UserID    string
	Name      string
	Kind      HabitKind
	Active    bool
	CreatedAt time.Time
}

type HabitLog struct {
	ID        string
	UserID    string
	HabitID   string
	Date      string
	Completed bool
	CreatedAt time.Time
}

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
	ProjectOnHold    ProjectStatus = "on_hold"
)

// ParseProjectStatus validates a status string.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	switch ProjectStatus(s) {
	case ProjectActive, ProjectCompleted, ProjectArchived, ProjectOnHold:
		return ProjectStatus(s), true
	}
	return "", false
}

type Project struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Status      ProjectStatus
	Deadline    *time.Time
	CreatedAt   time.Time
}

type Task struct {
	ID          string
	UserID      string
	ProjectID   *string
	Title       string
	IsCompleted bool
	EnergyLevel string // High, Medium, Low or empty
	DueDate     *time.Time
	CreatedAt   time.Time
}

type FocusLog struct {
	ID         string
	UserID     string
	FocusScore int // 1-5
	CreatedAt  time.Time
}

type Setting struct {
	Key   string
	Value string
}

// TaskFilter narrows QueryTasks. Nil fields match everything.
type TaskFilter struct {
	ProjectID *string
	Completed *bool
}
