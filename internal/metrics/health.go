package metrics

import (
	"time"

	"github.com/sadopc/lifeos/internal/store"
)

// ProjectHealth is the derived state of one active project.
type ProjectHealth struct {
	ProjectID      string
	Name           string
	HealthScore    float64
	TasksCompleted int
	TotalTasks     int
	OverdueTasks   int
	Velocity       int
}

// Health scores a project from its tasks at time now.
func Health(project store.Project, tasks []store.Task, now time.Time, p Params) ProjectHealth {
	h := ProjectHealth{
		ProjectID:  project.ID,
		Name:       project.Name,
		TotalTasks: len(tasks),
	}

	since := now.Add(-p.VelocityWindow)
	for _, t := range tasks {
		if t.IsCompleted {
			h.TasksCompleted++
			// created_at stands in for completion time
			if t.CreatedAt.After(since) {
				h.Velocity++
			}
			continue
		}
		if t.DueDate != nil && t.DueDate.Before(now) {
			h.OverdueTasks++
		}
	}

	h.HealthScore = HealthScore(h.TotalTasks, h.TasksCompleted, h.OverdueTasks, p.OverduePenalty)
	return h
}

// HealthScore is the completion percentage minus penalty per overdue task,
// floored at zero. A project with no tasks scores 100.
func HealthScore(total, completed, overdue int, penalty float64) float64 {
	score := 100.0
	if total > 0 {
		score = float64(completed) / float64(total) * 100
	}
	score -= float64(overdue) * penalty
	return clampPercent(score)
}

type Band string

const (
	BandGood Band = "good"
	BandFair Band = "fair"
	BandPoor Band = "poor"
)

func HealthBand(score float64) Band {
	switch {
	case score >= 80:
		return BandGood
	case score >= 50:
		return BandFair
	default:
		return BandPoor
	}
}

// ProjectsHealth scores every project with the tasks grouped by project id.
func ProjectsHealth(projects []store.Project, tasks []store.Task, now time.Time, p Params) []ProjectHealth {
	byProject := make(map[string][]store.Task)
	for _, t := range tasks {
		if t.ProjectID == nil {
			continue
		}
		byProject[*t.ProjectID] = append(byProject[*t.ProjectID], t)
	}

	out := make([]ProjectHealth, 0, len(projects))
	for _, pr := range projects {
		if pr.Status != store.ProjectActive {
			continue
		}
		out = append(out, Health(pr, byProject[pr.ID], now, p))
	}
	return out
}
