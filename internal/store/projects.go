package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const projectColumns = `id, user_id, name, description, status, deadline, created_at`

func (s *Store) CreateProject(userID, name, description string, deadline *time.Time) (*Project, error) {
	id := newID()
	var dl any
	if deadline != nil {
		dl = deadline.Format(DateLayout)
	}
	_, err := s.db.Exec(
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, name, description, string(ProjectActive), dl, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return s.GetProject(id)
}

func (s *Store) GetProject(id string) (*Project, error) {
	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) SetProjectStatus(id string, status ProjectStatus) error {
	if _, ok := ParseProjectStatus(string(status)); !ok {
		return fmt.Errorf("unknown project status %q", status)
	}
	res, err := s.db.Exec(`UPDATE projects SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update project %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListProjects returns every project of the user regardless of status.
func (s *Store) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	return s.queryProjects(ctx, `SELECT `+projectColumns+` FROM projects WHERE user_id = ? ORDER BY name`, userID)
}

// QueryActiveProjects returns only the projects that are scored.
func (s *Store) QueryActiveProjects(ctx context.Context, userID string) ([]Project, error) {
	return s.queryProjects(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = ? AND status = ? ORDER BY name`,
		userID, string(ProjectActive),
	)
}

func (s *Store) queryProjects(ctx context.Context, query string, args ...any) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func scanProject(r rowScanner) (*Project, error) {
	p := &Project{}
	var status, createdAt string
	var deadline sql.NullString
	if err := r.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &status, &deadline, &createdAt); err != nil {
		return nil, err
	}
	p.Status = ProjectStatus(status)
	if deadline.Valid {
		if t, err := time.Parse(DateLayout, deadline.String); err == nil {
			p.Deadline = &t
		}
	}
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}
