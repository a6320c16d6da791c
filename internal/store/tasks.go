package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const taskColumns = `id, user_id, project_id, title, is_completed, energy_level, due_date, created_at`

func (s *Store) CreateTask(userID string, projectID *string, title, energy string, dueDate *time.Time) (*Task, error) {
	id := newID()
	var due any
	if dueDate != nil {
		due = formatTime(*dueDate)
	}
	_, err := s.db.Exec(
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
		id, userID, projectID, title, energy, due, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(id)
}

func (s *Store) GetTask(id string) (*Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

func (s *Store) SetTaskCompleted(id string, done bool) error {
	res, err := s.db.Exec(`UPDATE tasks SET is_completed = ? WHERE id = ?`, boolInt(done), id)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update task %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) QueryTasks(ctx context.Context, userID string, f TaskFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}

	if f.ProjectID != nil {
		query += ` AND project_id = ?`
		args = append(args, *f.ProjectID)
	}
	if f.Completed != nil {
		query += ` AND is_completed = ?`
		args = append(args, boolInt(*f.Completed))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func scanTask(r rowScanner) (*Task, error) {
	t := &Task{}
	var projectID, dueDate sql.NullString
	var completed int
	var createdAt string
	if err := r.Scan(&t.ID, &t.UserID, &projectID, &t.Title, &completed, &t.EnergyLevel, &dueDate, &createdAt); err != nil {
		return nil, err
	}
	if projectID.Valid {
		t.ProjectID = &projectID.String
	}
	t.IsCompleted = completed == 1
	if dueDate.Valid {
		due := parseTime(dueDate.String)
		t.DueDate = &due
	}
	t.CreatedAt = parseTime(createdAt)
	return t, nil
}
