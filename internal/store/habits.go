package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func (s *Store) CreateHabit(userID, name string, kind HabitKind) (*Habit, error) {
	if kind == "" {
		kind = HabitGood
	}
	id := newID()
	_, err := s.db.Exec(
		`INSERT INTO habits (id, user_id, name, kind, active, created_at) VALUES (?, ?, ?, ?, 1, ?)`,
		id, userID, name, string(kind), formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	return s.GetHabit(id)
}

func (s *Store) GetHabit(id string) (*Habit, error) {
	h := &Habit{}
	var kind, createdAt string
	var active int
	err := s.db.QueryRow(
		`SELECT id, user_id, name, kind, active, created_at FROM habits WHERE id = ?`, id,
	).Scan(&h.ID, &h.UserID, &h.Name, &kind, &active, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get habit %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get habit %s: %w", id, err)
	}
	h.Kind = HabitKind(kind)
	h.Active = active == 1
	h.CreatedAt = parseTime(createdAt)
	return h, nil
}

func (s *Store) SetHabitActive(id string, active bool) error {
	res, err := s.db.Exec(`UPDATE habits SET active = ? WHERE id = ?`, boolInt(active), id)
	if err != nil {
		return fmt.Errorf("update habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update habit %s: %w", id, ErrNotFound)
	}
	return nil
}

// QueryActiveHabits returns the habits that count toward daily denominators.
func (s *Store) QueryActiveHabits(ctx context.Context, userID string) ([]Habit, error) {
	return s.queryHabits(ctx, `SELECT id, user_id, name, kind, active, created_at FROM habits
		WHERE user_id = ? AND active = 1 ORDER BY name`, userID)
}

// QueryHabits returns every habit, active or not.
func (s *Store) QueryHabits(ctx context.Context, userID string) ([]Habit, error) {
	return s.queryHabits(ctx, `SELECT id, user_id, name, kind, active, created_at FROM habits
		WHERE user_id = ? ORDER BY name`, userID)
}

func (s *Store) queryHabits(ctx context.Context, query, userID string) ([]Habit, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query habits: %w", err)
	}
	defer rows.Close()

	var habits []Habit
	for rows.Next() {
		var h Habit
		var kind, createdAt string
		var active int
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &kind, &active, &createdAt); err != nil {
			return nil, err
		}
		h.Kind = HabitKind(kind)
		h.Active = active == 1
		h.CreatedAt = parseTime(createdAt)
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// LogHabit records one habit's outcome on date.
func (s *Store) LogHabit(userID, habitID string, date time.Time, completed bool) (*HabitLog, error) {
	id := newID()
	now := time.Now()
	_, err := s.db.Exec(
		`INSERT INTO habit_logs (id, user_id, habit_id, date, completed, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, habitID, date.Format(DateLayout), boolInt(completed), formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit log: %w", err)
	}
	return &HabitLog{
		ID:        id,
		UserID:    userID,
		HabitID:   habitID,
		Date:      date.Format(DateLayout),
		Completed: completed,
		CreatedAt: now.UTC(),
	}, nil
}

// QueryHabitLogs returns habit logs dated in [from, to]. A zero from is unbounded.
func (s *Store) QueryHabitLogs(ctx context.Context, userID string, from, to time.Time) ([]HabitLog, error) {
	query := `SELECT id, user_id, habit_id, date, completed, created_at FROM habit_logs WHERE user_id = ?`
	args := []any{userID}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from.Format(DateLayout))
	}
	query += ` AND date <= ? ORDER BY date, created_at`
	args = append(args, to.Format(DateLayout))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query habit logs: %w", err)
	}
	defer rows.Close()

	var logs []HabitLog
	for rows.Next() {
		var l HabitLog
		var completed int
		var createdAt string
		if err := rows.Scan(&l.ID, &l.UserID, &l.HabitID, &l.Date, &completed, &createdAt); err != nil {
			return nil, err
		}
		l.Completed = completed == 1
		l.CreatedAt = parseTime(createdAt)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
