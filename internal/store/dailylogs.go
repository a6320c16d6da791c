package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const dailyLogColumns = `id, user_id, date, productivity_score, deep_work_hours, notes, created_at`

// CreateDailyLog records a check-in for date. createdAt is normally time.Now().
func (s *Store) CreateDailyLog(userID string, date time.Time, score int, deepWork float64, notes string, createdAt time.Time) (*DailyLog, error) {
	if score < 0 || score > 10 {
		return nil, fmt.Errorf("productivity score %d: %w", score, ErrInvalidScore)
	}
	if deepWork < 0 {
		return nil, fmt.Errorf("deep work %.1f: %w", deepWork, ErrInvalidHours)
	}

	id := newID()
	_, err := s.db.Exec(
		`INSERT INTO daily_logs (`+dailyLogColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, date.Format(DateLayout), score, deepWork, notes, formatTime(createdAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert daily log: %w", err)
	}
	return s.GetDailyLog(id)
}

func (s *Store) GetDailyLog(id string) (*DailyLog, error) {
	row := s.db.QueryRow(`SELECT `+dailyLogColumns+` FROM daily_logs WHERE id = ?`, id)
	l, err := scanDailyLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get daily log %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get daily log %s: %w", id, err)
	}
	return l, nil
}

// QueryDailyLogs returns logs whose calendar date lies in [from, to], oldest first.
func (s *Store) QueryDailyLogs(ctx context.Context, userID string, from, to time.Time) ([]DailyLog, error) {
	return s.queryDailyLogs(ctx,
		`SELECT `+dailyLogColumns+` FROM daily_logs
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date, created_at`,
		userID, from.Format(DateLayout), to.Format(DateLayout),
	)
}

// AllDailyLogs returns every log of the user, oldest first.
func (s *Store) AllDailyLogs(ctx context.Context, userID string) ([]DailyLog, error) {
	return s.QueryDailyLogs(ctx, userID, time.Time{}, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC))
}

// QueryDailyLogsCreated returns logs created in [from, to).
func (s *Store) QueryDailyLogsCreated(ctx context.Context, userID string, from, to time.Time) ([]DailyLog, error) {
	return s.queryDailyLogs(ctx,
		`SELECT `+dailyLogColumns+` FROM daily_logs
		 WHERE user_id = ? AND created_at >= ? AND created_at < ?
		 ORDER BY created_at`,
		userID, formatTime(from), formatTime(to),
	)
}

// RecentDailyLogs returns up to limit logs, newest date first.
func (s *Store) RecentDailyLogs(ctx context.Context, userID string, limit int) ([]DailyLog, error) {
	query := `SELECT ` + dailyLogColumns + ` FROM daily_logs WHERE user_id = ? ORDER BY date DESC, created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	return s.queryDailyLogs(ctx, query, userID)
}

func (s *Store) queryDailyLogs(ctx context.Context, query string, args ...any) ([]DailyLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily logs: %w", err)
	}
	defer rows.Close()

	var logs []DailyLog
	for rows.Next() {
		l, err := scanDailyLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDailyLog(r rowScanner) (*DailyLog, error) {
	l := &DailyLog{}
	var createdAt string
	if err := r.Scan(&l.ID, &l.UserID, &l.Date, &l.ProductivityScore, &l.DeepWorkHours, &l.Notes, &createdAt); err != nil {
		return nil, err
	}
	l.CreatedAt = parseTime(createdAt)
	return l, nil
}
