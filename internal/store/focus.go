package store

import (
	"context"
	"fmt"
	"time"
)

// LogFocus records a 1-5 focus rating at createdAt.
func (s *Store) LogFocus(userID string, score int, createdAt time.Time) (*FocusLog, error) {
	if score < 1 || score > 5 {
		return nil, fmt.Errorf("focus score %d: %w", score, ErrInvalidScore)
	}
	id := newID()
	_, err := s.db.Exec(
		`INSERT INTO focus_logs (id, user_id, focus_score, created_at) VALUES (?, ?, ?, ?)`,
		id, userID, score, formatTime(createdAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert focus log: %w", err)
	}
	return &FocusLog{ID: id, UserID: userID, FocusScore: score, CreatedAt: createdAt.UTC()}, nil
}

func (s *Store) QueryFocusLogs(ctx context.Context, userID string, since time.Time) ([]FocusLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, focus_score, created_at FROM focus_logs
		 WHERE user_id = ? AND created_at >= ? ORDER BY created_at`,
		userID, formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("query focus logs: %w", err)
	}
	defer rows.Close()

	var logs []FocusLog
	for rows.Next() {
		var l FocusLog
		var createdAt string
		if err := rows.Scan(&l.ID, &l.UserID, &l.FocusScore, &createdAt); err != nil {
			return nil, err
		}
		l.CreatedAt = parseTime(createdAt)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
