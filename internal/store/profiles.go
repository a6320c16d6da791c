package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

func (s *Store) CreateProfile(name, chatID string) (*Profile, error) {
	id := newID()
	_, err := s.db.Exec(
		`INSERT INTO profiles (id, name, chat_id, created_at) VALUES (?, ?, ?, ?)`,
		id, name, chatID, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return s.GetProfile(id)
}

func (s *Store) GetProfile(id string) (*Profile, error) {
	p := &Profile{}
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, name, chat_id, created_at FROM profiles WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.ChatID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get profile %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

func (s *Store) ListProfiles() ([]Profile, error) {
	return s.listProfiles(context.Background(), `SELECT id, name, chat_id, created_at FROM profiles ORDER BY name`)
}

// ListReminderProfiles returns profiles that have a reminder destination.
func (s *Store) ListReminderProfiles(ctx context.Context) ([]Profile, error) {
	return s.listProfiles(ctx, `SELECT id, name, chat_id, created_at FROM profiles WHERE chat_id != '' ORDER BY name`)
}

func (s *Store) listProfiles(ctx context.Context, query string) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.ChatID, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(createdAt)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
