// Package checkin decides whether the app should present itself based on
// whether the user already logged their day.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/lifeos/internal/store"
	"go.uber.org/zap"
)

// Decision is the gating verdict sent to the shell.
type Decision string

const (
	Show       Decision = "show"
	StayHidden Decision = "stay-hidden"
)

var ErrUnknownDecision = errors.New("unknown decision")

// ParseDecision accepts "show", "stay-hidden" and the older "hide".
func ParseDecision(s string) (Decision, error) {
	switch s {
	case string(Show):
		return Show, nil
	case string(StayHidden), "hide":
		return StayHidden, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownDecision)
}

// Evaluate maps the logged-today predicate to a decision.
func Evaluate(hasLoggedToday bool) Decision {
	if hasLoggedToday {
		return StayHidden
	}
	return Show
}

// Session identifies the authenticated user. A nil Session or an empty
// UserID is an anonymous session.
type Session struct {
	UserID string
}

func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// ID returns the user id, or "" for an anonymous session.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.UserID
}

// Repository is the query the evaluator needs.
type Repository interface {
	QueryDailyLogsCreated(ctx context.Context, userID string, from, to time.Time) ([]store.DailyLog, error)
}

type Evaluator struct {
	repo Repository
	log  *zap.Logger
	loc  *time.Location
	now  func() time.Time
}

func NewEvaluator(repo Repository, log *zap.Logger, loc *time.Location) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Evaluator{repo: repo, log: log, loc: loc, now: time.Now}
}

// WithClock replaces the time source.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// DayBounds returns [local midnight, next local midnight) for the day
// containing now.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	t := now.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// LoggedToday reports whether userID has a daily log created today. Query
// errors are returned to the caller.
func (e *Evaluator) LoggedToday(ctx context.Context, userID string) (bool, error) {
	from, to := DayBounds(e.now(), e.loc)
	logs, err := e.repo.QueryDailyLogsCreated(ctx, userID, from, to)
	if err != nil {
		return false, fmt.Errorf("query today's logs: %w", err)
	}
	return len(logs) > 0, nil
}

// HasLoggedToday is LoggedToday with query failures treated as false.
func (e *Evaluator) HasLoggedToday(ctx context.Context, userID string) bool {
	ok, err := e.LoggedToday(ctx, userID)
	if err != nil {
		e.log.Warn("check-in query failed, assuming not logged", zap.String("user", userID), zap.Error(err))
		return false
	}
	return ok
}

// Decide produces the gating decision for a session.
func (e *Evaluator) Decide(ctx context.Context, s *Session) Decision {
	if !s.Authenticated() {
		return Show
	}
	d := Evaluate(e.HasLoggedToday(ctx, s.UserID))
	e.log.Debug("check-in evaluated", zap.String("user", s.UserID), zap.String("decision", string(d)))
	return d
}
