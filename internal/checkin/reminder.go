package checkin

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/lifeos/internal/store"
	"go.uber.org/zap"
)

const DefaultReminderMessage = "You haven't logged your day. Strike imminent."

// Notifier delivers a reminder to a profile.
type Notifier interface {
	Notify(ctx context.Context, p store.Profile, message string) error
}

// LogNotifier only records the reminder in the log.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, p store.Profile, message string) error {
	n.Log.Info("reminder", zap.String("user", p.ID), zap.String("chat_id", p.ChatID), zap.String("message", message))
	return nil
}

// ProfileSource lists the profiles that accept reminders.
type ProfileSource interface {
	ListReminderProfiles(ctx context.Context) ([]store.Profile, error)
}

// Result is the outcome of one profile in a sweep.
type Result struct {
	UserID string
	Sent   bool
	Err    error
}

type Reminder struct {
	profiles ProfileSource
	eval     *Evaluator
	notifier Notifier
	log      *zap.Logger
	message  string
	at       string // local HH:MM
}

func NewReminder(profiles ProfileSource, eval *Evaluator, notifier Notifier, log *zap.Logger, at, message string) *Reminder {
	if log == nil {
		log = zap.NewNop()
	}
	if message == "" {
		message = DefaultReminderMessage
	}
	return &Reminder{
		profiles: profiles,
		eval:     eval,
		notifier: notifier,
		log:      log,
		message:  message,
		at:       at,
	}
}

// RunOnce reminds every profile that has not logged today.
func (r *Reminder) RunOnce(ctx context.Context) ([]Result, error) {
	profiles, err := r.profiles.ListReminderProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reminder profiles: %w", err)
	}

	results := make([]Result, 0, len(profiles))
	for _, p := range profiles {
		logged, err := r.eval.LoggedToday(ctx, p.ID)
		if err != nil {
			r.log.Error("Failed to check daily log", zap.String("user", p.ID), zap.Error(err))
			results = append(results, Result{UserID: p.ID, Err: err})
			continue
		}
		if logged {
			continue
		}
		if err := r.notifier.Notify(ctx, p, r.message); err != nil {
			r.log.Error("Failed to send reminder", zap.String("user", p.ID), zap.Error(err))
			results = append(results, Result{UserID: p.ID, Err: err})
			continue
		}
		results = append(results, Result{UserID: p.ID, Sent: true})
	}

	r.log.Info("reminder sweep done", zap.Int("processed", len(profiles)), zap.Int("reminded", len(results)))
	return results, nil
}

// Due reports whether the local clock reads the reminder time.
func (r *Reminder) Due(now time.Time) bool {
	return now.In(r.eval.loc).Format("15:04") == r.at
}

// Start checks every minute until ctx is done, sweeping when Due.
func (r *Reminder) Start(ctx context.Context) {
	r.log.Info("Starting reminder scheduler", zap.String("at", r.at))
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.Due(r.eval.now()) {
				continue
			}
			if _, err := r.RunOnce(ctx); err != nil {
				r.log.Error("reminder sweep failed", zap.Error(err))
			}
		}
	}
}
