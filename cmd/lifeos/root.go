package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/lifeos/internal/config"
	"github.com/sadopc/lifeos/internal/logging"
	"github.com/sadopc/lifeos/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

var errNoUser = errors.New("no user configured: set session.user_id or pass --user")

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	userID     string
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "lifeos",
		Short: "Personal tracker with a daily check-in gate",
		Long: `lifeos tracks daily check-ins, habits, projects and focus.

The shell opens itself only while today's check-in is missing. Everything
else is available from the command line.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "config file (default <config dir>/lifeos/config.yaml)")
	cmd.PersistentFlags().StringVar(&o.dbPath, "db", "", "database path (overrides database.path)")
	cmd.PersistentFlags().StringVar(&o.userID, "user", "", "user id (overrides session.user_id)")

	cmd.AddCommand(
		newShellCmd(o),
		newCheckinCmd(o),
		newLogCmd(o),
		newHabitCmd(o),
		newProjectCmd(o),
		newTaskCmd(o),
		newFocusCmd(o),
		newProfileCmd(o),
		newDashboardCmd(o),
		newRemindCmd(o),
		newTrayCmd(o),
		newExportCmd(o),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Loader, *config.Config, error) {
	l := config.NewLoader(o.configPath)
	if o.dbPath != "" {
		l.Set("database.path", o.dbPath)
	}
	if o.userID != "" {
		l.Set("session.user_id", o.userID)
	}
	cfg, err := l.Load()
	if err != nil {
		return nil, nil, err
	}
	return l, cfg, nil
}

// env is the opened runtime a command works against.
type env struct {
	loader *config.Loader
	cfg    *config.Config
	log    *zap.Logger
	store  *store.Store
	loc    *time.Location
	now    func() time.Time
}

// open loads config, builds the logger and opens the store. The TUI passes
// console=false so log lines never land on the alt screen.
func (o *rootOptions) open(console bool) (*env, error) {
	loader, cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{
		Directory:  cfg.Logging.Directory,
		Level:      cfg.Logging.Level,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	}, console)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	s, err := store.New(cfg.Database.Path)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	log.Debug("opened store", zap.String("path", cfg.Database.Path), zap.String("config", loader.File()))
	return &env{
		loader: loader,
		cfg:    cfg,
		log:    log,
		store:  s,
		loc:    loc,
		now:    func() time.Time { return time.Now().In(loc) },
	}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("close store", zap.Error(err))
	}
	_ = e.log.Sync()
}

func (e *env) user() (string, error) {
	if e.cfg.Session.UserID == "" {
		return "", errNoUser
	}
	return e.cfg.Session.UserID, nil
}

// withEnv opens the env around a RunE body.
func withEnv(o *rootOptions, fn func(e *env, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := o.open(true)
		if err != nil {
			return err
		}
		defer e.close()
		return fn(e, cmd, args)
	}
}

// parseDay reads a YYYY-MM-DD flag in loc. Empty means today.
func parseDay(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(store.DateLayout, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// parseDeadline reads an optional YYYY-MM-DD as the end of that day.
func parseDeadline(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(store.DateLayout, s, loc)
	if err != nil {
		return nil, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	t = t.Add(24*time.Hour - time.Second)
	return &t, nil
}

func formatDay(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format(store.DateLayout)
}
