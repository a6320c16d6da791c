// Package config loads lifeos settings from file, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "LIFEOS"

// Config is the top-level configuration structure.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Shell    ShellConfig    `mapstructure:"shell"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Reminder ReminderConfig `mapstructure:"reminder"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SessionConfig identifies the user the app runs for. An empty UserID is an
// anonymous session.
type SessionConfig struct {
	UserID   string `mapstructure:"user_id"`
	Timezone string `mapstructure:"timezone"`
}

type ShellConfig struct {
	DecisionTimeout    time.Duration `mapstructure:"decision_timeout"`
	ForceShowOnTimeout bool          `mapstructure:"force_show_on_timeout"`
	KeepAliveOnClose   bool          `mapstructure:"keep_alive_on_close"`
	ControlSocket      string        `mapstructure:"control_socket"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type ReminderConfig struct {
	At      string `mapstructure:"at"`
	Message string `mapstructure:"message"`
}

// Location resolves the session timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Session.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Session.Timezone)
	if err != nil {
		return nil, fmt.Errorf("session.timezone: %w", err)
	}
	return loc, nil
}

// Validate reports the first invalid value.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path is empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Shell.DecisionTimeout <= 0 {
		return fmt.Errorf("shell.decision_timeout must be positive, got %s", c.Shell.DecisionTimeout)
	}
	if _, err := time.Parse("15:04", c.Reminder.At); err != nil {
		return fmt.Errorf("reminder.at %q: want HH:MM", c.Reminder.At)
	}
	return nil
}

// Dir is the directory holding lifeos data, config and logs.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "lifeos")
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	dir := Dir()

	v.SetDefault("database.path", filepath.Join(dir, "lifeos.db"))

	v.SetDefault("session.user_id", "")
	v.SetDefault("session.timezone", "Local")

	v.SetDefault("shell.decision_timeout", "10s")
	v.SetDefault("shell.force_show_on_timeout", false)
	v.SetDefault("shell.keep_alive_on_close", runtime.GOOS == "darwin")
	v.SetDefault("shell.control_socket", filepath.Join(dir, "shell.sock"))

	v.SetDefault("logging.directory", filepath.Join(dir, "logs"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10) // MB
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7) // days
	v.SetDefault("logging.compress", true)

	v.SetDefault("reminder.at", "20:00")
	v.SetDefault("reminder.message", "You haven't logged your day. Strike imminent.")
}

// Loader reads the configuration and can watch it for changes.
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares a loader. A non-empty path names the config file
// explicitly; otherwise config.yaml is searched in Dir().
func NewLoader(path string) *Loader {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix) // e.g. LIFEOS_SHELL_DECISION_TIMEOUT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Set overrides a key, as command-line flags do.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Load reads the file (a missing file is fine), decodes and validates.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// File returns the config file in use, or "" when none was found.
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Watch calls fn with the new configuration each time the file changes.
// Invalid edits are logged and skipped.
func (l *Loader) Watch(log *zap.Logger, fn func(*Config)) {
	if _, err := os.Stat(l.File()); l.File() == "" || err != nil {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		cfg, err := l.decode()
		if err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		fn(cfg)
	})
	l.v.WatchConfig()
}
