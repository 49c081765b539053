// Package config loads remindd configuration.
//
// Precedence, highest first:
//  1. Environment variables (REMINDD_SCHEDULER_SCAN_INTERVAL, REMINDD_DATABASE_PATH, ...)
//  2. YAML config file (~/.config/remindd/config.yaml unless --config is given)
//  3. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/sandeepkv93/remindd/internal/interpret"
)

type Config struct {
	Database   DatabaseConfig   `koanf:"database"`
	Scheduler  SchedulerConfig  `koanf:"scheduler"`
	Escalation EscalationConfig `koanf:"escalation"`
	Snooze     SnoozeConfig     `koanf:"snooze"`
	PreNotify  PreNotifyConfig  `koanf:"prenotify"`
	Prompt     PromptConfig     `koanf:"prompt"`
	Schedule   ScheduleConfig   `koanf:"schedule"`
	Logging    LoggingConfig    `koanf:"logging"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Desktop    DesktopConfig    `koanf:"desktop"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type SchedulerConfig struct {
	ScanInterval time.Duration `koanf:"scan_interval"`
}

type EscalationConfig struct {
	Interval         time.Duration `koanf:"interval"`
	MaxAnnouncements int           `koanf:"max_announcements"`
}

type SnoozeConfig struct {
	Default time.Duration `koanf:"default"`
}

// PreNotifyConfig controls the "by the way" announcements. HandlerName
// identifies remindd's own command handlers so their completion does not
// trigger a pre-notification check.
type PreNotifyConfig struct {
	ArmDelay    time.Duration `koanf:"arm_delay"`
	CheckDelay  time.Duration `koanf:"check_delay"`
	HandlerName string        `koanf:"handler_name"`
}

type PromptConfig struct {
	Timeout     time.Duration `koanf:"timeout"`
	MaxAttempts int           `koanf:"max_attempts"`
}

type ScheduleConfig struct {
	QuietHours  []int  `koanf:"quiet_hours"`
	DefaultTime string `koanf:"default_time"`
	Locale      string `koanf:"locale"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

type DesktopConfig struct {
	Notifications bool `koanf:"notifications"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Path == "" {
		cfg.Database.Path = defaultDatabasePath()
	}
	if cfg.Scheduler.ScanInterval == 0 {
		cfg.Scheduler.ScanInterval = 30 * time.Second
	}
	if cfg.Escalation.Interval == 0 {
		cfg.Escalation.Interval = 2 * time.Minute
	}
	if cfg.Escalation.MaxAnnouncements == 0 {
		cfg.Escalation.MaxAnnouncements = 3
	}
	if cfg.Snooze.Default == 0 {
		cfg.Snooze.Default = 15 * time.Minute
	}
	if cfg.PreNotify.ArmDelay == 0 {
		cfg.PreNotify.ArmDelay = time.Second
	}
	if cfg.PreNotify.CheckDelay == 0 {
		cfg.PreNotify.CheckDelay = 10 * time.Second
	}
	if cfg.PreNotify.HandlerName == "" {
		cfg.PreNotify.HandlerName = "remindd"
	}
	if cfg.Prompt.Timeout == 0 {
		cfg.Prompt.Timeout = 30 * time.Second
	}
	if cfg.Prompt.MaxAttempts == 0 {
		cfg.Prompt.MaxAttempts = 3
	}
	if cfg.Schedule.QuietHours == nil {
		cfg.Schedule.QuietHours = []int{23, 0, 1, 2, 3, 4, 5, 6}
	}
	if cfg.Schedule.DefaultTime == "" {
		cfg.Schedule.DefaultTime = "08:00"
	}
	if cfg.Schedule.Locale == "" {
		cfg.Schedule.Locale = "en-us"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "remindd.db"
	}
	return filepath.Join(dir, "remindd", "remindd.db")
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Scheduler.ScanInterval <= 0 {
		return fmt.Errorf("scheduler.scan_interval must be > 0, got %s", c.Scheduler.ScanInterval)
	}
	if c.Escalation.Interval <= 0 {
		return fmt.Errorf("escalation.interval must be > 0, got %s", c.Escalation.Interval)
	}
	if c.Escalation.MaxAnnouncements < 1 {
		return fmt.Errorf("escalation.max_announcements must be >= 1, got %d", c.Escalation.MaxAnnouncements)
	}
	if c.Snooze.Default <= 0 {
		return fmt.Errorf("snooze.default must be > 0, got %s", c.Snooze.Default)
	}
	if c.PreNotify.ArmDelay < 0 || c.PreNotify.CheckDelay < 0 {
		return fmt.Errorf("prenotify delays must be >= 0")
	}
	if c.PreNotify.HandlerName == "" {
		return fmt.Errorf("prenotify.handler_name is required")
	}
	if c.Prompt.Timeout <= 0 {
		return fmt.Errorf("prompt.timeout must be > 0, got %s", c.Prompt.Timeout)
	}
	if c.Prompt.MaxAttempts < 1 {
		return fmt.Errorf("prompt.max_attempts must be >= 1, got %d", c.Prompt.MaxAttempts)
	}
	for _, h := range c.Schedule.QuietHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("schedule.quiet_hours: hour %d out of range 0-23", h)
		}
	}
	if _, err := c.Schedule.DefaultClock(); err != nil {
		return fmt.Errorf("schedule.default_time: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}

func (s ScheduleConfig) DefaultClock() (interpret.Clock, error) {
	return interpret.ParseClock(s.DefaultTime)
}
