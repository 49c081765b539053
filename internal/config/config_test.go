package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Scheduler.ScanInterval != 30*time.Second {
		t.Fatalf("unexpected scan interval: %s", cfg.Scheduler.ScanInterval)
	}
	if cfg.Escalation.Interval != 2*time.Minute || cfg.Escalation.MaxAnnouncements != 3 {
		t.Fatalf("unexpected escalation defaults: %+v", cfg.Escalation)
	}
	if cfg.Snooze.Default != 15*time.Minute {
		t.Fatalf("unexpected snooze default: %s", cfg.Snooze.Default)
	}
	if len(cfg.Schedule.QuietHours) != 8 || cfg.Schedule.QuietHours[0] != 23 {
		t.Fatalf("unexpected quiet hours: %v", cfg.Schedule.QuietHours)
	}
	clock, err := cfg.Schedule.DefaultClock()
	if err != nil || clock.Hour != 8 || clock.Minute != 0 {
		t.Fatalf("unexpected default clock: %+v err=%v", clock, err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
database:
  path: /tmp/reminders.db
escalation:
  interval: 1m
  max_announcements: 4
schedule:
  quiet_hours: [22, 23]
  default_time: "09:30"
desktop:
  notifications: true
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REMINDD_SCHEDULER_SCAN_INTERVAL", "10s")
	t.Setenv("REMINDD_ESCALATION_MAX_ANNOUNCEMENTS", "5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Database.Path != "/tmp/reminders.db" {
		t.Fatalf("unexpected database path: %q", cfg.Database.Path)
	}
	if cfg.Escalation.Interval != time.Minute {
		t.Fatalf("unexpected escalation interval: %s", cfg.Escalation.Interval)
	}
	if cfg.Escalation.MaxAnnouncements != 5 {
		t.Fatalf("env should override file, got %d", cfg.Escalation.MaxAnnouncements)
	}
	if cfg.Scheduler.ScanInterval != 10*time.Second {
		t.Fatalf("unexpected scan interval: %s", cfg.Scheduler.ScanInterval)
	}
	if len(cfg.Schedule.QuietHours) != 2 || cfg.Schedule.QuietHours[1] != 23 {
		t.Fatalf("unexpected quiet hours: %v", cfg.Schedule.QuietHours)
	}
	if !cfg.Desktop.Notifications {
		t.Fatal("expected desktop notifications from file")
	}
	if cfg.Snooze.Default != 15*time.Minute {
		t.Fatalf("missing keys should default, got %s", cfg.Snooze.Default)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"quiet hour":    func(c *Config) { c.Schedule.QuietHours = []int{24} },
		"default time":  func(c *Config) { c.Schedule.DefaultTime = "8am" },
		"announcements": func(c *Config) { c.Escalation.MaxAnnouncements = -1 },
		"log format":    func(c *Config) { c.Logging.Format = "xml" },
		"log level":     func(c *Config) { c.Logging.Level = "loud" },
		"interval":      func(c *Config) { c.Scheduler.ScanInterval = -time.Second },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		"REMINDD_SCHEDULER_SCAN_INTERVAL": "scheduler.scan_interval",
		"REMINDD_DATABASE_PATH":           "database.path",
		"REMINDD_PRENOTIFY_HANDLER_NAME":  "prenotify.handler_name",
	}
	for in, want := range cases {
		if got := envKey(in); got != want {
			t.Fatalf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
