package config

import (
	"os"
	"path/filepath"
	"testing"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	unsetEnv(t, "APP_HOST", "APP_PORT", "POSTGRES_DSN", "REDIS_ADDR", "GEO_RESOLUTION_RADIUS_KM",
		"SLA_DEFAULT_DUE_HOURS", "SLA_MONITOR_SCHEDULE", "TICKET_ID_PREFIX", "TICKET_ALLOW_POST_RESOLUTION_REMARKS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.App.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr = %s", cfg.App.Addr())
	}
	if cfg.Geo.ResolutionRadiusKm != 5 {
		t.Errorf("radius = %v, want 5", cfg.Geo.ResolutionRadiusKm)
	}
	if cfg.SLA.DefaultDueHours != 72 {
		t.Errorf("due hours = %d, want 72", cfg.SLA.DefaultDueHours)
	}
	if cfg.SLA.MonitorSchedule != "*/15 * * * *" {
		t.Errorf("schedule = %q", cfg.SLA.MonitorSchedule)
	}
	if cfg.Tickets.IDPrefix != "NRB" || !cfg.Tickets.AllowPostResolutionRemarks {
		t.Errorf("tickets = %+v", cfg.Tickets)
	}
	if cfg.Postgres.DSN != "" || cfg.Redis.Addr != "" {
		t.Errorf("expected in-memory defaults, got dsn=%q redis=%q", cfg.Postgres.DSN, cfg.Redis.Addr)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	// godotenv never overrides variables that are already present.
	unsetEnv(t, "APP_PORT", "GEO_RESOLUTION_RADIUS_KM")
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("APP_PORT=9091\nGEO_RESOLUTION_RADIUS_KM=2.5\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.App.Port != "9091" {
		t.Errorf("port = %s, want 9091", cfg.App.Port)
	}
	if cfg.Geo.ResolutionRadiusKm != 2.5 {
		t.Errorf("radius = %v, want 2.5", cfg.Geo.ResolutionRadiusKm)
	}
}

func TestLoadRejectsBadRadius(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GEO_RESOLUTION_RADIUS_KM", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative radius")
	}
}

func TestEmptyMonitorScheduleDisables(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SLA_MONITOR_SCHEDULE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SLA.MonitorSchedule != "" {
		t.Fatalf("schedule = %q, want empty", cfg.SLA.MonitorSchedule)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})
}
