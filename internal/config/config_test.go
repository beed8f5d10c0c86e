package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.TelemetryBuffer <= 0 {
		t.Fatalf("expected default telemetry buffer")
	}
	if cfg.ControlBacklogWarn <= 0 {
		t.Fatalf("expected default backlog warn threshold")
	}
	if cfg.RecentLapsSnapshot != 50 {
		t.Fatalf("expected default recent laps snapshot of 50, got %d", cfg.RecentLapsSnapshot)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("TELEMETRY_BUFFER", "8")
	t.Setenv("CONTROL_BACKLOG_WARN", "1000")
	t.Setenv("RECENT_LAPS_SNAPSHOT", "10")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.TelemetryBuffer != 8 {
		t.Fatalf("expected override telemetry buffer")
	}
	if cfg.ControlBacklogWarn != 1000 {
		t.Fatalf("expected override backlog warn")
	}
	if cfg.RecentLapsSnapshot != 10 {
		t.Fatalf("expected override recent laps snapshot")
	}
}
