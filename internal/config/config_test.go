package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PANEL_BACKEND_URL", "http://recorder.local:8080/")
	t.Setenv("STATUS_REFRESH_SECONDS", "")
	t.Setenv("PREFS_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected defaults to load, got %v", err)
	}
	if cfg.Backend.BaseURL != "http://recorder.local:8080" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Refresh.StatusInterval != 30*time.Second {
		t.Fatalf("expected 30s status refresh, got %v", cfg.Refresh.StatusInterval)
	}
	if cfg.Refresh.LogInterval != 60*time.Second {
		t.Fatalf("expected 60s log refresh, got %v", cfg.Refresh.LogInterval)
	}
	if cfg.Prefs.Backend != PrefsBackendSQLite {
		t.Fatalf("expected sqlite prefs backend, got %q", cfg.Prefs.Backend)
	}
}

func TestValidateRejectsUnknownPrefsBackend(t *testing.T) {
	t.Setenv("PREFS_BACKEND", "localstorage")

	if _, err := Load(); err == nil {
		t.Fatalf("expected unknown prefs backend to fail validation")
	}
}

func TestValidateRejectsNonPositiveIntervals(t *testing.T) {
	t.Setenv("LOG_REFRESH_SECONDS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected zero log refresh interval to fail validation")
	}
}
