package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/walkin/internal/clinic"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.EndpointURL != clinic.UnsetEndpoint {
		t.Fatalf("EndpointURL = %q, want placeholder", cfg.EndpointURL)
	}
	if cfg.AnalyticsDays != defaultAnalyticsDays || cfg.RefreshInterval != defaultRefreshInterval {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Counselors[0] != CounselorPlaceholder {
		t.Fatalf("Counselors[0] = %q, want placeholder", cfg.Counselors[0])
	}
	if len(cfg.Statuses) != 5 || cfg.Statuses[2] != "In Session" {
		t.Fatalf("Statuses = %v", cfg.Statuses)
	}

	wantLogDir, err := expandPath(defaultLogDir)
	if err != nil {
		t.Fatalf("expandPath(defaultLogDir) returned error: %v", err)
	}
	if cfg.LogDir != wantLogDir {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, wantLogDir)
	}
	if !errors.Is(cfg.Validate(), ErrEndpointUnset) {
		t.Fatalf("Validate = %v, want ErrEndpointUnset", cfg.Validate())
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
endpoint_url = "  https://script.google.com/macros/s/abc/exec  "
counselors = ["  Dr. X ", "", "Dr. Y"]
analytics_days = 7
refresh_interval = "45s"
request_timeout = "10s"
log_dir = "  ~/.walkin/logs  "
theme = "Slate"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.EndpointURL != "https://script.google.com/macros/s/abc/exec" {
		t.Fatalf("EndpointURL = %q", cfg.EndpointURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	want := []string{CounselorPlaceholder, "Dr. X", "Dr. Y"}
	if strings.Join(cfg.Counselors, "|") != strings.Join(want, "|") {
		t.Fatalf("Counselors = %v, want %v", cfg.Counselors, want)
	}
	if got := cfg.SelectableCounselors(); len(got) != 2 || got[0] != "Dr. X" {
		t.Fatalf("SelectableCounselors = %v", got)
	}
	if cfg.AnalyticsDays != 7 || cfg.RefreshInterval != 45*time.Second || cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("numeric fields = %+v", cfg)
	}
	if !strings.HasPrefix(cfg.LogDir, home) {
		t.Fatalf("LogDir = %q, want it under HOME %q", cfg.LogDir, home)
	}
	if cfg.LogPath() != filepath.Join(cfg.LogDir, "walkin.log") {
		t.Fatalf("LogPath = %q", cfg.LogPath())
	}
	if cfg.Theme != "Slate" {
		t.Fatalf("Theme = %q, want Slate", cfg.Theme)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
endpoint_url = "   "
log_dir = ""
refresh_interval = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.EndpointURL != clinic.UnsetEndpoint {
		t.Fatalf("EndpointURL = %q, want placeholder", cfg.EndpointURL)
	}
	if cfg.RefreshInterval != defaultRefreshInterval {
		t.Fatalf("RefreshInterval = %v", cfg.RefreshInterval)
	}
}

func TestLoad_StatusesAreValidated(t *testing.T) {
	path := writeConfig(t, `statuses = ["Waiting", "Assigned", "In Session", "Completed", "Lost"]`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "Lost") {
		t.Fatalf("Load error = %v, want unknown status error", err)
	}

	path = writeConfig(t, `statuses = ["Waiting", "Assigned"]`)
	if _, err := Load(path); err == nil {
		t.Fatalf("Load returned nil error for short status list")
	}

	path = writeConfig(t, `statuses = ["Waiting", "Assigned", "In Session", "Completed", "Cancelled"]`)
	if _, err := Load(path); err != nil {
		t.Fatalf("Load returned error for canonical statuses: %v", err)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := writeConfig(t, `endpoint_url = [`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_InvalidDurationFails(t *testing.T) {
	path := writeConfig(t, `refresh_interval = "soon"`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "refresh_interval") {
		t.Fatalf("Load error = %v, want refresh_interval error", err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsWhenLogDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/walkin.log")) {
		t.Fatalf("LogPath = %q, want it to end with /walkin.log", got)
	}
}
