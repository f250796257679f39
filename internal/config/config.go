package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/workflow"
)

// ErrEndpointUnset means endpoint_url is missing or still the placeholder.
var ErrEndpointUnset = errors.New("endpoint_url is not configured; set it to the deployed web app URL")

// CounselorPlaceholder is the non-selectable first roster entry.
const CounselorPlaceholder = workflow.CounselorPlaceholder

// Config captures walkin's settings.
type Config struct {
	EndpointURL     string
	Counselors      []string
	Statuses        []string
	AnalyticsDays   int
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	LogDir          string
	SessionPath     string
	Theme           string
}

const (
	defaultConfigPath      = "~/.config/walkin/config.toml"
	defaultLogDir          = "~/.local/share/walkin"
	defaultSessionPath     = "~/.config/walkin/session.toml"
	defaultAnalyticsDays   = 30
	defaultRefreshInterval = 2 * time.Minute
	defaultRequestTimeout  = 30 * time.Second
	defaultTheme           = "Dracula"
)

var defaultCounselors = []string{
	CounselorPlaceholder,
	"Dr. Sarah Johnson",
	"Dr. Michael Chen",
	"Dr. Emily Rodriguez",
	"Dr. James Wilson",
	"Dr. Lisa Thompson",
	"Dr. Robert Garcia",
	"Maria Santos, LCSW",
	"John Davis, LPC",
	"Amanda White, LMFT",
}

// Default returns the configuration used when no file exists.
func Default() Config {
	statuses := make([]string, 0, 5)
	for _, s := range clinic.Statuses() {
		statuses = append(statuses, s.String())
	}
	return Config{
		EndpointURL:     clinic.UnsetEndpoint,
		Counselors:      slices.Clone(defaultCounselors),
		Statuses:        statuses,
		AnalyticsDays:   defaultAnalyticsDays,
		RefreshInterval: defaultRefreshInterval,
		RequestTimeout:  defaultRequestTimeout,
		LogDir:          mustExpand(defaultLogDir),
		SessionPath:     mustExpand(defaultSessionPath),
		Theme:           defaultTheme,
	}
}

type rawConfig struct {
	EndpointURL     string   `toml:"endpoint_url"`
	Counselors      []string `toml:"counselors"`
	Statuses        []string `toml:"statuses"`
	AnalyticsDays   int      `toml:"analytics_days"`
	RefreshInterval string   `toml:"refresh_interval"`
	RequestTimeout  string   `toml:"request_timeout"`
	LogDir          string   `toml:"log_dir"`
	SessionPath     string   `toml:"session_path"`
	Theme           string   `toml:"theme"`
}

// Load locates and parses the walkin config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.EndpointURL); v != "" {
		cfg.EndpointURL = v
	}
	if roster := trimAll(raw.Counselors); len(roster) > 0 {
		cfg.Counselors = withPlaceholder(roster)
	}
	if len(raw.Statuses) > 0 {
		statuses, err := validateStatuses(raw.Statuses)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		cfg.Statuses = statuses
	}
	if raw.AnalyticsDays > 0 {
		cfg.AnalyticsDays = raw.AnalyticsDays
	}
	if cfg.RefreshInterval, err = parseDuration("refresh_interval", raw.RefreshInterval, cfg.RefreshInterval); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.SessionPath); v != "" {
		cfg.SessionPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Theme); v != "" {
		cfg.Theme = v
	}

	return cfg, nil
}

// Validate reports configuration errors that block remote calls.
func (c Config) Validate() error {
	endpoint := strings.TrimSpace(c.EndpointURL)
	if endpoint == "" || endpoint == clinic.UnsetEndpoint {
		return ErrEndpointUnset
	}
	return nil
}

// LogPath returns the path to walkin's structured log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/walkin.log")
	}
	return filepath.Join(c.LogDir, "walkin.log")
}

// SelectableCounselors returns the roster without the placeholder entry.
func (c Config) SelectableCounselors() []string {
	out := make([]string, 0, len(c.Counselors))
	for _, name := range c.Counselors {
		if name != CounselorPlaceholder {
			out = append(out, name)
		}
	}
	return out
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

func withPlaceholder(roster []string) []string {
	if roster[0] == CounselorPlaceholder {
		return roster
	}
	out := make([]string, 0, len(roster)+1)
	out = append(out, CounselorPlaceholder)
	for _, name := range roster {
		if name != CounselorPlaceholder {
			out = append(out, name)
		}
	}
	return out
}

func validateStatuses(values []string) ([]string, error) {
	statuses := trimAll(values)
	if len(statuses) != len(clinic.Statuses()) {
		return nil, fmt.Errorf("statuses must list the %d workflow statuses, got %d", len(clinic.Statuses()), len(statuses))
	}
	seen := make(map[clinic.Status]bool, len(statuses))
	for _, value := range statuses {
		s, err := clinic.ParseStatus(value)
		if err != nil || value == "" {
			return nil, fmt.Errorf("statuses: unknown status %q", value)
		}
		if seen[s] {
			return nil, fmt.Errorf("statuses: duplicate status %q", value)
		}
		seen[s] = true
	}
	return statuses, nil
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", field, err)
	}
	if d <= 0 {
		return fallback, nil
	}
	return d, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
