package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = "server:\n  port: \"8080\"\n"

// writeConfigFile writes contents to dir/config/dev.yaml.
func writeConfigFile(t *testing.T, dir, contents string) {
	t.Helper()
	configDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "dev.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// chdirTemp switches to a fresh temp dir for the duration of the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, minimalYAML)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.ForecastDays != 5 {
		t.Errorf("ForecastDays = %d, want 5", cfg.ForecastDays)
	}
	if cfg.StatsSampleSize != 10 {
		t.Errorf("StatsSampleSize = %d, want 10", cfg.StatsSampleSize)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if cfg.RateLimitRPS != 100 {
		t.Errorf("RateLimitRPS = %d, want 100", cfg.RateLimitRPS)
	}
	if cfg.RateLimitBurst != 250 {
		t.Errorf("RateLimitBurst = %d, want 250", cfg.RateLimitBurst)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
	if cfg.OverloadWindow != 60*time.Second {
		t.Errorf("OverloadWindow = %v, want 60s", cfg.OverloadWindow)
	}
	if cfg.OverloadThresholdPct != 80 {
		t.Errorf("OverloadThresholdPct = %d, want 80", cfg.OverloadThresholdPct)
	}
	if cfg.IdleThresholdReqPerMin != 5 {
		t.Errorf("IdleThresholdReqPerMin = %d, want 5", cfg.IdleThresholdReqPerMin)
	}
}

func TestLoad_FileValues(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, strings.Join([]string{
		"server:",
		"  port: \"9090\"",
		"forecast:",
		"  days: 7",
		"  stats_sample_size: 30",
		"request:",
		"  timeout: 2s",
		"reliability:",
		"  rate_limit_rps: 10",
		"  rate_limit_burst: 20",
		"lifecycle:",
		"  overload_window: 30s",
		"  overload_threshold_pct: 50",
		"  idle_window: 2m",
		"  idle_threshold_req_per_min: 3",
		"  minimum_lifespan: 1m",
		"",
	}, "\n"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.ForecastDays != 7 {
		t.Errorf("ForecastDays = %d, want 7", cfg.ForecastDays)
	}
	if cfg.StatsSampleSize != 30 {
		t.Errorf("StatsSampleSize = %d, want 30", cfg.StatsSampleSize)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Errorf("RequestTimeout = %v, want 2s", cfg.RequestTimeout)
	}
	if cfg.RateLimitRPS != 10 || cfg.RateLimitBurst != 20 {
		t.Errorf("rate limit = %d/%d, want 10/20", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.OverloadWindow != 30*time.Second {
		t.Errorf("OverloadWindow = %v, want 30s", cfg.OverloadWindow)
	}
	if cfg.IdleWindow != 2*time.Minute {
		t.Errorf("IdleWindow = %v, want 2m", cfg.IdleWindow)
	}
	if cfg.MinimumLifespan != time.Minute {
		t.Errorf("MinimumLifespan = %v, want 1m", cfg.MinimumLifespan)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "server:\n  port: \"8080\"\nforecast:\n  days: 7\n")

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("FORECAST_DAYS", "3")
	t.Setenv("STATS_SAMPLE_SIZE", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "7070" {
		t.Errorf("ServerPort = %q, want env override 7070", cfg.ServerPort)
	}
	if cfg.ForecastDays != 3 {
		t.Errorf("ForecastDays = %d, want env override 3", cfg.ForecastDays)
	}
	if cfg.StatsSampleSize != 25 {
		t.Errorf("StatsSampleSize = %d, want env override 25", cfg.StatsSampleSize)
	}
}

func TestLoad_EnvOverrideNonInteger(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "forecast:\n  days: 7\n")

	t.Setenv("FORECAST_DAYS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ForecastDays != 7 {
		t.Errorf("ForecastDays = %d, want file value 7 when env var is garbage", cfg.ForecastDays)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing config file, got nil")
	}
	if cfg != nil {
		t.Fatalf("Load() expected nil config on error, got %+v", cfg)
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("Load() error = %v, want message about missing config file", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "server: [not a mapping\n")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for malformed YAML, got nil")
	}
	if !strings.Contains(err.Error(), "parse config file") {
		t.Errorf("Load() error = %v, want parse error", err)
	}
}

func TestLoad_EnvName(t *testing.T) {
	dir := chdirTemp(t)
	configDir := filepath.Join(dir, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "staging.yaml"), []byte("server:\n  port: \"8081\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	t.Setenv("ENV_NAME", "staging")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerPort != "8081" {
		t.Errorf("ServerPort = %q, want 8081 from staging.yaml", cfg.ServerPort)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	dir := chdirTemp(t)
	writeConfigFile(t, dir, "request:\n  timeout: banana\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want default 5s for unparsable value", cfg.RequestTimeout)
	}
}

func TestValidate_RejectsNonPositiveCounts(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{
			name: "zero forecast days",
			mut:  func(c *Config) { c.ForecastDays = 0 },
			want: "forecast.days",
		},
		{
			name: "negative stats sample size",
			mut:  func(c *Config) { c.StatsSampleSize = -1 },
			want: "stats_sample_size",
		},
		{
			name: "zero request timeout",
			mut:  func(c *Config) { c.RequestTimeout = 0 },
			want: "request.timeout",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{ForecastDays: 5, StatsSampleSize: 10, RequestTimeout: 5 * time.Second}
			tc.mut(cfg)
			err := validate(cfg)
			if err == nil {
				t.Fatal("validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("validate() error = %v, want message containing %q", err, tc.want)
			}
		})
	}
}
