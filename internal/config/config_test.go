package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
	if cfg.Census.SampleSize != 3 {
		t.Errorf("Census.SampleSize = %d, want %d", cfg.Census.SampleSize, 3)
	}
	if cfg.Network.DefaultNetwork != "Cigna_PPO" {
		t.Errorf("Network.DefaultNetwork = %q, want %q", cfg.Network.DefaultNetwork, "Cigna_PPO")
	}
	if cfg.Network.CoverageThreshold != 0.90 {
		t.Errorf("Network.CoverageThreshold = %v, want %v", cfg.Network.CoverageThreshold, 0.90)
	}
	if cfg.Batch.MaxConcurrent != 4 {
		t.Errorf("Batch.MaxConcurrent = %d, want %d", cfg.Batch.MaxConcurrent, 4)
	}
	if cfg.Batch.MaxWait != 30*time.Second {
		t.Errorf("Batch.MaxWait = %v, want %v", cfg.Batch.MaxWait, 30*time.Second)
	}

	// The built-in synonym dictionaries must cover the common spellings.
	if got := cfg.Census.GenderSynonyms["female"]; got != "F" {
		t.Errorf("GenderSynonyms[female] = %q, want %q", got, "F")
	}
	if got := cfg.Census.RelationshipSynonyms["self"]; got != "E" {
		t.Errorf("RelationshipSynonyms[self] = %q, want %q", got, "E")
	}
	if got := cfg.Census.TierSynonyms["waived"]; got != "W" {
		t.Errorf("TierSynonyms[waived] = %q, want %q", got, "W")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Network.DefaultNetwork != "Cigna_PPO" {
		t.Errorf("Network.DefaultNetwork = %q, want default", cfg.Network.DefaultNetwork)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	content := `
[logging]
level = "debug"
format = "json"

[census]
sample_size = 5

[census.header_overrides]
"  Zip " = "Zip5Digit"

[census.gender_synonyms]
"Male" = "M"

[network]
default_network = "Aetna_Wrap"
coverage_threshold = 0.75

[batch]
max_concurrent = 2
`
	path := filepath.Join(t.TempDir(), "censuskit.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
	if cfg.Census.SampleSize != 5 {
		t.Errorf("Census.SampleSize = %d, want %d", cfg.Census.SampleSize, 5)
	}
	if cfg.Network.DefaultNetwork != "Aetna_Wrap" {
		t.Errorf("Network.DefaultNetwork = %q, want %q", cfg.Network.DefaultNetwork, "Aetna_Wrap")
	}
	if cfg.Network.CoverageThreshold != 0.75 {
		t.Errorf("Network.CoverageThreshold = %v, want %v", cfg.Network.CoverageThreshold, 0.75)
	}
	if cfg.Batch.MaxConcurrent != 2 {
		t.Errorf("Batch.MaxConcurrent = %d, want %d", cfg.Batch.MaxConcurrent, 2)
	}

	// Untouched sections keep their defaults.
	if cfg.Batch.MaxWait != 30*time.Second {
		t.Errorf("Batch.MaxWait = %v, want default %v", cfg.Batch.MaxWait, 30*time.Second)
	}

	// Map keys are trimmed and lower-cased on load.
	if got := cfg.Census.HeaderOverrides["zip"]; got != "Zip5Digit" {
		t.Errorf("HeaderOverrides[zip] = %q, want %q (keys normalize)", got, "Zip5Digit")
	}
	if got := cfg.Census.GenderSynonyms["male"]; got != "M" {
		t.Errorf("GenderSynonyms[male] = %q, want %q (keys normalize)", got, "M")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("CENSUSKIT_LOG_LEVEL", "debug")
	os.Setenv("CENSUSKIT_SAMPLE_SIZE", "7")
	os.Setenv("CENSUSKIT_COVERAGE_THRESHOLD", "0.5")
	os.Setenv("CENSUSKIT_BATCH_MAX_WAIT", "5s")
	defer func() {
		os.Unsetenv("CENSUSKIT_LOG_LEVEL")
		os.Unsetenv("CENSUSKIT_SAMPLE_SIZE")
		os.Unsetenv("CENSUSKIT_COVERAGE_THRESHOLD")
		os.Unsetenv("CENSUSKIT_BATCH_MAX_WAIT")
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Census.SampleSize != 7 {
		t.Errorf("Census.SampleSize = %d, want %d", cfg.Census.SampleSize, 7)
	}
	if cfg.Network.CoverageThreshold != 0.5 {
		t.Errorf("Network.CoverageThreshold = %v, want %v", cfg.Network.CoverageThreshold, 0.5)
	}
	if cfg.Batch.MaxWait != 5*time.Second {
		t.Errorf("Batch.MaxWait = %v, want %v", cfg.Batch.MaxWait, 5*time.Second)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	content := "[logging]\nlevel = \"warn\"\n"
	path := filepath.Join(t.TempDir(), "censuskit.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	os.Setenv("CENSUSKIT_LOG_LEVEL", "error")
	defer os.Unsetenv("CENSUSKIT_LOG_LEVEL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want %q (env overrides file)", cfg.Logging.Level, "error")
	}
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	os.Setenv("CENSUSKIT_SAMPLE_SIZE", "lots")
	defer os.Unsetenv("CENSUSKIT_SAMPLE_SIZE")

	_, err := Load("")
	if err == nil {
		t.Fatal("Load() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "CENSUSKIT_SAMPLE_SIZE") {
		t.Errorf("error = %q, want mention of the offending variable", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "censuskit.toml")
	if err := os.WriteFile(path, []byte("logging = not toml"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() succeeded, want parse error")
	}
	if !strings.Contains(err.Error(), "config parse") {
		t.Errorf("error = %q, want parse failure", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantSub: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantSub: "logging.format",
		},
		{
			name:    "zero sample size",
			mutate:  func(c *Config) { c.Census.SampleSize = 0 },
			wantSub: "census.sample_size",
		},
		{
			name:    "blank default network",
			mutate:  func(c *Config) { c.Network.DefaultNetwork = "  " },
			wantSub: "network.default_network",
		},
		{
			name:    "threshold above one",
			mutate:  func(c *Config) { c.Network.CoverageThreshold = 1.5 },
			wantSub: "network.coverage_threshold",
		},
		{
			name:    "zero batch concurrency",
			mutate:  func(c *Config) { c.Batch.MaxConcurrent = 0 },
			wantSub: "batch.max_concurrent",
		},
		{
			name:    "zero batch wait",
			mutate:  func(c *Config) { c.Batch.MaxWait = 0 },
			wantSub: "batch.max_wait",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"
	cfg.Network.DefaultNetwork = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, sub := range []string{"logging.level", "network.default_network"} {
		if !strings.Contains(err.Error(), sub) {
			t.Errorf("error missing %q: %q", sub, err)
		}
	}
}

func TestValidate_DefaultsAreValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v, want nil", err)
	}
}
