// Package config provides centralized configuration for censuskit. Settings
// come from three layers, each overriding the one before: built-in defaults,
// an optional TOML file, and environment variables. The merged result is
// validated on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all censuskit configuration.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Census  CensusConfig  `toml:"census"`
	Network NetworkConfig `toml:"network"`
	Batch   BatchConfig   `toml:"batch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level" env:"CENSUSKIT_LOG_LEVEL"`

	// Format is the log output format: text or json.
	Format string `toml:"format" env:"CENSUSKIT_LOG_FORMAT"`
}

// CensusConfig holds extraction and standardization settings.
type CensusConfig struct {
	// SampleSize is how many example values the inspect preview collects
	// per column.
	SampleSize int `toml:"sample_size" env:"CENSUSKIT_SAMPLE_SIZE"`

	// HeaderOverrides force logical fields onto specific file headers,
	// keyed by logical field name ("zip", "first_name", ...). An override
	// disables alias matching for its field.
	HeaderOverrides map[string]string `toml:"header_overrides"`

	// Synonym dictionaries applied before enumeration checks. Keys are
	// matched case-insensitively against raw cell values.
	GenderSynonyms       map[string]string `toml:"gender_synonyms"`
	RelationshipSynonyms map[string]string `toml:"relationship_synonyms"`
	TierSynonyms         map[string]string `toml:"tier_synonyms"`
}

// NetworkConfig holds assignment settings.
type NetworkConfig struct {
	// DefaultNetwork is the wrap network members fall back to when their
	// ZIP has no direct-contract entry.
	DefaultNetwork string `toml:"default_network" env:"CENSUSKIT_DEFAULT_NETWORK"`

	// CoverageThreshold is the minimum share of members a direct-contract
	// network needs to be recommended as primary, in [0, 1].
	CoverageThreshold float64 `toml:"coverage_threshold" env:"CENSUSKIT_COVERAGE_THRESHOLD"`

	// MappingFile is the path of the ZIP-to-network reference table.
	MappingFile string `toml:"mapping_file" env:"CENSUSKIT_MAPPING_FILE"`
}

// BatchConfig holds batch processing settings.
type BatchConfig struct {
	// MaxConcurrent is the number of files processed in parallel.
	MaxConcurrent int `toml:"max_concurrent" env:"CENSUSKIT_BATCH_CONCURRENCY"`

	// MaxWait is how long a file waits for a processing slot.
	MaxWait time.Duration `toml:"max_wait" env:"CENSUSKIT_BATCH_MAX_WAIT"`
}

// Default returns the configuration used when no file or environment
// overrides are present. The synonym dictionaries cover the spellings that
// show up constantly in broker-prepared census files; operators extend
// them per client in the TOML file.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Census: CensusConfig{
			SampleSize: 3,
			GenderSynonyms: map[string]string{
				"male":   "M",
				"female": "F",
			},
			RelationshipSynonyms: map[string]string{
				"employee":   "E",
				"self":       "E",
				"subscriber": "E",
				"spouse":     "S",
				"wife":       "S",
				"husband":    "S",
				"child":      "C",
				"son":        "C",
				"daughter":   "C",
				"dependent":  "C",
			},
			TierSynonyms: map[string]string{
				"employee only":       "EE",
				"employee":            "EE",
				"single":              "EE",
				"employee + spouse":   "ES",
				"employee and spouse": "ES",
				"employee spouse":     "ES",
				"employee + child":    "EC",
				"employee + children": "EC",
				"employee and child":  "EC",
				"employee child":      "EC",
				"family":              "EF",
				"employee + family":   "EF",
				"employee and family": "EF",
				"waive":               "W",
				"waived":              "W",
				"waiver":              "W",
				"decline":             "W",
				"declined":            "W",
			},
		},
		Network: NetworkConfig{
			DefaultNetwork:    "Cigna_PPO",
			CoverageThreshold: 0.90,
		},
		Batch: BatchConfig{
			MaxConcurrent: 4,
			MaxWait:       30 * time.Second,
		},
	}
}
