// Package config handles gltool configuration loading and management.
package config

import "time"

// Config holds all gltool settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Loader  LoaderConfig  `yaml:"loader" toml:"loader"`
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	LogFile    string `yaml:"log_file" toml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
}

// LoaderConfig holds flattener settings.
type LoaderConfig struct {
	// TangentMode is "linear" or "legacy".
	TangentMode string `yaml:"tangent_mode" toml:"tangent_mode"`
}

// ExportConfig holds settings for the export command.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" toml:"output_dir"`
	Manifest  string `yaml:"manifest" toml:"manifest"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" toml:"debounce_ms"`
}

// Debounce returns the quiet period before a changed file is reloaded.
func (w WatchConfig) Debounce() time.Duration {
	if w.DebounceMS <= 0 {
		return 0
	}
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Loader: LoaderConfig{
			TangentMode: "linear",
		},
		Export: ExportConfig{
			OutputDir: "out",
			Manifest:  "manifest.yaml",
		},
		Watch: WatchConfig{
			DebounceMS: 100,
		},
	}
}
