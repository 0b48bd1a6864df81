// Package config loads quarry configuration from .quarry/config.yml
// with environment variable overrides.
package config

import (
	"github.com/jward/quarry/internal/lang"
)

// Config represents the complete quarry configuration.
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// ExtractionConfig controls the extraction and resolution pipeline.
type ExtractionConfig struct {
	Languages     []string `yaml:"languages" mapstructure:"languages"`             // language tags to process; empty means all
	Repository    string   `yaml:"repository" mapstructure:"repository"`           // repository URL stamped into entity sources
	Parallel      bool     `yaml:"parallel" mapstructure:"parallel"`               // parallel extraction
	MaxChainDepth int      `yaml:"max_chain_depth" mapstructure:"max_chain_depth"` // re-export chain bound
}

// PathsConfig defines which files to extract and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// OutputConfig defines where the finished graph goes.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "json" or "none"
	Path   string `yaml:"path" mapstructure:"path"`     // output file; empty means stdout
	DB     string `yaml:"db" mapstructure:"db"`         // SQLite path; empty disables the sink
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	var include []string
	for _, l := range lang.Languages() {
		for _, ext := range lang.Extensions(l) {
			include = append(include, "**/*"+ext)
		}
	}
	return &Config{
		Extraction: ExtractionConfig{
			Languages:     nil,
			Parallel:      true,
			MaxChainDepth: 16,
		},
		Paths: PathsConfig{
			Include: include,
			Ignore: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"__pycache__/**",
				"**/*.d.ts",
			},
		},
		Output: OutputConfig{
			Format: "json",
		},
	}
}
