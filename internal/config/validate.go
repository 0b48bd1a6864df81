package config

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/jward/quarry/internal/lang"
)

// Validate checks a configuration for contradictions and unusable
// values. Glob patterns are compiled here so a typo fails at load time
// rather than silently matching nothing.
func Validate(cfg *Config) error {
	known := make(map[string]bool)
	for _, l := range lang.Languages() {
		known[l] = true
	}
	for _, l := range cfg.Extraction.Languages {
		if !known[l] {
			return fmt.Errorf("unknown language %q (known: %v)", l, lang.Languages())
		}
	}

	if cfg.Extraction.MaxChainDepth < 1 {
		return fmt.Errorf("max_chain_depth must be at least 1, got %d", cfg.Extraction.MaxChainDepth)
	}

	for _, p := range cfg.Paths.Include {
		if _, err := glob.Compile(p, '/'); err != nil {
			return fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
	}
	for _, p := range cfg.Paths.Ignore {
		if _, err := glob.Compile(p, '/'); err != nil {
			return fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
	}

	switch cfg.Output.Format {
	case "json", "none":
	default:
		return fmt.Errorf("unknown output format %q (want json or none)", cfg.Output.Format)
	}

	return nil
}
