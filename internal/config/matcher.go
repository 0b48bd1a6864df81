package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher decides which files a run should extract, based on the
// configured include and ignore glob patterns. Paths are matched in
// slash form relative to the project root.
type Matcher struct {
	include []glob.Glob
	ignore  []glob.Glob
}

// NewMatcher compiles the configuration's path patterns.
func NewMatcher(cfg *Config) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range cfg.Paths.Include {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile include pattern %q: %w", p, err)
		}
		m.include = append(m.include, g)
		// "**/*.ts" alone never matches a root-level "index.ts" because
		// the slash is literal; compile the bare suffix too.
		if rest, ok := strings.CutPrefix(p, "**/"); ok {
			g, err := glob.Compile(rest, '/')
			if err != nil {
				return nil, fmt.Errorf("compile include pattern %q: %w", p, err)
			}
			m.include = append(m.include, g)
		}
	}
	for _, p := range cfg.Paths.Ignore {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile ignore pattern %q: %w", p, err)
		}
		m.ignore = append(m.ignore, g)
	}
	return m, nil
}

// Match reports whether the root-relative path should be extracted:
// matched by at least one include pattern and no ignore pattern.
func (m *Matcher) Match(relPath string) bool {
	relPath = strings.TrimPrefix(relPath, "./")
	for _, g := range m.ignore {
		if g.Match(relPath) {
			return false
		}
	}
	for _, g := range m.include {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}
