package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration for a project rooted at rootDir with the
// following priority (highest to lowest):
//
//  1. Environment variables (QUARRY_*)
//  2. Config file (.quarry/config.yml or .quarry/config.yaml)
//  3. Default values
func Load(rootDir string) (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(rootDir, ".quarry")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("QUARRY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("extraction.repository")
	v.BindEnv("extraction.parallel")
	v.BindEnv("extraction.max_chain_depth")
	v.BindEnv("output.format")
	v.BindEnv("output.path")
	v.BindEnv("output.db")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("extraction.languages", defaults.Extraction.Languages)
	v.SetDefault("extraction.repository", defaults.Extraction.Repository)
	v.SetDefault("extraction.parallel", defaults.Extraction.Parallel)
	v.SetDefault("extraction.max_chain_depth", defaults.Extraction.MaxChainDepth)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.path", defaults.Output.Path)
	v.SetDefault("output.db", defaults.Output.DB)
}
