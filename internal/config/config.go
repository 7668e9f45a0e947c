package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the per-project configuration file graft reads and writes.
const FileName = "graft.yaml"

// DefaultRegistry is the catalog served when a project does not name one.
const DefaultRegistry = "https://registry.graftkit.dev"

// SearchConfig tunes the search command.
type SearchConfig struct {
	TopK     int     `yaml:"top_k,omitempty"`
	MinScore float64 `yaml:"min_score,omitempty"`
}

// Config is the in-memory representation of a project's graft.yaml.
type Config struct {
	Registry       string       `yaml:"registry"`
	Dir            string       `yaml:"dir"`
	PackageManager string       `yaml:"package_manager,omitempty"`
	Search         SearchConfig `yaml:"search,omitempty"`
}

// Default returns the Config written on first graft init.
func Default() *Config {
	return &Config{
		Registry: DefaultRegistry,
		Dir:      "snippets",
		Search: SearchConfig{
			TopK:     3,
			MinScore: 0.30,
		},
	}
}

// Path returns the absolute path to dir's graft.yaml.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads and parses dir's graft.yaml. Missing or zero fields fall back
// to the defaults so older config files keep working.
func Load(dir string) (*Config, error) {
	path := Path(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	def := Default()
	if cfg.Registry == "" {
		cfg.Registry = def.Registry
	}
	if cfg.Dir == "" {
		cfg.Dir = def.Dir
	}
	if cfg.Search.TopK <= 0 {
		cfg.Search.TopK = def.Search.TopK
	}
	if cfg.Search.MinScore <= 0 {
		cfg.Search.MinScore = def.Search.MinScore
	}
	return &cfg, nil
}

// Save marshals cfg and writes it to dir's graft.yaml.
func Save(dir string, cfg *Config) error {
	path := Path(dir)
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// GraftDir returns the absolute path to ~/.graft/.
func GraftDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".graft"), nil
}
