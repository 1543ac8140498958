package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the name of the optional config file at a store root.
const ConfigFile = "quire.yaml"

// FileConfig is the on-disk shape of quire.yaml.
type FileConfig struct {
	Root   string `yaml:"root"`
	Author struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
	} `yaml:"author"`
	ListConcurrency int  `yaml:"list_concurrency"`
	CacheSize       int  `yaml:"cache_size"`
	Strict          bool `yaml:"strict"`
	ReadOnly        bool `yaml:"read_only"`
}

// LoadConfig reads a config file. A relative root is taken relative to the
// file's directory; an empty one means that directory.
func LoadConfig(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	switch {
	case cfg.Root == "":
		cfg.Root = base
	case !filepath.IsAbs(cfg.Root):
		cfg.Root = filepath.Join(base, cfg.Root)
	}
	return &cfg, nil
}

// Options turns the file settings into functional options.
func (c *FileConfig) Options() []Option {
	var opts []Option
	if c.Author.Name != "" || c.Author.Email != "" {
		opts = append(opts, WithAuthor(c.Author.Name, c.Author.Email))
	}
	if c.ListConcurrency > 0 {
		opts = append(opts, WithListConcurrency(c.ListConcurrency))
	}
	if c.CacheSize > 0 {
		opts = append(opts, WithCacheSize(c.CacheSize))
	}
	if c.Strict {
		opts = append(opts, WithStrict(true))
	}
	if c.ReadOnly {
		opts = append(opts, WithReadOnly(true))
	}
	return opts
}
