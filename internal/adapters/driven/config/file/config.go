// Package file loads the TOML configuration file that wires the CLI:
// storage location, chunking parameters, embedding provider and handler
// credentials.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full configuration tree, stored at
// ~/.semindex/config.toml by default.
type Config struct {
	// DataDir overrides where the SQLite database lives.
	DataDir string `toml:"data_dir"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Embedding EmbeddingConfig `toml:"embedding"`
	GitHub    GitHubConfig    `toml:"github"`
}

// ChunkingConfig sets the sliding-window parameters. Zero values fall back
// to the chunker defaults.
type ChunkingConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama" (default) or "openai".
	Provider string `toml:"provider"`

	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	APIKey     string `toml:"api_key"`
	Dimensions int    `toml:"dimensions"`
	BatchSize  int    `toml:"batch_size"`
}

// GitHubConfig holds issue-tracker handler credentials.
type GitHubConfig struct {
	// Token is a personal access token. Empty means unauthenticated
	// access, which works for public repositories at a lower rate limit.
	Token string `toml:"token"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Embedding: EmbeddingConfig{
			Provider: "ollama",
		},
	}
}

// DefaultPath returns ~/.semindex/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".semindex", "config.toml"), nil
}

// Load reads the configuration at path. A missing file yields the
// defaults; a malformed file is an error. An empty path means the default
// location.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path with restricted permissions,
// creating the directory if needed. Used by `config init`.
func Save(path string, cfg Config) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
