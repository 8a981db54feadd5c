// Package config provides configuration loading and structs for the
// Gurukul runtime and export tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Bundle    BundleConfig    `yaml:"bundle"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// BundleConfig holds the served bundle location and hot-swap settings.
type BundleConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// IngestConfig holds the staging database path.
type IngestConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// RetrievalConfig holds search and confidence-gate settings. Threshold is
// configuration, not an invariant; the shipped default is 0.60.
type RetrievalConfig struct {
	Threshold float64 `yaml:"threshold"`
	DefaultK  int     `yaml:"default_k"`
	MaxK      int     `yaml:"max_k"`
}

// EmbeddingConfig holds the embedding collaborator endpoint and model.
type EmbeddingConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
}

// LLMConfig holds the language-model collaborator endpoint and model.
type LLMConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Load reads and parses the config file at path, expands paths relative
// to the config directory, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Bundle.Path = expandPath(cfg.Bundle.Path, configDir)
	cfg.Ingest.DatabasePath = expandPath(cfg.Ingest.DatabasePath, configDir)
	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
