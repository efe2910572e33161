// Package config provides configuration loading and structs for the wali server and CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/wali/internal/models"
)

// Backend providers.
const (
	ProviderDashScope = "dashscope"
	ProviderOpenAI    = "openai"
	ProviderMock      = "mock"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Backend    BackendConfig    `yaml:"backend"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	RAG        RAGConfig        `yaml:"rag"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the vector index snapshot.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
}

// BackendConfig selects the remote service used for embeddings and generation.
// APIKey is normally left empty in the file and supplied by env or the settings table.
type BackendConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// EmbeddingConfig holds embedding client and batching settings.
type EmbeddingConfig struct {
	Model             string  `yaml:"model"`
	Dimensions        int     `yaml:"dimensions"`
	BatchSize         int     `yaml:"batch_size"`
	MaxInFlight       int     `yaml:"max_in_flight"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	CacheSize         int     `yaml:"cache_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Timeout returns the per-request timeout.
func (e EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// GenerationConfig holds generation client settings.
type GenerationConfig struct {
	Model          string  `yaml:"model"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Temperature    float64 `yaml:"temperature"`
	TopP           float64 `yaml:"top_p"`
}

// Timeout returns the per-request timeout.
func (g GenerationConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// RAGConfig holds chunking and retrieval settings.
type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	TopK         int `yaml:"top_k"`
}

// WatchConfig holds inbox directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Default returns a validated config with every default applied and paths expanded
// relative to the home directory. Used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.expandPaths("")
	return cfg
}

// Load reads and parses the config file at path, applies defaults, expands paths,
// applies environment overrides, and validates the result.
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
	cfg.expandPaths(filepath.Dir(path))
	ApplyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides backend settings from the environment. WALI_API_KEY wins over
// the provider-specific variables.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("WALI_BASE_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	keyVars := []string{"WALI_API_KEY"}
	switch cfg.Backend.Provider {
	case ProviderDashScope:
		keyVars = append(keyVars, "DASHSCOPE_API_KEY")
	case ProviderOpenAI:
		keyVars = append(keyVars, "OPENAI_API_KEY")
	}
	for _, name := range keyVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			cfg.Backend.APIKey = v
			return
		}
	}
}

// Validate checks values the pipelines cannot run with.
func (c *Config) Validate() error {
	switch c.Backend.Provider {
	case ProviderDashScope, ProviderOpenAI, ProviderMock:
	default:
		return &models.ConfigError{Field: "backend.provider", Reason: fmt.Sprintf("unknown provider %q", c.Backend.Provider)}
	}
	if c.RAG.ChunkSize <= 0 {
		return &models.ConfigError{Field: "rag.chunk_size", Reason: "must be positive"}
	}
	if c.RAG.ChunkOverlap < 0 {
		return &models.ConfigError{Field: "rag.chunk_overlap", Reason: "must not be negative"}
	}
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return &models.ConfigError{
			Field:  "rag.chunk_overlap",
			Reason: fmt.Sprintf("must be less than chunk_size (%d >= %d)", c.RAG.ChunkOverlap, c.RAG.ChunkSize),
		}
	}
	if c.RAG.TopK <= 0 {
		return &models.ConfigError{Field: "rag.top_k", Reason: "must be positive"}
	}
	if c.Embedding.BatchSize <= 0 {
		return &models.ConfigError{Field: "embedding.batch_size", Reason: "must be positive"}
	}
	if c.Embedding.MaxInFlight <= 0 {
		return &models.ConfigError{Field: "embedding.max_in_flight", Reason: "must be positive"}
	}
	if c.Embedding.RequestsPerSecond < 0 {
		return &models.ConfigError{Field: "embedding.requests_per_second", Reason: "must not be negative"}
	}
	return nil
}

func (c *Config) expandPaths(configDir string) {
	c.Storage.DatabasePath = expandPath(c.Storage.DatabasePath, configDir)
	c.Storage.VectorIndexPath = expandPath(c.Storage.VectorIndexPath, configDir)
	for i := range c.Watch.Directories {
		c.Watch.Directories[i] = expandPath(c.Watch.Directories[i], configDir)
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// "~/" and other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if (strings.HasPrefix(path, "./") || path == ".") && configDir != "" {
		return filepath.Join(configDir, path)
	}
	path = strings.TrimPrefix(path, "~/")
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
