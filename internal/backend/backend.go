// Package backend holds the embedding and generation clients behind a mutable,
// concurrency-safe cell so the API key can be set at runtime.
package backend

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/wali/internal/config"
	"github.com/hyperjump/wali/internal/embedding"
	"github.com/hyperjump/wali/internal/llm"
	"github.com/hyperjump/wali/internal/models"
)

// SettingAPIKey is the settings key under which the API key is persisted.
const SettingAPIKey = "api_key"

// Services is the pair of remote clients the pipelines call.
type Services struct {
	Embedder  embedding.Embedder
	Generator llm.Generator
}

// Backend builds Services from the configured provider once a key is known.
type Backend struct {
	cfg    *config.Config
	logger *zap.Logger

	mu       sync.RWMutex
	services *Services
	apiKey   string
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets a logger for configuration events.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// New creates a backend. The mock provider is configured immediately; the others
// wait for a key from cfg.Backend.APIKey or Configure.
func New(cfg *config.Config, opts ...Option) *Backend {
	b := &Backend{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}
	switch {
	case cfg.Backend.Provider == config.ProviderMock:
		b.set(b.build(""), "")
	case cfg.Backend.APIKey != "":
		b.set(b.build(cfg.Backend.APIKey), cfg.Backend.APIKey)
	}
	return b
}

// Configure replaces the clients with ones using apiKey.
func (b *Backend) Configure(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &models.ConfigError{Field: "api_key", Reason: "must not be empty"}
	}
	b.set(b.build(apiKey), apiKey)
	if b.logger != nil {
		b.logger.Info("backend configured",
			zap.String("provider", b.cfg.Backend.Provider),
			zap.String("api_key", MaskKey(apiKey)))
	}
	return nil
}

// Services returns the current clients, or *models.NotConfiguredError.
func (b *Backend) Services() (*Services, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.services == nil {
		return nil, &models.NotConfiguredError{What: b.cfg.Backend.Provider + " backend"}
	}
	return b.services, nil
}

// IsConfigured reports whether Services would succeed.
func (b *Backend) IsConfigured() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.services != nil
}

// MaskedKey returns the current key with everything but its edges hidden.
func (b *Backend) MaskedKey() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return MaskKey(b.apiKey)
}

func (b *Backend) set(s *Services, key string) {
	b.mu.Lock()
	b.services = s
	b.apiKey = key
	b.mu.Unlock()
}

func (b *Backend) build(apiKey string) *Services {
	cfg := b.cfg
	var emb embedding.Embedder
	var gen llm.Generator
	switch cfg.Backend.Provider {
	case config.ProviderOpenAI:
		emb = embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			BaseURL: cfg.Backend.BaseURL,
			APIKey:  apiKey,
			Model:   cfg.Embedding.Model,
			Timeout: cfg.Embedding.Timeout(),
		})
		gen = llm.NewOpenAIGenerator(llm.OpenAIConfig{
			BaseURL:     cfg.Backend.BaseURL,
			APIKey:      apiKey,
			Model:       cfg.Generation.Model,
			Timeout:     cfg.Generation.Timeout(),
			Temperature: cfg.Generation.Temperature,
			TopP:        cfg.Generation.TopP,
		})
	case config.ProviderMock:
		emb = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
		gen = &llm.MockGenerator{}
	default:
		emb = embedding.NewDashScopeEmbedder(embedding.DashScopeConfig{
			BaseURL: cfg.Backend.BaseURL,
			APIKey:  apiKey,
			Model:   cfg.Embedding.Model,
			Timeout: cfg.Embedding.Timeout(),
		})
		gen = llm.NewDashScopeGenerator(llm.DashScopeConfig{
			BaseURL:     cfg.Backend.BaseURL,
			APIKey:      apiKey,
			Model:       cfg.Generation.Model,
			Timeout:     cfg.Generation.Timeout(),
			Temperature: cfg.Generation.Temperature,
			TopP:        cfg.Generation.TopP,
		})
	}
	if cfg.Embedding.RequestsPerSecond > 0 {
		emb = embedding.NewRateLimitedEmbedder(emb, cfg.Embedding.RequestsPerSecond)
	}
	if cfg.Embedding.CacheSize > 0 {
		emb = embedding.NewCachingEmbedder(emb, cfg.Embedding.CacheSize)
	}
	return &Services{Embedder: emb, Generator: gen}
}

// MaskKey keeps the first and last four characters of keys longer than eight.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
