package config

// Default base URLs per provider.
const (
	DefaultDashScopeBaseURL = "https://dashscope.aliyuncs.com/api/v1"
	DefaultOpenAIBaseURL    = "https://api.openai.com/v1"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".wali/data/wali.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = ".wali/data/vectors.idx"
	}
	if cfg.Backend.Provider == "" {
		cfg.Backend.Provider = ProviderDashScope
	}
	if cfg.Backend.BaseURL == "" {
		switch cfg.Backend.Provider {
		case ProviderOpenAI:
			cfg.Backend.BaseURL = DefaultOpenAIBaseURL
		case ProviderDashScope:
			cfg.Backend.BaseURL = DefaultDashScopeBaseURL
		}
	}
	if cfg.Embedding.Model == "" {
		if cfg.Backend.Provider == ProviderOpenAI {
			cfg.Embedding.Model = "text-embedding-3-small"
		} else {
			cfg.Embedding.Model = "text-embedding-v2"
		}
	}
	if cfg.Embedding.Dimensions == 0 && cfg.Backend.Provider == ProviderMock {
		cfg.Embedding.Dimensions = 64
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 25
	}
	if cfg.Embedding.MaxInFlight == 0 {
		cfg.Embedding.MaxInFlight = 10
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Generation.Model == "" {
		if cfg.Backend.Provider == ProviderOpenAI {
			cfg.Generation.Model = "gpt-4o-mini"
		} else {
			cfg.Generation.Model = "qwen-turbo"
		}
	}
	if cfg.Generation.TimeoutSeconds == 0 {
		cfg.Generation.TimeoutSeconds = 60
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 0.7
	}
	if cfg.Generation.TopP == 0 {
		cfg.Generation.TopP = 0.9
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 800
	}
	// Overlap defaults to a tenth of the chunk size so a custom chunk_size stays valid.
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = cfg.RAG.ChunkSize / 10
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 3
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx", ".pptx", ".odt", ".ods", ".odp", ".rtf"}
	}
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
