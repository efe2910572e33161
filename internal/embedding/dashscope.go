package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/wali/internal/models"
	"github.com/hyperjump/wali/internal/remote"
)

const (
	// DefaultDashScopeModel is the DashScope text embedding model.
	DefaultDashScopeModel = "text-embedding-v2"
	// DefaultTimeout is the per-request embedding timeout.
	DefaultTimeout = 30 * time.Second

	dashscopeEmbeddingPath = "/services/embeddings/text-embedding/text-embedding"
)

// DashScopeConfig configures a DashScopeEmbedder.
type DashScopeConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DashScopeEmbedder calls the DashScope text-embedding API.
type DashScopeEmbedder struct {
	client *remote.Client
	model  string
}

var _ Embedder = (*DashScopeEmbedder)(nil)

type dashscopeRequest struct {
	Model string         `json:"model"`
	Input dashscopeInput `json:"input"`
}

type dashscopeInput struct {
	Texts []string `json:"texts"`
}

type dashscopeResponse struct {
	Output struct {
		Embeddings []struct {
			Embedding []float32 `json:"embedding"`
			TextIndex int       `json:"text_index"`
		} `json:"embeddings"`
	} `json:"output"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewDashScopeEmbedder creates an embedder; zero config fields take defaults.
func NewDashScopeEmbedder(cfg DashScopeConfig) *DashScopeEmbedder {
	if cfg.Model == "" {
		cfg.Model = DefaultDashScopeModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &DashScopeEmbedder{
		client: remote.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		model:  cfg.Model,
	}
}

// Model returns the embedding model name.
func (e *DashScopeEmbedder) Model() string { return e.model }

// Embed returns the embedding of a single text.
func (e *DashScopeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, e, text)
}

// EmbedBatch embeds texts in one request. Results are placed by text_index.
func (e *DashScopeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	var resp dashscopeResponse
	req := dashscopeRequest{Model: e.model, Input: dashscopeInput{Texts: texts}}
	if err := e.client.PostJSON(ctx, "embed", dashscopeEmbeddingPath, req, &resp); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for _, item := range resp.Output.Embeddings {
		if item.TextIndex < 0 || item.TextIndex >= len(texts) {
			return nil, &models.FormatError{Op: "embed", Err: fmt.Errorf("text_index %d out of range [0,%d)", item.TextIndex, len(texts))}
		}
		out[item.TextIndex] = item.Embedding
	}
	if err := checkComplete(out); err != nil {
		return nil, err
	}
	return out, nil
}
