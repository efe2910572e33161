package llm

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperjump/wali/internal/models"
	"github.com/hyperjump/wali/internal/remote"
)

// DefaultOpenAIModel is the default model for OpenAI-compatible endpoints.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig configures an OpenAIGenerator.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	TopP        float64
}

// OpenAIGenerator calls an OpenAI-compatible chat completions endpoint.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	topP        float32
}

var _ Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates a generator; zero config fields take defaults.
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.TopP == 0 {
		cfg.TopP = DefaultTopP
	}
	return &OpenAIGenerator{
		client:      remote.NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		topP:        float32(cfg.TopP),
	}
}

// Model returns the generation model name.
func (g *OpenAIGenerator) Model() string { return g.model }

// Generate sends messages and returns the first choice's content.
func (g *OpenAIGenerator) Generate(ctx context.Context, messages []Message) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: g.temperature,
		TopP:        g.topP,
	})
	if err != nil {
		return "", remote.MapOpenAIError("generate", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &models.EmptyAnswerError{}
	}
	return resp.Choices[0].Message.Content, nil
}
