package llm

import (
	"context"
	"strings"
	"time"

	"github.com/hyperjump/wali/internal/models"
	"github.com/hyperjump/wali/internal/remote"
)

const (
	// DefaultDashScopeModel is the DashScope chat model.
	DefaultDashScopeModel = "qwen-turbo"
	// DefaultTimeout is the per-request generation timeout.
	DefaultTimeout = 60 * time.Second
	// DefaultTemperature and DefaultTopP are the sampling parameters sent with every request.
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9

	dashscopeGenerationPath = "/services/aigc/text-generation/generation"
)

// DashScopeConfig configures a DashScopeGenerator.
type DashScopeConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float64
	TopP        float64
}

// DashScopeGenerator calls the DashScope text-generation API.
type DashScopeGenerator struct {
	client      *remote.Client
	model       string
	temperature float64
	topP        float64
}

var _ Generator = (*DashScopeGenerator)(nil)

type generationRequest struct {
	Model      string               `json:"model"`
	Input      generationInput      `json:"input"`
	Parameters generationParameters `json:"parameters"`
}

type generationInput struct {
	Messages []Message `json:"messages"`
}

type generationParameters struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

type generationResponse struct {
	Output generationOutput `json:"output"`
	Usage  struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// ResponseShape tags which form of the generation output carried the answer.
type ResponseShape int

const (
	ShapeNone ResponseShape = iota
	ShapeText
	ShapeChoices
)

func (s ResponseShape) String() string {
	switch s {
	case ShapeText:
		return "text"
	case ShapeChoices:
		return "choices"
	default:
		return "none"
	}
}

// generationOutput holds both accepted output forms: a flat text field, or a list
// of role/content choices.
type generationOutput struct {
	Text    *string `json:"text"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Answer resolves the output in a fixed order: flat text first, then the first
// choice. Blank values do not count.
func (o generationOutput) Answer() (ResponseShape, string) {
	if o.Text != nil && strings.TrimSpace(*o.Text) != "" {
		return ShapeText, *o.Text
	}
	if len(o.Choices) > 0 && strings.TrimSpace(o.Choices[0].Message.Content) != "" {
		return ShapeChoices, o.Choices[0].Message.Content
	}
	return ShapeNone, ""
}

// NewDashScopeGenerator creates a generator; zero config fields take defaults.
func NewDashScopeGenerator(cfg DashScopeConfig) *DashScopeGenerator {
	if cfg.Model == "" {
		cfg.Model = DefaultDashScopeModel
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
	return &DashScopeGenerator{
		client:      remote.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}
}

// Model returns the generation model name.
func (g *DashScopeGenerator) Model() string { return g.model }

// Generate sends messages and returns the answer text.
func (g *DashScopeGenerator) Generate(ctx context.Context, messages []Message) (string, error) {
	req := generationRequest{
		Model:      g.model,
		Input:      generationInput{Messages: messages},
		Parameters: generationParameters{Temperature: g.temperature, TopP: g.topP},
	}
	var resp generationResponse
	if err := g.client.PostJSON(ctx, "generate", dashscopeGenerationPath, req, &resp); err != nil {
		return "", err
	}
	shape, answer := resp.Output.Answer()
	if shape == ShapeNone {
		return "", &models.EmptyAnswerError{}
	}
	return answer, nil
}
