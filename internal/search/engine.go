// Package search answers questions from the knowledge base: retrieve the closest
// passages, ground a generation call on them, and record the exchange.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/wali/internal/backend"
	"github.com/hyperjump/wali/internal/config"
	"github.com/hyperjump/wali/internal/llm"
	"github.com/hyperjump/wali/internal/models"
	"github.com/hyperjump/wali/internal/storage"
	"github.com/hyperjump/wali/internal/vector"
	"github.com/hyperjump/wali/pkg/utils"
)

// titleRunes is the question prefix used as a new conversation's title.
const titleRunes = 20

// contextSeparator joins retrieved passages into the prompt context.
const contextSeparator = "\n\n"

// ServiceProvider resolves the current remote clients.
type ServiceProvider interface {
	Services() (*backend.Services, error)
}

// Engine runs retrieval-augmented question answering.
type Engine struct {
	storage  storage.Storage
	index    vector.Index
	services ServiceProvider
	topK     int
	logger   *zap.Logger
	now      func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for answered questions.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine returning rag.TopK passages per question.
func NewEngine(store storage.Storage, index vector.Index, services ServiceProvider, rag config.RAGConfig, opts ...EngineOption) *Engine {
	e := &Engine{
		storage:  store,
		index:    index,
		services: services,
		topK:     max(rag.TopK, 1),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Retrieval is the grounding material for one question.
type Retrieval struct {
	Hits    []vector.Hit
	Context string
	Sources []string
}

// Retrieve embeds question and returns the top-k passages, their joined text and
// the names of their documents in hit order. Hits without a document name add
// context but no source.
func (e *Engine) Retrieve(ctx context.Context, svc *backend.Services, question string) (*Retrieval, error) {
	vec, err := svc.Embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	hits := e.index.Search(vec, e.topK)
	r := &Retrieval{Hits: hits, Sources: make([]string, 0, len(hits))}
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, h.Record.Content)
		if name, ok := h.Record.DocumentName(); ok {
			r.Sources = append(r.Sources, name)
		}
	}
	r.Context = strings.Join(parts, contextSeparator)
	return r, nil
}

// Ask answers a question and appends the turn to its conversation, creating the
// conversation when the request names none. Nothing is stored unless generation
// succeeds.
func (e *Engine) Ask(ctx context.Context, req *models.AskRequest) (*models.AskResponse, error) {
	svc, err := e.services.Services()
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r, err := e.Retrieve(ctx, svc, req.Question)
	if err != nil {
		return nil, err
	}

	answer, err := svc.Generator.Generate(ctx, llm.BuildMessages(req.Question, r.Context))
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	convID, err := e.storage.SaveExchange(ctx, &models.Exchange{
		ConversationID: req.ConversationID,
		Title:          utils.TruncateRunes(req.Question, titleRunes),
		Question:       req.Question,
		Answer:         answer,
		Sources:        r.Sources,
		At:             e.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	if e.logger != nil {
		e.logger.Info("question answered",
			zap.String("conversation_id", convID),
			zap.Int("hits", len(r.Hits)),
			zap.Strings("sources", r.Sources))
	}
	return &models.AskResponse{Answer: answer, Sources: r.Sources, ConversationID: convID}, nil
}
