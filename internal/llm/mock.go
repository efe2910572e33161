package llm

import (
	"context"
	"strings"
)

// MockGenerator answers offline by quoting the start of the supplied context.
type MockGenerator struct {
	// MaxRunes bounds the quoted context; 0 means 200.
	MaxRunes int
}

var _ Generator = (*MockGenerator)(nil)

// Model returns "mock".
func (g *MockGenerator) Model() string { return "mock" }

// Generate returns the leading context of the last user turn.
func (g *MockGenerator) Generate(ctx context.Context, messages []Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	limit := g.MaxRunes
	if limit <= 0 {
		limit = 200
	}
	var last string
	for _, m := range messages {
		if m.Role == RoleUser {
			last = m.Content
		}
	}
	ctxText := strings.TrimPrefix(last, "reference documents:\n\n")
	if i := strings.LastIndex(ctxText, "\n\nquestion:\n\n"); i >= 0 {
		ctxText = ctxText[:i]
	}
	ctxText = strings.TrimSpace(ctxText)
	if ctxText == "" {
		return "The documents do not contain information about this question.", nil
	}
	r := []rune(ctxText)
	if len(r) > limit {
		ctxText = string(r[:limit]) + "..."
	}
	return "Based on the documents: " + ctxText, nil
}
