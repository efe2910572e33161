package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/wali/internal/models"
)

func dashscopeServer(t *testing.T, handler func(req dashscopeRequest) (int, any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, dashscopeEmbeddingPath, r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var req dashscopeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		status, body := handler(req)
		w.WriteHeader(status)
		if s, ok := body.(string); ok {
			_, _ = w.Write([]byte(s))
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestDashScope(url string) *DashScopeEmbedder {
	return NewDashScopeEmbedder(DashScopeConfig{BaseURL: url, APIKey: "sk-test"})
}

type embeddingItem struct {
	Embedding []float32 `json:"embedding"`
	TextIndex int       `json:"text_index"`
}

func embeddingsBody(items ...embeddingItem) map[string]any {
	return map[string]any{
		"output": map[string]any{"embeddings": items},
		"usage":  map[string]any{"total_tokens": 7},
	}
}

func TestDashScopeEmbedder_PlacesByTextIndex(t *testing.T) {
	srv := dashscopeServer(t, func(req dashscopeRequest) (int, any) {
		assert.Equal(t, DefaultDashScopeModel, req.Model)
		assert.Equal(t, []string{"a", "b", "c"}, req.Input.Texts)
		return http.StatusOK, embeddingsBody(
			embeddingItem{Embedding: []float32{3, 3}, TextIndex: 2},
			embeddingItem{Embedding: []float32{1, 1}, TextIndex: 0},
			embeddingItem{Embedding: []float32{2, 2}, TextIndex: 1},
		)
	})
	out, err := newTestDashScope(srv.URL).EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []float32{1, 1}, out[0])
	assert.Equal(t, []float32{2, 2}, out[1])
	assert.Equal(t, []float32{3, 3}, out[2])
}

func TestDashScopeEmbedder_Embed(t *testing.T) {
	srv := dashscopeServer(t, func(req dashscopeRequest) (int, any) {
		assert.Len(t, req.Input.Texts, 1)
		return http.StatusOK, embeddingsBody(embeddingItem{Embedding: []float32{0.5}, TextIndex: 0})
	})
	v, err := newTestDashScope(srv.URL).Embed(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, v)
}

func TestDashScopeEmbedder_MissingVector(t *testing.T) {
	srv := dashscopeServer(t, func(req dashscopeRequest) (int, any) {
		return http.StatusOK, embeddingsBody(
			embeddingItem{Embedding: []float32{1}, TextIndex: 0},
			embeddingItem{Embedding: []float32{}, TextIndex: 1},
		)
	})
	_, err := newTestDashScope(srv.URL).EmbedBatch(context.Background(), []string{"a", "b", "c"})
	var empty *models.EmptyResultError
	require.True(t, errors.As(err, &empty), "got %v", err)
	assert.Equal(t, 1, empty.Index)
}

func TestDashScopeEmbedder_IndexOutOfRange(t *testing.T) {
	srv := dashscopeServer(t, func(req dashscopeRequest) (int, any) {
		return http.StatusOK, embeddingsBody(embeddingItem{Embedding: []float32{1}, TextIndex: 5})
	})
	_, err := newTestDashScope(srv.URL).EmbedBatch(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, models.ErrFormat)
}

func TestDashScopeEmbedder_APIError(t *testing.T) {
	srv := dashscopeServer(t, func(req dashscopeRequest) (int, any) {
		return http.StatusBadRequest, `{"code":"InvalidParameter","message":"batch size is invalid"}`
	})
	_, err := newTestDashScope(srv.URL).EmbedBatch(context.Background(), []string{"a"})
	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Body, "InvalidParameter")
}

func TestDashScopeEmbedder_FormatError(t *testing.T) {
	srv := dashscopeServer(t, func(req dashscopeRequest) (int, any) {
		return http.StatusOK, `{"output": "nope"}`
	})
	_, err := newTestDashScope(srv.URL).EmbedBatch(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, models.ErrFormat)
}

func TestDashScopeEmbedder_EmptyInputSkipsCall(t *testing.T) {
	e := newTestDashScope("http://127.0.0.1:1")
	out, err := e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
