package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/wali/internal/backend"
	"github.com/hyperjump/wali/internal/models"
)

type apiKeyRequest struct {
	APIKey string `json:"api_key"`
}

type apiKeyStatus struct {
	Configured bool   `json:"configured"`
	Provider   string `json:"provider"`
	MaskedKey  string `json:"masked_key,omitempty"`
}

func (s *Server) handleSetAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		s.respondError(w, http.StatusBadRequest, "api_key must not be empty")
		return
	}
	if err := s.storage.PutSetting(r.Context(), backend.SettingAPIKey, key); err != nil {
		s.fail(w, "save api key", err)
		return
	}
	if err := s.backend.Configure(key); err != nil {
		s.fail(w, "configure backend", err)
		return
	}
	s.respondMessage(w, http.StatusOK, "API key saved", s.apiKeyStatus())
}

func (s *Server) handleGetAPIKey(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.apiKeyStatus())
}

func (s *Server) apiKeyStatus() apiKeyStatus {
	return apiKeyStatus{
		Configured: s.backend.IsConfigured(),
		Provider:   s.config.Backend.Provider,
		MaskedKey:  s.backend.MaskedKey(),
	}
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := decodeBody(w, r, &input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input.SourcePath = ""
	s.logger.Debug("upload document request", zap.String("name", input.Name), zap.Int("bytes", len(input.Content)))
	result, err := s.indexer.Ingest(r.Context(), &input)
	if err != nil {
		s.fail(w, "ingest document", err)
		return
	}
	s.respondMessage(w, http.StatusCreated, "document ingested", result)
}

type uploadPathRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleUploadPath(w http.ResponseWriter, r *http.Request) {
	var req uploadPathRequest
	if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.Path) == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	s.logger.Debug("upload path request", zap.String("path", req.Path))
	result, err := s.indexer.ReplaceFile(r.Context(), req.Path)
	if err != nil {
		s.fail(w, "ingest file", err)
		return
	}
	s.respondMessage(w, http.StatusCreated, "document ingested", result)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)
	docs, err := s.storage.ListDocuments(r.Context(), offset, limit)
	if err != nil {
		s.fail(w, "list documents", err)
		return
	}
	s.respondJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	if err := s.indexer.DeleteDocument(r.Context(), id); err != nil {
		s.fail(w, "delete document", err)
		return
	}
	s.respondMessage(w, http.StatusOK, "document deleted", nil)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.engine.Ask(r.Context(), &req)
	if err != nil {
		s.fail(w, "ask", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := s.storage.ListConversations(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		s.fail(w, "list conversations", err)
		return
	}
	s.respondJSON(w, http.StatusOK, convs)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conv, err := s.storage.GetConversation(r.Context(), id)
	if err != nil {
		s.fail(w, "get conversation", err)
		return
	}
	msgs, err := s.storage.ListMessages(r.Context(), id)
	if err != nil {
		s.fail(w, "list messages", err)
		return
	}
	s.respondJSON(w, http.StatusOK, &models.ConversationDetail{Conversation: conv, Messages: msgs})
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.DeleteConversation(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "delete conversation", err)
		return
	}
	s.respondMessage(w, http.StatusOK, "conversation deleted", nil)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := CollectStatus(r.Context(), s.storage, s.index, s.backend, s.config)
	if err != nil {
		s.fail(w, "status", err)
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
