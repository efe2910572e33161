package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/hyperjump/wali/internal/models"
)

// Response is the envelope of every API response.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// StatusFor maps an error to the HTTP status the API reports for it.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotConfigured):
		return http.StatusPreconditionFailed
	case errors.Is(err, models.ErrConfig), errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, os.ErrNotExist):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrAPI),
		errors.Is(err, models.ErrTransport),
		errors.Is(err, models.ErrFormat),
		errors.Is(err, models.ErrEmptyResult),
		errors.Is(err, models.ErrEmptyAnswer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	s.write(w, status, Response{Success: true, Data: data})
}

func (s *Server) respondMessage(w http.ResponseWriter, status int, msg string, data any) {
	s.write(w, status, Response{Success: true, Message: msg, Data: data})
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.write(w, status, Response{Success: false, Message: msg})
}

// fail logs err and writes it with the status StatusFor assigns.
func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(what+" failed", zap.Error(err))
	} else {
		s.logger.Debug(what+" rejected", zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) write(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug("write response", zap.Error(err))
	}
}

// maxBodyBytes bounds inline document uploads.
const maxBodyBytes = 32 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}
