// Package remote holds the HTTP plumbing shared by the embedding and generation
// clients, mapping failures onto the models error taxonomy.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperjump/wali/internal/models"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 32 << 20

// maxErrorBody bounds the body text kept in an APIError.
const maxErrorBody = 2048

// Client posts JSON to a bearer-authenticated REST API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewClient returns a client whose requests time out after timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// PostJSON sends in as a JSON body to BaseURL+path and decodes the response into out.
// Network failures and timeouts return *models.TransportError, non-2xx responses
// *models.APIError, and undecodable bodies *models.FormatError.
func (c *Client) PostJSON(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &models.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &models.TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &models.APIError{Status: resp.StatusCode, Body: truncateBody(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &models.FormatError{Op: op, Err: err}
	}
	return nil
}

func truncateBody(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}

// NewOpenAIClient builds a go-openai client for an OpenAI-compatible endpoint.
func NewOpenAIClient(baseURL, apiKey string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(cfg)
}

// MapOpenAIError converts a go-openai error into the models taxonomy.
func MapOpenAIError(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &models.APIError{Status: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 &&
		(reqErr.HTTPStatusCode < 200 || reqErr.HTTPStatusCode >= 300) {
		return &models.APIError{Status: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &models.FormatError{Op: op, Err: err}
	}
	return &models.TransportError{Op: op, Err: err}
}
