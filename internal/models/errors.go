package models

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks. Each typed error below matches its sentinel.
var (
	ErrNotConfigured = errors.New("backend not configured")
	ErrTransport     = errors.New("transport error")
	ErrAPI           = errors.New("api error")
	ErrFormat        = errors.New("unexpected response format")
	ErrEmptyResult   = errors.New("empty embedding result")
	ErrEmptyAnswer   = errors.New("empty answer")
	ErrStorage       = errors.New("storage error")
	ErrConfig        = errors.New("invalid configuration")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
)

// NotConfiguredError is returned before any remote call when no embedding or
// generation backend has been set up.
type NotConfiguredError struct {
	What string
}

func (e *NotConfiguredError) Error() string {
	if e.What == "" {
		return "backend not configured: set an API key first"
	}
	return fmt.Sprintf("%s not configured: set an API key first", e.What)
}

func (e *NotConfiguredError) Is(target error) bool { return target == ErrNotConfigured }

// TransportError is a network-level failure, including timeouts.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error       { return e.Err }
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// APIError is a non-2xx response from the remote service.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Body)
}

func (e *APIError) Is(target error) bool { return target == ErrAPI }

// FormatError means the response body could not be decoded into the expected shape.
type FormatError struct {
	Op  string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: unexpected response format: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error       { return e.Err }
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// EmptyResultError means a technically successful embedding response lacked
// the vector for input Index, or the vector was zero-length.
type EmptyResultError struct {
	Index int
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("embedding missing or empty for input %d", e.Index)
}

func (e *EmptyResultError) Is(target error) bool { return target == ErrEmptyResult }

// EmptyAnswerError means the generation response had no usable text in any
// accepted shape.
type EmptyAnswerError struct{}

func (e *EmptyAnswerError) Error() string { return "generation returned no answer text" }

func (e *EmptyAnswerError) Is(target error) bool { return target == ErrEmptyAnswer }

// StorageError wraps a durable-store I/O or transaction failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error       { return e.Err }
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }
