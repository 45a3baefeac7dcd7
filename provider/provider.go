// Package provider defines the completion-API client interface used by the
// analysis pipeline, plus concrete OpenAI and Anthropic implementations.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ChatRequest is a single best-effort completion call: one optional system
// message and one user prompt, with per-call model settings.
type ChatRequest struct {
	Model       string  `json:"model"`
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Usage tracks token consumption.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is a completed provider response.
type Response struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Provider is a completion-API backend.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "anthropic", "mock").
	Name() string

	// Chat sends one completion request and returns the raw response text.
	// Failures are reported as *Error; no retries are performed.
	Chat(ctx context.Context, req ChatRequest) (*Response, error)
}

// Kind classifies a completion failure.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindAuthFailure Kind = "auth_failure"
	KindRateLimited Kind = "rate_limited"
	KindServerError Kind = "server_error"
	KindNetwork     Kind = "network_error"
)

// Error is a completion-API failure. It always aborts the pipeline; only
// response-parsing problems degrade.
type Error struct {
	Provider string
	Kind     Kind
	Status   int // HTTP status, 0 for transport failures
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// statusError maps an HTTP error status to a typed Error.
func statusError(name string, status int, body string) *Error {
	kind := KindNetwork
	switch {
	case status == 401 || status == 403:
		kind = KindAuthFailure
	case status == 429:
		kind = KindRateLimited
	case status >= 500:
		kind = KindServerError
	}
	return &Error{Provider: name, Kind: kind, Status: status, Message: body}
}

// transportError maps a transport-level failure to a typed Error.
func transportError(name string, err error) *Error {
	kind := KindNetwork
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &ne) && ne.Timeout():
		kind = KindTimeout
	}
	return &Error{Provider: name, Kind: kind, Message: err.Error(), Err: err}
}
