// Package mock provides a scripted completion provider for testing and
// offline development.
package mock

import (
	"context"

	"github.com/GoCodeAlone/pmdash/provider"
)

const defaultResponse = "{}"

// Provider implements provider.Provider with scripted responses.
// Responses are returned in order, cycling when exhausted. A scripted
// error takes precedence over any remaining responses.
type Provider struct {
	responses []string
	idx       int
	calls     int
	err       error
	failCall  int // 1-based call number that fails with failErr, 0 never
	failErr   error
}

// New creates a Provider that cycles through the given responses.
func New(responses ...string) *Provider {
	return &Provider{responses: responses}
}

// NewFailing creates a Provider whose every call fails with err.
func NewFailing(err error) *Provider {
	return &Provider{err: err}
}

// NewFailingAt creates a Provider that answers with the scripted responses
// except for call number call (1-based), which fails with err.
func NewFailingAt(call int, err error, responses ...string) *Provider {
	return &Provider{responses: responses, failCall: call, failErr: err}
}

// Name returns the provider identifier.
func (m *Provider) Name() string { return "mock" }

// Chat returns the next scripted response, or the scripted error.
func (m *Provider) Chat(_ context.Context, req provider.ChatRequest) (*provider.Response, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.failCall != 0 && m.calls == m.failCall {
		return nil, m.failErr
	}
	if len(m.responses) == 0 {
		return &provider.Response{Content: defaultResponse}, nil
	}
	resp := m.responses[m.idx%len(m.responses)]
	m.idx++
	return &provider.Response{
		Content: resp,
		Usage:   provider.Usage{InputTokens: len(req.Prompt), OutputTokens: len(resp)},
	}, nil
}
