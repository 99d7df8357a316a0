// Package mock provides a scripted llm.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/internai/interviewd/pkg/provider/llm"
)

// Provider is a scripted llm.Provider. Responses are consumed in FIFO
// order; once the queue is empty, Default is returned. Set RespondFunc to
// compute replies from the request instead. Safe for concurrent use.
type Provider struct {
	mu        sync.Mutex
	responses []string
	requests  []llm.ChatRequest

	// Default is returned when the response queue is empty and
	// RespondFunc is nil. Empty string is a valid reply.
	Default string

	// Err, when non-nil, is returned by every Chat call.
	Err error

	// RespondFunc, when set, overrides the queue entirely.
	RespondFunc func(req llm.ChatRequest) (string, error)
}

var _ llm.Provider = (*Provider)(nil)

// New returns a mock Provider that replies with the given responses in order.
func New(responses ...string) *Provider {
	return &Provider{responses: responses}
}

// Chat implements llm.Provider.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)

	if p.RespondFunc != nil {
		content, err := p.RespondFunc(req)
		if err != nil {
			return nil, err
		}
		return &llm.ChatResponse{Content: content}, nil
	}
	if p.Err != nil {
		return nil, p.Err
	}

	content := p.Default
	if len(p.responses) > 0 {
		content = p.responses[0]
		p.responses = p.responses[1:]
	}
	return &llm.ChatResponse{Content: content}, nil
}

// Name implements llm.Provider.
func (p *Provider) Name() string {
	return "mock"
}

// Enqueue appends responses to the reply queue.
func (p *Provider) Enqueue(responses ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, responses...)
}

// Requests returns a copy of all requests received so far.
func (p *Provider) Requests() []llm.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.ChatRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// CallCount reports how many Chat calls have been made.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}
