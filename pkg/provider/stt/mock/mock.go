// Package mock provides a scripted stt.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/internai/interviewd/pkg/provider/stt"
)

// Provider is a scripted stt.Provider. Results are consumed in FIFO order;
// once the queue is empty, an empty Result is returned. Safe for
// concurrent use.
type Provider struct {
	mu      sync.Mutex
	results []*stt.Result
	calls   int

	// Err, when non-nil, is returned by every Transcribe call.
	Err error
}

var _ stt.Provider = (*Provider)(nil)

// New returns a mock Provider that replies with the given results in order.
func New(results ...*stt.Result) *Provider {
	return &Provider{results: results}
}

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(ctx context.Context, pcm []byte, opts stt.TranscribeOptions) (*stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++

	if p.Err != nil {
		return nil, p.Err
	}
	if len(p.results) == 0 {
		return &stt.Result{Language: opts.Language}, nil
	}
	r := p.results[0]
	p.results = p.results[1:]
	return r, nil
}

// Name implements stt.Provider.
func (p *Provider) Name() string {
	return "mock"
}

// CallCount reports how many Transcribe calls have been made.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
