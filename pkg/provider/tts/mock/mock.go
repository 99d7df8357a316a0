// Package mock provides a scripted tts.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/internai/interviewd/pkg/provider/tts"
)

// Provider is a tts.Provider that returns its Audio bytes for every call
// and records the texts it was asked to speak. Safe for concurrent use.
type Provider struct {
	mu    sync.Mutex
	texts []string

	// Audio is returned by every Synthesize call. Defaults to a
	// non-empty placeholder so callers can assert "some audio".
	Audio []byte

	// Err, when non-nil, is returned by every Synthesize call.
	Err error
}

var _ tts.Provider = (*Provider)(nil)

// New returns a mock Provider.
func New() *Provider {
	return &Provider{Audio: []byte("mock-audio")}
}

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts = append(p.texts, text)
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Audio, nil
}

// Format implements tts.Provider.
func (p *Provider) Format() string {
	return "audio/mpeg"
}

// Name implements tts.Provider.
func (p *Provider) Name() string {
	return "mock"
}

// Texts returns a copy of all texts synthesized so far.
func (p *Provider) Texts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.texts))
	copy(out, p.texts)
	return out
}
