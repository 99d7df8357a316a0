// Package mock provides a deterministic embeddings.Provider for tests.
package mock

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/internai/interviewd/pkg/provider/embeddings"
)

// Provider is an embeddings.Provider that derives small deterministic
// vectors from the input text, so similarity tests are repeatable without
// a live model. Safe for concurrent use.
type Provider struct {
	mu    sync.Mutex
	texts []string

	// Dims is the vector length produced. Defaults to 8.
	Dims int

	// Vectors, when non-nil, maps exact input text to a fixed vector,
	// overriding the hash-derived default.
	Vectors map[string][]float32

	// Err, when non-nil, is returned by every call.
	Err error
}

var _ embeddings.Provider = (*Provider)(nil)

// New returns a mock Provider with 8-dimensional vectors.
func New() *Provider {
	return &Provider{Dims: 8}
}

// Embed implements embeddings.Provider.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	p.texts = append(p.texts, text)
	return p.vectorFor(text), nil
}

// EmbedBatch implements embeddings.Provider.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		p.texts = append(p.texts, t)
		out[i] = p.vectorFor(t)
	}
	return out, nil
}

// Dimensions implements embeddings.Provider.
func (p *Provider) Dimensions() int {
	if p.Dims > 0 {
		return p.Dims
	}
	return 8
}

// ModelID implements embeddings.Provider.
func (p *Provider) ModelID() string {
	return "mock"
}

// Texts returns a copy of every text embedded so far.
func (p *Provider) Texts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.texts))
	copy(out, p.texts)
	return out
}

func (p *Provider) vectorFor(text string) []float32 {
	if v, ok := p.Vectors[text]; ok {
		return v
	}
	dims := p.Dimensions()
	vec := make([]float32, dims)
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000)/1000 - 0.5
	}
	return vec
}
