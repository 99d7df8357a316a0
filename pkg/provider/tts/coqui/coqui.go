// Package coqui provides a TTS provider backed by a self-hosted Coqui TTS
// server (the tts-server binary). It is the local, no-API-key counterpart
// to the elevenlabs provider.
package coqui

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/internai/interviewd/pkg/provider/tts"
)

var _ tts.Provider = (*Provider)(nil)

// Provider implements tts.Provider against a Coqui tts-server instance.
type Provider struct {
	serverURL  string
	speakerID  string
	httpClient *http.Client
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithSpeaker sets the default speaker ID for multi-speaker models.
func WithSpeaker(id string) Option {
	return func(p *Provider) { p.speakerID = id }
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.httpClient.Timeout = d }
}

// New creates a Coqui Provider that connects to the tts-server at
// serverURL (e.g. "http://localhost:5002").
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("coqui: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOptions) ([]byte, error) {
	q := url.Values{}
	q.Set("text", text)
	speaker := opts.Voice
	if speaker == "" {
		speaker = p.speakerID
	}
	if speaker != "" {
		q.Set("speaker_id", speaker)
	}

	endpoint := p.serverURL + "/api/tts?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("coqui: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coqui: http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coqui: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coqui: server returned HTTP %d", resp.StatusCode)
	}
	return data, nil
}

// Format implements tts.Provider.
func (p *Provider) Format() string {
	return "audio/wav"
}

// Name implements tts.Provider.
func (p *Provider) Name() string {
	return "coqui"
}
