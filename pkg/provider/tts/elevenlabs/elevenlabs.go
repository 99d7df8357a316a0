// Package elevenlabs provides a TTS provider backed by the ElevenLabs API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/internai/interviewd/pkg/provider/tts"
)

const defaultBaseURL = "https://api.elevenlabs.io/v1"

var _ tts.Provider = (*Provider)(nil)

// Provider implements tts.Provider using the ElevenLabs text-to-speech API.
type Provider struct {
	apiKey       string
	baseURL      string
	defaultVoice string
	modelID      string
	httpClient   *http.Client
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithVoice sets the default voice ID used when a call does not specify one.
func WithVoice(voiceID string) Option {
	return func(p *Provider) { p.defaultVoice = voiceID }
}

// WithModel selects the ElevenLabs model. Defaults to "eleven_turbo_v2_5".
func WithModel(modelID string) Option {
	return func(p *Provider) { p.modelID = modelID }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.httpClient.Timeout = d }
}

// New creates an ElevenLabs Provider. apiKey must not be empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("elevenlabs: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		defaultVoice: "21m00Tcm4TlvDq8ikWAM", // "Rachel", the API's stock voice
		modelID:      "eleven_turbo_v2_5",
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Synthesize implements tts.Provider.
func (p *Provider) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOptions) ([]byte, error) {
	voice := opts.Voice
	if voice == "" {
		voice = p.defaultVoice
	}

	payload := map[string]any{
		"text":     text,
		"model_id": p.modelID,
	}
	if opts.Speed != 0 {
		payload["voice_settings"] = map[string]any{"speed": opts.Speed}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}

	endpoint := p.baseURL + "/text-to-speech/" + voice
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: create request: %w", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs: server returned HTTP %d: %s", resp.StatusCode, truncate(data, 200))
	}
	return data, nil
}

// Format implements tts.Provider.
func (p *Provider) Format() string {
	return "audio/mpeg"
}

// Name implements tts.Provider.
func (p *Provider) Name() string {
	return "elevenlabs"
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
