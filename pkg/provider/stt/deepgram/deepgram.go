// Package deepgram provides an STT provider backed by Deepgram's
// pre-recorded transcription REST API. It is the hosted fallback behind
// the local whisper provider.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/internai/interviewd/pkg/audio"
	"github.com/internai/interviewd/pkg/provider/stt"
)

const defaultBaseURL = "https://api.deepgram.com/v1"

var _ stt.Provider = (*Provider)(nil)

// Provider implements stt.Provider using Deepgram's /listen endpoint.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel selects the Deepgram model (e.g. "nova-2"). Defaults to "nova-2".
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithBaseURL overrides the API endpoint, for proxies or on-prem deployments.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.httpClient.Timeout = d }
}

// New creates a Deepgram Provider. apiKey must not be empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      "nova-2",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// listenResponse mirrors the subset of Deepgram's response we consume.
type listenResponse struct {
	Metadata struct {
		Duration float64 `json:"duration"`
	} `json:"metadata"`
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
			DetectedLanguage string `json:"detected_language"`
		} `json:"channels"`
		Utterances []struct {
			Start      float64 `json:"start"`
			End        float64 `json:"end"`
			Transcript string  `json:"transcript"`
		} `json:"utterances"`
	} `json:"results"`
}

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(ctx context.Context, pcm []byte, opts stt.TranscribeOptions) (*stt.Result, error) {
	wav := audio.EncodeWAV(pcm, audio.TargetSampleRate, 1)

	q := url.Values{}
	q.Set("model", p.model)
	q.Set("smart_format", "true")
	q.Set("utterances", "true")
	if opts.Language != "" {
		q.Set("language", opts.Language)
	}
	for _, kw := range opts.Vocabulary {
		q.Add("keywords", kw)
	}

	endpoint := p.baseURL + "/listen?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(wav))
	if err != nil {
		return nil, fmt.Errorf("deepgram: create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+p.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("deepgram: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deepgram: server returned HTTP %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var lr listenResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("deepgram: parse response: %w", err)
	}
	if len(lr.Results.Channels) == 0 || len(lr.Results.Channels[0].Alternatives) == 0 {
		return &stt.Result{Language: opts.Language, Duration: lr.Metadata.Duration}, nil
	}

	alt := lr.Results.Channels[0].Alternatives[0]
	res := &stt.Result{
		Text:       strings.TrimSpace(alt.Transcript),
		Language:   lr.Results.Channels[0].DetectedLanguage,
		Confidence: alt.Confidence,
		Duration:   lr.Metadata.Duration,
	}
	if res.Language == "" {
		res.Language = opts.Language
	}
	for _, u := range lr.Results.Utterances {
		res.Segments = append(res.Segments, stt.Segment{
			Start: u.Start,
			End:   u.End,
			Text:  strings.TrimSpace(u.Transcript),
		})
	}
	return res, nil
}

// Name implements stt.Provider.
func (p *Provider) Name() string {
	return "deepgram"
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
