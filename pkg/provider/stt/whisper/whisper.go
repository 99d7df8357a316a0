// Package whisper provides a local STT provider backed by the whisper.cpp
// CGO bindings. The whisper.cpp static library (libwhisper.a) and headers
// (whisper.h) must be available at link time via LIBRARY_PATH and
// C_INCLUDE_PATH.
//
// The model is loaded once at startup and shared across all transcription
// calls; each call creates its own whisper context, so concurrent
// transcriptions do not interfere.
//
// Usage:
//
//	p, err := whisper.New("models/ggml-base.en.bin", whisper.WithLanguage("en"))
//	defer p.Close()
//	res, err := p.Transcribe(ctx, pcm, stt.TranscribeOptions{})
package whisper

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/internai/interviewd/pkg/provider/stt"
)

// sampleRate is the only sample rate whisper.cpp accepts.
const sampleRate = 16000

var _ stt.Provider = (*Provider)(nil)

// Provider implements stt.Provider using the whisper.cpp Go bindings.
type Provider struct {
	model    whisperlib.Model
	language string

	// whisper contexts are not thread-safe and creating one per call is
	// cheap relative to inference, but model access during context
	// creation is serialised to stay on the safe side of the bindings.
	mu sync.Mutex
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the default BCP-47 language code for transcription
// (e.g. "en", "de"). Defaults to "en".
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// New creates a Provider that loads the whisper.cpp model from modelPath.
// The caller must call Close when the provider is no longer needed.
func New(modelPath string, opts ...Option) (*Provider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &Provider{model: model, language: "en"}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases the whisper model.
func (p *Provider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Transcribe implements stt.Provider.
func (p *Provider) Transcribe(ctx context.Context, pcm []byte, opts stt.TranscribeOptions) (*stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(pcm) < 2 {
		return &stt.Result{Language: p.lang(opts)}, nil
	}

	samples := pcmToFloat32(pcm)

	p.mu.Lock()
	wctx, err := p.model.NewContext()
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("whisper: create context: %w", err)
	}

	lang := p.lang(opts)
	if err := wctx.SetLanguage(lang); err != nil {
		// Unsupported language hint: keep the model default.
		lang = p.language
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper: process audio: %w", err)
	}

	res := &stt.Result{
		Language: lang,
		Duration: float64(len(samples)) / sampleRate,
	}
	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whisper: read segment: %w", err)
		}
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		res.Segments = append(res.Segments, stt.Segment{
			Start: segment.Start.Seconds(),
			End:   segment.End.Seconds(),
			Text:  text,
		})
	}
	res.Text = strings.Join(parts, " ")
	return res, nil
}

// Name implements stt.Provider.
func (p *Provider) Name() string {
	return "whisper"
}

func (p *Provider) lang(opts stt.TranscribeOptions) string {
	if opts.Language != "" {
		return opts.Language
	}
	return p.language
}

// pcmToFloat32 converts 16-bit signed little-endian mono PCM to the
// normalised float32 samples whisper.cpp expects.
func pcmToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		samples[i] = float32(s) / 32768.0
	}
	return samples
}
