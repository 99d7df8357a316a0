package resilience

import (
	"context"

	"github.com/internai/interviewd/pkg/provider/tts"
)

// TTSFallback implements [tts.Provider] with automatic failover across
// multiple speech-synthesis backends.
//
// Callers should check Format() on the entry that actually served a
// request only if they mix providers with different output formats;
// deployments are expected to configure fallbacks with matching formats.
type TTSFallback struct {
	group *FallbackGroup[tts.Provider]
}

var _ tts.Provider = (*TTSFallback)(nil)

// NewTTSFallback creates a [TTSFallback] with primary as the preferred
// backend.
func NewTTSFallback(primary tts.Provider, primaryName string, cfg FallbackConfig) *TTSFallback {
	return &TTSFallback{
		group: NewFallbackGroup(primary, primaryName, cfg),
	}
}

// AddFallback registers an additional TTS provider as a fallback.
func (f *TTSFallback) AddFallback(name string, provider tts.Provider) {
	f.group.AddFallback(name, provider)
}

// Synthesize sends the text to the first healthy provider.
func (f *TTSFallback) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOptions) ([]byte, error) {
	return ExecuteWithResult(f.group, func(p tts.Provider) ([]byte, error) {
		return p.Synthesize(ctx, text, opts)
	})
}

// Format returns the primary provider's output format.
func (f *TTSFallback) Format() string {
	if len(f.group.entries) > 0 {
		return f.group.entries[0].value.Format()
	}
	return "audio/mpeg"
}

// Name returns the primary provider's name.
func (f *TTSFallback) Name() string {
	if len(f.group.entries) > 0 {
		return f.group.entries[0].value.Name()
	}
	return "tts-fallback"
}
