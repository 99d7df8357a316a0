// Package tts defines the text-to-speech provider interface used for the
// spoken-interviewer mode: questions, interruption phrases, and follow-ups
// can be synthesized and played to the candidate.
//
// TTS is optional — when no provider is configured the engine returns text
// only and the frontend renders it silently.
package tts

import "context"

// Provider synthesizes speech from text.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Synthesize renders text as encoded audio. The returned bytes are a
	// complete audio file in the format reported by [Provider.Format].
	Synthesize(ctx context.Context, text string, opts SynthesizeOptions) ([]byte, error)

	// Format reports the MIME type of synthesized audio (e.g. "audio/mpeg").
	Format() string

	// Name reports a short identifier for logs and metrics.
	Name() string
}

// SynthesizeOptions carries per-call voice hints.
type SynthesizeOptions struct {
	// Voice is the provider-specific voice identifier. Empty selects the
	// provider's configured default.
	Voice string

	// Speed adjusts speaking rate in [0.5, 2.0]. Zero means default.
	Speed float64
}
