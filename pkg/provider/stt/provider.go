// Package stt defines the speech-to-text provider interface used to
// transcribe candidate answers.
//
// The engine records whole answers and transcribes them in one batch call;
// there is no streaming path. Providers must return segment timings where
// the backend supports them — pause analysis and hesitation scoring are
// derived from the gaps between segments.
package stt

import "context"

// Provider transcribes recorded audio to text.
//
// Implementations must be safe for concurrent use; answers from many
// sessions are transcribed in parallel against one shared Provider.
type Provider interface {
	// Transcribe converts one complete recording to text. pcm is 16-bit
	// signed little-endian mono PCM at 16 kHz (use pkg/audio to convert
	// uploads). Segment timings are best-effort: backends without word
	// alignment may return a single segment spanning the whole recording.
	Transcribe(ctx context.Context, pcm []byte, opts TranscribeOptions) (*Result, error)

	// Name reports a short identifier for logs and metrics
	// (e.g. "whisper", "deepgram").
	Name() string
}
