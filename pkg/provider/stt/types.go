package stt

// TranscribeOptions carries per-call hints for a transcription request.
type TranscribeOptions struct {
	// Language is a BCP-47 hint (e.g. "en"). Empty means auto-detect or
	// the provider default.
	Language string

	// Vocabulary lists domain terms (product names, technologies) the
	// backend should bias towards. Providers without keyword boosting
	// ignore it; the transcript corrector handles those terms after the
	// fact.
	Vocabulary []string
}

// Result is a completed transcription.
type Result struct {
	// Text is the full transcript, trimmed.
	Text string

	// Language is the detected or assumed language code.
	Language string

	// Confidence is the backend's overall confidence in [0,1], or 0 when
	// the backend does not report one.
	Confidence float64

	// Duration is the recording length in seconds.
	Duration float64

	// Segments are time-aligned transcript pieces, in order. Gaps between
	// consecutive segments are interpreted as pauses.
	Segments []Segment
}

// Segment is one time-aligned piece of a transcript.
type Segment struct {
	// Start and End are offsets from the beginning of the recording,
	// in seconds.
	Start float64
	End   float64

	// Text is the transcript of this segment, trimmed.
	Text string
}
