// Package llm defines the provider interface for large language model
// backends used by the interview engine.
//
// Every LLM interaction in the engine — question generation, answer
// evaluation, claim extraction, semantic interruption analysis, follow-up
// phrasing — goes through this interface. Implementations live in
// subpackages (anyllm, openai) and are selected by name through the
// config registry. The mock subpackage provides a scripted implementation
// for tests.
package llm

import "context"

// Provider is a chat-completion backend.
//
// Implementations must be safe for concurrent use: the engine issues
// evaluation and interruption-analysis calls for many sessions in parallel
// against one shared Provider. Calls must honour ctx cancellation and
// deadlines; the engine applies a per-call timeout at the gateway layer.
type Provider interface {
	// Chat sends a conversation to the model and returns the assistant's
	// reply. The returned content is free-form text; callers are expected
	// to parse it tolerantly and never assume structured output.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Name reports a short identifier for logs and metrics
	// (e.g. "openai", "ollama").
	Name() string
}
