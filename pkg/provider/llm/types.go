package llm

// Message roles. The engine only ever sends system, user, and assistant
// messages; tool calling is not used.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a chat conversation.
type Message struct {
	// Role is one of [RoleSystem], [RoleUser], or [RoleAssistant].
	Role string

	// Content is the text content of the message.
	Content string
}

// ChatRequest describes one chat-completion call.
type ChatRequest struct {
	// System is an optional system prompt prepended to Messages.
	System string

	// Messages is the conversation history, oldest first.
	Messages []Message

	// Temperature controls sampling randomness. Zero means the
	// provider's default; evaluation prompts use 0.3, generation 0.7.
	Temperature float64

	// MaxTokens caps the length of the reply. Zero means provider default.
	MaxTokens int
}

// ChatResponse is the model's reply to a [ChatRequest].
type ChatResponse struct {
	// Content is the assistant's reply text, already trimmed.
	Content string

	// Usage reports token accounting when the backend supplies it.
	Usage Usage
}

// Usage holds token counts for a single completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
