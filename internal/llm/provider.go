package llm

import "context"

// Provider is the core abstraction for language model interaction.
// Implementations send a single non-streaming request and return the
// model's text untouched; callers treat that text as untrusted.
type Provider interface {
	// Generate sends a prompt to the model and returns its text response.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt. Most prompts in uplearn carry their
	// whole instruction set in the user message, so this is often empty.
	System string

	// Messages is the conversation. Quiz and chat generation send one
	// user message built by the prompt package.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	// Zero lets the provider use its own default.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the model's output.
type Response struct {
	// Text is the raw generated text.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// defaultMaxTokens is used by providers whose API requires an explicit limit.
const defaultMaxTokens = 2048
