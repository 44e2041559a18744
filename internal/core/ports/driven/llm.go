package driven

import "context"

// LLMService provides the natural-language judgment used to score
// criteria. The core treats it as an opaque prompt-in/text-out
// collaborator; parsing its output is the caller's concern.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - Ollama (local models)
//   - Any OpenAI-compatible inference server
type LLMService interface {
	// Generate produces text completion from a prompt with an
	// optional system prompt.
	Generate(ctx context.Context, systemPrompt, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Judgment calls keep this low for reproducibility.
	Temperature float64
}
