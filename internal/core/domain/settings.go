package domain

// AIProvider identifies a supported embedding/LLM backend.
type AIProvider string

// Supported providers.
const (
	AIProviderOllama    AIProvider = "ollama"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderAnthropic AIProvider = "anthropic"
)

// Description returns a human-readable provider label.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local, no API key required)"
	case AIProviderOpenAI:
		return "OpenAI (hosted, API key required)"
	case AIProviderAnthropic:
		return "Anthropic (hosted, API key required)"
	default:
		return string(p)
	}
}

// RequiresAPIKey reports whether the provider needs a credential.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama
}

// AllEmbeddingProviders lists providers that can embed text.
// Anthropic offers no embedding API.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI}
}

// AllLLMProviders lists providers that can judge submissions.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic}
}

// DefaultEmbeddingModels maps providers to a sensible default model.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels maps providers to a sensible default model.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.1",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-sonnet-4-5",
	}
}

// EmbeddingSettings configures the embedding backend.
type EmbeddingSettings struct {
	// Provider selects the backend.
	Provider AIProvider `json:"provider"`

	// Model is the embedding model name.
	Model string `json:"model"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `json:"base_url,omitempty"`

	// APIKey authenticates hosted providers.
	APIKey string `json:"api_key,omitempty"`
}

// IsConfigured reports whether the settings name a usable backend.
func (s *EmbeddingSettings) IsConfigured() bool {
	if s == nil || s.Provider == "" {
		return false
	}
	// Hosted providers need a key; local Ollama does not.
	if s.Provider != AIProviderOllama && s.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the judgment backend.
type LLMSettings struct {
	// Provider selects the backend.
	Provider AIProvider `json:"provider"`

	// Model is the model name.
	Model string `json:"model"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `json:"base_url,omitempty"`

	// APIKey authenticates hosted providers.
	APIKey string `json:"api_key,omitempty"`
}

// IsConfigured reports whether the settings name a usable backend.
func (s *LLMSettings) IsConfigured() bool {
	if s == nil || s.Provider == "" {
		return false
	}
	if s.Provider != AIProviderOllama && s.APIKey == "" {
		return false
	}
	return true
}

// embeddingDimensions maps known embedding models to their vector size.
var embeddingDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"nomic-embed-text":       768,
	"all-minilm":             384,
	"mxbai-embed-large":      1024,
}

// EmbeddingDimensions returns the known model dimension table.
func EmbeddingDimensions() map[string]int {
	return embeddingDimensions
}
