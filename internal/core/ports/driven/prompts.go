package driven

// Prompt names for the PromptStore.
const (
	// PromptNoveltySystem is the system prompt for the novelty judge.
	PromptNoveltySystem = "novelty_system"

	// PromptProgressSystem is the system prompt for the
	// progressiveness judge.
	PromptProgressSystem = "progress_system"

	// PromptFieldSystem is the system prompt for the field
	// applicability judge.
	PromptFieldSystem = "field_system"
)

// PromptStore loads judge prompts, allowing users to tune the wording
// without rebuilding. Implementations fall back to embedded defaults
// when no override exists.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}
