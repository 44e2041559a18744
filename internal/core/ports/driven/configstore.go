package driven

// ConfigStore provides persistent key-value configuration.
// Keys use dotted lowercase names, e.g. "chunker.size".
type ConfigStore interface {
	// Get retrieves a raw configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, empty when unset.
	GetString(key string) string

	// GetInt retrieves an integer value, zero when unset.
	GetInt(key string) int

	// GetFloat retrieves a float value, zero when unset.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value, false when unset.
	GetBool(key string) bool

	// Set stores a configuration value.
	Set(key string, value any) error

	// Save persists the configuration.
	Save() error
}

// Configuration keys for the evaluation pipeline tunables.
const (
	// KeyChunkSize is the sliding window size in characters.
	KeyChunkSize = "chunker.size"

	// KeyChunkOverlap is the window overlap in characters.
	KeyChunkOverlap = "chunker.overlap"

	// KeyTOCTailPages is how many pages past its start the final
	// table-of-contents entry extends.
	KeyTOCTailPages = "chunker.toc_tail_pages"

	// KeyResplitMultiplier is the section re-split threshold as a
	// multiple of the chunk size.
	KeyResplitMultiplier = "chunker.resplit_multiplier"

	// KeyRetrievalK is the per-query retrieval depth.
	KeyRetrievalK = "retrieval.k"

	// KeyPassThreshold is the per-criterion pass mark (of 5).
	KeyPassThreshold = "scoring.pass_threshold"

	// KeyOverallCutoff is the overall pass mark (of 100).
	KeyOverallCutoff = "scoring.overall_cutoff"
)
