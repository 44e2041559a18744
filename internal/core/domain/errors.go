package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidChunkConfig indicates overlap >= chunk size, which
	// would produce a non-positive stride. Fatal at setup.
	ErrInvalidChunkConfig = errors.New("chunk overlap must be smaller than chunk size")

	// ErrNoEvidence indicates retrieval returned no chunks for any
	// query. Criterion evaluation short-circuits to a zero-score
	// result instead of invoking judgment on an empty context.
	ErrNoEvidence = errors.New("no evidence found")

	// ErrUnparseableJudgment indicates the judgment service's
	// structured output could not be parsed.
	ErrUnparseableJudgment = errors.New("judgment response unparseable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Indexing and retrieval are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not
	// configured.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrJudgmentUnavailable indicates the LLM judgment service is
	// not configured.
	ErrJudgmentUnavailable = errors.New("judgment service unavailable")

	// ErrDimensionMismatch indicates a vector whose dimension differs
	// from the store's configured embedding dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// Literature search errors.

	// ErrTokenExpired indicates the literature API token has expired
	// and refresh failed.
	ErrTokenExpired = errors.New("literature token expired")

	// ErrRateLimited indicates the external API rate limit was
	// exceeded.
	ErrRateLimited = errors.New("rate limited")
)
