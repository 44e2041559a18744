package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
	"github.com/cnt-labs/cnteval-cli/internal/logger"
)

// DefaultMaxChars is the input budget per embedding call. Roughly
// 8000 tokens, which keeps Titan-class models inside their window.
const DefaultMaxChars = 25000

// DefaultCallTimeout bounds every individual embedding call so a
// stalled backend cannot stall the pipeline.
const DefaultCallTimeout = 30 * time.Second

// RetryPolicy describes bounded retry with exponential backoff.
// It is a plain value so call sites can log it and tests can shrink it.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration

	// Multiplier scales the delay after each failed attempt.
	Multiplier float64

	// MaxDelay caps the backoff.
	MaxDelay time.Duration
}

// DefaultRetryPolicy mirrors the embedding backend guidance:
// 3 attempts, exponential base 2, delays between 2s and 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2,
		MaxDelay:    10 * time.Second,
	}
}

// Delay returns the backoff before retry number retry (0-based).
func (p RetryPolicy) Delay(retry int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < retry; i++ {
		d = time.Duration(float64(d) * p.Multiplier)
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// BatchEmbedder wraps an EmbeddingService with input truncation,
// bounded retry and per-item failure isolation for batches.
type BatchEmbedder struct {
	svc      driven.EmbeddingService
	policy   RetryPolicy
	maxChars int
	timeout  time.Duration
	limiter  *rate.Limiter
}

// EmbedderOption configures the batch embedder.
type EmbedderOption func(*BatchEmbedder)

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p RetryPolicy) EmbedderOption {
	return func(b *BatchEmbedder) {
		if p.MaxAttempts > 0 {
			b.policy = p
		}
	}
}

// WithMaxChars overrides the per-call input budget.
func WithMaxChars(n int) EmbedderOption {
	return func(b *BatchEmbedder) {
		if n > 0 {
			b.maxChars = n
		}
	}
}

// WithCallTimeout overrides the per-call deadline.
func WithCallTimeout(d time.Duration) EmbedderOption {
	return func(b *BatchEmbedder) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithRateLimit throttles embedding calls to n per second.
// Zero disables throttling.
func WithRateLimit(perSecond float64) EmbedderOption {
	return func(b *BatchEmbedder) {
		if perSecond > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewBatchEmbedder creates a batch embedder over the given service.
func NewBatchEmbedder(svc driven.EmbeddingService, opts ...EmbedderOption) *BatchEmbedder {
	b := &BatchEmbedder{
		svc:      svc,
		policy:   DefaultRetryPolicy(),
		maxChars: DefaultMaxChars,
		timeout:  DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dimensions reports the underlying model's vector size.
func (b *BatchEmbedder) Dimensions() int {
	return b.svc.Dimensions()
}

// EmbedOne embeds a single text. Input is truncated to the configured
// budget and transient failures are retried per the policy; exhausting
// retries returns the last error.
func (b *BatchEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if b.svc == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(text) > b.maxChars {
		logger.Debug("Truncating embedding input: %d -> %d chars", len(text), b.maxChars)
		text = text[:b.maxChars]
	}

	var lastErr error
	for attempt := 0; attempt < b.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := b.policy.Delay(attempt - 1)
			logger.Warn("Embedding attempt %d failed, retrying in %s: %v", attempt, delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		if b.limiter != nil {
			if err := b.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vector, err := b.embedWithDeadline(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("embed after %d attempts: %w", b.policy.MaxAttempts, lastErr)
}

// EmbedQuery embeds a search query. Same operation as EmbedOne; the
// name keeps call sites honest about which side of the index they are on.
func (b *BatchEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return b.EmbedOne(ctx, query)
}

// EmbedChunks embeds every chunk independently. A failure on one chunk
// does not abort the batch: the chunk is emitted with an empty vector
// and its error recorded. The result always has one entry per input.
func (b *BatchEmbedder) EmbedChunks(ctx context.Context, chunks []domain.Chunk) []domain.EmbeddedChunk {
	embedded := make([]domain.EmbeddedChunk, 0, len(chunks))

	for i, chunk := range chunks {
		vector, err := b.EmbedOne(ctx, chunk.Content)
		if err != nil {
			logger.Error("Embedding chunk %d of %s failed: %v", chunk.Index, chunk.TechID, err)
			embedded = append(embedded, domain.EmbeddedChunk{
				Chunk:      chunk,
				EmbedError: err.Error(),
			})
			continue
		}

		embedded = append(embedded, domain.EmbeddedChunk{Chunk: chunk, Vector: vector})
		if (i+1)%10 == 0 {
			logger.Debug("Embedded %d/%d chunks", i+1, len(chunks))
		}
	}

	return embedded
}

// embedWithDeadline runs one embedding call under the per-call timeout.
func (b *BatchEmbedder) embedWithDeadline(ctx context.Context, text string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.svc.Embed(callCtx, text)
}
