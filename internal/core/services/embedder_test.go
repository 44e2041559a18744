package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

// fakeEmbedding is a scripted EmbeddingService: it fails the first
// failUntil calls and succeeds afterwards, recording every input.
// Safe for concurrent use so runner tests can share one instance.
type fakeEmbedding struct {
	mu        sync.Mutex
	calls     int
	failUntil int
	inputs    []string
	vector    []float32
}

func (f *fakeEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.inputs = append(f.inputs, text)
	if f.calls <= f.failUntil {
		return nil, errors.New("backend overloaded")
	}
	if f.vector != nil {
		return f.vector, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeEmbedding) Dimensions() int              { return 3 }
func (f *fakeEmbedding) ModelName() string            { return "fake-embed" }
func (f *fakeEmbedding) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedding) Close() error                 { return nil }

func testPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2, MaxDelay: 5 * time.Millisecond}
}

func TestRetryPolicyDelay(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, 2*time.Second, p.Delay(0))
	assert.Equal(t, 4*time.Second, p.Delay(1))
	assert.Equal(t, 8*time.Second, p.Delay(2))
	assert.Equal(t, 10*time.Second, p.Delay(3), "backoff is capped at MaxDelay")
}

func TestEmbedOneRetriesTransientFailures(t *testing.T) {
	svc := &fakeEmbedding{failUntil: 2}
	b := NewBatchEmbedder(svc, WithRetryPolicy(testPolicy()))

	vector, err := b.EmbedOne(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
	assert.Equal(t, 3, svc.calls)
}

func TestEmbedOneExhaustsRetries(t *testing.T) {
	svc := &fakeEmbedding{failUntil: 10}
	b := NewBatchEmbedder(svc, WithRetryPolicy(testPolicy()))

	_, err := b.EmbedOne(context.Background(), "some text")
	require.Error(t, err)
	assert.Equal(t, 3, svc.calls)
	assert.Contains(t, err.Error(), "3 attempts")
}

func TestEmbedOneTruncatesInput(t *testing.T) {
	svc := &fakeEmbedding{}
	b := NewBatchEmbedder(svc, WithMaxChars(10))

	_, err := b.EmbedOne(context.Background(), "0123456789abcdef")
	require.NoError(t, err)
	require.Len(t, svc.inputs, 1)
	assert.Equal(t, "0123456789", svc.inputs[0])
}

func TestEmbedOneRespectsCancellation(t *testing.T) {
	svc := &fakeEmbedding{failUntil: 10}
	b := NewBatchEmbedder(svc, WithRetryPolicy(RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Hour,
		Multiplier:  2,
		MaxDelay:    time.Hour,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.EmbedOne(ctx, "some text")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, svc.calls, "cancellation must short-circuit the backoff wait")
}

func TestEmbedChunksIsolatesFailures(t *testing.T) {
	// Every call fails, so every chunk must come back marked rather
	// than aborting the batch.
	svc := &fakeEmbedding{failUntil: 1000}
	b := NewBatchEmbedder(svc, WithRetryPolicy(testPolicy()))

	chunks := []domain.Chunk{
		{TechID: "2367", Index: 0, Content: "first"},
		{TechID: "2367", Index: 1, Content: "second"},
	}
	embedded := b.EmbedChunks(context.Background(), chunks)

	require.Len(t, embedded, 2)
	for i, ec := range embedded {
		assert.Equal(t, i, ec.Index)
		assert.False(t, ec.Embedded())
		assert.NotEmpty(t, ec.EmbedError)
	}
}

func TestEmbedChunksMixedResults(t *testing.T) {
	// The first chunk burns all three attempts; later chunks succeed.
	svc := &fakeEmbedding{failUntil: 3}
	b := NewBatchEmbedder(svc, WithRetryPolicy(testPolicy()))

	chunks := []domain.Chunk{
		{TechID: "2367", Index: 0, Content: "doomed"},
		{TechID: "2367", Index: 1, Content: "fine"},
	}
	embedded := b.EmbedChunks(context.Background(), chunks)

	require.Len(t, embedded, 2)
	assert.False(t, embedded[0].Embedded())
	assert.True(t, embedded[1].Embedded())
	assert.Empty(t, embedded[1].EmbedError)
}
