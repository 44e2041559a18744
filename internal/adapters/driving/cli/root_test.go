package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnt-labs/cnteval-cli/internal/adapters/driven/config/file"
	"github.com/cnt-labs/cnteval-cli/internal/chunker"
)

// withConfigStore points the package globals at a throwaway store for
// the duration of one test.
func withConfigStore(t *testing.T) *file.ConfigStore {
	t.Helper()
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	old := configStore
	configStore = store
	t.Cleanup(func() { configStore = old })
	return store
}

func TestChunkerOptionsEmptyConfig(t *testing.T) {
	withConfigStore(t)

	assert.Empty(t, chunkerOptions())
}

func TestChunkerOptionsReadAllTunables(t *testing.T) {
	store := withConfigStore(t)
	for key, value := range map[string]int64{
		"chunking.size":               1200,
		"chunking.overlap":            150,
		"chunking.toc_tail_pages":     7,
		"chunking.resplit_multiplier": 3,
	} {
		require.NoError(t, store.Set(key, value))
	}

	opts := chunkerOptions()
	assert.Len(t, opts, 4)

	ck, err := chunker.New(opts...)
	require.NoError(t, err)
	assert.NotNil(t, ck)
}
