package lsp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/downlint/pkg/lint"
)

func TestLint_CachesResult(t *testing.T) {
	t.Parallel()

	reg := lint.NewRegistry()
	s, err := New(context.Background(), Options{Registry: reg, CacheSize: 4})
	require.NoError(t, err)

	_, err = s.Lint("file:///w/a.md", []byte("# A\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, s.cache.len())

	_, err = s.Lint("file:///w/a.md", []byte("# A\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, s.cache.len())
}

func TestRemember_SkipsStaleGeneration(t *testing.T) {
	t.Parallel()

	reg := lint.NewRegistry()
	s, err := New(context.Background(), Options{Registry: reg, CacheSize: 4})
	require.NoError(t, err)

	_, _, before := s.current()
	key := cacheKey("/w/a.md", []byte("# A\n"))

	// A lint started before the configuration changed finishes after it.
	s.setConfig(reg.DefaultConfig())
	assert.False(t, s.remember(before, key, cachedResult{}))
	assert.Equal(t, 0, s.cache.len())

	_, _, after := s.current()
	assert.NotEqual(t, before, after)
	assert.True(t, s.remember(after, key, cachedResult{}))
	assert.Equal(t, 1, s.cache.len())
}
