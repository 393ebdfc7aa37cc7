package lsp

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yaklabco/downlint/pkg/lint"
)

// DefaultCacheSize is the number of lint results kept in memory.
const DefaultCacheSize = 256

// resultCache maps a document's path and content hash to its lint result.
// Reopening a file or undoing an edit reuses the earlier result.
type resultCache struct {
	entries *lru.Cache[string, cachedResult]
}

type cachedResult struct {
	violations []lint.Violation
	err        error
}

func newResultCache(size int) (*resultCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, cachedResult](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{entries: entries}, nil
}

func cacheKey(path string, content []byte) string {
	sum := sha256.Sum256(content)
	return path + "\x00" + hex.EncodeToString(sum[:])
}

func (c *resultCache) get(key string) (cachedResult, bool) {
	return c.entries.Get(key)
}

func (c *resultCache) add(key string, result cachedResult) {
	c.entries.Add(key, result)
}

// purge drops every entry, for example after the configuration changed.
func (c *resultCache) purge() {
	c.entries.Purge()
}

func (c *resultCache) len() int {
	return c.entries.Len()
}
