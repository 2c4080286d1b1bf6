package atomfeed

import (
	"fmt"
	"io/fs"

	"github.com/couchcryptid/quake-feed-search/internal/domain"
	"github.com/couchcryptid/quake-feed-search/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedParser wraps a DocumentParser with an in-memory LRU cache keyed by
// file name, size and modification time, so an edited file is parsed again.
type CachedParser struct {
	inner   DocumentParser
	cache   *lru.Cache[string, []domain.RawEntry]
	metrics *observability.Metrics
}

// NewCachedParser creates a cache decorator around a parser. metrics may be nil.
func NewCachedParser(inner DocumentParser, maxEntries int, metrics *observability.Metrics) (*CachedParser, error) {
	cache, err := lru.New[string, []domain.RawEntry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}
	return &CachedParser{inner: inner, cache: cache, metrics: metrics}, nil
}

func (c *CachedParser) ParseDocument(fsys fs.FS, src Source) ([]domain.RawEntry, error) {
	key := cacheKey(src)
	if entries, ok := c.cache.Get(key); ok {
		c.observe("hit")
		return entries, nil
	}
	c.observe("miss")

	entries, err := c.inner.ParseDocument(fsys, src)
	if err != nil {
		// Failures are not cached so a fixed file is picked up on the next search.
		return nil, err
	}
	c.cache.Add(key, entries)
	return entries, nil
}

// Len returns the number of cached documents.
func (c *CachedParser) Len() int {
	return c.cache.Len()
}

func (c *CachedParser) observe(result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.ParseCache.WithLabelValues(result).Inc()
}

func cacheKey(src Source) string {
	return fmt.Sprintf("%s|%d|%d", src.Name, src.Size, src.ModTime.UnixNano())
}
