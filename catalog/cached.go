package catalog

import (
	pv "github.com/gofhir/procvalidity"
	"github.com/gofhir/procvalidity/cache"
)

// Cached memoizes the lookups of another classifier. Useful in front of
// catalogs with many large entries that are scanned linearly.
type Cached struct {
	inner pv.Classifier
	cache *cache.Cache[string, pv.ClassificationEntry]
}

// NewCached wraps inner with an LRU of the given size.
func NewCached(inner pv.Classifier, size int) *Cached {
	return &Cached{
		inner: inner,
		cache: cache.New[string, pv.ClassificationEntry](size),
	}
}

// Classify implements procvalidity.Classifier.
func (c *Cached) Classify(code string) pv.ClassificationEntry {
	return c.cache.GetOrSet(code, func() pv.ClassificationEntry {
		return c.inner.Classify(code)
	})
}

// Stats returns the cache counters.
func (c *Cached) Stats() cache.Stats {
	return c.cache.Stats()
}

var _ pv.Classifier = (*Cached)(nil)

// Inner returns the wrapped classifier.
func (c *Cached) Inner() pv.Classifier {
	return c.inner
}
