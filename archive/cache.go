package archive

import (
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// unboundedCacheSize stands in for "never evict" when no bound is configured
const unboundedCacheSize = math.MaxInt32

// issue is one extracted issue: its storage directory and page paths in order
type issue struct {
	dir   string
	pages []string
}

// issueCache maps an issue key to its extracted pages
type issueCache struct {
	entries *lru.Cache[string, issue]
}

// newIssueCache creates a cache holding at most size issues.
// size <= 0 keeps every issue for the life of the process.
func newIssueCache(size int, onEvict func(key string, extracted issue)) (*issueCache, error) {
	if size <= 0 {
		size = unboundedCacheSize
	}
	entries, err := lru.NewWithEvict[string, issue](size, onEvict)
	if err != nil {
		return nil, err
	}
	return &issueCache{entries: entries}, nil
}

func (c *issueCache) get(key string) ([]string, bool) {
	extracted, ok := c.entries.Get(key)
	return extracted.pages, ok
}

func (c *issueCache) add(key string, extracted issue) {
	c.entries.Add(key, extracted)
}

func (c *issueCache) len() int {
	return c.entries.Len()
}

// cacheKey builds the composite key for an issue. Slugs never contain '/',
// so distinct pairs never share a key.
func cacheKey(titleKey, fileKey string) string {
	return titleKey + "/" + fileKey
}
