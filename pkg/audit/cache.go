package audit

import (
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// ParseCache memoizes the parsed contents of whole log files. It is a derived
// cache, never a required index: the files on disk remain the source of truth.
//
// Keys include the file's modification time and size, so any append or rewrite
// produces a miss for the stale entry. The TTL and the folder watcher bound
// staleness further; a scheduled purge is the final backstop.
type ParseCache struct {
	cache   *lru.LRU[string, []Event]
	metrics *Metrics
}

// NewParseCache creates a parse cache holding up to maxEntries files, each
// entry expiring after ttl
func NewParseCache(maxEntries int, ttl time.Duration, metrics *Metrics) *ParseCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &ParseCache{
		cache:   lru.NewLRU[string, []Event](maxEntries, nil, ttl),
		metrics: metrics,
	}
}

func cacheKey(file LogFile) string {
	return fmt.Sprintf("%s|%d|%d", file.Path, file.ModTime.UnixNano(), file.Size)
}

// Get returns the cached parse of file, if present and current
func (c *ParseCache) Get(file LogFile) ([]Event, bool) {
	events, ok := c.cache.Get(cacheKey(file))
	if c.metrics != nil {
		if ok {
			c.metrics.ParseCacheHits.Inc()
		} else {
			c.metrics.ParseCacheMisses.Inc()
		}
	}
	return events, ok
}

// Put stores the parsed events of file
func (c *ParseCache) Put(file LogFile, events []Event) {
	c.cache.Add(cacheKey(file), events)
}

// InvalidatePath drops every cached entry for the given file path, regardless
// of the mtime/size it was keyed under. Used by the folder watcher when a file
// changes or rotates.
func (c *ParseCache) InvalidatePath(path string) {
	prefix := path + "|"
	for _, key := range c.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Remove(key)
		}
	}
}

// Purge drops every cached entry
func (c *ParseCache) Purge() {
	c.cache.Purge()
}

// Len returns the number of cached files
func (c *ParseCache) Len() int {
	return c.cache.Len()
}
