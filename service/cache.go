package service

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/seo-optimizer/tagscope/analyzer"
)

// Cache entry with expiration
type cacheEntry struct {
	result    analyzer.Result
	timestamp time.Time
}

// resultCache keeps recent analysis results keyed by requested URL. Entries are
// copied on the way in and out so callers may modify what they receive.
type resultCache struct {
	mutex   sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

func newResultCache(ttl time.Duration, maxSize int) *resultCache {
	return &resultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// generateCacheKey creates a unique key for the URL
func generateCacheKey(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

func (c *resultCache) get(url string) (analyzer.Result, bool) {
	if c.ttl <= 0 {
		return analyzer.Result{}, false
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, found := c.entries[generateCacheKey(url)]
	if !found || c.now().Sub(entry.timestamp) >= c.ttl {
		return analyzer.Result{}, false
	}
	return entry.result.Clone(), true
}

func (c *resultCache) put(url string, result analyzer.Result) {
	if c.ttl <= 0 {
		return
	}

	c.mutex.Lock()
	c.entries[generateCacheKey(url)] = cacheEntry{
		result:    result.Clone(),
		timestamp: c.now(),
	}
	over := len(c.entries) > c.maxSize
	c.mutex.Unlock()

	if over {
		c.cleanup()
	}
}

func (c *resultCache) len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

// cleanup removes expired entries and ensures cache size limits
func (c *resultCache) cleanup() {
	now := c.now()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key, entry := range c.entries {
		if now.Sub(entry.timestamp) >= c.ttl {
			delete(c.entries, key)
		}
	}

	if c.maxSize <= 0 || len(c.entries) <= c.maxSize {
		return
	}

	// If still over size limit, remove oldest entries
	type keyed struct {
		key       string
		timestamp time.Time
	}
	entries := make([]keyed, 0, len(c.entries))
	for key, entry := range c.entries {
		entries = append(entries, keyed{key, entry.timestamp})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].timestamp.Before(entries[j].timestamp)
	})
	for i := 0; i < len(entries)-c.maxSize; i++ {
		delete(c.entries, entries[i].key)
	}
}
