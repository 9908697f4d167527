package dataset

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is an LRU-bounded on-disk cache of fetched dataset files,
// keyed by source URI. Slot names are derived from the URI, so a
// fresh Cache over an existing directory rediscovers files left by
// earlier runs without rescanning.
type Cache struct {
	dir   string
	index *lru.Cache[string, string]
}

// NewCache creates a cache holding at most capacity files under dir.
// Evicted entries have their file removed.
func NewCache(dir string, capacity int) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	index, err := lru.NewWithEvict(capacity, func(uri, path string) {
		os.Remove(path)
	})
	if err != nil {
		return nil, fmt.Errorf("creating cache index: %w", err)
	}
	return &Cache{dir: dir, index: index}, nil
}

// Path returns the slot for uri inside the cache directory. The slot
// keeps the URI's extension so content sniffers and decompressors see
// a familiar name.
func (c *Cache) Path(uri string) string {
	sum := md5.Sum([]byte(uri))
	name := hex.EncodeToString(sum[:])
	if ext := path.Ext(uri); ext != "" && len(ext) <= 8 {
		name += ext
	}
	return filepath.Join(c.dir, name)
}

// Get returns the cached file for uri. A slot left by an earlier run
// is readmitted to the index on first sight.
func (c *Cache) Get(uri string) (string, bool) {
	if p, ok := c.index.Get(uri); ok {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
		c.index.Remove(uri)
		return "", false
	}

	p := c.Path(uri)
	if _, err := os.Stat(p); err == nil {
		c.index.Add(uri, p)
		return p, true
	}
	return "", false
}

// Add registers the slot for uri, which the caller has just written.
// Admission may evict the least recently used entry and its file.
func (c *Cache) Add(uri string) {
	c.index.Add(uri, c.Path(uri))
}

// Len returns the number of indexed entries.
func (c *Cache) Len() int {
	return c.index.Len()
}
