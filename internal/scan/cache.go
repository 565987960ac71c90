package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheSize bounds the memoization table; old digests evict
// rather than grow the process without limit.
const defaultCacheSize = 64

// Digest fingerprints a source tree: SHA-256 over the raw bytes of
// every file, concatenated in ascending rel-path order. Paths are not
// part of the hash, so two trees with identical contents under
// different names share a digest.
func Digest(sources map[string][]byte) string {
	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, p := range paths {
		h.Write(sources[p])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cache memoizes scan results by tree digest for the life of the
// process. It is an optimization only; every failure path degrades to
// recomputation.
type Cache struct {
	entries *lru.Cache[string, *ScanResult]
}

func NewCache(size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	entries, err := lru.New[string, *ScanResult](size)
	if err != nil {
		return &Cache{}
	}
	return &Cache{entries: entries}
}

func (c *Cache) Get(digest string) (*ScanResult, bool) {
	if c == nil || c.entries == nil {
		return nil, false
	}
	return c.entries.Get(digest)
}

func (c *Cache) Add(digest string, result *ScanResult) {
	if c == nil || c.entries == nil {
		return
	}
	c.entries.Add(digest, result)
}
