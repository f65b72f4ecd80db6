package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/ratchet/pkg/render"
)

// Config holds artifact cache settings
type Config struct {
	MaxEntries int
	TTL        time.Duration
}

// DefaultConfig returns default cache settings
func DefaultConfig() *Config {
	return &Config{
		MaxEntries: 256,
		TTL:        30 * time.Minute,
	}
}

// ArtifactCache is an in-memory expiring LRU of rendered generation output
type ArtifactCache struct {
	cache *lru.LRU[string, []render.GeneratedFile]
}

// NewArtifactCache creates a new artifact cache
func NewArtifactCache(config *Config) *ArtifactCache {
	if config == nil {
		config = DefaultConfig()
	}
	maxEntries := config.MaxEntries
	if maxEntries < 8 {
		maxEntries = 8
	}
	return &ArtifactCache{
		cache: lru.NewLRU[string, []render.GeneratedFile](maxEntries, nil, config.TTL),
	}
}

// Get retrieves cached rendered files
func (c *ArtifactCache) Get(key string) ([]render.GeneratedFile, error) {
	if key == "" {
		return nil, ErrInvalidCacheKey
	}
	files, ok := c.cache.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return files, nil
}

// Set stores rendered files under the key
func (c *ArtifactCache) Set(key string, files []render.GeneratedFile) error {
	if key == "" {
		return ErrInvalidCacheKey
	}
	c.cache.Add(key, files)
	return nil
}

// Key derives a deterministic cache key from the schema document and the
// generation options. Options are sorted by name before hashing so callers
// cannot perturb the key with map iteration order.
//
// Key format version: v1. Changing the hash layout invalidates every cached
// artifact.
func Key(schema []byte, options map[string]string) string {
	h := sha256.New()
	h.Write(schema)
	h.Write([]byte{0})

	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(h, "%s=%s\x00", name, options[name])
	}

	return "v1:" + hex.EncodeToString(h.Sum(nil))
}
