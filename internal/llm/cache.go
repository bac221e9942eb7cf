package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/localfs"
)

// Cacher stores model replies. fetch runs on a miss, and concurrent misses
// for one key share a single fetch. A fetch error is returned and not cached.
type Cacher interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
}

// Cache keeps enrichment replies in memory and on disk.
type Cache struct {
	*sfcache.TieredCache[string, []byte]

	ttl time.Duration
}

// NewCache opens a disk-backed cache under the user cache directory. A
// relative dir is resolved against it.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if !filepath.IsAbs(dir) {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		dir = filepath.Join(base, dir)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	persist, err := localfs.New[string, []byte]("circlemap-enrich", dir)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}
	tc, err := sfcache.NewTiered[string, []byte](persist, sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache{TieredCache: tc, ttl: ttl}, nil
}

// TTL returns the default entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// cacheKey hashes everything that determines a reply.
func cacheKey(model, system, user string) string {
	h := sha256.New()
	for _, part := range []string{model, system, user} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
