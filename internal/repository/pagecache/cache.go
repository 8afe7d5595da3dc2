// Package pagecache shares rendered search pages between replicas through
// a key-value store. Keys embed the index generation, so a rebuilt index
// never serves pages of the previous one.
package pagecache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cardex/internal/db"
	"github.com/kailas-cloud/cardex/internal/domain/search/result"
)

const keyPrefix = "cardex:page:"

// DefaultTTL bounds how long a page stays cached.
const DefaultTTL = 5 * time.Minute

// store is the consumer interface for the page cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key identifies one page of one search.
type Key struct {
	Resource   string
	Generation string
	Query      string
	OrderBy    []string
	Select     []string
	Page       int
	PageSize   int
}

// Cache stores encoded pages. A nil *Cache is valid and caches nothing.
type Cache struct {
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a page cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"),
// passed explicitly. Store and decode failures count as "error".
func New(s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Get returns the cached page for k.
func (c *Cache) Get(ctx context.Context, k Key) (result.Page, bool) {
	if c == nil || k.Generation == "" {
		return result.Page{}, false
	}
	key := c.cacheKey(k)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			c.inc("miss")
			return result.Page{}, false
		}
		c.logger.Warn("Failed to get cached page", zap.String("key", key), zap.Error(err))
		c.inc("error")
		return result.Page{}, false
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var p result.Page
	if err := dec.Decode(&p); err != nil {
		c.logger.Warn("Failed to parse cached page", zap.String("key", key), zap.Error(err))
		c.inc("error")
		return result.Page{}, false
	}
	c.inc("hit")
	return p, true
}

// Put caches p under k. Partial pages are never cached.
func (c *Cache) Put(ctx context.Context, k Key, p result.Page) {
	if c == nil || k.Generation == "" || p.Partial {
		return
	}
	key := c.cacheKey(k)
	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("Failed to encode page", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache page", zap.String("key", key), zap.Error(err))
		c.inc("error")
	}
}

func (c *Cache) inc(outcome string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(outcome).Inc()
	}
}

// cacheKey hashes the request parameters. The resource and generation
// stay readable so stale generations are easy to spot.
func (c *Cache) cacheKey(k Key) string {
	h := sha256.New()
	for _, part := range []string{
		k.Query,
		strings.Join(k.OrderBy, "\x1f"),
		strings.Join(k.Select, "\x1f"),
		strconv.Itoa(k.Page),
		strconv.Itoa(k.PageSize),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + k.Resource + ":" + k.Generation + ":" + hex.EncodeToString(h.Sum(nil))
}
