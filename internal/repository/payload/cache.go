// Package payload caches parsed stored payloads across requests.
package payload

import (
	"fmt"

	"github.com/oarkflow/xsync"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/cardex/internal/domain/record"
)

// Cache maps a raw stored payload to its parsed record. Payloads are
// immutable for the life of an index generation, so entries are never
// invalidated. Concurrent misses on the same payload may parse it twice;
// the last write wins and both results are equal.
type Cache struct {
	entries    xsync.IMap[string, record.Record]
	cacheTotal *prometheus.CounterVec
}

// New creates an empty cache.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), may be nil.
func New(cacheTotal *prometheus.CounterVec) *Cache {
	return &Cache{
		entries:    xsync.NewMap[string, record.Record](),
		cacheTotal: cacheTotal,
	}
}

// Parse returns the record stored in raw. The result is shared between
// callers and must be cloned before it is modified.
func (c *Cache) Parse(raw string) (record.Record, error) {
	if rec, ok := c.entries.Get(raw); ok {
		c.inc("hit")
		return rec, nil
	}
	c.inc("miss")

	rec, err := record.Decode([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("parse stored payload: %w", err)
	}
	c.entries.Set(raw, rec)
	return rec, nil
}

// Len returns the number of cached payloads.
func (c *Cache) Len() int {
	return int(c.entries.Size())
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
