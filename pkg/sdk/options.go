package cardex

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	searchCount   int
	searchTimeout time.Duration
	maxPageSize   int
	imageURLBase  string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithSearchCount caps how many hits a search can page through.
// Default: no cap.
func WithSearchCount(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchCount = n
	})
}

// WithSearchTimeout bounds each search. A timed-out search returns an
// empty page with Partial set. Default: no timeout.
func WithSearchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchTimeout = d
	})
}

// WithMaxPageSize bounds PageSize and is used when none is given.
// Default: 250.
func WithMaxPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxPageSize = n
	})
}

// WithImageURLBase rebases upstream image URLs onto base.
func WithImageURLBase(base string) Option {
	return optionFunc(func(c *clientConfig) {
		c.imageURLBase = base
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
