package payload

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_payload_cache_total"}, []string{"result"})
}

func TestCache_HitAndMiss(t *testing.T) {
	total := newCounter()
	c := New(total)

	first, err := c.Parse(`{"id":"base1-4","hp":120}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Parse(`{"id":"base1-4","hp":120}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID() != "base1-4" || second.ID() != "base1-4" {
		t.Errorf("ids = %q, %q", first.ID(), second.ID())
	}
	if got := testutil.ToFloat64(total.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %f, want 1", got)
	}
	if got := testutil.ToFloat64(total.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit = %f, want 1", got)
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
}

func TestCache_InvalidPayload(t *testing.T) {
	c := New(nil)
	if _, err := c.Parse(`{"id":`); err == nil {
		t.Fatal("expected error for truncated payload")
	}
	if c.Len() != 0 {
		t.Errorf("failed parse must not be cached, len = %d", c.Len())
	}
}

func TestCache_ConcurrentParse(t *testing.T) {
	c := New(nil)
	payloads := []string{`{"id":"a"}`, `{"id":"b"}`, `{"id":"c"}`}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw := payloads[i%len(payloads)]
			if _, err := c.Parse(raw); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != len(payloads) {
		t.Errorf("len = %d, want %d", c.Len(), len(payloads))
	}
}
