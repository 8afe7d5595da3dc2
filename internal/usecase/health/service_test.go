package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	failing := &mockPinger{err: errors.New("conn refused")}

	tests := []struct {
		name   string
		cards  Pinger
		cache  Pinger
		status Status
		checks map[string]CheckResult
	}{
		{
			name:   "all healthy",
			cards:  &mockPinger{},
			cache:  &mockPinger{},
			status: Healthy,
			checks: map[string]CheckResult{"index:card": CheckOK, "cache": CheckOK},
		},
		{
			name:   "no cache configured",
			cards:  &mockPinger{},
			status: Healthy,
			checks: map[string]CheckResult{"index:card": CheckOK},
		},
		{
			name:   "cache down",
			cards:  &mockPinger{},
			cache:  failing,
			status: Degraded,
			checks: map[string]CheckResult{"index:card": CheckOK, "cache": CheckError},
		},
		{
			name:   "index down",
			cards:  failing,
			cache:  failing,
			status: Unhealthy,
			checks: map[string]CheckResult{"index:card": CheckError, "cache": CheckError},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(map[string]Pinger{"card": tt.cards}, tt.cache)
			r := svc.Check(context.Background())

			if r.Status != tt.status {
				t.Errorf("expected %q, got %q", tt.status, r.Status)
			}
			if len(r.Checks) != len(tt.checks) {
				t.Fatalf("checks = %v, want %v", r.Checks, tt.checks)
			}
			for k, v := range tt.checks {
				if r.Checks[k] != v {
					t.Errorf("check %s = %q, want %q", k, r.Checks[k], v)
				}
			}
		})
	}
}
