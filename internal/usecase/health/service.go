package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the optional page cache is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates an index is failing.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	indexes map[string]Pinger
	cache   Pinger
}

// New creates a Service over the named indexes. cache can be nil.
func New(indexes map[string]Pinger, cache Pinger) *Service {
	return &Service{indexes: indexes, cache: cache}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.indexes)+1)
	status := Healthy

	for name, idx := range s.indexes {
		if err := idx.Ping(ctx); err != nil {
			checks["index:"+name] = CheckError
			status = Unhealthy
		} else {
			checks["index:"+name] = CheckOK
		}
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["cache"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
