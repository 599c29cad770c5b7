package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
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

// Report aggregates health check results, keyed "routes:<site>".
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	sites map[string]RouteValidator
}

// New creates a Service over the per-site route validators.
func New(sites map[string]RouteValidator) *Service {
	return &Service{sites: sites}
}

// Check validates the routing of every site.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.sites))

	names := make([]string, 0, len(s.sites))
	for name := range s.sites {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := 0
	for _, name := range names {
		key := "routes:" + name
		if ctx.Err() != nil {
			checks[key] = CheckError
			failed++
			continue
		}
		if err := s.sites[name].Validate(); err != nil {
			checks[key] = CheckError
			failed++
			continue
		}
		checks[key] = CheckOK
	}

	status := Healthy
	switch {
	case len(checks) == 0 || failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
