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
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentPostgres  = "postgres"
	ComponentMilvus    = "milvus"
	ComponentCache     = "cache"
	ComponentEmbedding = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Failed lists the failing components in name order.
func (r Report) Failed() []string {
	var out []string
	for k, v := range r.Checks {
		if v == CheckError {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Components are the dependencies probed by Check. Nil entries are skipped.
type Components struct {
	Postgres  Pinger
	Milvus    Pinger
	Cache     Pinger
	Embedding EmbeddingChecker
}

// Service coordinates health checks.
type Service struct {
	c Components
}

// New creates a Service.
func New(c Components) *Service {
	return &Service{c: c}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	ping := func(name string, p Pinger) {
		if p == nil {
			return
		}
		checks[name] = result(p.Ping(ctx))
	}
	ping(ComponentPostgres, s.c.Postgres)
	ping(ComponentMilvus, s.c.Milvus)
	ping(ComponentCache, s.c.Cache)

	if s.c.Embedding != nil {
		checks[ComponentEmbedding] = result(s.c.Embedding.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
