package health

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pinsearch/internal/logger"
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

// Check names.
const (
	CheckBackend  = "backend"
	CheckDataFile = "data_file"
)

// DefaultTimeout bounds the backend ping.
const DefaultTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	backend  BackendPinger
	dataFile string
	timeout  time.Duration
}

// New creates a Service. dataFile is the ingest fallback file; empty skips its check.
func New(backend BackendPinger, dataFile string) *Service {
	return &Service{backend: backend, dataFile: dataFile, timeout: DefaultTimeout}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	log := logger.FromContext(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.backend.Ping(pingCtx); err != nil {
		log.Warn("Backend health check failed", zap.Error(err))
		checks[CheckBackend] = CheckError
	} else {
		checks[CheckBackend] = CheckOK
	}

	if s.dataFile != "" {
		if _, err := os.Stat(s.dataFile); err != nil {
			log.Warn("Data file health check failed", zap.String("path", s.dataFile), zap.Error(err))
			checks[CheckDataFile] = CheckError
		} else {
			checks[CheckDataFile] = CheckOK
		}
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
