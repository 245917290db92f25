package scan

import (
	"errors"
	"sync"

	"github.com/buemura/rock/pkg/types"
)

// ErrDrained is returned by a second Drain on the same result set.
var ErrDrained = errors.New("result set already drained")

// ResultSet is the concurrency-safe sink every worker writes into. Findings
// are unordered; the set is drained once after dispatch completes.
type ResultSet struct {
	mu       sync.Mutex
	findings []types.Finding
	failures []types.TaskFailure
	drained  bool
}

// NewResultSet returns an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{}
}

// Add appends a finding. Safe for concurrent use.
func (s *ResultSet) Add(f types.Finding) {
	s.mu.Lock()
	s.findings = append(s.findings, f)
	s.mu.Unlock()
}

func (s *ResultSet) fail(tf types.TaskFailure) {
	s.mu.Lock()
	s.failures = append(s.failures, tf)
	s.mu.Unlock()
}

// Drain hands over every collected finding. Only the first call succeeds.
func (s *ResultSet) Drain() ([]types.Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.drained {
		return nil, ErrDrained
	}
	s.drained = true
	out := s.findings
	s.findings = nil
	if out == nil {
		out = []types.Finding{}
	}
	return out, nil
}

// Len returns the number of findings not yet drained.
func (s *ResultSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.findings)
}

// Failures returns a copy of the per-task failures recorded so far.
func (s *ResultSet) Failures() []types.TaskFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.TaskFailure(nil), s.failures...)
}
