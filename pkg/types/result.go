package types

import (
	"fmt"
	"strings"
	"time"
)

// Severity represents the severity level of a finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// SeverityRank returns a numeric rank for sorting (lower = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	case SeverityInfo:
		return 4
	default:
		return 5
	}
}

// ParseSeverity accepts a severity name in any case.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if SeverityRank(sev) > SeverityRank(SeverityInfo) {
		return "", fmt.Errorf("unknown severity %q (want critical, high, medium, low or info)", s)
	}
	return sev, nil
}

// AtLeast reports whether s is as severe as floor or more.
func (s Severity) AtLeast(floor Severity) bool {
	return SeverityRank(s) <= SeverityRank(floor)
}

// MaxSeverity returns the more severe of a and b.
func MaxSeverity(a, b Severity) Severity {
	if SeverityRank(b) < SeverityRank(a) {
		return b
	}
	return a
}

// Finding is what a module reports for one URL. The engine only fills in
// Module and URL when the module left them empty.
type Finding struct {
	Module      string            `json:"module"`
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Severity    Severity          `json:"severity"`
	Evidence    string            `json:"evidence,omitempty"`
	Remediation string            `json:"remediation,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Stage names the step of a work item that failed.
type Stage string

const (
	StageConfigure Stage = "configure"
	StageCheck     Stage = "check"
	StageRun       Stage = "run"
)

// TaskFailure records a (module, URL) work item that failed instead of
// completing.
type TaskFailure struct {
	Module string `json:"module"`
	URL    string `json:"url"`
	Stage  Stage  `json:"stage"`
	Cause  string `json:"cause"`
}

// Stats counts what a dispatch did.
type Stats struct {
	Modules    int `json:"modules"`
	URLs       int `json:"urls"`
	WorkItems  int `json:"work_items"`
	Applicable int `json:"applicable"`
	Findings   int `json:"findings"`
	Failures   int `json:"failures"`
}

// Report is the output of one scan run.
type Report struct {
	ID          string        `json:"id"`
	Target      string        `json:"target"`
	Category    string        `json:"category"`
	Modules     []string      `json:"modules"`
	URLs        []string      `json:"urls"`
	Findings    []Finding     `json:"findings"`
	Failures    []TaskFailure `json:"failures,omitempty"`
	Stats       Stats         `json:"stats"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// CountBySeverity tallies findings per severity.
func (r *Report) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}
