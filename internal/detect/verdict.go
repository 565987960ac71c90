// Package detect holds the finding detectors that run after the code
// graph is built: duplicate-pattern hashing, length thresholds, and a
// cognitive-complexity estimate. Each detector is a pure function of
// the graph or the raw sources and assigns severities itself; nothing
// downstream rewrites them.
package detect

import "github.com/codescope-io/codescope/internal/graph"

// Status is the overall pass/fail outcome of a scan.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Verdict summarizes a scan's findings. MaxSeverity is the most
// severe finding observed; Status fails only when a CRITICAL finding
// is present.
type Verdict struct {
	Status      Status         `json:"status"`
	MaxSeverity graph.Severity `json:"maxSeverity,omitempty"`
}

// ComputeVerdict folds a finding list into a verdict. The most severe
// single finding drives the outcome.
func ComputeVerdict(findings []graph.Finding) Verdict {
	v := Verdict{Status: StatusPass}
	for _, f := range findings {
		v.MaxSeverity = v.MaxSeverity.Max(f.Severity)
	}
	if v.MaxSeverity == graph.SeverityCritical {
		v.Status = StatusFail
	}
	return v
}
