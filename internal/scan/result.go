// Package scan assembles the full analysis of a source tree: file
// collection, version-control signals, dependency manifests, the code
// graph pipeline, and the content-addressed result cache.
package scan

import (
	"github.com/codescope-io/codescope/internal/detect"
	"github.com/codescope-io/codescope/internal/graph"
)

// ScanResult is the single object a scan produces. Instances are
// handed by value to consumers; nothing mutates them after assembly.
type ScanResult struct {
	// Languages maps a language name to its file count in the tree.
	Languages map[string]int `json:"languages"`

	// PrimaryLanguage is the language with the most files, empty when
	// the tree holds no recognized sources.
	PrimaryLanguage string `json:"primaryLanguage,omitempty"`

	// Dependencies maps an ecosystem (npm, pip, go, cargo, pub) to the
	// declared package names.
	Dependencies map[string][]string `json:"dependencies,omitempty"`

	Frameworks []string `json:"frameworks,omitempty"`

	CodeGraph graph.CodeGraph `json:"codeGraph"`
	Findings  []graph.Finding `json:"findings"`

	// HealthSignals carries auxiliary per-scan metadata (git activity,
	// file counts) that downstream reporting consumes opaquely.
	HealthSignals map[string]any `json:"healthSignals,omitempty"`

	Verdict detect.Verdict `json:"verdict"`
}
