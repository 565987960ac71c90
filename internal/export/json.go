// Package export serializes a scan result deterministically: nodes
// sorted by ID and findings by position, so an unchanged tree yields
// byte-identical output.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/codescope-io/codescope/internal/detect"
	"github.com/codescope-io/codescope/internal/graph"
	"github.com/codescope-io/codescope/internal/scan"
)

// ScanExport is the top-level JSON export structure.
type ScanExport struct {
	Languages       map[string]int      `json:"languages"`
	PrimaryLanguage string              `json:"primaryLanguage,omitempty"`
	Dependencies    map[string][]string `json:"dependencies,omitempty"`
	Frameworks      []string            `json:"frameworks,omitempty"`
	Nodes           []NodeExport        `json:"nodes"`
	Findings        []graph.Finding     `json:"findings"`
	HealthSignals   map[string]any      `json:"healthSignals,omitempty"`
	Verdict         detect.Verdict      `json:"verdict"`
}

// NodeExport pairs a graph node with its ID so the export is a stable
// list rather than a map with unordered keys.
type NodeExport struct {
	ID string `json:"id"`
	graph.CodeNode
}

// Build assembles the export view of a result. The input is not
// mutated; findings are copied before sorting.
func Build(result *scan.ScanResult) *ScanExport {
	ids := make([]string, 0, len(result.CodeGraph))
	for id := range result.CodeGraph {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	nodes := make([]NodeExport, 0, len(ids))
	for _, id := range ids {
		nodes = append(nodes, NodeExport{ID: id, CodeNode: result.CodeGraph[id]})
	}

	findings := make([]graph.Finding, len(result.Findings))
	copy(findings, result.Findings)
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		return findings[i].Kind < findings[j].Kind
	})

	return &ScanExport{
		Languages:       result.Languages,
		PrimaryLanguage: result.PrimaryLanguage,
		Dependencies:    result.Dependencies,
		Frameworks:      result.Frameworks,
		Nodes:           nodes,
		Findings:        findings,
		HealthSignals:   result.HealthSignals,
		Verdict:         result.Verdict,
	}
}

// Marshal renders the export as indented JSON.
func Marshal(result *scan.ScanResult) ([]byte, error) {
	data, err := json.MarshalIndent(Build(result), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scan export: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteJSON writes the export to a file.
func WriteJSON(result *scan.ScanResult, path string) error {
	data, err := Marshal(result)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
