package detect

import (
	"fmt"
	"sort"

	"github.com/codescope-io/codescope/internal/graph"
)

const (
	// functionLineLimit is the span a function may occupy before it is
	// reported; the boundary is exclusive, 250 lines pass.
	functionLineLimit = 250

	fileWarnLineLimit = 1000
	fileFailLineLimit = 2000
)

// DetectFunctionLength flags functions whose line span exceeds the
// limit. It reads spans off the code graph, so it covers every
// language any analyzer produced nodes for.
func DetectFunctionLength(g graph.CodeGraph) []graph.Finding {
	ids := sortedIDs(g)

	var findings []graph.Finding
	for _, id := range ids {
		node := g[id]
		if node.Kind != graph.NodeKindFunction {
			continue
		}
		lines := node.EndLine - node.StartLine
		if lines <= functionLineLimit {
			continue
		}
		findings = append(findings, graph.Finding{
			Kind:            graph.FindingFunctionTooLong,
			Severity:        graph.SeverityMedium,
			File:            node.FilePath,
			Line:            node.StartLine,
			Message:         fmt.Sprintf("Function `%s` spans %d lines (limit %d).", node.Name, lines, functionLineLimit),
			SuggestedAction: "Split the function into focused units.",
			Metadata:        map[string]string{"symbol": node.Name},
		})
	}
	return findings
}

// DetectFileLength flags oversized files. Beyond the hard limit the
// finding escalates to CRITICAL, which fails the scan verdict.
func DetectFileLength(sources map[string][]byte) []graph.Finding {
	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var findings []graph.Finding
	for _, relPath := range paths {
		lines := lineCount(sources[relPath])
		if lines <= fileWarnLineLimit {
			continue
		}

		severity := graph.SeverityMedium
		action := "Break the file into smaller modules."
		if lines > fileFailLineLimit {
			severity = graph.SeverityCritical
			action = "File is beyond the hard limit; split it before merging further changes."
		}

		findings = append(findings, graph.Finding{
			Kind:            graph.FindingFileTooLong,
			Severity:        severity,
			File:            relPath,
			Message:         fmt.Sprintf("File has %d lines (limit %d).", lines, fileWarnLineLimit),
			SuggestedAction: action,
			Metadata:        map[string]string{"lines": fmt.Sprintf("%d", lines)},
		})
	}
	return findings
}

func sortedIDs(g graph.CodeGraph) []string {
	ids := make([]string, 0, len(g))
	for id := range g {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func lineCount(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := 0
	for _, b := range source {
		if b == '\n' {
			n++
		}
	}
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}
