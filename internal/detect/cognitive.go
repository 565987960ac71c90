package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codescope-io/codescope/internal/graph"
)

const (
	// indentUnit converts leading spaces into nesting levels.
	indentUnit = 4

	// cognitiveLimit is the score a function may reach before it is
	// reported; the boundary is exclusive.
	cognitiveLimit = 8
)

var branchKeyword = regexp.MustCompile(`\b(if|elif|for|while|except|catch|case)\b`)

// DetectCognitiveComplexity scores each function in the graph with an
// indentation heuristic: deeper-than-one nesting adds its depth, and
// every line carrying a branching keyword adds one. This is a cheap
// proxy, not an AST-exact computation; the thresholds are tuned for
// that.
func DetectCognitiveComplexity(g graph.CodeGraph, sources map[string][]byte) []graph.Finding {
	lineCache := make(map[string][]string, len(sources))
	linesOf := func(path string) []string {
		if cached, ok := lineCache[path]; ok {
			return cached
		}
		src, ok := sources[path]
		if !ok {
			lineCache[path] = nil
			return nil
		}
		split := strings.Split(string(src), "\n")
		lineCache[path] = split
		return split
	}

	var findings []graph.Finding
	for _, id := range sortedIDs(g) {
		node := g[id]
		if node.Kind != graph.NodeKindFunction {
			continue
		}
		lines := linesOf(node.FilePath)
		if lines == nil || node.StartLine < 1 || node.EndLine > len(lines) {
			continue
		}

		score := scoreSpan(lines[node.StartLine-1 : node.EndLine])
		if score <= cognitiveLimit {
			continue
		}

		findings = append(findings, graph.Finding{
			Kind:            graph.FindingCognitiveComplexity,
			Severity:        graph.SeverityHigh,
			File:            node.FilePath,
			Line:            node.StartLine,
			Message:         fmt.Sprintf("Function `%s` has estimated cognitive complexity %d (limit %d).", node.Name, score, cognitiveLimit),
			SuggestedAction: "Flatten nesting with early returns or extracted helpers.",
			Metadata:        map[string]string{"symbol": node.Name, "score": fmt.Sprintf("%d", score)},
		})
	}
	return findings
}

// scoreSpan applies the heuristic over one function's lines. The base
// indent comes from the first code line; blank lines never count.
func scoreSpan(lines []string) int {
	base := -1
	score := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		indent := leadingSpaces(line)
		if base < 0 {
			base = indent
		} else if indent > base {
			nesting := (indent - base) / indentUnit
			if nesting > 1 {
				score += nesting - 1
			}
		}

		if branchKeyword.MatchString(trimmed) {
			score++
		}
	}
	return score
}

func leadingSpaces(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += indentUnit
		default:
			return n
		}
	}
	return n
}
