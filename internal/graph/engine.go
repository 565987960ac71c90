package graph

import (
	"context"
	"log"
	"path/filepath"
	"sort"
	"strings"
)

// Engine routes source files to the right analyzer and merges the
// per-file results into one graph. Parsing is strictly sequential;
// tree-sitter parser state is not shared across goroutines.
type Engine struct {
	registry *Registry
}

func NewEngine() *Engine {
	return &Engine{registry: NewRegistry()}
}

// AnalyzeSources walks the supplied sources in sorted path order and
// returns the merged graph plus all findings raised during traversal.
// A file that fails to parse is logged and skipped; the scan never
// aborts on a single bad file.
func (e *Engine) AnalyzeSources(ctx context.Context, sources map[string][]byte) (CodeGraph, []Finding, error) {
	paths := make([]string, 0, len(sources))
	for p := range sources {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	graph := make(CodeGraph)
	var findings []Finding

	for _, relPath := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		res, err := e.analyzeFile(relPath, sources[relPath])
		if err != nil {
			log.Printf("graph: skipping %s: %v", relPath, err)
			continue
		}
		if res == nil {
			continue
		}

		graph.Merge(res)
		findings = append(findings, res.Findings...)
	}

	return graph, findings, nil
}

// analyzeFile returns (nil, nil) for files no analyzer claims.
func (e *Engine) analyzeFile(relPath string, source []byte) (*FileResult, error) {
	ext := strings.ToLower(filepath.Ext(relPath))
	if ext == ".py" {
		return AnalyzePython(relPath, source)
	}

	g := e.registry.Resolve(ext)
	if g == nil {
		return nil, nil
	}
	return extractQuery(g, relPath, source)
}
