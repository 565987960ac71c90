package graph

import "fmt"

// --- Enums ---

// NodeKind classifies structural entities in the code graph.
type NodeKind string

const (
	NodeKindModule    NodeKind = "module"
	NodeKindClass     NodeKind = "class"
	NodeKindFunction  NodeKind = "function"
	NodeKindInterface NodeKind = "interface"
	NodeKindImpl      NodeKind = "impl"
)

// Severity ranks a finding. Assigned by the detector that raised the
// finding and never mutated downstream.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// rank orders severities for aggregate verdict computation.
func (s Severity) rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// Max returns the more severe of s and other.
func (s Severity) Max(other Severity) Severity {
	if other.rank() > s.rank() {
		return other
	}
	return s
}

// FindingKind is the closed taxonomy of detected issues.
type FindingKind string

const (
	FindingMissingTypeHint     FindingKind = "missing-type-hint"
	FindingMonolithFunction    FindingKind = "monolith-function"
	FindingDuplicatePattern    FindingKind = "duplicate-pattern"
	FindingLoopDataAccess      FindingKind = "loop-data-access"
	FindingFunctionTooLong     FindingKind = "function-too-long"
	FindingFileTooLong         FindingKind = "file-too-long"
	FindingCognitiveComplexity FindingKind = "cognitive-complexity"
	FindingStaleDocs           FindingKind = "stale-docs"
	FindingArchPurity          FindingKind = "arch-purity"
)

// --- Models ---

// CodeNode is a structural entity: a module, class, function,
// interface, or impl block. Line numbers are 1-indexed and inclusive.
type CodeNode struct {
	Name      string   `json:"name"`
	Kind      NodeKind `json:"kind"`
	FilePath  string   `json:"filePath"`
	StartLine int      `json:"startLine"`
	EndLine   int      `json:"endLine"`

	// Complexity is a cheap structural proxy: the child-node count of
	// the defining syntax node.
	Complexity int `json:"complexity"`

	// Dependencies holds names of other symbols this node calls or
	// imports. Call edges are a same-file approximation, not cross-file
	// resolution.
	Dependencies []string `json:"dependencies,omitempty"`

	// Definitions holds, for module nodes, the IDs of the child symbols
	// the module owns.
	Definitions []string `json:"definitions,omitempty"`
}

// Finding is a single detected issue.
type Finding struct {
	Kind     FindingKind `json:"kind"`
	Severity Severity    `json:"severity"`
	File     string      `json:"file"`

	// Line is 1-indexed; 0 means the finding applies to the whole file.
	Line int `json:"line,omitempty"`

	Message         string            `json:"message"`
	SuggestedAction string            `json:"suggestedAction"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// CodeGraph is the unified in-memory model produced by a scan, keyed
// by node ID. The pair (FilePath, Name) is unique per scan.
type CodeGraph map[string]CodeNode

// SymbolID builds the graph key for a named symbol in a file.
func SymbolID(relPath, name string) string {
	return fmt.Sprintf("symbol:%s:%s", relPath, name)
}

// ModuleID builds the graph key for a file's module node.
func ModuleID(relPath string) string {
	return fmt.Sprintf("module:%s", relPath)
}

// FileResult holds everything extracted from a single source file.
// Node order follows document order of the syntax tree.
type FileResult struct {
	Nodes    []CodeNode
	Findings []Finding
}

// Merge copies the file's nodes into the graph under their IDs.
func (g CodeGraph) Merge(res *FileResult) {
	for _, n := range res.Nodes {
		if n.Kind == NodeKindModule {
			g[ModuleID(n.FilePath)] = n
			continue
		}
		g[SymbolID(n.FilePath, n.Name)] = n
	}
}
