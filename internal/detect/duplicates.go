package detect

import (
	"fmt"
	"log"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	"github.com/zeebo/xxh3"

	"github.com/codescope-io/codescope/internal/graph"
)

// minChainBranches excludes short conditional chains from duplicate
// grouping; two-way branches are too common to be a signal.
const minChainBranches = 3

// minGroupOccurrences is how many structurally identical chains must
// exist before the group is reported.
const minGroupOccurrences = 3

// maxEvidenceLocations caps the occurrence list attached to a finding.
const maxEvidenceLocations = 4

var pyLang = tree_sitter.NewLanguage(tree_sitter_python.Language())

// chainOccurrence is one if/elif chain found in a file.
type chainOccurrence struct {
	file      string
	line      int
	signature string
}

// DetectDuplicates finds structurally repeated if/elif chains across
// the Python files of a tree. Each chain's branch conditions are
// classified into operator classes and joined into a signature; chains
// are grouped by the signature hash and each group with enough
// occurrences yields one finding, not one per occurrence.
func DetectDuplicates(sources map[string][]byte) []graph.Finding {
	groups := make(map[uint64][]chainOccurrence)

	paths := make([]string, 0, len(sources))
	for p := range sources {
		if strings.HasSuffix(p, ".py") {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	for _, relPath := range paths {
		chains, err := collectChains(relPath, sources[relPath])
		if err != nil {
			log.Printf("detect: skipping %s: %v", relPath, err)
			continue
		}
		for _, c := range chains {
			h := xxh3.HashString(c.signature)
			groups[h] = append(groups[h], c)
		}
	}

	hashes := make([]uint64, 0, len(groups))
	for h := range groups {
		if len(groups[h]) >= minGroupOccurrences {
			hashes = append(hashes, h)
		}
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	var findings []graph.Finding
	for _, h := range hashes {
		occ := groups[h]
		locations := make([]string, 0, maxEvidenceLocations)
		for i, c := range occ {
			if i == maxEvidenceLocations {
				break
			}
			locations = append(locations, fmt.Sprintf("%s:%d", c.file, c.line))
		}

		findings = append(findings, graph.Finding{
			Kind:            graph.FindingDuplicatePattern,
			Severity:        graph.SeverityMedium,
			File:            occ[0].file,
			Line:            occ[0].line,
			Message:         fmt.Sprintf("Conditional chain repeated %d times across the tree.", len(occ)),
			SuggestedAction: "Extract the shared branching logic into one helper.",
			Metadata: map[string]string{
				"occurrences": fmt.Sprintf("%d", len(occ)),
				"locations":   strings.Join(locations, ", "),
				"signature":   fmt.Sprintf("%016x", h),
			},
		})
	}
	return findings
}

// collectChains parses one Python file and returns every if/elif chain
// with at least minChainBranches condition branches.
func collectChains(relPath string, source []byte) ([]chainOccurrence, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(pyLang); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("nil parse tree")
	}
	defer tree.Close()

	var chains []chainOccurrence
	var visit func(node *tree_sitter.Node)
	visit = func(node *tree_sitter.Node) {
		if node.Kind() == "if_statement" {
			if sig, branches := chainSignature(node, source); branches >= minChainBranches {
				chains = append(chains, chainOccurrence{
					file:      relPath,
					line:      int(node.StartPosition().Row) + 1,
					signature: sig,
				})
			}
		}
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child != nil {
				visit(child)
			}
		}
	}
	visit(tree.RootNode())
	return chains, nil
}

// chainSignature builds the order-preserving structural signature of
// an if/elif/else chain and reports the branch (condition) count. The
// signature classifies each branch condition by operator class rather
// than literal text, so chains over different values with the same
// shape compare equal.
func chainSignature(ifNode *tree_sitter.Node, source []byte) (string, int) {
	var tokens []string
	branches := 0

	appendCondition := func(cond *tree_sitter.Node) {
		if cond == nil {
			return
		}
		branches++
		tokens = append(tokens, classifyCondition(cond, source))
	}

	appendCondition(ifNode.ChildByFieldName("condition"))

	for i := uint(0); i < ifNode.ChildCount(); i++ {
		child := ifNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "elif_clause":
			appendCondition(child.ChildByFieldName("condition"))
		case "else_clause":
			tokens = append(tokens, "ELSE")
		}
	}

	return strings.Join(tokens, "|"), branches
}

// classifyCondition maps a condition expression to its operator class.
func classifyCondition(cond *tree_sitter.Node, source []byte) string {
	switch cond.Kind() {
	case "comparison_operator":
		// Operator tokens are the unnamed children; operands are named.
		var ops []string
		for i := uint(0); i < cond.ChildCount(); i++ {
			if child := cond.Child(i); child != nil && !child.IsNamed() {
				ops = append(ops, child.Utf8Text(source))
			}
		}
		return "CMP:" + strings.Join(ops, ",")
	case "boolean_operator":
		if op := cond.ChildByFieldName("operator"); op != nil {
			return "BOOL:" + op.Utf8Text(source)
		}
		return "BOOL:"
	default:
		return "OTHER:" + cond.Kind()
	}
}
