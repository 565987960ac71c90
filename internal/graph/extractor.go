package graph

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractQuery runs a grammar's match query over one file and builds
// the file's slice of CodeNodes plus module metadata.
//
// Pairing rule: within one match, a @name capture plus a symbol-kind
// capture emit one CodeNode; a @call capture attaches the callee to
// the current owner symbol (same-file approximation of a call graph);
// a @dep capture feeds the module node's dependency list. Matches
// missing required captures are dropped without error — availability
// over completeness.
func extractQuery(g *Grammar, relPath string, source []byte) (*FileResult, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(g.lang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", g.Language, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("nil parse tree for %s", relPath)
	}
	defer tree.Close()

	cursor := tree_sitter.NewQueryCursor()
	defer cursor.Close()

	module := CodeNode{
		Name:      filepath.Base(relPath),
		Kind:      NodeKindModule,
		FilePath:  relPath,
		StartLine: 1,
		EndLine:   countLines(source),
	}

	var nodes []CodeNode
	var definitions []string
	var moduleDeps []string
	depSeen := make(map[string]bool)

	// owner indexes the per-file node arena; -1 means no symbol is in
	// scope yet, so call captures before the first symbol are dropped.
	owner := -1

	matches := cursor.Matches(g.query, tree.RootNode(), source)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var nameNode, symbolNode, callNode *tree_sitter.Node
		var symbolKind NodeKind

		for _, capture := range match.Captures {
			node := capture.Node
			role := g.roles[capture.Index]
			switch role.tag {
			case roleName:
				nameNode = &node
			case roleCall:
				callNode = &node
			case roleDep:
				dep := strings.Trim(node.Utf8Text(source), "\"'`")
				if dep != "" && !depSeen[dep] {
					depSeen[dep] = true
					moduleDeps = append(moduleDeps, dep)
				}
			case roleSymbol:
				symbolNode = &node
				symbolKind = role.kind
			}
		}

		switch {
		case nameNode != nil && symbolNode != nil:
			name := nameNode.Utf8Text(source)
			nodes = append(nodes, CodeNode{
				Name:       name,
				Kind:       symbolKind,
				FilePath:   relPath,
				StartLine:  int(symbolNode.StartPosition().Row) + 1,
				EndLine:    int(symbolNode.EndPosition().Row) + 1,
				Complexity: int(symbolNode.ChildCount()),
			})
			owner = len(nodes) - 1
			definitions = append(definitions, SymbolID(relPath, name))

		case callNode != nil && owner >= 0:
			callee := callNode.Utf8Text(source)
			if callee != "" && !contains(nodes[owner].Dependencies, callee) {
				nodes[owner].Dependencies = append(nodes[owner].Dependencies, callee)
			}
		}
	}

	module.Dependencies = moduleDeps
	module.Definitions = definitions

	result := &FileResult{Nodes: make([]CodeNode, 0, len(nodes)+1)}
	result.Nodes = append(result.Nodes, module)
	result.Nodes = append(result.Nodes, nodes...)
	return result, nil
}

// countLines counts lines the way the module span is reported: newline
// count plus one, minimum one line even for an empty file.
func countLines(source []byte) int {
	if len(source) == 0 {
		return 1
	}
	n := bytes.Count(source, []byte{'\n'}) + 1
	if source[len(source)-1] == '\n' {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
