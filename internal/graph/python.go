package graph

import (
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// monolithLineLimit is the maximum body span (in lines) a Python
// function may have before it is flagged.
const monolithLineLimit = 60

// dataAccessMethods is the allow-list of method names that look like
// per-item data fetches when called inside a loop.
var dataAccessMethods = map[string]bool{
	"get":     true,
	"query":   true,
	"execute": true,
	"find":    true,
}

// dataHandleSuffixes marks receivers that look like data-access
// handles (db connections, ORM sessions, model managers).
var dataHandleSuffixes = []string{"db", "session", "model", "objects"}

var pythonLanguage = tree_sitter.NewLanguage(tree_sitter_python.Language())

// AnalyzePython performs the single-pass native traversal for Python:
// it harvests symbols and emits findings in the same walk.
func AnalyzePython(relPath string, source []byte) (*FileResult, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(pythonLanguage); err != nil {
		return nil, fmt.Errorf("set python language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("nil parse tree for %s", relPath)
	}
	defer tree.Close()

	v := &pyVisitor{relPath: relPath, source: source}

	cursor := tree.RootNode().Walk()
	defer cursor.Close()
	v.walk(cursor)

	module := CodeNode{
		Name:         filepath.Base(relPath),
		Kind:         NodeKindModule,
		FilePath:     relPath,
		StartLine:    1,
		EndLine:      countLines(source),
		Dependencies: v.moduleDeps,
		Definitions:  v.definitions,
	}

	result := &FileResult{
		Nodes:    append([]CodeNode{module}, v.nodes...),
		Findings: v.findings,
	}
	return result, nil
}

// pyVisitor collects symbols and findings during one traversal. The
// ancestors slice is a real stack of enclosing statement kinds,
// pushed on enter and popped on exit; the loop-data-access detector
// depends on it being maintained, so it must never be short-circuited.
type pyVisitor struct {
	relPath string
	source  []byte

	nodes       []CodeNode
	findings    []Finding
	definitions []string
	moduleDeps  []string
	depSeen     map[string]bool

	ancestors []string
}

func (v *pyVisitor) walk(cursor *tree_sitter.TreeCursor) {
	node := cursor.Node()
	kind := node.Kind()

	switch kind {
	case "class_definition":
		v.visitClass(node)
	case "function_definition":
		v.visitFunction(node)
	case "call":
		v.visitCall(node)
	case "import_statement", "import_from_statement":
		v.visitImport(node)
	}

	v.ancestors = append(v.ancestors, kind)
	if cursor.GotoFirstChild() {
		v.walk(cursor)
		for cursor.GotoNextSibling() {
			v.walk(cursor)
		}
		cursor.GotoParent()
	}
	v.ancestors = v.ancestors[:len(v.ancestors)-1]
}

// insideLoop reports whether any enclosing statement is a for loop.
func (v *pyVisitor) insideLoop() bool {
	for i := len(v.ancestors) - 1; i >= 0; i-- {
		if v.ancestors[i] == "for_statement" {
			return true
		}
	}
	return false
}

func (v *pyVisitor) visitClass(node *tree_sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(v.source)

	v.emit(CodeNode{
		Name:       name,
		Kind:       NodeKindClass,
		FilePath:   v.relPath,
		StartLine:  int(node.StartPosition().Row) + 1,
		EndLine:    int(node.EndPosition().Row) + 1,
		Complexity: bodyStatementCount(node),
	})
}

func (v *pyVisitor) visitFunction(node *tree_sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nameNode.Utf8Text(v.source)
	start := int(node.StartPosition().Row) + 1
	end := int(node.EndPosition().Row) + 1

	v.emit(CodeNode{
		Name:       name,
		Kind:       NodeKindFunction,
		FilePath:   v.relPath,
		StartLine:  start,
		EndLine:    end,
		Complexity: bodyStatementCount(node),
	})

	// Public callables without a return annotation.
	if node.ChildByFieldName("return_type") == nil && !strings.HasPrefix(name, "_") {
		v.findings = append(v.findings, Finding{
			Kind:            FindingMissingTypeHint,
			Severity:        SeverityLow,
			File:            v.relPath,
			Line:            start,
			Message:         fmt.Sprintf("Function `%s` missing return type hint.", name),
			SuggestedAction: "Add -> Type annotation.",
			Metadata:        map[string]string{"symbol": name},
		})
	}

	if lines := end - start + 1; lines > monolithLineLimit {
		v.findings = append(v.findings, Finding{
			Kind:            FindingMonolithFunction,
			Severity:        SeverityMedium,
			File:            v.relPath,
			Line:            start,
			Message:         fmt.Sprintf("Function `%s` has %d lines (%d max).", name, lines, monolithLineLimit),
			SuggestedAction: "Extract smaller functions.",
			Metadata:        map[string]string{"symbol": name},
		})
	}
}

// visitCall applies the loop-context detector: a call to an
// allow-listed method on a data-access handle, anywhere under a for
// loop, is a per-item fetch that belongs outside the loop.
func (v *pyVisitor) visitCall(node *tree_sitter.Node) {
	if !v.insideLoop() {
		return
	}

	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "attribute" {
		return
	}

	methodNode := fn.ChildByFieldName("attribute")
	if methodNode == nil || !dataAccessMethods[methodNode.Utf8Text(v.source)] {
		return
	}

	recv := fn.ChildByFieldName("object")
	if recv == nil || !looksLikeDataHandle(recv, v.source) {
		return
	}

	callee := fn.Utf8Text(v.source)
	v.findings = append(v.findings, Finding{
		Kind:            FindingLoopDataAccess,
		Severity:        SeverityHigh,
		File:            v.relPath,
		Line:            int(node.StartPosition().Row) + 1,
		Message:         fmt.Sprintf("Data access `%s` inside a loop (potential N+1).", callee),
		SuggestedAction: "Batch the query or prefetch related data before the loop.",
		Metadata:        map[string]string{"callee": callee},
	})
}

func (v *pyVisitor) visitImport(node *tree_sitter.Node) {
	if v.depSeen == nil {
		v.depSeen = make(map[string]bool)
	}

	record := func(name string) {
		if name == "" || v.depSeen[name] {
			return
		}
		v.depSeen[name] = true
		v.moduleDeps = append(v.moduleDeps, name)
	}

	if node.Kind() == "import_from_statement" {
		if moduleNode := node.ChildByFieldName("module_name"); moduleNode != nil {
			record(moduleNode.Utf8Text(v.source))
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "dotted_name" {
			record(child.Utf8Text(v.source))
		}
	}
}

func (v *pyVisitor) emit(node CodeNode) {
	v.nodes = append(v.nodes, node)
	v.definitions = append(v.definitions, SymbolID(v.relPath, node.Name))
}

// bodyStatementCount returns the direct statement count of a
// definition's body, the complexity proxy used for Python symbols.
func bodyStatementCount(node *tree_sitter.Node) int {
	body := node.ChildByFieldName("body")
	if body == nil {
		return 1
	}
	n := int(body.NamedChildCount())
	if n < 1 {
		n = 1
	}
	return n
}

// looksLikeDataHandle reports whether the receiver is a bare name or
// attribute whose final segment names a data-access handle.
func looksLikeDataHandle(recv *tree_sitter.Node, source []byte) bool {
	var last string
	switch recv.Kind() {
	case "identifier":
		last = recv.Utf8Text(source)
	case "attribute":
		attr := recv.ChildByFieldName("attribute")
		if attr == nil {
			return false
		}
		last = attr.Utf8Text(source)
	default:
		return false
	}

	last = strings.ToLower(last)
	for _, suffix := range dataHandleSuffixes {
		if strings.HasSuffix(last, suffix) {
			return true
		}
	}
	return false
}
