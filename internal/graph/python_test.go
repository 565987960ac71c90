package graph

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzePy(t *testing.T, relPath, source string) *FileResult {
	t.Helper()
	res, err := AnalyzePython(relPath, []byte(source))
	require.NoError(t, err)
	return res
}

func findingsOfKind(findings []Finding, kind FindingKind) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func TestAnalyzePython_SymbolsAndImports(t *testing.T) {
	src := `import os
import json
from collections import OrderedDict


class Parser:
    def parse(self, text) -> dict:
        return json.loads(text)


def load(path) -> dict:
    with open(path) as f:
        return json.load(f)
`
	res := analyzePy(t, "pkg/parser.py", src)

	module := res.Nodes[0]
	assert.Equal(t, NodeKindModule, module.Kind)
	assert.Equal(t, "parser.py", module.Name)
	assert.ElementsMatch(t, []string{"os", "json", "collections"}, module.Dependencies)

	parser := findNode(res.Nodes, "Parser")
	require.NotNil(t, parser)
	assert.Equal(t, NodeKindClass, parser.Kind)
	assert.Equal(t, 6, parser.StartLine)

	parse := findNode(res.Nodes, "parse")
	require.NotNil(t, parse)
	assert.Equal(t, NodeKindFunction, parse.Kind)

	load := findNode(res.Nodes, "load")
	require.NotNil(t, load)

	assert.Contains(t, module.Definitions, SymbolID("pkg/parser.py", "Parser"))
	assert.Contains(t, module.Definitions, SymbolID("pkg/parser.py", "load"))
}

func TestAnalyzePython_MissingTypeHint(t *testing.T) {
	src := `def public_fn(x):
    return x


def annotated(x) -> int:
    return x


def _private(x):
    return x
`
	res := analyzePy(t, "app.py", src)

	hints := findingsOfKind(res.Findings, FindingMissingTypeHint)
	require.Len(t, hints, 1, "only the public unannotated function is flagged")
	f := hints[0]
	assert.Equal(t, SeverityLow, f.Severity)
	assert.Equal(t, 1, f.Line)
	assert.Equal(t, "Function `public_fn` missing return type hint.", f.Message)
	assert.Equal(t, "Add -> Type annotation.", f.SuggestedAction)
}

func TestAnalyzePython_MonolithBoundary(t *testing.T) {
	build := func(bodyLines int) string {
		var b strings.Builder
		b.WriteString("def big() -> None:\n")
		for i := 0; i < bodyLines; i++ {
			fmt.Fprintf(&b, "    x%d = %d\n", i, i)
		}
		return b.String()
	}

	t.Run("exactly 60 lines passes", func(t *testing.T) {
		res := analyzePy(t, "big.py", build(59))
		assert.Empty(t, findingsOfKind(res.Findings, FindingMonolithFunction))
	})

	t.Run("61 lines flagged", func(t *testing.T) {
		res := analyzePy(t, "big.py", build(60))
		mono := findingsOfKind(res.Findings, FindingMonolithFunction)
		require.Len(t, mono, 1)
		assert.Equal(t, SeverityMedium, mono[0].Severity)
		assert.Equal(t, "Function `big` has 61 lines (60 max).", mono[0].Message)
	})
}

func TestAnalyzePython_LoopDataAccess(t *testing.T) {
	t.Run("query inside loop flagged", func(t *testing.T) {
		src := `def sync(ids, db) -> None:
    for user_id in ids:
        record = db.get(user_id)
        print(record)
`
		res := analyzePy(t, "sync.py", src)
		hits := findingsOfKind(res.Findings, FindingLoopDataAccess)
		require.Len(t, hits, 1)
		assert.Equal(t, SeverityHigh, hits[0].Severity)
		assert.Equal(t, 3, hits[0].Line)
		assert.Contains(t, hits[0].Message, "db.get")
	})

	t.Run("same call outside loop is clean", func(t *testing.T) {
		src := `def fetch(user_id, db) -> dict:
    record = db.get(user_id)
    return record
`
		res := analyzePy(t, "fetch.py", src)
		assert.Empty(t, findingsOfKind(res.Findings, FindingLoopDataAccess))
	})

	t.Run("nested receiver attribute", func(t *testing.T) {
		src := `def report(items, ctx) -> None:
    for item in items:
        row = ctx.session.execute(item)
`
		res := analyzePy(t, "report.py", src)
		require.Len(t, findingsOfKind(res.Findings, FindingLoopDataAccess), 1)
	})

	t.Run("non data-access method ignored", func(t *testing.T) {
		src := `def render(items, db) -> None:
    for item in items:
        db.append(item)
`
		res := analyzePy(t, "render.py", src)
		assert.Empty(t, findingsOfKind(res.Findings, FindingLoopDataAccess))
	})

	t.Run("plain receiver ignored", func(t *testing.T) {
		src := `def collect(items, cache) -> None:
    for item in items:
        cache.get(item)
`
		res := analyzePy(t, "collect.py", src)
		assert.Empty(t, findingsOfKind(res.Findings, FindingLoopDataAccess))
	})

	t.Run("call after loop exits is clean", func(t *testing.T) {
		// The ancestor stack must be popped when the loop closes.
		src := `def staged(items, db) -> None:
    for item in items:
        print(item)
    record = db.get("final")
`
		res := analyzePy(t, "staged.py", src)
		assert.Empty(t, findingsOfKind(res.Findings, FindingLoopDataAccess))
	})
}

func TestAnalyzePython_InvalidSourceDegrades(t *testing.T) {
	// tree-sitter produces a tree with ERROR nodes; the walk must
	// still succeed and yield the module node.
	res := analyzePy(t, "broken.py", "def broken(:\n    pass\n")
	require.NotEmpty(t, res.Nodes)
	assert.Equal(t, NodeKindModule, res.Nodes[0].Kind)
}
