package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_AnalyzeSources_MixedTree(t *testing.T) {
	sources := map[string][]byte{
		"api/handlers.py": []byte("def handle(req):\n    return req\n"),
		"web/app.ts":      []byte("function boot(): void {\n  console.log(\"up\");\n}\n"),
		"notes.txt":       []byte("not source code\n"),
	}

	e := NewEngine()
	graph, findings, err := e.AnalyzeSources(context.Background(), sources)
	require.NoError(t, err)

	assert.Contains(t, graph, ModuleID("api/handlers.py"))
	assert.Contains(t, graph, SymbolID("api/handlers.py", "handle"))
	assert.Contains(t, graph, ModuleID("web/app.ts"))
	assert.Contains(t, graph, SymbolID("web/app.ts", "boot"))
	assert.NotContains(t, graph, ModuleID("notes.txt"), "unroutable files are skipped")

	hints := findingsOfKind(findings, FindingMissingTypeHint)
	require.Len(t, hints, 1)
	assert.Equal(t, "api/handlers.py", hints[0].File)
}

func TestEngine_AnalyzeSources_SameNameDifferentFiles(t *testing.T) {
	sources := map[string][]byte{
		"a/util.py": []byte("def f(x):\n    return x\n"),
		"b/util.py": []byte("def f(x):\n    return x * 2\n"),
	}

	e := NewEngine()
	graph, findings, err := e.AnalyzeSources(context.Background(), sources)
	require.NoError(t, err)

	assert.Contains(t, graph, SymbolID("a/util.py", "f"))
	assert.Contains(t, graph, SymbolID("b/util.py", "f"))
	assert.Len(t, findingsOfKind(findings, FindingMissingTypeHint), 2,
		"each definition is flagged independently")
}

func TestEngine_AnalyzeSources_UppercaseExtension(t *testing.T) {
	sources := map[string][]byte{
		"LEGACY.PY": []byte("def f(x):\n    return x\n"),
		"MAIN.TS":   []byte("function boot(): void {}\n"),
	}

	e := NewEngine()
	graphOut, findings, err := e.AnalyzeSources(context.Background(), sources)
	require.NoError(t, err)

	assert.Contains(t, graphOut, SymbolID("LEGACY.PY", "f"),
		"extension routing is case-insensitive")
	assert.Contains(t, graphOut, SymbolID("MAIN.TS", "boot"))
	assert.Len(t, findingsOfKind(findings, FindingMissingTypeHint), 1)
}

func TestEngine_AnalyzeSources_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEngine()
	_, _, err := e.AnalyzeSources(ctx, map[string][]byte{"a.py": []byte("x = 1\n")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_AnalyzeSources_Deterministic(t *testing.T) {
	sources := map[string][]byte{
		"x.py": []byte("def a():\n    pass\n"),
		"y.py": []byte("def b():\n    pass\n"),
		"z.py": []byte("def c():\n    pass\n"),
	}

	e := NewEngine()
	first, firstFindings, err := e.AnalyzeSources(context.Background(), sources)
	require.NoError(t, err)
	second, secondFindings, err := e.AnalyzeSources(context.Background(), sources)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstFindings, secondFindings)
}
