package detect

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescope-io/codescope/internal/graph"
)

// chainFixture builds one three-branch if/elif/else chain comparing a
// variable against distinct literals. All chains it produces share the
// same operator-class signature.
func chainFixture(varName string, base int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "def route_%s(%s) -> str:\n", varName, varName)
	fmt.Fprintf(&b, "    if %s == %d:\n        return \"a\"\n", varName, base)
	fmt.Fprintf(&b, "    elif %s == %d:\n        return \"b\"\n", varName, base+1)
	fmt.Fprintf(&b, "    elif %s == %d:\n        return \"c\"\n", varName, base+2)
	b.WriteString("    else:\n        return \"d\"\n")
	return b.String()
}

func TestDetectDuplicates_ThreeOccurrencesOneFinding(t *testing.T) {
	sources := map[string][]byte{
		"a.py": []byte(chainFixture("status", 1)),
		"b.py": []byte(chainFixture("code", 10)),
		"c.py": []byte(chainFixture("level", 100)),
	}

	findings := DetectDuplicates(sources)
	require.Len(t, findings, 1, "one finding per group, not per occurrence")

	f := findings[0]
	assert.Equal(t, graph.FindingDuplicatePattern, f.Kind)
	assert.Equal(t, graph.SeverityMedium, f.Severity)
	assert.Equal(t, "3", f.Metadata["occurrences"])
	assert.Contains(t, f.Metadata["locations"], "a.py:2")
	assert.Contains(t, f.Metadata["locations"], "b.py:2")
	assert.Contains(t, f.Metadata["locations"], "c.py:2")
}

func TestDetectDuplicates_TwoOccurrencesNoFinding(t *testing.T) {
	sources := map[string][]byte{
		"a.py": []byte(chainFixture("status", 1)),
		"b.py": []byte(chainFixture("code", 10)),
	}
	assert.Empty(t, DetectDuplicates(sources))
}

func TestDetectDuplicates_ShortChainsExcluded(t *testing.T) {
	short := `def route(x) -> str:
    if x == 1:
        return "a"
    elif x == 2:
        return "b"
    return "c"
`
	sources := map[string][]byte{
		"a.py": []byte(short),
		"b.py": []byte(short),
		"c.py": []byte(short),
	}
	assert.Empty(t, DetectDuplicates(sources), "two-branch chains are below the grouping floor")
}

func TestDetectDuplicates_DifferentShapesDoNotGroup(t *testing.T) {
	boolChain := `def gate(a, b) -> str:
    if a and b:
        return "x"
    elif a or b:
        return "y"
    elif a and not b:
        return "z"
    return "w"
`
	sources := map[string][]byte{
		"a.py": []byte(chainFixture("status", 1)),
		"b.py": []byte(chainFixture("code", 10)),
		"c.py": []byte(boolChain),
	}
	assert.Empty(t, DetectDuplicates(sources),
		"comparison chains and boolean chains have different signatures")
}

func TestDetectDuplicates_OnlyPythonConsidered(t *testing.T) {
	sources := map[string][]byte{
		"a.py": []byte(chainFixture("status", 1)),
		"b.py": []byte(chainFixture("code", 10)),
		"c.go": []byte("package x\n"),
	}
	assert.Empty(t, DetectDuplicates(sources))
}

func TestDetectDuplicates_Deterministic(t *testing.T) {
	sources := map[string][]byte{
		"a.py": []byte(chainFixture("status", 1)),
		"b.py": []byte(chainFixture("code", 10)),
		"c.py": []byte(chainFixture("level", 100)),
	}
	first := DetectDuplicates(sources)
	second := DetectDuplicates(sources)
	assert.Equal(t, first, second)
}
