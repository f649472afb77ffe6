package flux

import (
	"strings"
	"testing"

	"github.com/go-test/deep"
)

// assertNoDiff fails with a field-path-labeled structural diff when want and
// got differ. Plain reflect.DeepEqual (what testify's assert.Equal falls
// back to for non-comparable types) only says "not equal" and dumps both
// values whole; for a nested Hir/Type shape that's unreadable once more than
// one field is off, so comparisons over that kind of value go through
// go-test/deep instead.
func assertNoDiff(t *testing.T, want, got interface{}) {
	t.Helper()
	if diff := deep.Equal(want, got); diff != nil {
		t.Errorf("unexpected difference:\n%s", strings.Join(diff, "\n"))
	}
}

// paramTypeNames renders a function's parameter types through DescribeType,
// the shape assertNoDiff below actually compares (TEnv itself holds an LRU
// cache and other unexported bookkeeping that differs run to run and isn't
// meaningful to diff).
func paramTypeNames(fn *HirFunction) []string {
	names := make([]string, len(fn.ParamTypes))
	for i, id := range fn.ParamTypes {
		names[i] = DescribeType(fn.TE, id)
	}
	return names
}

// TestLowerAndCheck_ColonOptionalSameShape confirms that a colon-less
// parameter list (grammar_item.go's param) lowers to the exact same
// parameter types and diagnostics as its colon-bearing spelling, not merely
// that both parse without diagnostics.
func TestLowerAndCheck_ColonOptionalSameShape(t *testing.T) {
	withColon, _, diagsWith := singleFileProgram(t, "fn add(a: s32, b: u32) -> s32 {\n    return a;\n}\n")
	withoutColon, _, diagsWithout := singleFileProgram(t, "fn add(a s32, b u32) -> s32 {\n    return a;\n}\n")

	assertNoDiff(t, diagsWith, diagsWithout)
	assertNoDiff(t, paramTypeNames(withColon.Functions[0]), paramTypeNames(withoutColon.Functions[0]))
}
