package flux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestHir_PrettyBlockBody is a golden-string test for Hir.Pretty, the debug
// dump spec section 4.8 promises: a block-bodied function's single `return`
// statement renders as one indented line under the signature header.
func TestHir_PrettyBlockBody(t *testing.T) {
	hir, pkg, diags := singleFileProgram(t, "fn add(a: s32, b: s32) -> s32 {\n    return a + b;\n}\n")
	assert.Empty(t, diags)

	want := "fn add(a: s32, b: s32) -> s32 [complete]\n" +
		"    return (a + b)\n"
	assert.Equal(t, want, hir.Pretty(pkg))
}

// TestHirFunction_PrettyArrowBody covers the `tail:` branch: an arrow-body
// function has no statements, only a tail expression.
func TestHirFunction_PrettyArrowBody(t *testing.T) {
	hir, pkg, diags := singleFileProgram(t, "fn double(x: s32) -> s32 => x * 2;\n")
	assert.Empty(t, diags)

	want := "fn double(x: s32) -> s32 [complete]\n" +
		"    tail: (x * 2)\n"
	assert.Equal(t, want, hir.Functions[0].Pretty(pkg))
}
