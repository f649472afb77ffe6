package flux

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkProgram runs the full pipeline BuildPackage (which already runs
// BuildScopes and ResolveUseDecls internally) followed by LowerAndCheck,
// used to exercise C10 end to end the way a driver would actually invoke
// this front-end.
func checkProgram(t *testing.T, entry string, files map[string]string) (*Hir, *Package, []Diagnostic) {
	t.Helper()
	pkg, diags := buildTestPackage(t, entry, files)
	require.Empty(t, diags, "unexpected parse/collection diagnostics")

	hir, lowerDiags := LowerAndCheck(pkg)
	diags = append(diags, lowerDiags...)
	return hir, pkg, diags
}

func singleFileProgram(t *testing.T, src string) (*Hir, *Package, []Diagnostic) {
	t.Helper()
	return checkProgram(t, "/main.flx", map[string]string{"/main.flx": src})
}

func findFunction(hir *Hir, pkg *Package, name string) *HirFunction {
	for _, fn := range hir.Functions {
		if pkg.Interner.Text(fn.Name) == name {
			return fn
		}
	}
	return nil
}

func TestLowerAndCheck_TinyFunctionNoDiagnostics(t *testing.T) {
	hir, _, diags := singleFileProgram(t, "fn add(a: s32, b: s32) -> s32 {\n    return a + b;\n}\n")
	assert.Empty(t, diags)
	require.Len(t, hir.Functions, 1)
	fn := hir.Functions[0]
	assert.Equal(t, StateComplete, fn.State)
	assert.Equal(t, "s32", DescribeType(fn.TE, fn.ReturnType))
}

func TestLowerAndCheck_LetInferencePropagation(t *testing.T) {
	hir, _, diags := singleFileProgram(t, "fn main() {\n    let y = 1 + 2;\n}\n")
	assert.Empty(t, diags)
	require.Len(t, hir.Functions, 1)
	fn := hir.Functions[0]
	require.Len(t, fn.Body, 1)
	require.Equal(t, HStmtLet, fn.Body[0].Kind)
	assert.Equal(t, "s32", DescribeType(fn.TE, fn.Body[0].DeclaredType))
}

func TestLowerAndCheck_LetWithoutColonAnnotation(t *testing.T) {
	hir, _, diags := singleFileProgram(t, "fn main() {\n    let x = 0;\n    let y u32 = x;\n}\n")
	assert.Empty(t, diags)
	require.Len(t, hir.Functions, 1)
	fn := hir.Functions[0]
	require.Len(t, fn.Body, 2)
	assert.Equal(t, "u32", DescribeType(fn.TE, fn.Body[1].DeclaredType))
}

func TestLowerAndCheck_StructFieldsWithoutColon(t *testing.T) {
	hir, pkg, diags := singleFileProgram(t, "struct F { x s32, y s32 }\n\nfn make() -> F => F { x: 1, y: 2 };\n")
	assert.Empty(t, diags)
	fn := findFunction(hir, pkg, "make")
	require.NotNil(t, fn)
	assert.Equal(t, StateComplete, fn.State)
}

func TestLowerAndCheck_IntLiteralMaxFitsExactly(t *testing.T) {
	_, _, diags := singleFileProgram(t, "fn main() {\n    let x s8 = 127;\n}\n")
	assert.Empty(t, diags)
}

func TestLowerAndCheck_IntLiteralOneOverOverflows(t *testing.T) {
	_, _, diags := singleFileProgram(t, "fn main() {\n    let x s8 = 128;\n}\n")
	require.Len(t, diags, 1)
	assert.Equal(t, CodeIntegerLiteralOverflow, diags[0].Code)
}

func TestLowerAndCheck_UnsignedIntLiteralRange(t *testing.T) {
	_, _, diagsMax := singleFileProgram(t, "fn main() {\n    let x u8 = 255;\n}\n")
	assert.Empty(t, diagsMax)

	_, _, diagsOver := singleFileProgram(t, "fn main() {\n    let x u8 = 256;\n}\n")
	require.Len(t, diagsOver, 1)
	assert.Equal(t, CodeIntegerLiteralOverflow, diagsOver[0].Code)
}

func TestLowerAndCheck_TypeMismatchDiagnostic(t *testing.T) {
	_, _, diags := singleFileProgram(t, "fn f() -> bool {\n    return 1;\n}\n")
	require.Len(t, diags, 1)
	assert.Equal(t, CodeTypeMismatch, diags[0].Code)
}

func TestLowerAndCheck_CrossFileStructResolution(t *testing.T) {
	hir, _, diags := checkProgram(t, "/main.flx", map[string]string{
		"/main.flx":   "mod shapes;\n\nuse shapes::Point;\n\nfn area(p: Point) -> s32 => p.x * p.y;\n",
		"/shapes.flx": "pub struct Point { x: s32, y: s32 }\n",
	})
	assert.Empty(t, diags)
	require.Len(t, hir.Functions, 1)
	assert.Equal(t, StateComplete, hir.Functions[0].State)
}

func TestLowerAndCheck_PrivateModuleAccessDiagnostic(t *testing.T) {
	_, _, diags := checkProgram(t, "/main.flx", map[string]string{
		"/main.flx":  "mod inner;\n\nfn f(s: inner::Secret) -> s32 => 0;\n",
		"/inner.flx": "struct Secret { x: s32 }\n",
	})
	require.Len(t, diags, 1)
	assert.Equal(t, CodePrivateModule, diags[0].Code)
}

func TestLowerAndCheck_StructLiteralMissingField(t *testing.T) {
	_, _, diags := singleFileProgram(t, "struct Point { x: s32, y: s32 }\n\nfn make() -> Point => Point { x: 1 };\n")
	require.Len(t, diags, 1)
	assert.Equal(t, CodeMissingFields, diags[0].Code)
}

func TestLowerAndCheck_StructLiteralUnknownField(t *testing.T) {
	_, _, diags := singleFileProgram(t, "struct Point { x: s32, y: s32 }\n\nfn make() -> Point => Point { x: 1, y: 2, z: 3 };\n")
	require.Len(t, diags, 1)
	assert.Equal(t, CodeUnknownField, diags[0].Code)
}

func TestLowerAndCheck_EnumVariantCall(t *testing.T) {
	hir, pkg, diags := singleFileProgram(t, "enum Option { Some(s32), None }\n\nfn f() -> Option => Option::Some(1);\n")
	assert.Empty(t, diags)
	fn := findFunction(hir, pkg, "f")
	require.NotNil(t, fn)
	assert.Equal(t, "Option", DescribeType(fn.TE, fn.ReturnType))
}

func TestLowerAndCheck_ArrowShorthandBody(t *testing.T) {
	hir, _, diags := singleFileProgram(t, "fn double(x: s32) -> s32 => x * 2;\n")
	assert.Empty(t, diags)
	require.Len(t, hir.Functions, 1)
	assert.NotEqual(t, noExpr, hir.Functions[0].Tail)
}

func TestLowerAndCheck_MethodResolutionThroughApply(t *testing.T) {
	hir, _, diags := singleFileProgram(t, "struct Point { x: s32, y: s32 }\n\n"+
		"apply Point {\n    fn sum(self: This) -> s32 => self.x + self.y;\n}\n\n"+
		"fn use_it(p: Point) -> s32 => p.sum();\n")
	assert.Empty(t, diags)
	require.Len(t, hir.Functions, 2)

	var sum, useIt *HirFunction
	for _, fn := range hir.Functions {
		if fn.ApplyIndex >= 0 {
			sum = fn
		} else {
			useIt = fn
		}
	}
	require.NotNil(t, sum)
	require.NotNil(t, useIt)
	assert.Equal(t, 0, sum.MethodIndex)
	assert.Equal(t, StateComplete, useIt.State)
}

func TestLowerAndCheck_GenericFieldAccessDeferredThenUnresolved(t *testing.T) {
	_, _, diags := singleFileProgram(t, "fn get<T>(x: T) -> s32 => x.value;\n")
	require.Len(t, diags, 1)
	assert.Equal(t, CodeCouldNotInfer, diags[0].Code)
}

func TestLowerAndCheck_CompilationIDCorrelatesPackageHirAndDiagnostics(t *testing.T) {
	pkg, diags := buildTestPackage(t, "/main.flx", map[string]string{"/main.flx": "fn f() -> bool {\n    return 1;\n}\n"})
	require.Empty(t, diags)
	require.NotEqual(t, uuid.UUID{}, pkg.CompilationID)

	hir, lowerDiags := LowerAndCheck(pkg)
	assert.Equal(t, pkg.CompilationID, hir.CompilationID)
	require.Len(t, lowerDiags, 1)
	assert.Equal(t, pkg.CompilationID, lowerDiags[0].CompilationID)
}

func TestLowerAndCheck_ReturnOnlyBodyNoFalseUnitMismatch(t *testing.T) {
	_, _, diags := singleFileProgram(t, "fn f() -> s32 {\n    return 1;\n}\n")
	assert.Empty(t, diags)
}
