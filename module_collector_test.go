package flux

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestPackage(t *testing.T, entry string, files map[string]string) (*Package, []Diagnostic) {
	t.Helper()
	interner := NewInterner()
	resolver := NewMapFileResolver(interner)
	for p, content := range files {
		resolver.Add(p, content)
	}
	return BuildPackage(entry, resolver, interner, DefaultCompileOptions())
}

func TestBuildPackage_SingleFile(t *testing.T) {
	pkg, diags := buildTestPackage(t, "/main.flx", map[string]string{
		"/main.flx": "fn main() {}\n",
	})
	require.Empty(t, diags)
	require.Len(t, pkg.Modules, 1)
	assert.Len(t, pkg.Modules[pkg.Root].Items.Functions, 1)
}

func TestBuildPackage_SiblingModule(t *testing.T) {
	pkg, diags := buildTestPackage(t, "/main.flx", map[string]string{
		"/main.flx":   "mod shapes;\n\nfn main() {}\n",
		"/shapes.flx": "pub struct Point { x: s32, y: s32 }\n",
	})
	require.Empty(t, diags)
	require.Len(t, pkg.Modules, 2)

	root := pkg.Modules[pkg.Root]
	require.Len(t, root.Children, 1)

	shapes := pkg.Modules[root.Children[0]]
	require.Len(t, shapes.Items.Structs, 1)
	assert.Equal(t, "Point", pkg.Interner.Text(shapes.Items.Structs[0].Name))
	assert.True(t, shapes.Items.Structs[0].Visible)
}

func TestBuildPackage_DirectoryModule(t *testing.T) {
	pkg, diags := buildTestPackage(t, "/main.flx", map[string]string{
		"/main.flx":       "mod shapes;\n",
		"/shapes/shapes.flx": "pub struct Point { x: s32, y: s32 }\n",
	})
	require.Empty(t, diags)
	root := pkg.Modules[pkg.Root]
	require.Len(t, root.Children, 1)
	shapes := pkg.Modules[root.Children[0]]
	require.Len(t, shapes.Items.Structs, 1)
}

func TestBuildPackage_InlineModule(t *testing.T) {
	pkg, diags := buildTestPackage(t, "/main.flx", map[string]string{
		"/main.flx": "mod shapes {\n    pub struct Point { x: s32, y: s32 }\n}\n",
	})
	require.Empty(t, diags)
	root := pkg.Modules[pkg.Root]
	require.Len(t, root.Children, 1)
	shapes := pkg.Modules[root.Children[0]]
	require.Len(t, shapes.Items.Structs, 1)
	assert.Equal(t, shapes.File, root.File)
}

func TestBuildPackage_CouldNotOpenModule(t *testing.T) {
	pkg, diags := buildTestPackage(t, "/main.flx", map[string]string{
		"/main.flx": "mod missing;\n",
	})
	require.Len(t, diags, 1)
	assert.Equal(t, CodeCouldNotOpenModule, diags[0].Code)

	root := pkg.Modules[pkg.Root]
	require.Len(t, root.Children, 1)
	missing := pkg.Modules[root.Children[0]]
	assert.Empty(t, missing.Items.Structs)
	assert.Empty(t, missing.Items.Functions)
}

func TestBuildPackage_PreludePopulated(t *testing.T) {
	pkg, diags := buildTestPackage(t, "/main.flx", map[string]string{
		"/main.flx": "fn main() {}\n",
	})
	require.Empty(t, diags)
	require.Len(t, pkg.Prelude.Structs, 1)
	assert.Equal(t, "Unit", pkg.Interner.Text(pkg.Prelude.Structs[0].Name))
	_, ok := lookupNS(pkg.PreludeScope, pkg.Interner.Intern("Unit"), NSTypes)
	assert.True(t, ok)
}

func TestResolvePath_CrossFileVisibility(t *testing.T) {
	pkg, diags := buildTestPackage(t, "/main.flx", map[string]string{
		"/main.flx": "mod shapes;\n",
		"/shapes.flx": "pub struct Point { x: s32, y: s32 }\n" +
			"fn helper() {}\n",
	})
	require.Empty(t, diags)

	interner := pkg.Interner
	root := pkg.Root

	pointEntry, diag := ResolvePath(pkg, root, []Word{interner.Intern("shapes"), interner.Intern("Point")}, NSTypes)
	require.Nil(t, diag)
	assert.Equal(t, ItemKindStruct, pointEntry.Item.Kind)

	_, diag = ResolvePath(pkg, root, []Word{interner.Intern("shapes"), interner.Intern("helper")}, NSValues)
	require.NotNil(t, diag)
	assert.Equal(t, CodePrivateModule, diag.Code)
}

func TestResolvePath_UnresolvedName(t *testing.T) {
	pkg, diags := buildTestPackage(t, "/main.flx", map[string]string{
		"/main.flx": "fn main() {}\n",
	})
	require.Empty(t, diags)
	_, diag := ResolvePath(pkg, pkg.Root, []Word{pkg.Interner.Intern("nope")}, NSValues)
	require.NotNil(t, diag)
	assert.Equal(t, CodeUnresolvedPath, diag.Code)
}

func TestResolveUseDecls_BringsNameIntoScope(t *testing.T) {
	pkg, diags := buildTestPackage(t, "/main.flx", map[string]string{
		"/main.flx":   "mod shapes;\n\nuse shapes::Point;\n\nfn make() -> Point { Point { x: 1, y: 2 } }\n",
		"/shapes.flx": "pub struct Point { x: s32, y: s32 }\n",
	})
	require.Empty(t, diags)

	entry, ok := lookupNS(pkg.Modules[pkg.Root].Scope, pkg.Interner.Intern("Point"), NSTypes)
	require.True(t, ok)
	assert.Equal(t, ItemKindStruct, entry.Item.Kind)
}

func TestResolveUseDecls_UnresolvedReported(t *testing.T) {
	_, diags := buildTestPackage(t, "/main.flx", map[string]string{
		"/main.flx": "use shapes::Point;\n",
	})
	require.Len(t, diags, 1)
	assert.Equal(t, CodeUnresolvedUse, diags[0].Code)
}
