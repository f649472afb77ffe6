package flux

import (
	_ "embed"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

//go:embed prelude.flx
var preludeSource string

// CompileOptions configures a BuildPackage run. Grounded on the teacher's
// Config struct (config.go): a small, all-defaults-sane settings bag
// threaded through the collection pass.
type CompileOptions struct {
	// MaxSourceBytes bounds the total bytes of source text a module
	// collection run will pull in across every resolved file, guarding
	// against a pathological `mod` cycle through ever-larger directory
	// fallbacks (spec section 4.4's [NEW] diagnostic budget).
	MaxSourceBytes int64
}

const defaultMaxSourceBytes = 64 * 1024 * 1024

func DefaultCompileOptions() CompileOptions {
	return CompileOptions{MaxSourceBytes: defaultMaxSourceBytes}
}

// pendingModule is one entry in the collector's worklist: a `mod`
// declaration waiting to be resolved into a file (or, for an inline body,
// into a module built directly from the declaring file's own tree).
type pendingModule struct {
	parent ModuleID
	item   ModItem
}

// BuildPackage resolves the full module tree reachable from entryPath,
// following every `mod` declaration, and returns the collected Package
// together with any diagnostics raised along the way (could-not-open
// modules, a source budget overrun, parse errors in any visited file).
// Grounded on spec section 4.4's worklist algorithm and the teacher's own
// query-driven file loading in query.go (GetFileContentQuery feeding
// ParseQuery).
func BuildPackage(entryPath string, resolver FileResolver, interner *Interner, opts CompileOptions) (*Package, []Diagnostic) {
	var diags []Diagnostic
	var totalBytes int64
	budgetExceeded := false

	preludeFile := interner.InternFile("<prelude>")
	preludeParse := ParseSource(preludeSource, preludeFile, interner)
	preludeTree := BuildItemTree(preludeParse.Green, interner)

	pkg := &Package{
		CompilationID: newCompilationID(),
		Interner:      interner,
		Root:          0,
		Prelude:       preludeTree,
	}

	entryFile, entryContent, err := resolver.ResolveAbsolute(entryPath)
	if err != nil {
		diags = append(diags, errorf(CodeCouldNotOpenModule, Span{}, "could not open entry module %q: %v", entryPath, err))
		stampCompilationID(diags, pkg.CompilationID)
		return pkg, diags
	}
	totalBytes += int64(len(entryContent))

	rootParse := ParseSource(entryContent, entryFile, interner)
	diags = append(diags, rootParse.Diagnostics...)
	rootTree := BuildItemTree(rootParse.Green, interner)
	pkg.Modules = append(pkg.Modules, ModuleData{
		Name:   interner.Intern("crate"),
		Parent: InvalidModuleID,
		File:   entryFile,
		Items:  rootTree,
		Root:   rootParse.Green,
	})

	var worklist []pendingModule
	for _, m := range rootTree.Mods {
		worklist = append(worklist, pendingModule{parent: pkg.Root, item: m})
	}

	for len(worklist) > 0 {
		pm := worklist[0]
		worklist = worklist[1:]

		if pm.item.Inline != nil {
			childTree := BuildItemTree(pm.item.Inline, interner)
			child := ModuleID(len(pkg.Modules))
			pkg.Modules = append(pkg.Modules, ModuleData{
				Name:    pm.item.Name,
				Parent:  pm.parent,
				File:    pkg.Modules[pm.parent].File,
				Visible: pm.item.Visible,
				Items:   childTree,
				// Inline mod { ... } bodies live inside the declaring file's
				// own tree, so the declaring module's Root also covers this
				// child's spans; reuse it rather than re-walking a subtree.
				Root: pkg.Modules[pm.parent].Root,
			})
			pkg.Modules[pm.parent].Children = append(pkg.Modules[pm.parent].Children, child)
			for _, m := range childTree.Mods {
				worklist = append(worklist, pendingModule{parent: child, item: m})
			}
			continue
		}

		if budgetExceeded {
			child := ModuleID(len(pkg.Modules))
			pkg.Modules = append(pkg.Modules, ModuleData{
				Name: pm.item.Name, Parent: pm.parent, File: pkg.Modules[pm.parent].File,
				Visible: pm.item.Visible, Items: &ItemTree{},
			})
			// Root left nil: this module is an empty stand-in for source that
			// was never loaded (budget exceeded), so it has no tree to index.
			pkg.Modules[pm.parent].Children = append(pkg.Modules[pm.parent].Children, child)
			continue
		}

		anchor := pkg.Modules[pm.parent].File
		name := interner.Text(pm.item.Name)
		file, content, err := resolveModuleFile(resolver, anchor, name)
		if err != nil {
			diags = append(diags, errorf(CodeCouldNotOpenModule, Span{},
				"could not resolve module %q declared in %s: %v", name, interner.FilePath(anchor), err))
			child := ModuleID(len(pkg.Modules))
			pkg.Modules = append(pkg.Modules, ModuleData{
				Name: pm.item.Name, Parent: pm.parent, File: anchor,
				Visible: pm.item.Visible, Items: &ItemTree{},
			})
			// Root left nil: the module file itself could not be opened.
			pkg.Modules[pm.parent].Children = append(pkg.Modules[pm.parent].Children, child)
			continue
		}

		totalBytes += int64(len(content))
		if totalBytes > opts.MaxSourceBytes {
			budgetExceeded = true
			diags = append(diags, errorf(CodeSourceBudgetExceeded, Span{},
				"module collection exceeded the %s source budget while loading %q",
				humanize.Bytes(uint64(opts.MaxSourceBytes)), name))
		}

		parse := ParseSource(content, file, interner)
		diags = append(diags, parse.Diagnostics...)
		childTree := BuildItemTree(parse.Green, interner)

		child := ModuleID(len(pkg.Modules))
		pkg.Modules = append(pkg.Modules, ModuleData{
			Name: pm.item.Name, Parent: pm.parent, File: file,
			Visible: pm.item.Visible, Items: childTree, Root: parse.Green,
		})
		pkg.Modules[pm.parent].Children = append(pkg.Modules[pm.parent].Children, child)

		for _, m := range childTree.Mods {
			worklist = append(worklist, pendingModule{parent: child, item: m})
		}
	}

	diags = append(diags, BuildScopes(pkg)...)
	diags = append(diags, ResolveUseDecls(pkg)...)

	stampCompilationID(diags, pkg.CompilationID)
	return pkg, diags
}

// resolveModuleFile tries the two candidate paths spec section 4.4 names
// for `mod foo;`: a sibling file `foo.flx`, then a directory module
// `foo/foo.flx`.
func resolveModuleFile(resolver FileResolver, anchor FileID, name string) (FileID, string, error) {
	file, content, err := resolver.ResolveRelative(anchor, name+".flx")
	if err == nil {
		return file, content, nil
	}
	file, content, err2 := resolver.ResolveRelative(anchor, name+"/"+name+".flx")
	if err2 == nil {
		return file, content, nil
	}
	return InvalidFileID, "", fmt.Errorf("tried %s.flx and %s/%s.flx: %v", name, name, name, err)
}

func newCompilationID() uuid.UUID {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.UUID{}
	}
	return id
}
