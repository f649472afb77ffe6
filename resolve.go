package flux

// Namespace selects which of a PerNS's two slots a lookup targets. Modules
// live in the Types namespace, matching the original's
// PerNs::from_def(ModuleDefId::ModuleId(_)) mapping.
type Namespace int

const (
	NSTypes Namespace = iota
	NSValues
)

// ScopeEntry is one namespace slot's worth of binding: either a reference
// to a module (IsModule) or a concrete item, plus the visibility and owning
// module needed by the privacy check in path resolution step 4.
type ScopeEntry struct {
	IsModule     bool
	Module       ModuleID // valid when IsModule
	Item         ItemID   // valid when !IsModule
	VariantIndex int      // >=0 when Item.Kind == ItemKindEnum and this names one variant
	Visible      bool
	OwnerModule  ModuleID
}

// PerNS pairs the types- and values-namespace bindings a single name may
// carry simultaneously (a struct contributes both: the type and its
// constructor function). Ported from
// original_source/compiler/flux_hir/src/per_ns.rs's PerNs.
type PerNS struct {
	Types  *ScopeEntry
	Values *ScopeEntry
}

// ItemScope is a module's (or the prelude's) first-segment lookup table.
type ItemScope map[Word]PerNS

func setNS(scope ItemScope, name Word, ns Namespace, entry ScopeEntry) {
	p := scope[name]
	switch ns {
	case NSTypes:
		p.Types = &entry
	case NSValues:
		p.Values = &entry
	}
	scope[name] = p
}

func lookupNS(scope ItemScope, name Word, ns Namespace) (ScopeEntry, bool) {
	p, ok := scope[name]
	if !ok {
		return ScopeEntry{}, false
	}
	var e *ScopeEntry
	if ns == NSTypes {
		e = p.Types
	} else {
		e = p.Values
	}
	if e == nil {
		return ScopeEntry{}, false
	}
	return *e, true
}

// BuildScopes populates every module's ItemScope (and the package's
// PreludeScope) from the item trees the module collector already built.
// Spec section 4.4: "After all files are parsed, each module's ItemScope
// is populated from its item tree." Duplicate top-level names within one
// namespace of one module are reported as CodeDuplicateItemName rather
// than silently shadowed, since C6 never orders items meaningfully.
func BuildScopes(pkg *Package) []Diagnostic {
	var diags []Diagnostic

	pkg.PreludeScope = ItemScope{}
	addItemTreeToScope(pkg.PreludeScope, pkg.Prelude, InvalidModuleID, &diags)

	for i := range pkg.Modules {
		mod := &pkg.Modules[i]
		mod.Scope = ItemScope{}
		addItemTreeToScope(mod.Scope, mod.Items, ModuleID(i), &diags)
	}
	for i := range pkg.Modules {
		mod := &pkg.Modules[i]
		for _, child := range mod.Children {
			name := pkg.Modules[child].Name
			entry := ScopeEntry{IsModule: true, Module: child, Visible: pkg.Modules[child].Visible, OwnerModule: ModuleID(i)}
			if existing, ok := lookupNS(mod.Scope, name, NSTypes); ok && !existing.IsModule {
				diags = append(diags, errorf(CodeDuplicateItemName, Span{}, "module %q collides with an existing type-namespace item", pkg.Interner.Text(name)))
				continue
			}
			setNS(mod.Scope, name, NSTypes, entry)
		}
	}
	return diags
}

func addItemTreeToScope(scope ItemScope, tree *ItemTree, owner ModuleID, diags *[]Diagnostic) {
	declare := func(name Word, ns Namespace, entry ScopeEntry) {
		if _, ok := lookupNS(scope, name, ns); ok {
			*diags = append(*diags, errorf(CodeDuplicateItemName, Span{}, "duplicate item name in this scope"))
			return
		}
		setNS(scope, name, ns, entry)
	}

	for i, fn := range tree.Functions {
		declare(fn.Name, NSValues, ScopeEntry{
			Item: ItemID{Module: owner, Kind: ItemKindFn, Index: i}, VariantIndex: -1,
			Visible: fn.Visible, OwnerModule: owner,
		})
	}
	for i, s := range tree.Structs {
		declare(s.Name, NSTypes, ScopeEntry{
			Item: ItemID{Module: owner, Kind: ItemKindStruct, Index: i}, VariantIndex: -1,
			Visible: s.Visible, OwnerModule: owner,
		})
	}
	for i, e := range tree.Enums {
		declare(e.Name, NSTypes, ScopeEntry{
			Item: ItemID{Module: owner, Kind: ItemKindEnum, Index: i}, VariantIndex: -1,
			Visible: e.Visible, OwnerModule: owner,
		})
	}
	for i, tr := range tree.Traits {
		declare(tr.Name, NSTypes, ScopeEntry{
			Item: ItemID{Module: owner, Kind: ItemKindTrait, Index: i}, VariantIndex: -1,
			Visible: tr.Visible, OwnerModule: owner,
		})
	}
}

// isDescendantOf reports whether module a is nested within module b
// (b is an ancestor of a, or a == b), the condition spec step 4 grants an
// exception for: "unless A descends from B".
func isDescendantOf(pkg *Package, a, b ModuleID) bool {
	for cur := a; cur != InvalidModuleID; cur = pkg.Modules[cur].Parent {
		if cur == b {
			return true
		}
	}
	return false
}

func visibleFrom(pkg *Package, from ModuleID, entry ScopeEntry) bool {
	if entry.Visible {
		return true
	}
	return isDescendantOf(pkg, from, entry.OwnerModule)
}

// PathSegments reads the interned words of a SynPath's SynPathSegment
// children, in order.
func PathSegments(path *GreenNode, interner *Interner) []Word {
	if path == nil {
		return nil
	}
	var out []Word
	for _, seg := range path.ChildNodes() {
		if seg.Kind != SynPathSegment {
			continue
		}
		if tok, ok := seg.FirstToken(KindIdent); ok {
			out = append(out, interner.Intern(tok.Text))
			continue
		}
		if tok, ok := seg.FirstToken(KindThis); ok {
			out = append(out, interner.Intern(tok.Text))
		}
	}
	return out
}

// ResolvePath implements spec section 4.5's 5-step algorithm for path P
// (given as interned segments) looked up from module `from`. Every segment
// before the last names a module, enum or trait to descend through and is
// looked up in the types namespace; only the last segment is looked up in
// namespace ns. It is used directly by C10 for path expressions/types and
// by ResolveUseDecls for `use` targets.
func ResolvePath(pkg *Package, from ModuleID, segments []Word, ns Namespace) (ScopeEntry, *Diagnostic) {
	if len(segments) == 0 {
		d := errorf(CodeEmptyPath, Span{}, "empty path")
		return ScopeEntry{}, &d
	}

	nsAt := func(i int) Namespace {
		if i < len(segments)-1 {
			return NSTypes
		}
		return ns
	}

	first := segments[0]
	var cur ScopeEntry

	if pkg.Interner.Text(first) == "pkg" {
		cur = ScopeEntry{IsModule: true, Module: pkg.Root, Visible: true, OwnerModule: pkg.Root}
	} else {
		entry, ok := lookupNS(pkg.Modules[from].Scope, first, nsAt(0))
		if !ok {
			entry, ok = lookupNS(pkg.PreludeScope, first, nsAt(0))
		}
		if !ok {
			d := errorf(CodeUnresolvedPath, Span{}, "cannot find %q in this scope", pkg.Interner.Text(first))
			return ScopeEntry{}, &d
		}
		if !visibleFrom(pkg, from, entry) {
			d := errorf(CodePrivateModule, Span{}, "%q is private here", pkg.Interner.Text(first))
			return ScopeEntry{}, &d
		}
		cur = entry
	}

	for i, seg := range segments[1:] {
		next, ok := descendInto(pkg, cur, seg, nsAt(i+1))
		if !ok {
			d := errorf(CodeUnresolvedPath, Span{}, "cannot find %q in %q", pkg.Interner.Text(seg), pkg.Interner.Text(first))
			return ScopeEntry{}, &d
		}
		if !visibleFrom(pkg, from, next) {
			d := errorf(CodePrivateModule, Span{}, "%q is private here", pkg.Interner.Text(seg))
			return ScopeEntry{}, &d
		}
		cur = next
	}
	return cur, nil
}

// descendInto implements step 3: descend through a module's scope, an
// enum's variants, or a trait's associated names.
func descendInto(pkg *Package, cur ScopeEntry, seg Word, ns Namespace) (ScopeEntry, bool) {
	if cur.IsModule {
		return lookupNS(pkg.Modules[cur.Module].Scope, seg, ns)
	}
	switch cur.Item.Kind {
	case ItemKindEnum:
		enumItem := pkg.Modules[cur.Item.Module].Items.Enums[cur.Item.Index]
		for i, v := range enumItem.Variants {
			if v.Name == seg {
				return ScopeEntry{
					Item: ItemID{Module: cur.Item.Module, Kind: ItemKindEnum, Index: cur.Item.Index},
					VariantIndex: i, Visible: true, OwnerModule: cur.OwnerModule,
				}, true
			}
		}
	case ItemKindTrait:
		traitItem := pkg.Modules[cur.Item.Module].Items.Traits[cur.Item.Index]
		for _, m := range traitItem.Methods {
			if m.Name == seg {
				return ScopeEntry{
					Item: ItemID{Module: cur.Item.Module, Kind: ItemKindTrait, Index: cur.Item.Index},
					VariantIndex: -1, Visible: true, OwnerModule: cur.OwnerModule,
				}, true
			}
		}
		for _, at := range traitItem.AssocTypes {
			if at.Name == seg {
				return ScopeEntry{
					Item: ItemID{Module: cur.Item.Module, Kind: ItemKindTrait, Index: cur.Item.Index},
					VariantIndex: -1, Visible: true, OwnerModule: cur.OwnerModule,
				}, true
			}
		}
	}
	return ScopeEntry{}, false
}

// pendingUse tracks, per module and per namespace, whether a `use`
// declaration's target has been spliced into the importing module's scope
// yet.
type pendingUse struct {
	module         ModuleID
	use            UseItem
	typesResolved  bool
	valuesResolved bool
}

// ResolveUseDecls runs spec section 4.5's fixed-point over every module's
// `use` declarations: each pass tries every still-unresolved use, splicing
// a successful resolution directly into the importing module's ItemScope
// (so a `use` of a `use` resolves transitively once its target itself
// resolves). The loop stops once a full pass makes no progress; anything
// left unresolved becomes a CodeUnresolvedUse diagnostic.
func ResolveUseDecls(pkg *Package) []Diagnostic {
	var pending []*pendingUse
	for i := range pkg.Modules {
		for _, u := range pkg.Modules[i].Items.Uses {
			pending = append(pending, &pendingUse{module: ModuleID(i), use: u})
		}
	}

	for {
		progress := false
		for _, pu := range pending {
			if pu.typesResolved && pu.valuesResolved {
				continue
			}
			segments := PathSegments(pu.use.Path, pkg.Interner)
			if len(segments) == 0 {
				pu.typesResolved, pu.valuesResolved = true, true
				continue
			}
			name := segments[len(segments)-1]
			scope := pkg.Modules[pu.module].Scope

			if !pu.typesResolved {
				if entry, diag := ResolvePath(pkg, pu.module, segments, NSTypes); diag == nil {
					setNS(scope, name, NSTypes, entry)
					pu.typesResolved = true
					progress = true
				}
			}
			if !pu.valuesResolved {
				if entry, diag := ResolvePath(pkg, pu.module, segments, NSValues); diag == nil {
					setNS(scope, name, NSValues, entry)
					pu.valuesResolved = true
					progress = true
				}
			}
		}
		if !progress {
			break
		}
	}

	var diags []Diagnostic
	for _, pu := range pending {
		if !pu.typesResolved && !pu.valuesResolved {
			segments := PathSegments(pu.use.Path, pkg.Interner)
			text := ""
			for i, s := range segments {
				if i > 0 {
					text += "::"
				}
				text += pkg.Interner.Text(s)
			}
			diags = append(diags, errorf(CodeUnresolvedUse, Span{}, "unresolved use %q", text))
		}
	}
	return diags
}
