package flux

// applyWitness records one apply-block's evidence that a type satisfies a
// trait (or, for an inherent apply, simply provides methods). The flat
// `Args` slice with a `numTraitParams` split point is ported from the
// original's (never-finished) TraitApplication layout —
// original_source/compiler/flux_hir/src/traits.rs documents the intended
// shape (implementor, then trait params, then implementor params, all in
// one Vec<TypeId>) even though the Rust file itself is stubbed out to
// comments. This port finishes that layout: Args[0] would be the
// implementor's own TypeID once call sites are monomorphized, but since
// this checker never instantiates generics at a call site (see DESIGN.md),
// Args here only ever holds the apply-block's own declared generic
// parameters in declaration order, with NumTraitParams left 0 for an
// inherent apply and 1 for a single-trait application (this grammar never
// parses trait generic args on the TraitPath, so there's at most a
// notional one "slot" reserved for a future trait-args extension).
type applyWitness struct {
	Args           []Word
	NumTraitParams int
}

func (w applyWitness) TraitParams() []Word   { return w.Args[:w.NumTraitParams] }
func (w applyWitness) ImpltorParams() []Word { return w.Args[w.NumTraitParams:] }

// applyRecord is one resolved apply-block: spec section 4.7's
// `(trait_args, target_type, target_args, where_predicates, method_table,
// assoc_type_table)` tuple, plus the bookkeeping buildApplyTable needs to
// index it by trait and by target item.
type applyRecord struct {
	selfIndex int // this record's own index into applyTable.applications

	module ModuleID
	index  int // index into module's ItemTree.Applies

	generics map[Word]bool
	witness  applyWitness

	traitItem *ItemID // nil for an inherent apply
	// targetType is the CST node to re-lower (fresh, per calling function's
	// TEnv) whenever `This` or a method's declared types need the concrete
	// target type. nil when the apply is the simple inherent form
	// (`apply Point { ... }`, where TraitPath names the target directly);
	// in that case targetItem alone is enough to build a TyPath with no
	// generic args.
	targetType *GreenNode
	targetItem ItemID // the struct/enum this apply concerns, resolved once

	item *ApplyItem // back-reference for Methods/AssocBinds

	// methods maps a method name to its index into item.Methods.
	methods map[Word]int
}

// applyTable is the whole package's trait/apply evidence, built once before
// any function body is lowered (method calls inside one function may need
// applies declared in any module, not just its own).
type applyTable struct {
	applications []*applyRecord
	byApplyItem  map[ItemID]*applyRecord
	byTraitItem  map[ItemID][]*applyRecord
	byTargetItem map[ItemID][]*applyRecord
}

// buildApplyTable walks every module's ApplyItems, resolving each one's
// leading path (spec section 4.7: "apply [Trait<T…> to] Type" — TraitPath
// names the trait when TargetType is present, or the target type directly
// when it's the simple inherent form) and indexing the result for the two
// lookups C10 needs: "does X implement Trait" and "what methods does X have
// via any apply at all".
func buildApplyTable(pkg *Package) (*applyTable, []Diagnostic) {
	table := &applyTable{
		byApplyItem:  map[ItemID]*applyRecord{},
		byTraitItem:  map[ItemID][]*applyRecord{},
		byTargetItem: map[ItemID][]*applyRecord{},
	}
	var diags []Diagnostic

	for mi := range pkg.Modules {
		mod := ModuleID(mi)
		for ai, item := range pkg.Modules[mi].Items.Applies {
			rec, diag := resolveApplyItem(pkg, mod, ai, &item)
			if diag != nil {
				diags = append(diags, *diag)
				continue
			}
			rec.selfIndex = len(table.applications)
			table.applications = append(table.applications, rec)
			itemID := ItemID{Module: mod, Kind: ItemKindApply, Index: ai}
			table.byApplyItem[itemID] = rec
			if rec.traitItem != nil {
				table.byTraitItem[*rec.traitItem] = append(table.byTraitItem[*rec.traitItem], rec)
			}
			table.byTargetItem[rec.targetItem] = append(table.byTargetItem[rec.targetItem], rec)
		}
	}
	return table, diags
}

func resolveApplyItem(pkg *Package, mod ModuleID, index int, item *ApplyItem) (*applyRecord, *Diagnostic) {
	segments := PathSegments(item.TraitPath, pkg.Interner)
	entry, diag := ResolvePath(pkg, mod, segments, NSTypes)
	if diag != nil {
		return nil, diag
	}
	if entry.IsModule {
		d := errorf(CodeUnexpectedItem, Span{}, "expected a trait or type, found a module in apply")
		return nil, &d
	}

	rec := &applyRecord{
		module:   mod,
		index:    index,
		generics: collectGenericNames(pkg.Interner, item.Generics),
		item:     item,
		methods:  map[Word]int{},
	}
	if item.Generics != nil {
		for _, c := range item.Generics.ChildNodes() {
			if c.Kind == SynGenericParam {
				rec.witness.Args = append(rec.witness.Args, itemName(c, pkg.Interner))
			}
		}
	}

	if item.TargetType != nil {
		if entry.Item.Kind != ItemKindTrait {
			d := errorf(CodeUnexpectedItem, Span{}, "expected a trait name before `to` in apply")
			return nil, &d
		}
		traitItem := entry.Item
		rec.traitItem = &traitItem
		rec.witness.NumTraitParams = 1
		rec.targetType = item.TargetType
		ti, ok := simpleTargetItem(pkg, mod, item.TargetType)
		if !ok {
			d := errorf(CodeUnexpectedItem, Span{}, "apply target type must name a struct or enum")
			return nil, &d
		}
		rec.targetItem = ti
	} else {
		if entry.Item.Kind != ItemKindStruct && entry.Item.Kind != ItemKindEnum {
			d := errorf(CodeUnexpectedItem, Span{}, "inherent apply target must be a struct or enum")
			return nil, &d
		}
		rec.targetItem = entry.Item
	}

	for mi, m := range item.Methods {
		rec.methods[m.Name] = mi
	}
	return rec, nil
}

// simpleTargetItem resolves a type CST node's head item, used only to
// index an apply-block by the struct/enum it concerns: a `Vec<T>` target's
// generic argument is irrelevant to indexing, only the `Vec` item is.
func simpleTargetItem(pkg *Package, mod ModuleID, node *GreenNode) (ItemID, bool) {
	for node != nil && node.Kind == SynPointerType {
		node = firstTypeChild(node)
	}
	if node == nil || node.Kind != SynPathType {
		return ItemID{}, false
	}
	pathNode := node.FirstChild(SynPath)
	segments := PathSegments(pathNode, pkg.Interner)
	entry, diag := ResolvePath(pkg, mod, segments, NSTypes)
	if diag != nil || entry.IsModule {
		return ItemID{}, false
	}
	return entry.Item, true
}

// methodMatch is one candidate found while resolving `receiver.name(args)`.
type methodMatch struct {
	rec       *applyRecord
	method    FunctionItem
	methodIdx int
	inherent  bool
}

// resolveMethod implements spec section 4.7's method-call algorithm:
// search inherent applies for receiverItem first, then trait applies; on
// multiple matches at the same tier report ambiguity, on zero report
// UnknownMethod.
func (t *applyTable) resolveMethod(receiverItem ItemID, name Word, span Span) (methodMatch, *Diagnostic) {
	var inherentMatches, traitMatches []methodMatch
	for _, rec := range t.byTargetItem[receiverItem] {
		mi, ok := rec.methods[name]
		if !ok {
			continue
		}
		m := methodMatch{rec: rec, method: rec.item.Methods[mi], methodIdx: mi, inherent: rec.traitItem == nil}
		if m.inherent {
			inherentMatches = append(inherentMatches, m)
		} else {
			traitMatches = append(traitMatches, m)
		}
	}
	switch {
	case len(inherentMatches) == 1:
		return inherentMatches[0], nil
	case len(inherentMatches) > 1:
		d := errorf(CodeAmbiguousApply, span, "multiple inherent methods named %q", name)
		return methodMatch{}, &d
	case len(traitMatches) == 1:
		return traitMatches[0], nil
	case len(traitMatches) > 1:
		d := errorf(CodeAmbiguousApply, span, "multiple trait methods named %q are in scope", name)
		return methodMatch{}, &d
	default:
		d := errorf(CodeUnknownMethod, span, "no method named %q", name)
		return methodMatch{}, &d
	}
}
