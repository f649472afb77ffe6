package flux

// checkAllGenericBounds validates every trait's where-clause bounds for
// cyclic supertrait dependencies: `trait A<T> where T is B` followed by
// `trait B<T> where T is A` would make any attempt to check "does some
// type satisfy A" recurse through B back into A forever. Grounded on
// original_source/compiler/flux_hir/src/lower/generic.rs's WherePredicate
// shape (a generic parameter name plus a TypeBoundList of trait paths);
// since this grammar's trait_bound_list carries no generic arguments
// (traitBoundList in grammar_item.go is a plain path list), the only kind
// of cycle a where-clause can encode is a cycle in the trait-to-trait
// dependency graph itself, found here by iterating reachability to a
// fixed point.
func checkAllGenericBounds(pkg *Package) []Diagnostic {
	var diags []Diagnostic

	type edge struct {
		from, to ItemID
		span     Span
	}
	var edges []edge

	for mi := range pkg.Modules {
		mod := ModuleID(mi)
		for ti, trait := range pkg.Modules[mi].Items.Traits {
			if trait.WhereClause == nil {
				continue
			}
			self := ItemID{Module: mod, Kind: ItemKindTrait, Index: ti}
			for _, pred := range trait.WhereClause.ChildNodes() {
				if pred.Kind != SynWherePred {
					continue
				}
				// pred's children are all SynPath nodes: the first is the
				// generic parameter name itself (wherePred parses it with
				// the same `path` rule as a bound), the rest are the
				// trait_bound_list paths this predicate actually asserts.
				predPaths := pred.ChildNodes()
				if len(predPaths) < 2 {
					continue
				}
				for _, boundPath := range predPaths[1:] {
					if boundPath.Kind != SynPath {
						continue
					}
					segments := PathSegments(boundPath, pkg.Interner)
					entry, diag := ResolvePath(pkg, mod, segments, NSTypes)
					if diag != nil {
						diags = append(diags, *diag)
						continue
					}
					if !entry.IsModule && entry.Item.Kind == ItemKindTrait {
						edges = append(edges, edge{from: self, to: entry.Item})
					}
				}
			}
		}
	}

	if len(edges) == 0 {
		return diags
	}

	reach := map[ItemID]map[ItemID]bool{}
	addReach := func(a, b ItemID) bool {
		if reach[a] == nil {
			reach[a] = map[ItemID]bool{}
		}
		if reach[a][b] {
			return false
		}
		reach[a][b] = true
		return true
	}
	for _, e := range edges {
		addReach(e.from, e.to)
	}

	// Fixed-point closure: propagate reach[a][b] && reach[b][c] => reach[a][c]
	// until a full pass makes no progress. A graph with N trait nodes closes
	// in at most N passes, so that's the cap rather than an unbounded loop.
	traitCount := 0
	for mi := range pkg.Modules {
		traitCount += len(pkg.Modules[mi].Items.Traits)
	}
	for pass := 0; pass < traitCount+1; pass++ {
		progress := false
		for a, reachA := range reach {
			for b := range reachA {
				for c := range reach[b] {
					if addReach(a, c) {
						progress = true
					}
				}
			}
		}
		if !progress {
			break
		}
	}

	reported := map[ItemID]bool{}
	for _, e := range edges {
		if reach[e.to][e.from] && !reported[e.from] {
			reported[e.from] = true
			trait := pkg.Modules[e.from.Module].Items.Traits[e.from.Index]
			diags = append(diags, errorf(CodeCyclicGenericBound, Span{},
				"trait %q has a cyclic where-clause bound", pkg.Interner.Text(trait.Name)))
		}
	}
	return diags
}
