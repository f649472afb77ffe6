package flux

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// tscope is one lexical scope's worth of local variable bindings. Ported
// from original_source/compiler/flux_typesystem/src/scope.rs's Scope.
type tscope struct {
	vars map[Word]TypeID
}

func newTScope() *tscope { return &tscope{vars: map[Word]TypeID{}} }

// TEnv is the per-function type environment spec section 4.6 describes:
// an append-only Type arena plus a LIFO stack of variable scopes,
// the active function's return type, a queue of deferred constraints, and
// the `This` resolution context. Package-level name matches the
// original's tenv::TEnv (flux_typesystem/src/lib.rs: `use tenv::TEnv`).
type TEnv struct {
	// pkg backs DescribeType's lookup of a TyPath's item name; diagnostics
	// are the only reason a type environment needs to see the package at
	// all, since unification itself only ever compares ItemID values.
	pkg *Package

	types []Spanned[Type]

	scopes []*tscope

	returnTypeID TypeID
	constraints  []Constraint
	thisCtx      ThisCtx

	// resolveCache memoizes the root a Ref chain last resolved to.
	// [NEW]: not in the original's stub tenv.rs, which only has Insert;
	// spec section 4.6 explicitly permits this as an optimization layered
	// on the naive O(depth) walk, not a substitute for its correctness.
	// Purged on every Unify call that rewrites a Ref (see invalidate).
	resolveCache *lru.Cache[TypeID, TypeID]
}

const resolveCacheSize = 1024

// NewTEnv creates an empty type environment with one (function-body-level)
// scope already pushed, matching the original's TEnv::new() plus the
// caller immediately entering the function's top scope.
func NewTEnv(pkg *Package) *TEnv {
	cache, err := lru.New[TypeID, TypeID](resolveCacheSize)
	if err != nil {
		icePanic("NewTEnv: failed to construct resolve cache: %v", err)
	}
	return &TEnv{
		pkg:          pkg,
		scopes:       []*tscope{newTScope()},
		resolveCache: cache,
	}
}

// Insert appends ty and returns its handle. No deduplication: interning
// equal types is an optimization the spec explicitly defers.
func (te *TEnv) Insert(ty Type, span Span) TypeID {
	id := TypeID(len(te.types))
	te.types = append(te.types, Spanned[Type]{Value: ty, Span: span})
	return id
}

// Get is the one-step lookup; callers that need to chase Ref chains must
// call Resolve instead.
func (te *TEnv) Get(id TypeID) Spanned[Type] {
	if int(id) < 0 || int(id) >= len(te.types) {
		icePanic("TEnv.Get: TypeID %d out of range", id)
	}
	return te.types[id]
}

func (te *TEnv) set(id TypeID, ty Type) {
	te.types[id].Value = ty
}

// Resolve follows Ref chains with path compression and returns the
// concrete root Type. A cached root short-circuits the walk; cache
// entries are invalidated by Unify whenever it rewrites a Ref, so a stale
// hit can never outlive the rewrite that would have changed it.
func (te *TEnv) Resolve(id TypeID) (TypeID, Type) {
	if cached, ok := te.resolveCache.Get(id); ok {
		return cached, te.Get(cached).Value
	}

	var chain []TypeID
	cur := id
	for {
		ty := te.Get(cur).Value
		if ty.Tag != TyRef {
			break
		}
		chain = append(chain, cur)
		cur = ty.Ref
	}

	for _, link := range chain {
		te.set(link, refType(cur))
		te.resolveCache.Add(link, cur)
	}
	te.resolveCache.Add(id, cur)
	return cur, te.Get(cur).Value
}

func (te *TEnv) invalidate() {
	te.resolveCache.Purge()
}

// PushScope opens a new lexical scope; locals declared after this call are
// invisible once the matching PopScope runs.
func (te *TEnv) PushScope() {
	te.scopes = append(te.scopes, newTScope())
}

// PopScope closes the innermost scope. Scope lifetime is strictly LIFO
// (spec section 4.6); callers use `defer te.PopScope()` right after
// PushScope, matching the discipline spec section 5 requires.
func (te *TEnv) PopScope() {
	if len(te.scopes) == 0 {
		icePanic("TEnv.PopScope: no scope to pop")
	}
	te.scopes = te.scopes[:len(te.scopes)-1]
}

// DeclareVar binds name to id in the innermost scope.
func (te *TEnv) DeclareVar(name Word, id TypeID) {
	te.scopes[len(te.scopes)-1].vars[name] = id
}

// LookupVar searches scopes innermost-first.
func (te *TEnv) LookupVar(name Word) (TypeID, bool) {
	for i := len(te.scopes) - 1; i >= 0; i-- {
		if id, ok := te.scopes[i].vars[name]; ok {
			return id, true
		}
	}
	return 0, false
}

func (te *TEnv) PushConstraint(c Constraint) { te.constraints = append(te.constraints, c) }

func (te *TEnv) DrainConstraints() []Constraint {
	out := te.constraints
	te.constraints = nil
	return out
}

// Unify implements spec section 4.6's unification table. It mutates te in
// place (rewriting one side to Ref(other) on success) and returns a
// diagnostic instead of an error value, matching every other stage's
// accumulate-don't-abort discipline.
func (te *TEnv) Unify(a, b TypeID, span Span) *Diagnostic {
	ra, tya := te.Resolve(a)
	rb, tyb := te.Resolve(b)
	if ra == rb {
		return nil
	}

	switch {
	case tya.Tag == TyUnknown:
		te.set(ra, refType(rb))
		te.invalidate()
		return nil
	case tyb.Tag == TyUnknown:
		te.set(rb, refType(ra))
		te.invalidate()
		return nil

	case tya.Tag == TyIntVar && tya.IntHint == nil && tyb.Tag == TyInt:
		te.set(ra, refType(rb))
		te.invalidate()
		return nil
	case tyb.Tag == TyIntVar && tyb.IntHint == nil && tya.Tag == TyInt:
		te.set(rb, refType(ra))
		te.invalidate()
		return nil
	case tya.Tag == TyIntVar && tya.IntHint == nil && tyb.Tag == TyIntVar && tyb.IntHint == nil:
		te.set(ra, refType(rb))
		te.invalidate()
		return nil
	case tya.Tag == TyIntVar && tya.IntHint != nil:
		return te.Unify(te.Insert(concreteInt(*tya.IntHint), span), rb, span)
	case tyb.Tag == TyIntVar && tyb.IntHint != nil:
		return te.Unify(ra, te.Insert(concreteInt(*tyb.IntHint), span), span)

	case tya.Tag == TyFloatVar && tyb.Tag == TyFloat:
		te.set(ra, refType(rb))
		te.invalidate()
		return nil
	case tyb.Tag == TyFloatVar && tya.Tag == TyFloat:
		te.set(rb, refType(ra))
		te.invalidate()
		return nil
	case tya.Tag == TyFloatVar && tyb.Tag == TyFloatVar:
		te.set(ra, refType(rb))
		te.invalidate()
		return nil

	case tya.Tag == TyTuple && tyb.Tag == TyTuple:
		if len(tya.Elems) != len(tyb.Elems) {
			d := mismatch(te, ra, rb, span)
			return &d
		}
		for i := range tya.Elems {
			if d := te.Unify(tya.Elems[i], tyb.Elems[i], span); d != nil {
				return d
			}
		}
		return nil

	case tya.Tag == TyPath && tyb.Tag == TyPath:
		if tya.Path != tyb.Path || len(tya.Args) != len(tyb.Args) {
			d := mismatch(te, ra, rb, span)
			return &d
		}
		for i := range tya.Args {
			if d := te.Unify(tya.Args[i], tyb.Args[i], span); d != nil {
				return d
			}
		}
		return nil

	case tya.Tag == TyPointer && tyb.Tag == TyPointer:
		return te.Unify(tya.Pointee, tyb.Pointee, span)

	case tya.Tag == TyArray && tyb.Tag == TyArray:
		if tya.Len != tyb.Len {
			d := mismatch(te, ra, rb, span)
			return &d
		}
		return te.Unify(tya.Elem, tyb.Elem, span)

	case tya.Tag == TyFunction && tyb.Tag == TyFunction:
		if len(tya.Params) != len(tyb.Params) {
			d := mismatch(te, ra, rb, span)
			return &d
		}
		for i := range tya.Params {
			if d := te.Unify(tya.Params[i], tyb.Params[i], span); d != nil {
				return d
			}
		}
		return te.Unify(tya.Ret, tyb.Ret, span)

	case tya.Tag == TyInt && tyb.Tag == TyInt && tya.IntKind == tyb.IntKind:
		return nil
	case tya.Tag == TyFloat && tyb.Tag == TyFloat && tya.FloatKind == tyb.FloatKind:
		return nil
	case tya.Tag == TyBool && tyb.Tag == TyBool, tya.Tag == TyStr && tyb.Tag == TyStr, tya.Tag == TyUnit && tyb.Tag == TyUnit:
		return nil

	// A Generic's bound satisfaction is deferred to trait resolution
	// (spec section 4.7); here we only record the obligation.
	case tya.Tag == TyGeneric:
		te.PushConstraint(typeEqConstraint(ra, rb, span))
		return nil
	case tyb.Tag == TyGeneric:
		te.PushConstraint(typeEqConstraint(rb, ra, span))
		return nil

	default:
		d := mismatch(te, ra, rb, span)
		return &d
	}
}

func mismatch(te *TEnv, a, b TypeID, span Span) Diagnostic {
	return errorf(CodeTypeMismatch, span, "type mismatch: %s vs %s", DescribeType(te, a), DescribeType(te, b))
}
