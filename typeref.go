package flux

import "strconv"

// lowerCtx carries everything a single function body's lowering needs:
// the owning package and module (for path resolution), the type
// environment bodies are checked against, the span index for the module's
// file, the generic parameters in scope, and a sink for diagnostics. One
// lowerCtx is built per function by LowerAndCheck and threaded through
// every helper in this file and lower.go, mirroring the teacher's
// Parser-struct-as-shared-state pattern (parser.go) generalized to the
// checking phase.
type lowerCtx struct {
	pkg      *Package
	mod      ModuleID
	te       *TEnv
	spans    *spanIndex
	generics map[Word]bool
	thisCtx  ThisCtx
	diags    *[]Diagnostic
	applies  *applyTable

	// fn is the HirFunction currently being built; lowerExpr and friends
	// (lower.go) append to fn.Exprs as they walk a body. nil while only
	// lowering a standalone type reference (e.g. an apply table's target
	// type is lowered outside of any function body).
	fn *HirFunction
}

func (lc *lowerCtx) pushDiag(d Diagnostic) { *lc.diags = append(*lc.diags, d) }

func (lc *lowerCtx) span(n *GreenNode) Span {
	if n == nil {
		return Span{File: lc.spans.file}
	}
	return lc.spans.Span(n)
}

// lowerTypeRef converts a type CST node (spec section 4.2's grammar:
// path_type | tuple_type | array_type | this_path_type, with a postfix `*`
// for pointer types) into a TypeID inserted into lc.te. A nil node (an
// omitted annotation) lowers to Type::Unknown, matching spec section 3's
// "Unknown is permitted during lowering".
func lowerTypeRef(lc *lowerCtx, node *GreenNode) TypeID {
	if node == nil {
		return lc.te.Insert(unknownType(), Span{File: lc.spans.file})
	}
	span := lc.span(node)
	switch node.Kind {
	case SynPointerType:
		pointee := lowerTypeRef(lc, firstTypeChild(node))
		return lc.te.Insert(Type{Tag: TyPointer, Pointee: pointee}, span)
	case SynTupleType:
		var elems []TypeID
		for _, c := range allTypeChildren(node) {
			elems = append(elems, lowerTypeRef(lc, c))
		}
		return lc.te.Insert(Type{Tag: TyTuple, Elems: elems}, span)
	case SynArrayType:
		elem := lowerTypeRef(lc, firstTypeChild(node))
		n := arrayLenOf(node)
		return lc.te.Insert(Type{Tag: TyArray, Elem: elem, Len: n}, span)
	case SynThisPathType:
		return lowerThisPathType(lc, node, span)
	case SynPathType:
		return lowerPathType(lc, node, span)
	default:
		icePanic("lowerTypeRef: node of kind %s is not a type node", node.Kind)
		return 0
	}
}

func arrayLenOf(node *GreenNode) int {
	tok, ok := node.FirstToken(KindIntLiteral)
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(stripUnderscores(tok.Text))
	if err != nil {
		return -1
	}
	return n
}

func stripUnderscores(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// lowerThisPathType resolves `This` against lc.thisCtx (spec section 4.6:
// "this_ctx: (trait_id?, application_id?) for resolution of This"). Outside
// a trait/apply body (thisCtx unset), `This` has no referent and lowers to
// Unknown with a diagnostic.
func lowerThisPathType(lc *lowerCtx, node *GreenNode, span Span) TypeID {
	if lc.thisCtx.ApplyItem == nil && lc.thisCtx.TraitItem == nil {
		lc.pushDiag(errorf(CodeUnresolvedPath, span, "`This` is only valid inside a trait or apply body"))
		return lc.te.Insert(unknownType(), span)
	}
	if lc.thisCtx.ApplyItem != nil {
		app := lc.applies.applications[*lc.thisCtx.ApplyItem]
		return lowerTypeRefIn(lc, app.module, app.targetType)
	}
	// Inside a trait body with no concrete application: This is a rigid
	// generic standing for "whatever type ends up implementing this trait".
	return lc.te.Insert(Type{Tag: TyGeneric, Name: lc.pkg.Interner.Intern("This")}, span)
}

// lowerTypeRefIn lowers a type node that belongs to a different module's
// tree than lc.mod (used for an apply-block's target type, recorded once
// in the apply table but referenced from every call site's This context).
func lowerTypeRefIn(lc *lowerCtx, mod ModuleID, node *GreenNode) TypeID {
	saved := lc.mod
	lc.mod = mod
	defer func() { lc.mod = saved }()
	return lowerTypeRef(lc, node)
}

// lowerPathType handles both primitive-keyword types (sN, uN, f32, f64,
// bool, str — lexed to their own TokenKinds per spec section 4.1) and
// named-item paths, spec section 4.5. A single unqualified segment that
// names an in-scope generic parameter lowers to Type::Generic rather than
// being resolved as a path, since generics never appear in a module's
// ItemScope.
func lowerPathType(lc *lowerCtx, node *GreenNode, span Span) TypeID {
	if tok, ok := node.FirstToken(KindIntTypeS); ok {
		return lc.te.Insert(concreteInt(intKindS(widthOf(tok.Text))), span)
	}
	if tok, ok := node.FirstToken(KindIntTypeU); ok {
		return lc.te.Insert(concreteInt(intKindU(widthOf(tok.Text))), span)
	}
	if _, ok := node.FirstToken(KindF32); ok {
		return lc.te.Insert(concreteFloat(Float32), span)
	}
	if _, ok := node.FirstToken(KindF64); ok {
		return lc.te.Insert(concreteFloat(Float64), span)
	}
	if _, ok := node.FirstToken(KindBoolType); ok {
		return lc.te.Insert(Type{Tag: TyBool}, span)
	}
	if _, ok := node.FirstToken(KindStrType); ok {
		return lc.te.Insert(Type{Tag: TyStr}, span)
	}

	pathNode := node.FirstChild(SynPath)
	segments := PathSegments(pathNode, lc.pkg.Interner)
	if len(segments) == 1 && lc.generics[segments[0]] {
		return lc.te.Insert(Type{Tag: TyGeneric, Name: segments[0]}, span)
	}

	entry, diag := ResolvePath(lc.pkg, lc.mod, segments, NSTypes)
	if diag != nil {
		lc.pushDiag(*diag)
		return lc.te.Insert(unknownType(), span)
	}
	if entry.IsModule {
		lc.pushDiag(errorf(CodeUnexpectedItem, span, "expected a type, found a module"))
		return lc.te.Insert(unknownType(), span)
	}

	var args []TypeID
	if argList := node.FirstChild(SynGenericArgList); argList != nil {
		for _, c := range allTypeChildren(argList) {
			args = append(args, lowerTypeRef(lc, c))
		}
	}
	return lc.te.Insert(Type{Tag: TyPath, Path: entry.Item, Args: args}, span)
}

// widthOf parses the numeric suffix of an sN/uN token's text (e.g. "s32"
// -> 32). The lexer already validated the shape (reIntTypeS/reIntTypeU); a
// parse failure here would mean the lexer's regex and this parse disagree,
// an internal-compiler bug.
func widthOf(text string) int {
	n, err := strconv.Atoi(text[1:])
	if err != nil {
		icePanic("widthOf: malformed primitive-type token %q", text)
	}
	return n
}

// generic params declared on a function/struct/enum/trait/apply's
// GenericParamList, collected into the Word-set lowerPathType and
// lowerTypeRef consult to distinguish a generic parameter from a path.
func collectGenericNames(interner *Interner, list *GreenNode) map[Word]bool {
	out := map[Word]bool{}
	if list == nil {
		return out
	}
	for _, c := range list.ChildNodes() {
		if c.Kind != SynGenericParam {
			continue
		}
		out[itemName(c, interner)] = true
	}
	return out
}
