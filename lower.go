package flux

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// LowerAndCheck is C10: it lowers every function body in pkg (free
// functions and apply-block methods alike) into HIR and type-checks it,
// per spec section 4.8's Pristine -> Lowering -> Constraining -> Solving ->
// Complete|Errored state machine. Callers run it after BuildScopes and
// ResolveUseDecls (spec section 6's pipeline order), since method
// resolution (spec section 4.7) needs every apply block in the package,
// not just the one in the function's own module.
func LowerAndCheck(pkg *Package) (*Hir, []Diagnostic) {
	applies, diags := buildApplyTable(pkg)
	hir := &Hir{CompilationID: pkg.CompilationID}

	spanIndices := make([]*spanIndex, len(pkg.Modules))
	spanIndexFor := func(mod ModuleID) *spanIndex {
		if spanIndices[mod] == nil {
			spanIndices[mod] = buildSpanIndex(pkg.Modules[mod].Root, pkg.Modules[mod].File)
		}
		return spanIndices[mod]
	}

	for mi := range pkg.Modules {
		mod := ModuleID(mi)
		for fi, item := range pkg.Modules[mi].Items.Functions {
			hfn, fdiags := lowerFunction(pkg, applies, spanIndexFor(mod), mod, item, fi, -1, -1, ThisCtx{}, nil)
			hir.Functions = append(hir.Functions, hfn)
			diags = append(diags, fdiags...)
		}
	}

	for _, rec := range applies.applications {
		applyIdx := rec.selfIndex
		for mi, m := range rec.item.Methods {
			thisCtx := ThisCtx{ApplyItem: &applyIdx}
			if rec.traitItem != nil {
				t := *rec.traitItem
				thisCtx.TraitItem = &t
			}
			hfn, fdiags := lowerFunction(pkg, applies, spanIndexFor(rec.module), rec.module, m, 0, applyIdx, mi, thisCtx, rec.generics)
			hir.Functions = append(hir.Functions, hfn)
			diags = append(diags, fdiags...)
		}
	}

	diags = append(diags, checkAllGenericBounds(pkg)...)
	stampCompilationID(diags, pkg.CompilationID)
	return hir, diags
}

// stampCompilationID fills in every diagnostic's CompilationID in place.
// Diagnostics are built by errorf throughout the lowering/resolution code
// with no Package in scope to stamp at construction time, so every
// top-level entry point (this one, BuildPackage) stamps its own batch just
// before returning it to the caller.
func stampCompilationID(diags []Diagnostic, id uuid.UUID) {
	for i := range diags {
		diags[i].CompilationID = id
	}
}

// lowerFunction lowers a single function's signature and body. fnIndex
// addresses item within its module's ItemTree.Functions for a free
// function (applyIndex < 0); for an apply method, applyIndex/methodIndex
// address it instead and fnIndex is unused.
func lowerFunction(
	pkg *Package, applies *applyTable, spans *spanIndex, mod ModuleID,
	item FunctionItem, fnIndex, applyIndex, methodIndex int,
	thisCtx ThisCtx, outerGenerics map[Word]bool,
) (*HirFunction, []Diagnostic) {
	var diags []Diagnostic
	te := NewTEnv(pkg)

	generics := map[Word]bool{}
	for w := range outerGenerics {
		generics[w] = true
	}
	for w := range collectGenericNames(pkg.Interner, item.Generics) {
		generics[w] = true
	}

	hfn := &HirFunction{
		Module: mod, Index: fnIndex, Name: item.Name,
		ApplyIndex: applyIndex, MethodIndex: methodIndex,
	}

	lc := &lowerCtx{
		pkg: pkg, mod: mod, te: te, spans: spans, generics: generics,
		thisCtx: thisCtx, diags: &diags, applies: applies, fn: hfn,
	}

	if item.ParamList != nil {
		for _, p := range item.ParamList.ChildNodes() {
			if p.Kind != SynParam {
				continue
			}
			pname := itemName(p, pkg.Interner)
			ptype := lowerTypeRef(lc, firstTypeChild(p))
			hfn.ParamNames = append(hfn.ParamNames, pname)
			hfn.ParamTypes = append(hfn.ParamTypes, ptype)
			te.DeclareVar(pname, ptype)
		}
	}

	sigSpan := lc.span(item.Node)
	if item.ReturnType != nil {
		hfn.ReturnType = lowerTypeRef(lc, item.ReturnType)
	} else {
		hfn.ReturnType = te.Insert(Type{Tag: TyUnit}, sigSpan)
	}
	te.returnTypeID = hfn.ReturnType

	hfn.State = StateLowering
	switch {
	case item.Body == nil:
		// A trait method signature: nothing to lower or check.
	case item.Body.Kind == SynArrowBody:
		tail := lowerExpr(lc, firstExprChild(item.Body))
		hfn.Tail = tail
		unifyTail(lc, nil, tail, hfn.ReturnType, lc.span(item.Body))
	case item.Body.Kind == SynBlockExpr:
		stmts, tail := lowerBlockStmts(lc, item.Body)
		hfn.Body = stmts
		hfn.Tail = tail
		unifyTail(lc, stmts, tail, hfn.ReturnType, lc.span(item.Body))
	}

	solveConstraints(lc)

	hfn.TE = te
	hfn.State = StateComplete
	for _, d := range diags {
		if d.Severity == SeverityError {
			hfn.State = StateErrored
			break
		}
	}
	return hfn, diags
}

// unifyTail checks a function body's trailing value against its declared
// return type. When the body has no tail expression, it's only treated as
// implicitly returning Unit if the body doesn't already end in an explicit
// `return`: `fn f() -> s32 { return 1; }` has no tail expression at all,
// and its return statement already unified against want on its own, so
// forcing Unit here too would misfire a type-mismatch. Reachability beyond
// that (every path returning) isn't analyzed; a body that falls off the
// end after a conditional return is simply not caught.
func unifyTail(lc *lowerCtx, stmts []HirStmt, tail ExprIdx, want TypeID, span Span) {
	if tail == noExpr {
		if len(stmts) > 0 && stmts[len(stmts)-1].Kind == HStmtReturn {
			return
		}
		unitTy := lc.te.Insert(Type{Tag: TyUnit}, span)
		if d := lc.te.Unify(unitTy, want, span); d != nil {
			lc.pushDiag(*d)
		}
		return
	}
	if d := lc.te.Unify(lc.fn.Exprs[tail].Type, want, span); d != nil {
		lc.pushDiag(*d)
	}
}

// solveConstraints runs spec section 4.8's Constraining/Solving phases: it
// discharges every deferred Constraint (TypeEq, FieldAccess) pushed while
// lowering the body, then walks every produced HirExpr and resolves its
// TypeID to a concrete root, defaulting still-unconstrained integer/float
// variables (s32/f64) and reporting CodeCouldNotInfer for anything left
// genuinely Unknown.
func solveConstraints(lc *lowerCtx) {
	lc.fn.State = StateConstraining
	pending := lc.te.DrainConstraints()
	lc.fn.State = StateSolving

	for _, c := range pending {
		switch c.Kind {
		case ConstraintTypeEq:
			if d := lc.te.Unify(c.A, c.B, c.Span); d != nil {
				lc.pushDiag(*d)
			}
		case ConstraintFieldAccess:
			resolveFieldAccess(lc, c)
		}
	}

	for i := range lc.fn.Exprs {
		lc.fn.Exprs[i].Type = finalizeType(lc, lc.fn.Exprs[i].Type, lc.fn.Exprs[i].Span)
		if lc.fn.Exprs[i].Kind == HExprIntLiteral {
			checkIntLiteralRange(lc, &lc.fn.Exprs[i])
		}
	}
	for i := range lc.fn.ParamTypes {
		lc.fn.ParamTypes[i], _ = lc.te.Resolve(lc.fn.ParamTypes[i])
	}
	lc.fn.ReturnType, _ = lc.te.Resolve(lc.fn.ReturnType)
	for i := range lc.fn.Body {
		if lc.fn.Body[i].Kind == HStmtLet {
			lc.fn.Body[i].DeclaredType = finalizeType(lc, lc.fn.Body[i].DeclaredType, lc.fn.Body[i].Span)
		}
	}
}

// finalizeType resolves id to its root and, for an inference variable that
// never got unified against a concrete type, applies the default spec
// section 4.6 leaves to the implementer (s32 for an unconstrained integer
// literal, f64 for an unconstrained float literal). A TyUnknown root
// reports CodeCouldNotInfer: every other stage had a chance to narrow it
// and none did.
func finalizeType(lc *lowerCtx, id TypeID, span Span) TypeID {
	root, ty := lc.te.Resolve(id)
	switch ty.Tag {
	case TyUnknown:
		lc.pushDiag(errorf(CodeCouldNotInfer, span, "could not infer a type for this expression"))
		return root
	case TyIntVar:
		def := intKindS(32)
		if ty.IntHint != nil {
			def = *ty.IntHint
		}
		lc.te.Unify(root, lc.te.Insert(concreteInt(def), span), span)
		root, _ = lc.te.Resolve(root)
		return root
	case TyFloatVar:
		lc.te.Unify(root, lc.te.Insert(concreteFloat(Float64), span), span)
		root, _ = lc.te.Resolve(root)
		return root
	default:
		return root
	}
}

// intKindMax returns the largest magnitude k's range can hold. Literal
// tokens never carry a sign (a leading '-' lowers as a separate unary
// expression), so only the upper bound matters here. Width is only capped
// at the top of int64's own range for a width-64-or-wider kind: the token
// was already range-checked against 64 bits by lowerLiteral's ParseInt, and
// shifting a uint64 by >=64 bits in Go yields zero rather than overflowing,
// so that case reports no tighter bound rather than a wrong one.
func intKindMax(k IntKind) (max uint64, exact bool) {
	bits := k.Width
	if k.Signed {
		bits--
	}
	if bits <= 0 {
		return 0, true
	}
	if bits >= 64 {
		return 0, false
	}
	return (uint64(1) << uint(bits)) - 1, true
}

// checkIntLiteralRange re-checks a literal's magnitude against the concrete
// integer type unification finally settled it on (spec section 4.1:
// "checks magnitude against the target integer type's range"). lowerLiteral
// itself only ever rejects a literal that doesn't fit in 64 bits at all,
// long before a target width is known; this is the second, width-aware
// pass once finalizeType has resolved the literal's type.
func checkIntLiteralRange(lc *lowerCtx, e *HirExpr) {
	_, ty := lc.te.Resolve(e.Type)
	if ty.Tag != TyInt || e.IntValue < 0 {
		return
	}
	max, exact := intKindMax(ty.IntKind)
	if exact && uint64(e.IntValue) > max {
		lc.pushDiag(errorf(CodeIntegerLiteralOverflow, e.Span,
			"integer literal %d does not fit in %s", e.IntValue, formatIntKind(ty.IntKind)))
	}
}

func resolveFieldAccess(lc *lowerCtx, c Constraint) {
	_, ty := lc.te.Resolve(c.Receiver)
	if ty.Tag != TyPath || ty.Path.Kind != ItemKindStruct {
		lc.pushDiag(errorf(CodeCouldNotInfer, c.Span, "cannot determine the type of this field access"))
		return
	}
	sd := lc.pkg.Modules[ty.Path.Module].Items.Structs[ty.Path.Index]
	for _, f := range sd.Fields {
		if f.Name == c.Field {
			ftype := lowerTypeRefIn(lc, ty.Path.Module, f.Type)
			if d := lc.te.Unify(c.Result, ftype, c.Span); d != nil {
				lc.pushDiag(*d)
			}
			return
		}
	}
	lc.pushDiag(errorf(CodeUnknownField, c.Span, "no field named %q on %s", lc.pkg.Interner.Text(c.Field), lc.pkg.Interner.Text(sd.Name)))
}

func (lc *lowerCtx) pushExpr(e HirExpr) ExprIdx {
	idx := ExprIdx(len(lc.fn.Exprs))
	lc.fn.Exprs = append(lc.fn.Exprs, e)
	return idx
}

func (lc *lowerCtx) errExpr(span Span) ExprIdx {
	return lc.pushExpr(HirExpr{Kind: HExprError, Type: lc.te.Insert(unknownType(), span), Span: span})
}

// exprNodeKinds is every SyntaxKind that lowerExpr accepts, used to pick an
// expression node out of a list of siblings that also includes non-expr
// children (a let-statement's name and optional type annotation, a struct
// literal's leading path).
var exprNodeKinds = map[SyntaxKind]bool{
	SynIfExpr: true, SynBinaryExpr: true, SynUnaryExpr: true, SynCallExpr: true,
	SynMemberExpr: true, SynIndexExpr: true, SynTupleExpr: true, SynParenExpr: true,
	SynStructExpr: true, SynPathExpr: true, SynLiteralExpr: true, SynBlockExpr: true,
}

func firstExprChild(n *GreenNode) *GreenNode {
	if n == nil {
		return nil
	}
	for _, c := range n.ChildNodes() {
		if exprNodeKinds[c.Kind] {
			return c
		}
	}
	return nil
}

// lowerExpr lowers one expression CST node into the current function's
// Exprs arena, returning its index. Grounded on
// original_source/compiler/flux_hir/src/body/lower.rs's Expr-lowering
// match, generalized to this grammar's node kinds.
func lowerExpr(lc *lowerCtx, node *GreenNode) ExprIdx {
	if node == nil {
		return lc.errExpr(Span{File: lc.spans.file})
	}
	span := lc.span(node)
	switch node.Kind {
	case SynLiteralExpr:
		return lowerLiteral(lc, node, span)
	case SynPathExpr:
		return lowerPathExprNode(lc, node.FirstChild(SynPath), span)
	case SynUnaryExpr:
		return lowerUnary(lc, node, span)
	case SynBinaryExpr:
		return lowerBinary(lc, node, span)
	case SynCallExpr:
		return lowerCall(lc, node, span)
	case SynMemberExpr:
		return lowerMember(lc, node, span)
	case SynIndexExpr:
		return lowerIndex(lc, node, span)
	case SynParenExpr:
		return lowerExpr(lc, firstExprChild(node))
	case SynTupleExpr:
		return lowerTuple(lc, node, span)
	case SynStructExpr:
		return lowerStructLiteral(lc, node, span)
	case SynIfExpr:
		return lowerIf(lc, node, span)
	case SynBlockExpr:
		return lowerBlockExprNode(lc, node, span)
	default:
		icePanic("lowerExpr: node of kind %s is not an expression", node.Kind)
		return noExpr
	}
}

func lowerLiteral(lc *lowerCtx, node *GreenNode, span Span) ExprIdx {
	tok, ok := node.FirstNonTriviaToken()
	if !ok {
		icePanic("lowerLiteral: literal node %s has no token", node.Kind)
	}
	switch tok.Kind {
	case KindIntLiteral:
		v, err := strconv.ParseInt(stripUnderscores(tok.Text), 10, 64)
		if err != nil {
			lc.pushDiag(errorf(CodeIntegerLiteralOverflow, span, "integer literal %q does not fit in 64 bits", tok.Text))
		}
		return lc.pushExpr(HirExpr{Kind: HExprIntLiteral, Type: lc.te.Insert(intVar(), span), Span: span, IntValue: v})
	case KindFloatLiteral:
		v, err := strconv.ParseFloat(stripUnderscores(tok.Text), 64)
		if err != nil {
			lc.pushDiag(errorf(CodeMalformedLiteral, span, "malformed float literal %q", tok.Text))
		}
		return lc.pushExpr(HirExpr{Kind: HExprFloatLiteral, Type: lc.te.Insert(floatVar(), span), Span: span, FloatValue: v})
	case KindStringLiteral:
		return lc.pushExpr(HirExpr{Kind: HExprStringLiteral, Type: lc.te.Insert(Type{Tag: TyStr}, span), Span: span, StringValue: unquoteDelimited(tok.Text, '"')})
	case KindCharLiteral:
		text := unquoteDelimited(tok.Text, '\'')
		var r rune
		for _, c := range text {
			r = c
			break
		}
		return lc.pushExpr(HirExpr{Kind: HExprIntLiteral, Type: lc.te.Insert(intVar(), span), Span: span, IntValue: int64(r)})
	case KindTrue, KindFalse:
		return lc.pushExpr(HirExpr{Kind: HExprBoolLiteral, Type: lc.te.Insert(Type{Tag: TyBool}, span), Span: span, BoolValue: tok.Kind == KindTrue})
	default:
		icePanic("lowerLiteral: unexpected literal token kind %s", tok.Kind)
		return noExpr
	}
}

// unquoteDelimited strips a leading/trailing quote byte (tolerating an
// unterminated literal missing its closer, since the lexer still emits one
// for recovery) and resolves the handful of backslash escapes spec section
// 4.1's string/char literal tokens allow; any other escaped byte passes
// through literally rather than erroring, matching the lexer's own
// permissive `\.` escape pattern.
func unquoteDelimited(text string, quote byte) string {
	inner := text
	if len(inner) > 0 && inner[0] == quote {
		inner = inner[1:]
	}
	if len(inner) > 0 && inner[len(inner)-1] == quote {
		inner = inner[:len(inner)-1]
	}
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			default:
				b.WriteByte(inner[i])
			}
			continue
		}
		b.WriteByte(inner[i])
	}
	return b.String()
}

func pathText(interner *Interner, segments []Word) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = interner.Text(s)
	}
	return strings.Join(parts, "::")
}

// lowerPathExprNode resolves a path used in value position. A single
// segment is checked against the local-variable scope first (spec section
// 4.5 doesn't cover locals since they're a body-lowering concern, not
// path resolution proper); a multi-segment path's leading segment always
// names a module, struct, enum, or trait, so it's looked up in the types
// namespace regardless of the fact that the path as a whole denotes a
// value.
func lowerPathExprNode(lc *lowerCtx, pathNode *GreenNode, span Span) ExprIdx {
	segments := PathSegments(pathNode, lc.pkg.Interner)
	if len(segments) == 0 {
		lc.pushDiag(errorf(CodeEmptyPath, span, "empty path"))
		return lc.errExpr(span)
	}
	if len(segments) == 1 {
		if id, ok := lc.te.LookupVar(segments[0]); ok {
			return lc.pushExpr(HirExpr{Kind: HExprPath, Type: id, Span: span, IsLocal: true, LocalName: segments[0], PathText: pathText(lc.pkg.Interner, segments)})
		}
	}
	ns := NSValues
	if len(segments) > 1 {
		ns = NSTypes
	}
	entry, diag := ResolvePath(lc.pkg, lc.mod, segments, ns)
	if diag != nil {
		d := *diag
		d.Primary = span
		lc.pushDiag(d)
		return lc.errExpr(span)
	}
	ty := typeOfScopeEntry(lc, entry, span)
	return lc.pushExpr(HirExpr{Kind: HExprPath, Type: ty, Span: span, Resolved: entry, PathText: pathText(lc.pkg.Interner, segments)})
}

func typeOfScopeEntry(lc *lowerCtx, entry ScopeEntry, span Span) TypeID {
	if entry.IsModule {
		lc.pushDiag(errorf(CodeUnexpectedItem, span, "expected a value, found a module"))
		return lc.te.Insert(unknownType(), span)
	}
	switch entry.Item.Kind {
	case ItemKindFn:
		return functionType(lc, entry.Item, span)
	case ItemKindEnum:
		return lc.te.Insert(Type{Tag: TyPath, Path: entry.Item}, span)
	default:
		lc.pushDiag(errorf(CodeUnexpectedItem, span, "path does not name a value"))
		return lc.te.Insert(unknownType(), span)
	}
}

// functionType builds a TyFunction signature for a free-function path,
// re-lowering its declared parameter/return types fresh into the calling
// body's TEnv. No generic substitution happens here: a call to a generic
// function is checked structurally against its declared (possibly
// TyGeneric-tagged) signature, with bound satisfaction left to the
// Constraint obligations Unify already records for TyGeneric (see
// DESIGN.md).
func functionType(lc *lowerCtx, item ItemID, span Span) TypeID {
	fnItem := lc.pkg.Modules[item.Module].Items.Functions[item.Index]
	sub := &lowerCtx{
		pkg: lc.pkg, mod: item.Module, te: lc.te, spans: lc.spans,
		generics: collectGenericNames(lc.pkg.Interner, fnItem.Generics),
		thisCtx:  ThisCtx{}, diags: lc.diags, applies: lc.applies, fn: lc.fn,
	}
	var params []TypeID
	if fnItem.ParamList != nil {
		for _, p := range fnItem.ParamList.ChildNodes() {
			if p.Kind != SynParam {
				continue
			}
			params = append(params, lowerTypeRef(sub, firstTypeChild(p)))
		}
	}
	ret := lc.te.Insert(Type{Tag: TyUnit}, span)
	if fnItem.ReturnType != nil {
		ret = lowerTypeRef(sub, fnItem.ReturnType)
	}
	return lc.te.Insert(Type{Tag: TyFunction, Params: params, Ret: ret}, span)
}

func lowerUnary(lc *lowerCtx, node *GreenNode, span Span) ExprIdx {
	opTok, ok := node.FirstNonTriviaToken()
	if !ok {
		icePanic("lowerUnary: UnaryExpr has no operator token")
	}
	op := unaryOpByToken[opTok.Kind]
	operand := lowerExpr(lc, firstExprChild(node))
	operandTy := lc.fn.Exprs[operand].Type

	var resultTy TypeID
	switch op {
	case OpNeg:
		resultTy = operandTy
	case OpRef:
		resultTy = lc.te.Insert(Type{Tag: TyPointer, Pointee: operandTy}, span)
	case OpDeref:
		_, ty := lc.te.Resolve(operandTy)
		if ty.Tag == TyPointer {
			resultTy = ty.Pointee
		} else {
			lc.pushDiag(errorf(CodeTypeMismatch, span, "cannot dereference %s", DescribeType(lc.te, operandTy)))
			resultTy = lc.te.Insert(unknownType(), span)
		}
	}
	return lc.pushExpr(HirExpr{Kind: HExprUnary, Type: resultTy, Span: span, UnOp: op, Lhs: operand})
}

func lowerBinary(lc *lowerCtx, node *GreenNode, span Span) ExprIdx {
	opTok, ok := node.FirstNonTriviaToken()
	if !ok {
		icePanic("lowerBinary: BinaryExpr has no operator token")
	}
	op := binaryOpByToken[opTok.Kind]
	children := node.ChildNodes()
	if len(children) != 2 {
		icePanic("lowerBinary: BinaryExpr has %d children, want 2", len(children))
	}
	lhs := lowerExpr(lc, children[0])
	rhs := lowerExpr(lc, children[1])

	var resultTy TypeID
	switch op {
	case OpOrOr, OpAndAnd:
		boolTy := lc.te.Insert(Type{Tag: TyBool}, span)
		if d := lc.te.Unify(lc.fn.Exprs[lhs].Type, boolTy, span); d != nil {
			lc.pushDiag(*d)
		}
		if d := lc.te.Unify(lc.fn.Exprs[rhs].Type, boolTy, span); d != nil {
			lc.pushDiag(*d)
		}
		resultTy = boolTy
	case OpEqEq, OpNotEq, OpLt, OpGt, OpLe, OpGe:
		if d := lc.te.Unify(lc.fn.Exprs[lhs].Type, lc.fn.Exprs[rhs].Type, span); d != nil {
			lc.pushDiag(*d)
		}
		resultTy = lc.te.Insert(Type{Tag: TyBool}, span)
	default:
		if d := lc.te.Unify(lc.fn.Exprs[lhs].Type, lc.fn.Exprs[rhs].Type, span); d != nil {
			lc.pushDiag(*d)
		}
		resultTy = lc.fn.Exprs[lhs].Type
	}
	return lc.pushExpr(HirExpr{Kind: HExprBinary, Type: resultTy, Span: span, BinOp: op, Lhs: lhs, Rhs: rhs})
}

// lowerCall lowers a call expression. A member-expression callee
// (`receiver.method(...)`) is a method call, resolved via the apply table
// (spec section 4.7); anything else is a direct call through a path
// expression, which may itself name a free function or a tuple-style enum
// variant constructor.
func lowerCall(lc *lowerCtx, node *GreenNode, span Span) ExprIdx {
	children := node.ChildNodes()
	if len(children) == 0 {
		icePanic("lowerCall: CallExpr has no callee")
	}
	calleeNode := children[0]
	var argNodes []*GreenNode
	if len(children) > 1 && children[1].Kind == SynArgList {
		argNodes = children[1].ChildNodes()
	}

	if calleeNode.Kind == SynMemberExpr {
		return lowerMethodCall(lc, calleeNode, argNodes, span)
	}

	calleeIdx := lowerExpr(lc, calleeNode)
	_, ty := lc.te.Resolve(lc.fn.Exprs[calleeIdx].Type)

	var args []ExprIdx
	for _, a := range argNodes {
		args = append(args, lowerExpr(lc, a))
	}

	var resultTy TypeID
	switch ty.Tag {
	case TyFunction:
		if len(ty.Params) != len(args) {
			lc.pushDiag(errorf(CodeArityMismatch, span, "expected %d argument(s), found %d", len(ty.Params), len(args)))
		} else {
			for i, a := range args {
				if d := lc.te.Unify(lc.fn.Exprs[a].Type, ty.Params[i], span); d != nil {
					lc.pushDiag(*d)
				}
			}
		}
		resultTy = ty.Ret
	case TyPath:
		resultTy = lowerVariantCall(lc, calleeIdx, ty, args, span)
	case TyUnknown:
		resultTy = lc.te.Insert(unknownType(), span)
	default:
		lc.pushDiag(errorf(CodeUnexpectedItem, span, "called value is not a function"))
		resultTy = lc.te.Insert(unknownType(), span)
	}

	return lc.pushExpr(HirExpr{Kind: HExprCall, Type: resultTy, Span: span, Lhs: calleeIdx, Args: args})
}

func lowerVariantCall(lc *lowerCtx, calleeIdx ExprIdx, ty Type, args []ExprIdx, span Span) TypeID {
	resolved := lc.fn.Exprs[calleeIdx].Resolved
	if resolved.VariantIndex < 0 {
		lc.pushDiag(errorf(CodeUnexpectedItem, span, "called value is not a function"))
		return lc.te.Insert(unknownType(), span)
	}
	enumItem := lc.pkg.Modules[ty.Path.Module].Items.Enums[ty.Path.Index]
	variant := enumItem.Variants[resolved.VariantIndex]
	if len(variant.Fields) != len(args) {
		lc.pushDiag(errorf(CodeArityMismatch, span, "variant %q expects %d field(s), found %d", lc.pkg.Interner.Text(variant.Name), len(variant.Fields), len(args)))
	} else {
		for i, a := range args {
			fieldTy := lowerTypeRefIn(lc, ty.Path.Module, variant.Fields[i])
			if d := lc.te.Unify(lc.fn.Exprs[a].Type, fieldTy, span); d != nil {
				lc.pushDiag(*d)
			}
		}
	}
	return lc.te.Insert(Type{Tag: TyPath, Path: ty.Path}, span)
}

// lowerMethodCall resolves `receiver.name(args)` through the apply table
// and checks the `This`-bound receiver parameter plus the remaining
// declared parameters against the receiver value and the call's
// arguments, in that order (spec section 4.7's method dispatch is by
// target type and name only; argument checking follows the resolved
// method's own signature once found).
func lowerMethodCall(lc *lowerCtx, memberNode *GreenNode, argNodes []*GreenNode, span Span) ExprIdx {
	receiverNode := firstExprChild(memberNode)
	methodName := itemName(memberNode, lc.pkg.Interner)

	receiverIdx := lowerExpr(lc, receiverNode)
	var args []ExprIdx
	for _, a := range argNodes {
		args = append(args, lowerExpr(lc, a))
	}

	_, recvTy := lc.te.Resolve(lc.fn.Exprs[receiverIdx].Type)
	if recvTy.Tag != TyPath {
		lc.pushDiag(errorf(CodeCouldNotInfer, span, "cannot determine the receiver type of this method call"))
		return lc.pushExpr(HirExpr{Kind: HExprCall, Type: lc.te.Insert(unknownType(), span), Span: span, Lhs: receiverIdx, Args: args, FieldName: methodName})
	}

	match, diag := lc.applies.resolveMethod(recvTy.Path, methodName, span)
	if diag != nil {
		lc.pushDiag(*diag)
		return lc.pushExpr(HirExpr{Kind: HExprCall, Type: lc.te.Insert(unknownType(), span), Span: span, Lhs: receiverIdx, Args: args, FieldName: methodName})
	}

	methodGenerics := map[Word]bool{}
	for w := range match.rec.generics {
		methodGenerics[w] = true
	}
	for w := range collectGenericNames(lc.pkg.Interner, match.method.Generics) {
		methodGenerics[w] = true
	}
	sub := &lowerCtx{
		pkg: lc.pkg, mod: match.rec.module, te: lc.te, spans: lc.spans,
		generics: methodGenerics, thisCtx: lc.thisCtx, diags: lc.diags,
		applies: lc.applies, fn: lc.fn,
	}

	allArgs := append([]ExprIdx{receiverIdx}, args...)
	var paramTypes []TypeID
	if match.method.ParamList != nil {
		for _, p := range match.method.ParamList.ChildNodes() {
			if p.Kind != SynParam {
				continue
			}
			pt := firstTypeChild(p)
			if pt != nil && pt.Kind == SynThisPathType {
				paramTypes = append(paramTypes, lc.te.Insert(Type{Tag: TyPath, Path: recvTy.Path}, span))
				continue
			}
			paramTypes = append(paramTypes, lowerTypeRef(sub, pt))
		}
	}

	if len(paramTypes) != len(allArgs) {
		lc.pushDiag(errorf(CodeArityMismatch, span, "method %q expects %d argument(s), found %d",
			lc.pkg.Interner.Text(methodName), max0(len(paramTypes)-1), max0(len(allArgs)-1)))
	} else {
		for i, a := range allArgs {
			if d := lc.te.Unify(lc.fn.Exprs[a].Type, paramTypes[i], span); d != nil {
				lc.pushDiag(*d)
			}
		}
	}

	retTy := lc.te.Insert(Type{Tag: TyUnit}, span)
	if match.method.ReturnType != nil {
		retTy = lowerTypeRef(sub, match.method.ReturnType)
	}

	return lc.pushExpr(HirExpr{Kind: HExprCall, Type: retTy, Span: span, Lhs: receiverIdx, Args: args, FieldName: methodName})
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func lowerMember(lc *lowerCtx, node *GreenNode, span Span) ExprIdx {
	receiverNode := firstExprChild(node)
	fieldName := itemName(node, lc.pkg.Interner)
	receiverIdx := lowerExpr(lc, receiverNode)

	root, ty := lc.te.Resolve(lc.fn.Exprs[receiverIdx].Type)
	resultTy := lc.te.Insert(unknownType(), span)

	switch {
	case ty.Tag == TyPath && ty.Path.Kind == ItemKindStruct:
		sd := lc.pkg.Modules[ty.Path.Module].Items.Structs[ty.Path.Index]
		found := false
		for _, f := range sd.Fields {
			if f.Name == fieldName {
				resultTy = lowerTypeRefIn(lc, ty.Path.Module, f.Type)
				found = true
				break
			}
		}
		if !found {
			lc.pushDiag(errorf(CodeUnknownField, span, "no field named %q on %s", lc.pkg.Interner.Text(fieldName), lc.pkg.Interner.Text(sd.Name)))
		}
	case ty.Tag == TyUnknown || ty.Tag == TyIntVar || ty.Tag == TyFloatVar || ty.Tag == TyGeneric:
		lc.te.PushConstraint(fieldAccessConstraint(root, fieldName, resultTy, span))
	default:
		lc.pushDiag(errorf(CodeUnknownField, span, "%s has no fields", DescribeType(lc.te, root)))
	}

	return lc.pushExpr(HirExpr{Kind: HExprMember, Type: resultTy, Span: span, Lhs: receiverIdx, FieldName: fieldName})
}

func lowerIndex(lc *lowerCtx, node *GreenNode, span Span) ExprIdx {
	children := node.ChildNodes()
	if len(children) != 2 {
		icePanic("lowerIndex: IndexExpr has %d children, want 2", len(children))
	}
	receiver := lowerExpr(lc, children[0])
	index := lowerExpr(lc, children[1])

	_, ty := lc.te.Resolve(lc.fn.Exprs[receiver].Type)
	resultTy := lc.te.Insert(unknownType(), span)
	if ty.Tag == TyArray {
		resultTy = ty.Elem
	} else {
		lc.pushDiag(errorf(CodeTypeMismatch, span, "cannot index %s", DescribeType(lc.te, lc.fn.Exprs[receiver].Type)))
	}
	intTy := lc.te.Insert(intVar(), span)
	if d := lc.te.Unify(lc.fn.Exprs[index].Type, intTy, span); d != nil {
		lc.pushDiag(*d)
	}
	return lc.pushExpr(HirExpr{Kind: HExprIndex, Type: resultTy, Span: span, Lhs: receiver, Rhs: index})
}

func lowerTuple(lc *lowerCtx, node *GreenNode, span Span) ExprIdx {
	var elems []ExprIdx
	var elemTypes []TypeID
	for _, c := range node.ChildNodes() {
		if !exprNodeKinds[c.Kind] {
			continue
		}
		idx := lowerExpr(lc, c)
		elems = append(elems, idx)
		elemTypes = append(elemTypes, lc.fn.Exprs[idx].Type)
	}
	ty := lc.te.Insert(Type{Tag: TyTuple, Elems: elemTypes}, span)
	return lc.pushExpr(HirExpr{Kind: HExprTuple, Type: ty, Span: span, Elems: elems})
}

func lowerStructLiteral(lc *lowerCtx, node *GreenNode, span Span) ExprIdx {
	children := node.ChildNodes()
	if len(children) == 0 {
		icePanic("lowerStructLiteral: StructExpr has no path")
	}
	pathNode := children[0]
	fieldNodes := children[1:]

	segments := PathSegments(pathNode, lc.pkg.Interner)
	entry, diag := ResolvePath(lc.pkg, lc.mod, segments, NSTypes)
	if diag != nil {
		lc.pushDiag(*diag)
		return lc.errExpr(span)
	}
	if entry.IsModule || entry.Item.Kind != ItemKindStruct {
		lc.pushDiag(errorf(CodeUnexpectedItem, span, "expected a struct name"))
		return lc.errExpr(span)
	}
	sd := lc.pkg.Modules[entry.Item.Module].Items.Structs[entry.Item.Index]

	given := map[Word]ExprIdx{}
	var elems []ExprIdx
	var fieldNames []Word
	for _, fn := range fieldNodes {
		if fn.Kind != SynStructExprField {
			continue
		}
		fieldName := itemName(fn, lc.pkg.Interner)
		valIdx := lowerExpr(lc, firstExprChild(fn))
		given[fieldName] = valIdx
		elems = append(elems, valIdx)
		fieldNames = append(fieldNames, fieldName)
	}

	var missing []string
	for _, f := range sd.Fields {
		valIdx, ok := given[f.Name]
		if !ok {
			missing = append(missing, lc.pkg.Interner.Text(f.Name))
			continue
		}
		delete(given, f.Name)
		fieldTy := lowerTypeRefIn(lc, entry.Item.Module, f.Type)
		if d := lc.te.Unify(lc.fn.Exprs[valIdx].Type, fieldTy, span); d != nil {
			lc.pushDiag(*d)
		}
	}
	if len(missing) > 0 {
		lc.pushDiag(errorf(CodeMissingFields, span, "missing field(s) in %s literal: %s", lc.pkg.Interner.Text(sd.Name), strings.Join(missing, ", ")))
	}
	for extra := range given {
		lc.pushDiag(errorf(CodeUnknownField, span, "no field named %q on %s", lc.pkg.Interner.Text(extra), lc.pkg.Interner.Text(sd.Name)))
	}

	ty := lc.te.Insert(Type{Tag: TyPath, Path: entry.Item}, span)
	return lc.pushExpr(HirExpr{Kind: HExprStructLiteral, Type: ty, Span: span, Elems: elems, FieldNames: fieldNames, StructItem: entry.Item})
}

func lowerIf(lc *lowerCtx, node *GreenNode, span Span) ExprIdx {
	children := node.ChildNodes()
	if len(children) < 2 {
		icePanic("lowerIf: IfExpr has %d children, want at least 2", len(children))
	}
	cond := lowerExpr(lc, children[0])
	boolTy := lc.te.Insert(Type{Tag: TyBool}, span)
	if d := lc.te.Unify(lc.fn.Exprs[cond].Type, boolTy, span); d != nil {
		lc.pushDiag(*d)
	}

	then := lowerExpr(lc, children[1])
	resultTy := lc.fn.Exprs[then].Type
	elseIdx := noExpr
	if len(children) > 2 {
		elseIdx = lowerExpr(lc, children[2])
		if d := lc.te.Unify(resultTy, lc.fn.Exprs[elseIdx].Type, span); d != nil {
			lc.pushDiag(*d)
		}
	} else {
		unitTy := lc.te.Insert(Type{Tag: TyUnit}, span)
		if d := lc.te.Unify(resultTy, unitTy, span); d != nil {
			lc.pushDiag(*d)
		}
	}

	return lc.pushExpr(HirExpr{Kind: HExprIf, Type: resultTy, Span: span, Cond: cond, Then: then, Else: elseIdx})
}

func lowerBlockExprNode(lc *lowerCtx, node *GreenNode, span Span) ExprIdx {
	stmts, tail := lowerBlockStmts(lc, node)
	ty := lc.te.Insert(Type{Tag: TyUnit}, span)
	if tail != noExpr {
		ty = lc.fn.Exprs[tail].Type
	}
	return lc.pushExpr(HirExpr{Kind: HExprBlock, Type: ty, Span: span, Stmts: stmts, Tail: tail})
}

// lowerBlockStmts lowers a block's statements in its own lexical scope,
// spec section 4.2's rule that the last statement is the block's value
// exactly when it is an expression statement without a trailing `;`.
func lowerBlockStmts(lc *lowerCtx, node *GreenNode) ([]HirStmt, ExprIdx) {
	lc.te.PushScope()
	defer lc.te.PopScope()

	children := node.ChildNodes()
	var stmts []HirStmt
	tail := noExpr
	for i, c := range children {
		isLast := i == len(children)-1
		switch c.Kind {
		case SynLetStmt:
			stmts = append(stmts, lowerLetStmt(lc, c))
		case SynReturnExpr:
			stmts = append(stmts, lowerReturnStmt(lc, c))
		case SynExprStmt:
			exprNode := firstExprChild(c)
			_, hasSemi := c.FirstToken(KindSemicolon)
			idx := lowerExpr(lc, exprNode)
			if isLast && !hasSemi {
				tail = idx
			} else {
				stmts = append(stmts, HirStmt{Kind: HStmtExpr, Span: lc.span(c), Value: idx})
			}
		}
	}
	return stmts, tail
}

func lowerLetStmt(lc *lowerCtx, node *GreenNode) HirStmt {
	span := lc.span(node)
	letName := itemName(node, lc.pkg.Interner)
	declared := firstTypeChild(node)
	valueIdx := lowerExpr(lc, firstExprChild(node))

	var declType TypeID
	if declared != nil {
		declType = lowerTypeRef(lc, declared)
		if d := lc.te.Unify(lc.fn.Exprs[valueIdx].Type, declType, span); d != nil {
			lc.pushDiag(*d)
		}
	} else {
		declType = lc.fn.Exprs[valueIdx].Type
	}
	lc.te.DeclareVar(letName, declType)
	return HirStmt{Kind: HStmtLet, Span: span, Name: letName, DeclaredType: declType, Value: valueIdx}
}

func lowerReturnStmt(lc *lowerCtx, node *GreenNode) HirStmt {
	span := lc.span(node)
	exprNode := firstExprChild(node)
	val := noExpr
	if exprNode != nil {
		val = lowerExpr(lc, exprNode)
		if d := lc.te.Unify(lc.fn.Exprs[val].Type, lc.te.returnTypeID, span); d != nil {
			lc.pushDiag(*d)
		}
	} else {
		unitTy := lc.te.Insert(Type{Tag: TyUnit}, span)
		if d := lc.te.Unify(unitTy, lc.te.returnTypeID, span); d != nil {
			lc.pushDiag(*d)
		}
	}
	return HirStmt{Kind: HStmtReturn, Span: span, Value: val}
}
