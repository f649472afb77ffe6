package flux

import "github.com/google/uuid"

// ExprIdx addresses one HirExpr within a single function's Exprs arena.
// Arenas are per-function (not package-wide) since nothing in this
// front-end needs to compare expressions across function boundaries.
type ExprIdx int

const noExpr ExprIdx = -1

type ExprKind int

const (
	HExprError ExprKind = iota
	HExprIntLiteral
	HExprFloatLiteral
	HExprBoolLiteral
	HExprStringLiteral
	HExprPath
	HExprBinary
	HExprUnary
	HExprCall
	HExprMember
	HExprIndex
	HExprStructLiteral
	HExprTuple
	HExprIf
	HExprBlock
)

type BinaryOp int

const (
	OpOrOr BinaryOp = iota
	OpAndAnd
	OpEqEq
	OpNotEq
	OpLt
	OpGt
	OpLe
	OpGe
	OpAdd
	OpSub
	OpMul
	OpDiv
)

var binaryOpByToken = map[TokenKind]BinaryOp{
	KindOrOr: OpOrOr, KindAndAnd: OpAndAnd,
	KindEqEq: OpEqEq, KindNotEq: OpNotEq,
	KindLAngle: OpLt, KindRAngle: OpGt, KindLe: OpLe, KindGe: OpGe,
	KindPlus: OpAdd, KindMinus: OpSub, KindStar: OpMul, KindSlash: OpDiv,
}

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpRef
	OpDeref
)

var unaryOpByToken = map[TokenKind]UnaryOp{
	KindMinus: OpNeg, KindAmp: OpRef, KindStar: OpDeref,
}

// HirExpr is a single lowered expression node. It's a flat struct tagged by
// Kind rather than one Go type per variant (the way Type in types.go is
// shaped too): only the fields relevant to Kind are meaningful. Grounded on
// original_source/compiler/flux_hir/src/hir.rs's Expr enum and
// body/expr/verify.rs, body/resolve.rs, lower/stmt.rs for what each
// expression kind needs to carry forward into the checker.
type HirExpr struct {
	Kind ExprKind
	Type TypeID
	Span Span

	IntValue    int64
	FloatValue  float64
	BoolValue   bool
	StringValue string

	IsLocal   bool // HExprPath
	LocalName Word
	Resolved  ScopeEntry // HExprPath, valid when !IsLocal
	PathText  string     // HExprPath, for diagnostics when resolution fails

	BinOp BinaryOp
	UnOp  UnaryOp
	Lhs   ExprIdx // unary operand / call callee / member receiver / index receiver
	Rhs   ExprIdx // binary right operand / index subscript

	Args []ExprIdx

	FieldName Word // HExprMember

	Elems      []ExprIdx // HExprTuple, and HExprStructLiteral's field values
	FieldNames []Word    // HExprStructLiteral, parallel to Elems
	StructItem ItemID    // HExprStructLiteral, valid once resolved

	Cond ExprIdx // HExprIf
	Then ExprIdx // HExprIf: HExprBlock
	Else ExprIdx // HExprIf: HExprBlock, HExprIf, or noExpr

	Stmts []HirStmt // HExprBlock
	Tail  ExprIdx   // HExprBlock: noExpr if the block has no tail expression
}

type StmtKind int

const (
	HStmtLet StmtKind = iota
	HStmtExpr
	HStmtReturn
)

type HirStmt struct {
	Kind         StmtKind
	Span         Span
	Name         Word   // HStmtLet
	DeclaredType TypeID // HStmtLet: the let's annotation, or the inferred Unknown var if absent
	Value        ExprIdx // HStmtLet, HStmtExpr; HStmtReturn: noExpr for a bare `return;`
}

// HirFunction is one function body's fully lowered and checked form.
type HirFunction struct {
	Module ModuleID
	Index  int // FunctionItem index within its module's ItemTree.Functions
	Name   Word

	// ApplyIndex is the owning ApplyItem's index within the module's
	// ItemTree.Applies, or -1 for a free function. MethodIndex is this
	// method's index within that ApplyItem.Methods when ApplyIndex >= 0;
	// Index is unused (left 0) for apply methods, since they aren't
	// addressed through ItemTree.Functions at all.
	ApplyIndex  int
	MethodIndex int

	ParamNames []Word
	ParamTypes []TypeID
	ReturnType TypeID

	Exprs []HirExpr
	Body  []HirStmt
	Tail  ExprIdx

	State LoweringState

	// TE is the TEnv this function's types live in. Kept on the function
	// (rather than discarded once checking finishes) since every TypeID
	// above is only meaningful relative to the arena that produced it;
	// pretty-printing and any later introspection resolve through this.
	TE *TEnv
}

// LoweringState is the per-function state machine spec section 4.8 names:
// Pristine -> Lowering -> Constraining -> Solving -> Complete | Errored.
type LoweringState int

const (
	StatePristine LoweringState = iota
	StateLowering
	StateConstraining
	StateSolving
	StateComplete
	StateErrored
)

func (s LoweringState) String() string {
	switch s {
	case StatePristine:
		return "pristine"
	case StateLowering:
		return "lowering"
	case StateConstraining:
		return "constraining"
	case StateSolving:
		return "solving"
	case StateComplete:
		return "complete"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Hir is the checked form of an entire Package: one HirFunction per
// function item (free functions and apply-block methods alike).
// CompilationID is copied from the source Package so a caller holding only
// the Hir (an LSP server's cached result, a diagnostic sink flushed later)
// can still tell which compile run produced it.
type Hir struct {
	Functions     []*HirFunction
	CompilationID uuid.UUID
}
