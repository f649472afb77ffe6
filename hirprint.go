package flux

import "fmt"

// Pretty renders every lowered function as a header line followed by its
// body lines indented four spaces (no ├──/└── branches), resolving every
// TypeID it shows (parameter, return and `let` types) through the
// function's own TEnv so a reader sees concrete types rather than opaque
// handles.
func (h *Hir) Pretty(pkg *Package) string {
	tp := newTreePrinter(func(s string, _ int) string { return s })
	for _, fn := range h.Functions {
		fn.pretty(tp, pkg)
	}
	return tp.output.String()
}

func (fn *HirFunction) Pretty(pkg *Package) string {
	tp := newTreePrinter(func(s string, _ int) string { return s })
	fn.pretty(tp, pkg)
	return tp.output.String()
}

func (fn *HirFunction) pretty(tp *treePrinter[int], pkg *Package) {
	header := fmt.Sprintf("fn %s(", pkg.Interner.Text(fn.Name))
	for i, p := range fn.ParamNames {
		if i > 0 {
			header += ", "
		}
		header += pkg.Interner.Text(p) + ": " + DescribeType(fn.TE, fn.ParamTypes[i])
	}
	header += ") -> " + DescribeType(fn.TE, fn.ReturnType) + " [" + fn.State.String() + "]"
	tp.writel(header)

	tp.indent("    ")
	for _, s := range fn.Body {
		printHirStmt(tp, fn, pkg, s)
	}
	if fn.Tail != noExpr {
		tp.pwrite("tail: ")
		printHirExprInline(tp, fn, pkg, fn.Tail)
		tp.output.WriteRune('\n')
	}
	tp.unindent()
}

func printHirStmt(tp *treePrinter[int], fn *HirFunction, pkg *Package, s HirStmt) {
	switch s.Kind {
	case HStmtLet:
		tp.pwrite(fmt.Sprintf("let %s: %s = ", pkg.Interner.Text(s.Name), DescribeType(fn.TE, s.DeclaredType)))
		printHirExprInline(tp, fn, pkg, s.Value)
		tp.output.WriteRune('\n')
	case HStmtExpr:
		tp.pwrite("")
		printHirExprInline(tp, fn, pkg, s.Value)
		tp.output.WriteRune('\n')
	case HStmtReturn:
		tp.pwrite("return")
		if s.Value != noExpr {
			tp.write(" ")
			printHirExprInline(tp, fn, pkg, s.Value)
		}
		tp.output.WriteRune('\n')
	}
}

// printHirExprInline renders one expression as a single line of text, the
// way a formatter's expression printer works rather than a full
// one-node-per-tree-line dump: HIR expression nesting gets deep fast
// (call args, member chains) and a line-per-node tree adds noise without
// adding anything a reader needs for this front-end's diagnostics.
func printHirExprInline(tp *treePrinter[int], fn *HirFunction, pkg *Package, idx ExprIdx) {
	tp.write(describeHirExpr(fn, pkg, idx))
}

func describeHirExpr(fn *HirFunction, pkg *Package, idx ExprIdx) string {
	if idx == noExpr {
		return "()"
	}
	e := fn.Exprs[idx]
	switch e.Kind {
	case HExprError:
		return "<error>"
	case HExprIntLiteral:
		return fmt.Sprintf("%d", e.IntValue)
	case HExprFloatLiteral:
		return fmt.Sprintf("%g", e.FloatValue)
	case HExprBoolLiteral:
		return fmt.Sprintf("%t", e.BoolValue)
	case HExprStringLiteral:
		return fmt.Sprintf("%q", e.StringValue)
	case HExprPath:
		return e.PathText
	case HExprUnary:
		return unaryOpText(e.UnOp) + describeHirExpr(fn, pkg, e.Lhs)
	case HExprBinary:
		return fmt.Sprintf("(%s %s %s)", describeHirExpr(fn, pkg, e.Lhs), binaryOpText(e.BinOp), describeHirExpr(fn, pkg, e.Rhs))
	case HExprCall:
		s := describeHirExpr(fn, pkg, e.Lhs)
		if e.FieldName != 0 {
			s += "." + pkg.Interner.Text(e.FieldName)
		}
		s += "("
		for i, a := range e.Args {
			if i > 0 {
				s += ", "
			}
			s += describeHirExpr(fn, pkg, a)
		}
		return s + ")"
	case HExprMember:
		return describeHirExpr(fn, pkg, e.Lhs) + "." + pkg.Interner.Text(e.FieldName)
	case HExprIndex:
		return describeHirExpr(fn, pkg, e.Lhs) + "[" + describeHirExpr(fn, pkg, e.Rhs) + "]"
	case HExprStructLiteral:
		s := "{"
		for i, v := range e.Elems {
			if i > 0 {
				s += ", "
			}
			s += pkg.Interner.Text(e.FieldNames[i]) + ": " + describeHirExpr(fn, pkg, v)
		}
		return s + "}"
	case HExprTuple:
		s := "("
		for i, v := range e.Elems {
			if i > 0 {
				s += ", "
			}
			s += describeHirExpr(fn, pkg, v)
		}
		return s + ")"
	case HExprIf:
		s := "if " + describeHirExpr(fn, pkg, e.Cond) + " " + describeHirExpr(fn, pkg, e.Then)
		if e.Else != noExpr {
			s += " else " + describeHirExpr(fn, pkg, e.Else)
		}
		return s
	case HExprBlock:
		return fmt.Sprintf("{ <%d stmt(s)> %s }", len(e.Stmts), describeHirExpr(fn, pkg, e.Tail))
	default:
		return "?"
	}
}

func unaryOpText(op UnaryOp) string {
	switch op {
	case OpNeg:
		return "-"
	case OpRef:
		return "&"
	case OpDeref:
		return "*"
	default:
		return "?"
	}
}

func binaryOpText(op BinaryOp) string {
	switch op {
	case OpOrOr:
		return "||"
	case OpAndAnd:
		return "&&"
	case OpEqEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}
