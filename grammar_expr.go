package flux

// Expression grammar: a precedence-climbing (Pratt) parser for binary
// operators, prefix unary operators, and postfix call/member/index chains,
// plus the struct-literal ambiguity rule from spec section 4.2 (`Ident {`
// parses as a struct literal except where allowStructExpr is disabled, i.e.
// inside an `if` condition).
//
// Binding powers, low to high: || , && , ==/!= , comparisons , +/- , */ ,
// unary prefix, postfix. Grounded on the precedence table implied by
// original_source/compiler/flux_parser/src/grammar/expr.rs's binary_expr,
// generalized into an explicit binding-power table in the teacher's idiom
// (table-driven dispatch, as seen throughout grammar_*_handler.go).
const unaryBindingPower = 13

func infixBindingPower(kind TokenKind) (left, right int, ok bool) {
	switch kind {
	case KindOrOr:
		return 1, 2, true
	case KindAndAnd:
		return 3, 4, true
	case KindEqEq, KindNotEq:
		return 5, 6, true
	case KindLAngle, KindRAngle, KindLe, KindGe:
		return 7, 8, true
	case KindPlus, KindMinus:
		return 9, 10, true
	case KindStar, KindSlash:
		return 11, 12, true
	default:
		return 0, 0, false
	}
}

func expr(p *Parser) completedMarker {
	return exprBindingPower(p, 0)
}

func exprBindingPower(p *Parser, minBP int) completedMarker {
	lhs := exprLHS(p)
	for {
		kind, ok := p.peekKindOK()
		if !ok {
			break
		}
		lbp, rbp, isInfix := infixBindingPower(kind)
		if !isInfix || lbp < minBP {
			break
		}
		m := lhs.precede(p)
		p.bump()
		exprBindingPower(p, rbp)
		lhs = m.complete(p, SynBinaryExpr)
	}
	return lhs
}

// exprLHS parses an optional prefix unary operator, an atom, and then any
// trailing postfix chain.
func exprLHS(p *Parser) completedMarker {
	switch {
	case p.at(KindMinus), p.at(KindAmp), p.at(KindStar):
		m := p.start()
		p.bump()
		exprBindingPower(p, unaryBindingPower)
		return postfixExpr(p, m.complete(p, SynUnaryExpr))
	default:
		return postfixExpr(p, atomExpr(p))
	}
}

// postfixExpr wraps cm in call/member/index nodes for as long as a postfix
// operator follows, using precede so left-recursive chains (`f(x).y[0]`)
// nest correctly without backtracking.
func postfixExpr(p *Parser, cm completedMarker) completedMarker {
	for {
		switch {
		case p.at(KindLParen):
			m := cm.precede(p)
			argList(p)
			cm = m.complete(p, SynCallExpr)
		case p.at(KindDot):
			m := cm.precede(p)
			p.bump()
			name(p)
			cm = m.complete(p, SynMemberExpr)
		case p.at(KindLBracket):
			m := cm.precede(p)
			p.bump()
			expr(p)
			p.expect(KindRBracket, NewTokenSet())
			cm = m.complete(p, SynIndexExpr)
		default:
			return cm
		}
	}
}

// arg_list = '(' (expr (',' expr)* ','?)? ')'
func argList(p *Parser) {
	m := p.start()
	p.bump() // (
	for p.loopSafeNotAt(KindRParen) {
		before := len(p.events)
		expr(p)
		if !p.at(KindRParen) {
			p.expect(KindComma, NewTokenSet(KindRParen, KindComma))
		}
		p.loopGuard(before, NewTokenSet(KindRParen, KindComma))
	}
	p.expect(KindRParen, NewTokenSet())
	m.complete(p, SynArgList)
}

func atomExpr(p *Parser) completedMarker {
	switch {
	case p.at(KindIntLiteral), p.at(KindFloatLiteral), p.at(KindStringLiteral),
		p.at(KindCharLiteral), p.at(KindTrue), p.at(KindFalse):
		m := p.start()
		p.bump()
		return m.complete(p, SynLiteralExpr)
	case p.at(KindIf):
		return ifExpr(p)
	case p.at(KindLParen):
		return parenOrTupleExpr(p)
	case p.at(KindIdent), p.at(KindThis):
		return pathOrStructExpr(p)
	default:
		p.expected("an expression")
		m := p.start()
		p.recoverFor(NewTokenSet(KindSemicolon, KindRBrace, KindRParen, KindComma))
		return m.complete(p, SynError)
	}
}

// pathOrStructExpr resolves spec section 4.2's struct-literal ambiguity:
// `Ident { ... }` is a struct literal unless allowStructExpr has been
// disabled by an enclosing `if` condition.
func pathOrStructExpr(p *Parser) completedMarker {
	m := p.start()
	path(p)
	if p.allowStructExpr && p.at(KindLBrace) {
		structExprBody(p)
		return m.complete(p, SynStructExpr)
	}
	return m.complete(p, SynPathExpr)
}

func structExprBody(p *Parser) {
	p.bump() // {
	for p.loopSafeNotAt(KindRBrace) {
		before := len(p.events)
		structExprField(p)
		if !p.at(KindRBrace) {
			p.expect(KindComma, NewTokenSet(KindRBrace, KindComma))
		}
		p.loopGuard(before, NewTokenSet(KindRBrace, KindComma))
	}
	p.expect(KindRBrace, NewTokenSet())
}

// struct_expr_field = name ':' expr
func structExprField(p *Parser) {
	m := p.start()
	name(p)
	p.expect(KindColon, NewTokenSet(KindComma, KindRBrace))
	expr(p)
	m.complete(p, SynStructExprField)
}

// paren_or_tuple_expr = '(' ')' | '(' expr ')' | '(' expr (',' expr)+ ','? ')'
func parenOrTupleExpr(p *Parser) completedMarker {
	m := p.start()
	p.bump() // (
	count := 0
	sawTrailingComma := false
	for p.loopSafeNotAt(KindRParen) {
		before := len(p.events)
		expr(p)
		count++
		if p.eat(KindComma) {
			sawTrailingComma = true
		} else {
			sawTrailingComma = false
			if !p.at(KindRParen) {
				p.expect(KindComma, NewTokenSet(KindRParen, KindComma))
			}
		}
		p.loopGuard(before, NewTokenSet(KindRParen, KindComma))
	}
	p.expect(KindRParen, NewTokenSet())
	kind := SynParenExpr
	if count != 1 || sawTrailingComma {
		kind = SynTupleExpr
	}
	return m.complete(p, kind)
}

// if_expr = 'if' expr block_expr ('else' (if_expr | block_expr))?
//
// The condition is parsed with struct literals disabled, so `if p { ... }`
// treats `{` as the start of the if's body, not a struct literal.
func ifExpr(p *Parser) completedMarker {
	m := p.start()
	p.bump() // if
	prevAllow := p.allowStructExpr
	p.allowStructExpr = false
	expr(p)
	p.allowStructExpr = prevAllow
	blockExpr(p)
	if p.at(KindElse) {
		p.bump()
		if p.at(KindIf) {
			ifExpr(p)
		} else {
			blockExpr(p)
		}
	}
	return m.complete(p, SynIfExpr)
}

// block_expr = '{' stmt* '}'
func blockExpr(p *Parser) completedMarker {
	m := p.start()
	p.expect(KindLBrace, NewTokenSet(KindRBrace))
	for p.loopSafeNotAt(KindRBrace) {
		before := len(p.events)
		stmt(p)
		p.loopGuard(before, NewTokenSet(KindRBrace, KindSemicolon, KindLet, KindReturn, KindIf))
	}
	p.expect(KindRBrace, ItemRecoverySet)
	return m.complete(p, SynBlockExpr)
}
