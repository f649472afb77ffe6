package flux

// Statement grammar: stmt = let_stmt | return_stmt | expr_stmt.

func stmt(p *Parser) {
	switch {
	case p.at(KindLet):
		letStmt(p)
	case p.at(KindReturn):
		returnStmt(p)
	default:
		exprStmt(p)
	}
}

// let_stmt = 'let' 'mut'? name ':'? type? '=' expr ';'
//
// The colon is only a separator, not what marks a type as present: `let y
// u32 = x;` is as valid as `let y: u32 = x;` or the untyped `let y = x;`
// (original_source/compiler/flux-parser/src/grammar/stmt.rs's var_decl goes
// straight from the identifier to an optional type with no colon at all).
// So a declared type is whatever comes before '=', colon or not.
func letStmt(p *Parser) {
	m := p.start()
	p.bump() // let
	if p.at(KindMut) {
		p.bump()
	}
	name(p)
	hadColon := p.eat(KindColon)
	if hadColon || !p.at(KindEq) {
		typeRef(p)
	}
	p.expect(KindEq, NewTokenSet(KindSemicolon))
	expr(p)
	p.expect(KindSemicolon, NewTokenSet(KindRBrace))
	m.complete(p, SynLetStmt)
}

// return_stmt = 'return' expr? ';'
func returnStmt(p *Parser) {
	m := p.start()
	p.bump() // return
	if !p.at(KindSemicolon) && !p.at(KindRBrace) {
		expr(p)
	}
	p.expect(KindSemicolon, NewTokenSet(KindRBrace))
	m.complete(p, SynReturnExpr)
}

// expr_stmt = expr ';'?
//
// The trailing semicolon is optional so a block's final expression can
// stand as its tail value; earlier statements still normally carry one.
func exprStmt(p *Parser) {
	m := p.start()
	expr(p)
	p.eat(KindSemicolon)
	m.complete(p, SynExprStmt)
}
