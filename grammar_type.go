package flux

// Type grammar: path_type | tuple_type | array_type | this_path_type, with
// a postfix `*` for pointer types (`T*`, `T**`, ...). Spec section 4.2's
// TYPE_BEGIN set names `(`, ident and `This` as the lookahead for "a type
// starts here"; primitive-type keywords (sN, uN, f32, f64, bool, str) lex
// to their own TokenKinds rather than KindIdent, so atTypeBegin extends the
// set locally instead of broadening TypeBeginSet itself.

func atTypeBegin(p *Parser) bool {
	if p.atSet(TypeBeginSet) {
		return true
	}
	switch {
	case p.at(KindIntTypeS), p.at(KindIntTypeU), p.at(KindF32), p.at(KindF64),
		p.at(KindBoolType), p.at(KindStrType):
		return true
	default:
		return false
	}
}

func typeRef(p *Parser) {
	var cm completedMarker
	switch {
	case p.at(KindThis):
		cm = thisPathType(p)
	case p.at(KindLParen):
		cm = tupleType(p)
	case p.at(KindLBracket):
		cm = arrayType(p)
	case atTypeBegin(p):
		cm = pathType(p)
	default:
		p.expected("a type")
		return
	}
	for p.at(KindStar) {
		pm := cm.precede(p)
		p.bump()
		cm = pm.complete(p, SynPointerType)
	}
}

// path_type = (primitive_keyword | path) generic_arg_list?
func pathType(p *Parser) completedMarker {
	m := p.start()
	switch {
	case p.at(KindIntTypeS), p.at(KindIntTypeU), p.at(KindF32), p.at(KindF64),
		p.at(KindBoolType), p.at(KindStrType):
		p.bump()
	default:
		path(p)
	}
	if p.at(KindLAngle) {
		genericArgList(p)
	}
	return m.complete(p, SynPathType)
}

// generic_arg_list = '<' (type (',' type)* ','?)? '>'
func genericArgList(p *Parser) {
	m := p.start()
	p.bump() // <
	for p.loopSafeNotAt(KindRAngle) {
		before := len(p.events)
		typeRef(p)
		if !p.at(KindRAngle) {
			p.expect(KindComma, NewTokenSet(KindRAngle, KindComma))
		}
		p.loopGuard(before, NewTokenSet(KindRAngle, KindComma))
	}
	p.expect(KindRAngle, NewTokenSet())
	m.complete(p, SynGenericArgList)
}

// tuple_type = '(' (type (',' type)* ','?)? ')'
func tupleType(p *Parser) completedMarker {
	m := p.start()
	p.bump() // (
	for p.loopSafeNotAt(KindRParen) {
		before := len(p.events)
		typeRef(p)
		if !p.at(KindRParen) {
			p.expect(KindComma, NewTokenSet(KindRParen, KindComma))
		}
		p.loopGuard(before, NewTokenSet(KindRParen, KindComma))
	}
	p.expect(KindRParen, NewTokenSet())
	return m.complete(p, SynTupleType)
}

// array_type = '[' type ';' int_literal ']'
func arrayType(p *Parser) completedMarker {
	m := p.start()
	p.bump() // [
	typeRef(p)
	p.expect(KindSemicolon, NewTokenSet(KindRBracket, KindIntLiteral))
	p.expect(KindIntLiteral, NewTokenSet(KindRBracket))
	p.expect(KindRBracket, NewTokenSet())
	return m.complete(p, SynArrayType)
}

// this_path_type = 'This' ('::' path_segment)*
func thisPathType(p *Parser) completedMarker {
	m := p.start()
	p.bump() // This
	for p.at(KindDoubleColon) {
		p.bump()
		pathSegment(p)
	}
	return m.complete(p, SynThisPathType)
}
