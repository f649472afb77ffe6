package flux

// Item-level grammar: item = visibility? (fn_decl | struct_decl | enum_decl
// | trait_decl | apply_decl | use_decl | mod_decl), spec section 4.2.
// Ported rule-by-rule from original_source/compiler/flux_parser/src/grammar/
// item.rs and its item/{fn_decl,struct,enum_decl,trait_decl,apply_decl,
// use_decl,mod_decl}.rs siblings.

func item(p *Parser) {
	m := p.start()
	visibility(p)
	switch {
	case p.at(KindFn):
		fnDecl(p, m)
	case p.at(KindStruct):
		structDecl(p, m)
	case p.at(KindEnum):
		enumDecl(p, m)
	case p.at(KindTrait):
		traitDecl(p, m)
	case p.at(KindApply):
		applyDecl(p, m)
	case p.at(KindUse):
		useDecl(p, m)
	case p.at(KindMod):
		modDecl(p, m)
	default:
		p.expected("an item (fn, struct, enum, trait, apply, use, or mod)")
		p.recoverFor(ItemRecoverySet)
		m.complete(p, SynError)
	}
}

// fn_decl = 'fn' name generic_param_list? param_list ('->' type)?
//           where_clause? (block_expr | arrow_body)
//
// param_list's param and struct_decl's field both make the ':' between a
// name and its type optional, matching let_stmt below (and the original
// parser's fn_param/var_decl, which go straight from the identifier to the
// type with no colon token at all).
//
// arrow_body = '=>' expr ';', spec section 4.2's shorthand for a
// single-expression body (`fn double(x: s32) -> s32 => x * 2;`).
func fnDecl(p *Parser, m marker) {
	p.bump() // fn
	name(p)
	if p.at(KindLAngle) {
		genericParamList(p)
	}
	paramList(p)
	if p.eat(KindArrow) {
		fnReturnType(p)
	}
	if p.at(KindWhere) {
		whereClause(p)
	}
	switch {
	case p.at(KindLBrace):
		blockExpr(p)
	case p.at(KindFatArrow):
		arrowBody(p)
	default:
		p.expect(KindLBrace, ItemRecoverySet)
	}
	m.complete(p, SynFnDecl)
}

// arrow_body = '=>' expr ';'
func arrowBody(p *Parser) completedMarker {
	m := p.start()
	p.bump() // =>
	expr(p)
	p.expect(KindSemicolon, ItemRecoverySet)
	return m.complete(p, SynArrowBody)
}

func fnReturnType(p *Parser) {
	m := p.start()
	typeRef(p)
	m.complete(p, SynFnReturnType)
}

// param_list = '(' (param (',' param)* ','?)? ')'
func paramList(p *Parser) {
	m := p.start()
	p.expect(KindLParen, NewTokenSet(KindRParen, KindLBrace))
	for p.loopSafeNotAt(KindRParen) {
		before := len(p.events)
		param(p)
		if !p.at(KindRParen) {
			p.expect(KindComma, NewTokenSet(KindRParen, KindComma))
		}
		p.loopGuard(before, NewTokenSet(KindRParen, KindComma))
	}
	p.expect(KindRParen, NewTokenSet(KindLBrace, KindArrow, KindWhere))
	m.complete(p, SynParamList)
}

// param = name ':'? type
func param(p *Parser) {
	m := p.start()
	name(p)
	p.eat(KindColon)
	typeRef(p)
	m.complete(p, SynParam)
}

// generic_param_list = '<' (generic_param (',' generic_param)* ','?)? '>'
func genericParamList(p *Parser) {
	m := p.start()
	p.bump() // <
	for p.loopSafeNotAt(KindRAngle) {
		before := len(p.events)
		genericParam(p)
		if !p.at(KindRAngle) {
			p.expect(KindComma, NewTokenSet(KindRAngle, KindComma))
		}
		p.loopGuard(before, NewTokenSet(KindRAngle, KindComma))
	}
	p.expect(KindRAngle, NewTokenSet(KindLParen, KindLBrace, KindWhere))
	m.complete(p, SynGenericParamList)
}

// generic_param = name ('is' trait_bound_list)?
func genericParam(p *Parser) {
	m := p.start()
	name(p)
	if p.at(KindIs) {
		p.bump()
		traitBoundList(p)
	}
	m.complete(p, SynGenericParam)
}

// trait_bound_list = path ('+' path)*
func traitBoundList(p *Parser) {
	path(p)
	for p.at(KindPlus) {
		p.bump()
		path(p)
	}
}

// where_clause = 'where' where_pred (',' where_pred)* ','?
func whereClause(p *Parser) {
	m := p.start()
	p.bump() // where
	for p.loopSafeNotAt(KindLBrace) {
		before := len(p.events)
		wherePred(p)
		if !p.at(KindLBrace) {
			p.expect(KindComma, NewTokenSet(KindLBrace, KindComma))
		}
		p.loopGuard(before, NewTokenSet(KindLBrace, KindComma))
	}
	m.complete(p, SynWhereClause)
}

// where_pred = path 'is' trait_bound_list
func wherePred(p *Parser) {
	m := p.start()
	path(p)
	p.expect(KindIs, NewTokenSet(KindComma, KindLBrace))
	traitBoundList(p)
	m.complete(p, SynWherePred)
}

// struct_decl = 'struct' name generic_param_list? where_clause? field_list
func structDecl(p *Parser, m marker) {
	p.bump() // struct
	name(p)
	if p.at(KindLAngle) {
		genericParamList(p)
	}
	if p.at(KindWhere) {
		whereClause(p)
	}
	fieldList(p)
	m.complete(p, SynStructDecl)
}

// field_list = '{' (field (',' field)* ','?)? '}'
func fieldList(p *Parser) {
	m := p.start()
	p.expect(KindLBrace, NewTokenSet(KindRBrace))
	for p.loopSafeNotAt(KindRBrace) {
		before := len(p.events)
		field(p)
		if !p.at(KindRBrace) {
			p.expect(KindComma, NewTokenSet(KindRBrace, KindComma))
		}
		p.loopGuard(before, NewTokenSet(KindRBrace, KindComma))
	}
	p.expect(KindRBrace, ItemRecoverySet)
	m.complete(p, SynFieldList)
}

// field = visibility? name ':'? type
func field(p *Parser) {
	m := p.start()
	visibility(p)
	name(p)
	p.eat(KindColon)
	typeRef(p)
	m.complete(p, SynField)
}

// enum_decl = 'enum' name generic_param_list? where_clause? variant_list
func enumDecl(p *Parser, m marker) {
	p.bump() // enum
	name(p)
	if p.at(KindLAngle) {
		genericParamList(p)
	}
	if p.at(KindWhere) {
		whereClause(p)
	}
	variantList(p)
	m.complete(p, SynEnumDecl)
}

func variantList(p *Parser) {
	m := p.start()
	p.expect(KindLBrace, NewTokenSet(KindRBrace))
	for p.loopSafeNotAt(KindRBrace) {
		before := len(p.events)
		variant(p)
		if !p.at(KindRBrace) {
			p.expect(KindComma, NewTokenSet(KindRBrace, KindComma))
		}
		p.loopGuard(before, NewTokenSet(KindRBrace, KindComma))
	}
	p.expect(KindRBrace, ItemRecoverySet)
	m.complete(p, SynVariantList)
}

// variant = name ('(' (type (',' type)* ','?)? ')')?
func variant(p *Parser) {
	m := p.start()
	name(p)
	if p.at(KindLParen) {
		p.bump()
		for p.loopSafeNotAt(KindRParen) {
			before := len(p.events)
			typeRef(p)
			if !p.at(KindRParen) {
				p.expect(KindComma, NewTokenSet(KindRParen, KindComma))
			}
			p.loopGuard(before, NewTokenSet(KindRParen, KindComma))
		}
		p.expect(KindRParen, NewTokenSet(KindRBrace, KindComma))
	}
	m.complete(p, SynVariant)
}

// trait_decl = 'trait' name generic_param_list? where_clause?
//              '{' (method_sig | assoc_type_decl)* '}'
func traitDecl(p *Parser, m marker) {
	p.bump() // trait
	name(p)
	if p.at(KindLAngle) {
		genericParamList(p)
	}
	if p.at(KindWhere) {
		whereClause(p)
	}
	p.expect(KindLBrace, NewTokenSet(KindRBrace))
	for p.loopSafeNotAt(KindRBrace) {
		before := len(p.events)
		switch {
		case p.at(KindFn):
			methodSig(p)
		case p.at(KindType):
			assocTypeDecl(p)
		default:
			p.expected("a method signature or associated type declaration")
			p.recoverFor(NewTokenSet(KindFn, KindType, KindRBrace))
		}
		p.loopGuard(before, NewTokenSet(KindFn, KindType, KindRBrace))
	}
	p.expect(KindRBrace, ItemRecoverySet)
	m.complete(p, SynTraitDecl)
}

// method_sig = 'fn' name generic_param_list? param_list ('->' type)? ';'
func methodSig(p *Parser) {
	m := p.start()
	p.bump() // fn
	name(p)
	if p.at(KindLAngle) {
		genericParamList(p)
	}
	paramList(p)
	if p.eat(KindArrow) {
		fnReturnType(p)
	}
	p.expect(KindSemicolon, NewTokenSet(KindFn, KindType, KindRBrace))
	m.complete(p, SynMethodSig)
}

// assoc_type_decl = 'type' name ';'
func assocTypeDecl(p *Parser) {
	m := p.start()
	p.bump() // type
	name(p)
	p.expect(KindSemicolon, NewTokenSet(KindFn, KindType, KindRBrace))
	m.complete(p, SynAssocTypeDecl)
}

// apply_decl = 'apply' generic_param_list? path ('to' type)? where_clause?
//              '{' (fn_decl | assoc_type_binding)* '}'
//
// Covers both trait applications (`apply Display to Point { ... }`) and
// inherent applications (`apply Point { ... }`), spec section 4.7.
func applyDecl(p *Parser, m marker) {
	p.bump() // apply
	if p.at(KindLAngle) {
		genericParamList(p)
	}
	path(p)
	if p.at(KindTo) {
		p.bump()
		typeRef(p)
	}
	if p.at(KindWhere) {
		whereClause(p)
	}
	p.expect(KindLBrace, NewTokenSet(KindRBrace))
	for p.loopSafeNotAt(KindRBrace) {
		before := len(p.events)
		switch {
		case p.at(KindFn):
			fm := p.start()
			fnDecl(p, fm)
		case p.at(KindType):
			assocTypeBinding(p)
		default:
			p.expected("a method or associated type binding")
			p.recoverFor(NewTokenSet(KindFn, KindType, KindRBrace))
		}
		p.loopGuard(before, NewTokenSet(KindFn, KindType, KindRBrace))
	}
	p.expect(KindRBrace, ItemRecoverySet)
	m.complete(p, SynApplyDecl)
}

// assoc_type_binding = 'type' name '=' type ';'
func assocTypeBinding(p *Parser) {
	m := p.start()
	p.bump() // type
	name(p)
	p.expect(KindEq, NewTokenSet(KindSemicolon))
	typeRef(p)
	p.expect(KindSemicolon, NewTokenSet(KindFn, KindType, KindRBrace))
	m.complete(p, SynAssocTypeBinding)
}

// use_decl = 'use' path ';'
func useDecl(p *Parser, m marker) {
	p.bump() // use
	path(p)
	p.expect(KindSemicolon, ItemRecoverySet)
	m.complete(p, SynUseDecl)
}

// mod_decl = 'mod' name (';' | '{' item* '}')
//
// A bare `mod foo;` resolves to a sibling file (spec section 4 C7); an
// inline `mod foo { ... }` nests its items directly.
func modDecl(p *Parser, m marker) {
	p.bump() // mod
	name(p)
	if p.at(KindLBrace) {
		p.bump()
		for p.loopSafeNotAt(KindRBrace) {
			before := len(p.events)
			item(p)
			p.loopGuard(before, ItemRecoverySet.Union(NewTokenSet(KindRBrace)))
		}
		p.expect(KindRBrace, ItemRecoverySet)
	} else {
		p.expect(KindSemicolon, ItemRecoverySet)
	}
	m.complete(p, SynModDecl)
}
