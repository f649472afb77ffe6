package flux

// Grammar rules shared by the item, type, expression and statement grammars:
// names, paths and visibility. Ported from
// original_source/compiler/flux_parser/src/grammar.rs's `name` and `path`
// helpers.

func name(p *Parser) {
	m := p.start()
	if p.at(KindIdent) {
		p.bump()
	} else {
		p.expected("a name")
	}
	m.complete(p, SynName)
}

// visibility consumes an optional leading `pub` keyword.
func visibility(p *Parser) {
	if !p.at(KindPub) {
		return
	}
	m := p.start()
	p.bump()
	m.complete(p, SynVisibility)
}

// path = pathSegment ('::' pathSegment)*
func path(p *Parser) {
	m := p.start()
	pathSegment(p)
	for p.at(KindDoubleColon) {
		p.bump()
		pathSegment(p)
	}
	m.complete(p, SynPath)
}

func pathSegment(p *Parser) {
	m := p.start()
	if p.at(KindIdent) || p.at(KindThis) {
		p.bump()
	} else {
		p.expected("a path segment")
	}
	m.complete(p, SynPathSegment)
}
