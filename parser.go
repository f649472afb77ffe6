package flux

import "strings"

// Parser is an event-stream, recursive-descent parser. It never mutates a
// tree directly; instead it emits Events that a downstream Sink (sink.go)
// replays into a lossless green tree. Markers let grammar rules retroactively
// wrap already-emitted events, which is how left-recursive constructs
// (binary expressions, postfix calls, member access) are expressed without
// back-patching.
//
// Ported from original_source/flux-parser/src/parser/mod.rs, generalized
// from the single-language Flux grammar to the full grammar surface spec
// section 4.2 names (items, types, generics, where-clauses, expressions with
// precedence climbing, struct-literal ambiguity).
type Parser struct {
	src    *source
	events []event

	expectedKinds []TokenKind
	completedMarkers map[int]bool

	// allowStructExpr gates whether `Ident { ... }` is parsed as a struct
	// literal. Cleared only while an `if` condition is parsed (ifExpr in
	// grammar_expr.go); no other rule clears it.
	allowStructExpr bool
}

func NewParser(tokens []Token, file FileID) *Parser {
	return &Parser{
		src:              newSource(tokens, file),
		completedMarkers: map[int]bool{},
		allowStructExpr:  true,
	}
}

// Parse runs the full grammar (item* EOF) and returns the finished event
// stream. It is the parser-core entry point; callers normally use the
// package-level ParseSource function (parse.go), which also runs the Sink.
func (p *Parser) Parse() []event {
	m := p.start()
	for !p.atEnd() {
		before := len(p.events)
		item(p)
		// loop_safe guard: a grammar rule that makes no progress at all
		// (consumes no token, starts no node) would hang the parser on
		// malformed input; force one token of recovery instead.
		if len(p.events) == before {
			p.recoverFor(ItemRecoverySet)
		}
	}
	m.complete(p, SynRoot)
	p.assertAllMarkersCompleted()
	return p.events
}

func (p *Parser) assertAllMarkersCompleted() {
	for i, ev := range p.events {
		if ev.kind == evPlaceholder && !p.completedMarkers[i] {
			icePanic("Parser.Parse: marker at %d never completed", i)
		}
	}
}

func (p *Parser) start() marker {
	pos := len(p.events)
	p.events = append(p.events, event{kind: evPlaceholder})
	return newMarker(pos)
}

// startMarker is the internal name used by completedMarker.precede; kept
// separate from start() only so marker.go doesn't need a forward reference
// to a public method name.
func (p *Parser) startMarker() marker { return p.start() }

// at probes whether the current token is kind, recording kind into the
// expected-kinds buffer for the next error message.
func (p *Parser) at(kind TokenKind) bool {
	p.expectedKinds = append(p.expectedKinds, kind)
	return p.peekKind() == kind
}

func (p *Parser) nextAt(kind TokenKind) bool {
	tok, ok := p.src.peekNext()
	return ok && tok.Kind == kind
}

func (p *Parser) atSet(set TokenSet) bool {
	k, ok := p.peekKindOK()
	return ok && set.Contains(k)
}

func (p *Parser) atEnd() bool {
	_, ok := p.src.peek()
	return !ok
}

// loopSafeNotAt is the enforced idiom for "loop while not at kind": it also
// fails on an Error token or end-of-input, so a malformed input can never
// spin a grammar loop forever (spec section 4.2's recovery discipline).
func (p *Parser) loopSafeNotAt(kind TokenKind) bool {
	return !p.at(kind) && !p.at(KindError) && !p.atEnd()
}

func (p *Parser) peekKind() TokenKind {
	if tok, ok := p.src.peek(); ok {
		return tok.Kind
	}
	return KindEOF
}

func (p *Parser) peekKindOK() (TokenKind, bool) {
	tok, ok := p.src.peek()
	if !ok {
		return KindEOF, false
	}
	return tok.Kind, true
}

// eat bumps the current token if it matches kind, returning whether it did.
func (p *Parser) eat(kind TokenKind) bool {
	if p.at(kind) {
		p.bump()
		return true
	}
	return false
}

func (p *Parser) bump() {
	p.expectedKinds = p.expectedKinds[:0]
	if _, ok := p.src.next(); !ok {
		icePanic("Parser.bump: called at end of input")
	}
	p.events = append(p.events, event{kind: evAddToken})
}

func (p *Parser) peekRange() Range {
	if tok, ok := p.src.peek(); ok {
		return tok.Range
	}
	return p.src.lastTokenRange()
}

func (p *Parser) curSpan() Span {
	return NewSpan(p.peekRange(), p.src.file)
}

// expect bumps kind if present; otherwise it emits an UnexpectedToken
// diagnostic carrying the accumulated expectations and recovers by
// consuming tokens until recoverySet, an Error token, or end-of-input.
func (p *Parser) expect(kind TokenKind, recoverySet TokenSet) {
	if p.at(kind) {
		p.bump()
		return
	}
	p.reportUnexpected()
	p.recoverFor(recoverySet)
}

func (p *Parser) reportUnexpected() {
	span := p.curSpan()
	got := p.peekKind()
	expected := make([]string, len(p.expectedKinds))
	for i, k := range p.expectedKinds {
		expected[i] = k.String()
	}
	diag := errorf(CodeUnexpectedToken, span, "expected %s but found %s", joinExpected(expected), got)
	p.error(diag)
}

func joinExpected(names []string) string {
	switch len(names) {
	case 0:
		return "something else"
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
	}
}

// expected emits a generic "expected <what>" diagnostic for grammar rules
// that want a human description rather than a token-kind list (e.g. "name",
// "function return type").
func (p *Parser) expected(what string) {
	span := p.curSpan()
	p.error(errorf(CodeUnexpectedToken, span, "expected %s", what))
}

func (p *Parser) error(diag Diagnostic) {
	p.events = append(p.events, event{kind: evError, diag: diag})
}

// recoverFor consumes tokens until one in set is reached, an Error token is
// reached, or input ends. Every expect() call in this grammar passes an
// explicit recovery set; no loop is allowed to run without either bumping
// or checking atEnd (spec section 4.2).
func (p *Parser) recoverFor(set TokenSet) {
	for p.loopSafeNotAt2(set) {
		p.bump()
	}
}

// loopSafeNotAt2 is the set-valued sibling of loopSafeNotAt.
func (p *Parser) loopSafeNotAt2(set TokenSet) bool {
	return !p.atSet(set) && !p.at(KindError) && !p.atEnd()
}

// loopGuard forces recovery when a list-parsing loop iteration consumed no
// events at all (e.g. every element in a comma list was missing), so
// malformed input can never spin such a loop forever.
func (p *Parser) loopGuard(eventsBefore int, recoverySet TokenSet) {
	if len(p.events) == eventsBefore {
		p.recoverFor(recoverySet)
	}
}
