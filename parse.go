package flux

// Parse is the result of parsing a single file: a lossless green tree plus
// any diagnostics the lexer and parser raised along the way. Diagnostics
// here never stop compilation (spec section 1's "diagnostics accumulate,
// never throw"); downstream stages keep going on a best-effort tree.
type Parse struct {
	Green       *GreenNode
	Diagnostics []Diagnostic
}

// ParseSource lexes and parses src into a Parse. interner is accepted to
// match the public signature every later compiler stage shares (C6 onward
// intern identifier text as they walk the tree); the parser itself works
// directly on source slices and doesn't need to intern anything.
func ParseSource(src string, file FileID, interner *Interner) Parse {
	_ = interner
	tokens := Tokenize(src)
	p := NewParser(tokens, file)
	events := p.Parse()
	lexErrs := lexicalDiagnostics(tokens, file)
	green, parseDiags := newSink(tokens, events).finish()
	diags := make([]Diagnostic, 0, len(lexErrs)+len(parseDiags))
	diags = append(diags, lexErrs...)
	diags = append(diags, parseDiags...)
	return Parse{Green: green, Diagnostics: diags}
}

// lexicalDiagnostics turns raw KindError tokens and unterminated
// string/char/block-comment tokens into diagnostics. The lexer itself never
// fails (every byte is consumed into some token, spec section 8 property
// 2); this is where that leniency gets surfaced to the user.
func lexicalDiagnostics(tokens []Token, file FileID) []Diagnostic {
	var diags []Diagnostic
	for _, t := range tokens {
		span := NewSpan(t.Range, file)
		switch {
		case t.Kind == KindError:
			diags = append(diags, errorf(CodeUnknownCharacter, span, "unexpected character %q", t.Text))
		case t.Kind == KindStringLiteral && !properlyTerminated(t.Text, '"'):
			diags = append(diags, errorf(CodeUnterminatedString, span, "unterminated string literal"))
		case t.Kind == KindCharLiteral && !properlyTerminated(t.Text, '\''):
			diags = append(diags, errorf(CodeUnterminatedString, span, "unterminated character literal"))
		case t.Kind == KindBlockComment && !isTerminatedBlockComment(t.Text):
			diags = append(diags, errorf(CodeUnterminatedComment, span, "unterminated block comment"))
		}
	}
	return diags
}

func properlyTerminated(text string, quote byte) bool {
	return len(text) >= 2 && text[len(text)-1] == quote
}

func isTerminatedBlockComment(text string) bool {
	return len(text) >= 4 && text[len(text)-2:] == "*/"
}
