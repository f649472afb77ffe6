package flux

import (
	"regexp"
)

// Token is one lexical unit: a kind, the exact source slice it covers, and
// its byte range. Concatenating every token's Text in stream order yields
// the original input exactly (spec section 8, property 1).
type Token struct {
	Kind  TokenKind
	Text  string
	Range Range
}

// Lexer produces a finite, non-restartable sequence of tokens from a string
// slice. Longest match wins; an unrecognized byte yields a KindError token
// whose text is the offending run. Lexing never halts on malformed input.
//
// Implemented with Go's regexp package, the idiomatic equivalent of the
// original Rust front-end's logos-generated regex table
// (original_source/compiler/flux_lexer/src/lib.rs): an ordered list of
// (kind, pattern) rules tried at the cursor, longest match wins.
type Lexer struct {
	src    string
	cursor int
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

var (
	reWhitespace    = regexp.MustCompile(`^[ \t\r\n]+`)
	reLineComment   = regexp.MustCompile(`^//[^\n]*`)
	reBlockComment  = regexp.MustCompile(`^/\*(?s:.*?)(\*/|$)`) // may be unterminated
	reFloatLiteral  = regexp.MustCompile(`^[0-9][0-9_]*\.[0-9][0-9_]*([eE][+-]?[0-9]+)?`)
	reIntLiteral    = regexp.MustCompile(`^[0-9][0-9_]*`)
	reIdentOrKw     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
	reIntTypeS      = regexp.MustCompile(`^s[0-9]+$`)
	reIntTypeU      = regexp.MustCompile(`^u[0-9]+$`)
	reStringLiteral = regexp.MustCompile(`^"([^"\\]|\\.)*"?`) // may be unterminated
	reCharLiteral   = regexp.MustCompile(`^'([^'\\]|\\.)*'?`) // may be unterminated
)

// multiCharPunct is checked before single-char punctuation so the longer
// operator always wins (`::` before `:`, `->` before `-`, and so on).
var multiCharPunct = []struct {
	text string
	kind TokenKind
}{
	{"::", KindDoubleColon},
	{"->", KindArrow},
	{"=>", KindFatArrow},
	{"==", KindEqEq},
	{"!=", KindNotEq},
	{"<=", KindLe},
	{">=", KindGe},
	{"&&", KindAndAnd},
	{"||", KindOrOr},
}

var singleCharPunct = map[byte]TokenKind{
	'(': KindLParen,
	')': KindRParen,
	'{': KindLBrace,
	'}': KindRBrace,
	'[': KindLBracket,
	']': KindRBracket,
	'<': KindLAngle,
	'>': KindRAngle,
	',': KindComma,
	'.': KindDot,
	':': KindColon,
	';': KindSemicolon,
	'=': KindEq,
	'+': KindPlus,
	'-': KindMinus,
	'*': KindStar,
	'/': KindSlash,
	'&': KindAmp,
}

// Next returns the next token, or (Token{}, false) at end of input.
func (l *Lexer) Next() (Token, bool) {
	if l.cursor >= len(l.src) {
		return Token{}, false
	}
	rest := l.src[l.cursor:]

	if m := reWhitespace.FindString(rest); m != "" {
		return l.emit(KindWhitespace, m), true
	}
	if m := reLineComment.FindString(rest); m != "" {
		return l.emit(KindLineComment, m), true
	}
	if m := reBlockComment.FindString(rest); m != "" {
		return l.emit(KindBlockComment, m), true
	}
	if m := reStringLiteral.FindString(rest); m != "" {
		return l.emit(KindStringLiteral, m), true
	}
	if m := reCharLiteral.FindString(rest); m != "" {
		return l.emit(KindCharLiteral, m), true
	}
	if m := reFloatLiteral.FindString(rest); m != "" {
		return l.emit(KindFloatLiteral, m), true
	}
	if m := reIntLiteral.FindString(rest); m != "" {
		return l.emit(KindIntLiteral, m), true
	}
	if m := reIdentOrKw.FindString(rest); m != "" {
		return l.emit(l.classifyIdent(m), m), true
	}
	for _, p := range multiCharPunct {
		if len(rest) >= len(p.text) && rest[:len(p.text)] == p.text {
			return l.emit(p.kind, p.text), true
		}
	}
	if kind, ok := singleCharPunct[rest[0]]; ok {
		return l.emit(kind, rest[:1]), true
	}

	// Unrecognized byte: consume exactly one byte as an Error token so
	// lexing always makes progress (spec section 8, property 2).
	return l.emit(KindError, rest[:1]), true
}

// classifyIdent decides whether a maximal identifier-shaped run is a
// keyword, a primitive-type keyword (sN/uN for any N, matched after the
// general identifier scan so longest-match still wins), or a plain
// identifier.
func (l *Lexer) classifyIdent(text string) TokenKind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	if reIntTypeS.MatchString(text) {
		return KindIntTypeS
	}
	if reIntTypeU.MatchString(text) {
		return KindIntTypeU
	}
	return KindIdent
}

func (l *Lexer) emit(kind TokenKind, text string) Token {
	start := l.cursor
	l.cursor += len(text)
	return Token{Kind: kind, Text: text, Range: NewRange(start, l.cursor)}
}

// Tokenize drains the lexer into a slice, for callers (like the parser) that
// want a finite token list instead of pulling one at a time.
func Tokenize(src string) []Token {
	l := NewLexer(src)
	var toks []Token
	for {
		tok, ok := l.Next()
		if !ok {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}
