package flux

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	for _, test := range []struct {
		Name     string
		Source   string
		Expected []TokenKind
	}{
		{
			Name:   "FnSignature",
			Source: "fn add(a: s32, b: s32) -> s32 {}",
			Expected: []TokenKind{
				KindFn, KindWhitespace, KindIdent, KindLParen,
				KindIdent, KindColon, KindWhitespace, KindIntTypeS, KindComma, KindWhitespace,
				KindIdent, KindColon, KindWhitespace, KindIntTypeS, KindRParen, KindWhitespace,
				KindArrow, KindWhitespace, KindIntTypeS, KindWhitespace, KindLBrace, KindRBrace,
			},
		},
		{
			Name:   "Operators",
			Source: "a == b != c <= d >= e && f || g",
			Expected: []TokenKind{
				KindIdent, KindWhitespace, KindEqEq, KindWhitespace, KindIdent, KindWhitespace,
				KindNotEq, KindWhitespace, KindIdent, KindWhitespace, KindLe, KindWhitespace,
				KindIdent, KindWhitespace, KindGe, KindWhitespace, KindIdent, KindWhitespace,
				KindAndAnd, KindWhitespace, KindIdent, KindWhitespace, KindOrOr, KindWhitespace, KindIdent,
			},
		},
		{
			Name:   "PathAndGenerics",
			Source: "std::vec::Vec<s32>",
			Expected: []TokenKind{
				KindIdent, KindDoubleColon, KindIdent, KindDoubleColon, KindIdent,
				KindLAngle, KindIntTypeS, KindRAngle,
			},
		},
		{
			Name:   "IntTypeKeywords",
			Source: "u8 u64 s16 f32 f64 bool str",
			Expected: []TokenKind{
				KindIntTypeU, KindWhitespace, KindIntTypeU, KindWhitespace, KindIntTypeS, KindWhitespace,
				KindF32, KindWhitespace, KindF64, KindWhitespace, KindBoolType, KindWhitespace, KindStrType,
			},
		},
		{
			Name:   "LineComment",
			Source: "let x = 1; // trailing comment",
			Expected: []TokenKind{
				KindLet, KindWhitespace, KindIdent, KindWhitespace, KindEq, KindWhitespace,
				KindIntLiteral, KindSemicolon, KindWhitespace, KindLineComment,
			},
		},
		{
			Name:   "UnterminatedString",
			Source: `"abc`,
			Expected: []TokenKind{
				KindStringLiteral,
			},
		},
		{
			Name:   "UnknownCharacter",
			Source: "a $ b",
			Expected: []TokenKind{
				KindIdent, KindWhitespace, KindError, KindWhitespace, KindIdent,
			},
		},
	} {
		t.Run(test.Name, func(t *testing.T) {
			toks := Tokenize(test.Source)
			kinds := make([]TokenKind, len(toks))
			for i, tok := range toks {
				kinds[i] = tok.Kind
			}
			assert.Equal(t, test.Expected, kinds)
		})
	}
}

// TestTokenizeRoundTrip checks spec section 8 property 1: concatenating
// every token's Text in stream order reproduces the source exactly.
func TestTokenizeRoundTrip(t *testing.T) {
	sources := []string{
		"",
		"fn main() {}",
		"struct Point { x: s32, y: s32 }\n\nfn origin() -> Point { Point { x: 0, y: 0 } }",
		"/* unterminated",
		`'a`,
	}
	for _, src := range sources {
		var rebuilt string
		for _, tok := range Tokenize(src) {
			rebuilt += tok.Text
		}
		assert.Equal(t, src, rebuilt)
	}
}
