package flux

// TokenSet is a small set of TokenKinds used for recovery and look-ahead
// decisions (spec section 4.2's "explicit recovery set" discipline).
type TokenSet map[TokenKind]struct{}

func NewTokenSet(kinds ...TokenKind) TokenSet {
	s := make(TokenSet, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

func (s TokenSet) Contains(k TokenKind) bool {
	_, ok := s[k]
	return ok
}

// Union returns a new set containing every kind in s or other, leaving both
// inputs untouched.
func (s TokenSet) Union(other TokenSet) TokenSet {
	out := make(TokenSet, len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// TypeBeginSet is the set of tokens that can start a type, per spec section
// 4.2: "TYPE_BEGIN = {(, ident, This, [}".
var TypeBeginSet = NewTokenSet(KindLParen, KindIdent, KindThis, KindLBracket)

// ItemRecoverySet is the item-level recovery set from spec section 4.2.
var ItemRecoverySet = NewTokenSet(
	KindFn, KindStruct, KindEnum, KindTrait, KindApply,
	KindLet, KindMod, KindPub, KindUse, KindSemicolon,
)
