package flux

// TypeID addresses one Type slot in a TEnv. Ported as the Go analogue of
// the original's id::Ty handle.
type TypeID int32

// IntKind names a concrete integer type's signedness and bit width. Spec
// section 2 allows `sN`/`uN` for any N>=1 (the lexer matches the whole
// family with one regex per signedness, original_source/compiler/
// flux_lexer), so this can't be a small closed enum the way a fixed-width
// language's int kinds would be; Width is parsed from the token text.
type IntKind struct {
	Signed bool
	Width  int
}

func intKindS(width int) IntKind { return IntKind{Signed: true, Width: width} }
func intKindU(width int) IntKind { return IntKind{Signed: false, Width: width} }

// FloatKind names a concrete float type's width.
type FloatKind int

const (
	Float32 FloatKind = iota
	Float64
)

// TypeTag discriminates the Type sum type. Grounded on
// original_source/compiler/flux_typesystem/src/type.rs's ConcreteKind plus
// spec section 4.6's unification table, which additionally needs the two
// inference-variable tags (IntVar, FloatVar) the original's stubbed r#type.rs
// never got around to writing out.
type TypeTag int

const (
	TyUnknown TypeTag = iota
	TyIntVar
	TyFloatVar
	TyInt
	TyFloat
	TyBool
	TyStr
	TyUnit
	TyTuple
	TyPointer
	TyArray
	TyPath
	TyGeneric
	TyFunction
	TyRef
)

// Type is the tagged union spec section 4.6 unifies over. Only the fields
// relevant to Tag are meaningful; this mirrors the original's enum shape
// without Go's lack of sum types forcing an interface-per-variant design
// that would make Resolve's path-compression rewrite (replacing a Type
// in place with TyRef) awkward.
type Type struct {
	Tag TypeTag

	IntHint   *IntKind   // TyIntVar: Some(kind) once a concrete partner narrowed it
	IntKind   IntKind    // TyInt
	FloatKind FloatKind  // TyFloat

	Elems []TypeID // TyTuple

	Pointee TypeID // TyPointer
	Elem    TypeID // TyArray
	Len     int    // TyArray, -1 if unknown

	Path ItemID   // TyPath: the struct/enum item named
	Args []TypeID // TyPath generic args

	Name   Word         // TyGeneric
	Bounds []*GreenNode  // TyGeneric: unresolved trait-bound paths from the declaration

	Params []TypeID // TyFunction
	Ret    TypeID   // TyFunction

	Ref TypeID // TyRef
}

func unknownType() Type          { return Type{Tag: TyUnknown} }
func intVar() Type               { return Type{Tag: TyIntVar} }
func floatVar() Type             { return Type{Tag: TyFloatVar} }
func concreteInt(k IntKind) Type { return Type{Tag: TyInt, IntKind: k} }
func concreteFloat(k FloatKind) Type { return Type{Tag: TyFloat, FloatKind: k} }
func refType(to TypeID) Type     { return Type{Tag: TyRef, Ref: to} }

// ThisCtx resolves the meaning of `This` inside a trait or apply body.
// Ported from original_source/compiler/flux_typesystem/src/trait.rs's
// ThisCtx; pointers stand in for Rust's Option<NonZeroUsize>.
type ThisCtx struct {
	TraitItem *ItemID
	ApplyItem *int // index into TEnv's application table, nil if unset
}

// Spanned pairs a value with the span that introduced it, mirroring the
// original's InFile<Span>-carrying Spanned<Type> map value.
type Spanned[T any] struct {
	Value T
	Span  Span
}
