package flux

// ConstraintKind discriminates Constraint, ported from
// original_source/compiler/flux_typesystem/src/constraint.rs's Constraint
// enum (TypeEq, FieldAccess).
type ConstraintKind int

const (
	ConstraintTypeEq ConstraintKind = iota
	ConstraintFieldAccess
)

// Constraint is a deferred obligation queued during HIR lowering and
// discharged during the Solving phase (spec section 4.8's state machine).
// A TypeEq constraint just unifies A and B; a FieldAccess constraint
// records that Receiver must (once resolved) be a struct type with a
// field named Field of type Result — raised wherever member access can't
// be checked immediately because the receiver's type is still an
// unresolved variable.
type Constraint struct {
	Kind ConstraintKind
	Span Span

	A, B TypeID // ConstraintTypeEq

	Receiver TypeID // ConstraintFieldAccess
	Field    Word
	Result   TypeID
}

func typeEqConstraint(a, b TypeID, span Span) Constraint {
	return Constraint{Kind: ConstraintTypeEq, A: a, B: b, Span: span}
}

func fieldAccessConstraint(receiver TypeID, field Word, result TypeID, span Span) Constraint {
	return Constraint{Kind: ConstraintFieldAccess, Receiver: receiver, Field: field, Result: result, Span: span}
}
