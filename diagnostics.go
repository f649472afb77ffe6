package flux

import (
	"fmt"

	"github.com/google/uuid"
)

// Severity is the severity of a Diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// DiagnosticCode is a stable, numeric-backed code identifying the kind of
// problem a Diagnostic describes. Stability matters: external collaborators
// (the driver, the LSP shell) match on these codes, not on Message text.
type DiagnosticCode int

const (
	// Lexical
	CodeMalformedLiteral DiagnosticCode = iota + 1
	CodeUnknownCharacter
	CodeUnterminatedString
	CodeUnterminatedComment

	// Syntactic
	CodeUnexpectedToken
	CodeMissingToken
	CodeUnexpectedEOF

	// Structural
	CodeDuplicateItemName
	CodeShadowedModule

	// Resolution
	CodeEmptyPath
	CodeUnresolvedPath
	CodePrivateModule
	CodeUnexpectedItem
	CodeAmbiguousImport
	CodeUnresolvedUse

	// Type
	CodeTypeMismatch
	CodeCouldNotInfer
	CodeMissingFields
	CodeUnknownField
	CodeUnknownMethod
	CodeArityMismatch
	CodeTraitNotSatisfied
	CodeAmbiguousApply
	CodeIntegerLiteralOverflow
	CodeCyclicGenericBound

	// I/O
	CodeCouldNotOpenModule

	// NEW: ambient resource guard (see SPEC_FULL.md section 4.4)
	CodeSourceBudgetExceeded
)

var codeNames = map[DiagnosticCode]string{
	CodeMalformedLiteral:       "malformed-literal",
	CodeUnknownCharacter:       "unknown-character",
	CodeUnterminatedString:     "unterminated-string",
	CodeUnterminatedComment:    "unterminated-comment",
	CodeUnexpectedToken:        "unexpected-token",
	CodeMissingToken:           "missing-token",
	CodeUnexpectedEOF:          "unexpected-eof",
	CodeDuplicateItemName:      "duplicate-item-name",
	CodeShadowedModule:         "shadowed-module",
	CodeEmptyPath:              "empty-path",
	CodeUnresolvedPath:         "unresolved-path",
	CodePrivateModule:          "private-module",
	CodeUnexpectedItem:         "unexpected-item",
	CodeAmbiguousImport:        "ambiguous-import",
	CodeUnresolvedUse:          "unresolved-use",
	CodeTypeMismatch:           "type-mismatch",
	CodeCouldNotInfer:          "could-not-infer",
	CodeMissingFields:          "missing-fields",
	CodeUnknownField:           "unknown-field",
	CodeUnknownMethod:          "unknown-method",
	CodeArityMismatch:          "arity-mismatch",
	CodeTraitNotSatisfied:      "trait-not-satisfied",
	CodeAmbiguousApply:         "ambiguous-apply",
	CodeIntegerLiteralOverflow: "integer-literal-overflow",
	CodeCyclicGenericBound:     "cyclic-generic-bound",
	CodeCouldNotOpenModule:     "could-not-open-module",
	CodeSourceBudgetExceeded:   "source-budget-exceeded",
}

func (c DiagnosticCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Label attaches explanatory text to a secondary span within a Diagnostic.
type Label struct {
	Span Span
	Text string
}

// Diagnostic is a coded, labeled, spanned error or warning. Diagnostics are
// accumulated, never thrown: every stage of the pipeline pushes into a
// Diagnostics sink and keeps going, per spec section 7.
type Diagnostic struct {
	Code     DiagnosticCode
	Severity Severity
	Primary  Span
	Message  string
	Labels   []Label
	Helps    []string

	// CompilationID ties this diagnostic back to the compile run that
	// produced it, stamped by the top-level entry point (BuildPackage,
	// LowerAndCheck) just before returning — errorf itself is called from
	// deep inside resolution/lowering code with no Package in scope to
	// stamp at construction time.
	CompilationID uuid.UUID
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s[%s]: %s", d.Severity, d.Code, d.Message)
}

func errorf(code DiagnosticCode, span Span, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityError, Primary: span, Message: fmt.Sprintf(format, args...)}
}

func warningf(code DiagnosticCode, span Span, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityWarning, Primary: span, Message: fmt.Sprintf(format, args...)}
}

// WithLabel returns a copy of d with an extra label appended.
func (d Diagnostic) WithLabel(span Span, text string) Diagnostic {
	d.Labels = append(append([]Label{}, d.Labels...), Label{Span: span, Text: text})
	return d
}

// WithHelp returns a copy of d with an extra help message appended.
func (d Diagnostic) WithHelp(text string) Diagnostic {
	d.Helps = append(append([]string{}, d.Helps...), text)
	return d
}

// Diagnostics is an append-only, ordered sink of Diagnostic values.
// Diagnostics from a given file/phase are pushed in source order (spec
// section 5's ordering guarantee); callers relying on that order must not
// reorder or sort the slice returned by All.
type Diagnostics struct {
	items []Diagnostic
}

func (d *Diagnostics) Push(diag Diagnostic) { d.items = append(d.items, diag) }

func (d *Diagnostics) Extend(diags []Diagnostic) { d.items = append(d.items, diags...) }

func (d *Diagnostics) All() []Diagnostic { return d.items }

func (d *Diagnostics) HasErrors() bool {
	for _, diag := range d.items {
		if diag.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (d *Diagnostics) ErrorCount() int {
	n := 0
	for _, diag := range d.items {
		if diag.Severity == SeverityError {
			n++
		}
	}
	return n
}

func (d *Diagnostics) WarningCount() int {
	n := 0
	for _, diag := range d.items {
		if diag.Severity == SeverityWarning {
			n++
		}
	}
	return n
}
