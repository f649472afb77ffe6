package flux

// eventKind discriminates the Event sum type.
type eventKind int

const (
	evPlaceholder eventKind = iota
	evStartNode
	evAddToken
	evFinishNode
	evError
)

// event is one entry in the parser's event stream: StartNode, AddToken,
// FinishNode, Error, or Placeholder, exactly as spec section 4.2 describes.
// Ported from original_source/flux-parser/src/event.rs and its newer
// flux_parser/src/event.rs sibling.
type event struct {
	kind eventKind

	// evStartNode
	synKind        SyntaxKind
	forwardParent  int // relative offset to a later StartNode event, 0 means none
	hasFwdParent   bool

	// evError
	diag Diagnostic
}
