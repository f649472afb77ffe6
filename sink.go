package flux

// sink replays a flat Event stream into a GreenNode tree, re-inserting
// trivia tokens that the parser skipped over. Ported from
// original_source/flux-parser/src/sink.rs: the forward_parent stitching
// loop below is the Go expression of that file's `idx` walk, without the
// `mem::replace` trick (Go has no move semantics to exploit; a parallel
// `skip` slice serves the same purpose).
type sink struct {
	tokens []Token // raw: includes trivia
	cursor int

	events []event
	skip   []bool

	stack []*pendingNode
	root  *GreenNode
}

type pendingNode struct {
	kind     SyntaxKind
	children []GreenElement
}

func newSink(tokens []Token, events []event) *sink {
	return &sink{
		tokens: tokens,
		events: events,
		skip:   make([]bool, len(events)),
	}
}

// finish runs the replay and returns the completed root node together with
// any diagnostics the parser raised along the way.
func (s *sink) finish() (*GreenNode, []Diagnostic) {
	var diags []Diagnostic
	for idx := 0; idx < len(s.events); idx++ {
		if s.skip[idx] {
			s.eatTrivia()
			continue
		}
		ev := s.events[idx]
		switch ev.kind {
		case evStartNode:
			kinds := []SyntaxKind{ev.synKind}
			cur := idx
			fwd := ev
			for fwd.hasFwdParent {
				cur += fwd.forwardParent
				s.skip[cur] = true
				fwd = s.events[cur]
				if fwd.kind != evStartNode {
					icePanic("sink.finish: forward_parent target at %d is not a StartNode", cur)
				}
				kinds = append(kinds, fwd.synKind)
			}
			for i := len(kinds) - 1; i >= 0; i-- {
				s.startNode(kinds[i])
			}
		case evAddToken:
			s.emitToken()
		case evFinishNode:
			s.finishNode()
		case evError:
			diags = append(diags, ev.diag)
		case evPlaceholder:
			// abandoned marker: nothing to emit
		}
		s.eatTrivia()
	}
	if s.root == nil {
		icePanic("sink.finish: event stream never closed its root node")
	}
	return s.root, diags
}

func (s *sink) startNode(kind SyntaxKind) {
	s.stack = append(s.stack, &pendingNode{kind: kind})
}

func (s *sink) finishNode() {
	if len(s.stack) == 0 {
		icePanic("sink.finishNode: no open node")
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	node := &GreenNode{Kind: top.kind, Children: top.children}
	if len(s.stack) == 0 {
		s.root = node
		return
	}
	parent := s.stack[len(s.stack)-1]
	parent.children = append(parent.children, node)
}

func (s *sink) emitToken() {
	if s.cursor >= len(s.tokens) {
		icePanic("sink.emitToken: ran out of raw tokens")
	}
	tok := s.tokens[s.cursor]
	if tok.Kind.IsTrivia() {
		icePanic("sink.emitToken: token at cursor %d is trivia", s.cursor)
	}
	s.pushLeaf(tok)
	s.cursor++
}

// eatTrivia attaches every trivia token at the current cursor position to
// whatever node is presently open, called after every event so trivia ends
// up nested exactly where it appeared in the source.
func (s *sink) eatTrivia() {
	for s.cursor < len(s.tokens) && s.tokens[s.cursor].Kind.IsTrivia() {
		s.pushLeaf(s.tokens[s.cursor])
		s.cursor++
	}
}

func (s *sink) pushLeaf(tok Token) {
	leaf := GreenToken{Kind: tok.Kind, Text: tok.Text}
	if len(s.stack) == 0 {
		// Leading trivia before the root node opens; attach once root opens
		// by buffering is unnecessary since Root's StartNode is always the
		// very first event (Parser.Parse opens it before anything else).
		icePanic("sink.pushLeaf: no open node to attach token to")
	}
	top := s.stack[len(s.stack)-1]
	top.children = append(top.children, leaf)
}
