package flux

import (
	"strconv"
	"strings"
)

// GreenElement is either a GreenNode or a GreenToken: the two kinds of leaf
// in the immutable, parent-less green tree (spec section 3 and 9).
type GreenElement interface {
	isGreenElement()
	width() int
	writeText(*strings.Builder)
}

// GreenToken is a leaf holding the exact source slice it covers, including
// trivia tokens (whitespace, comments), which are preserved so the tree
// stays lossless.
type GreenToken struct {
	Kind TokenKind
	Text string
}

func (GreenToken) isGreenElement()              {}
func (t GreenToken) width() int                 { return len(t.Text) }
func (t GreenToken) writeText(b *strings.Builder) { b.WriteString(t.Text) }

// GreenNode is an interior node distinguished purely by SyntaxKind; it
// carries no semantic data and no parent pointer (spec section 3: "Nodes
// carry no semantic data; they are distinguished purely by SyntaxKind").
// Adapted from the teacher's dense NodeID arena (tree.go) into a plain
// recursive tree: a front-end processing a handful of files per compilation
// never approaches the node counts that motivated the teacher's flat arena,
// so the extra indirection isn't worth the complexity here (see DESIGN.md).
type GreenNode struct {
	Kind     SyntaxKind
	Children []GreenElement
}

func (*GreenNode) isGreenElement() {}

func (n *GreenNode) width() int {
	w := 0
	for _, c := range n.Children {
		w += c.width()
	}
	return w
}

func (n *GreenNode) writeText(b *strings.Builder) {
	for _, c := range n.Children {
		c.writeText(b)
	}
}

// Text reconstructs the exact source text this node spans, by concatenating
// every descendant token (including trivia) in tree order. For the root
// node this must equal the original input exactly (spec section 8,
// property 1).
func (n *GreenNode) Text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *GreenNode) Width() int { return n.width() }

// Tokens returns every token descendant in tree order, including trivia.
func (n *GreenNode) Tokens() []GreenToken {
	var out []GreenToken
	n.visit(func(e GreenElement) {
		if t, ok := e.(GreenToken); ok {
			out = append(out, t)
		}
	})
	return out
}

// ChildNodes returns the direct GreenNode children, skipping tokens.
func (n *GreenNode) ChildNodes() []*GreenNode {
	var out []*GreenNode
	for _, c := range n.Children {
		if cn, ok := c.(*GreenNode); ok {
			out = append(out, cn)
		}
	}
	return out
}

// FirstChild returns the first direct child node of the given kind, if any.
func (n *GreenNode) FirstChild(kind SyntaxKind) *GreenNode {
	for _, c := range n.Children {
		if cn, ok := c.(*GreenNode); ok && cn.Kind == kind {
			return cn
		}
	}
	return nil
}

// FirstToken returns the first direct non-trivia token child of the given
// kind, if any.
func (n *GreenNode) FirstToken(kind TokenKind) (GreenToken, bool) {
	for _, c := range n.Children {
		if t, ok := c.(GreenToken); ok && t.Kind == kind {
			return t, true
		}
	}
	return GreenToken{}, false
}

// FirstNonTriviaToken returns the first direct token child that isn't
// whitespace or a comment, regardless of its kind — used wherever a node's
// operator or keyword token isn't known ahead of time (e.g. a BinaryExpr's
// operator, which varies by node).
func (n *GreenNode) FirstNonTriviaToken() (GreenToken, bool) {
	for _, c := range n.Children {
		if t, ok := c.(GreenToken); ok && !t.Kind.IsTrivia() {
			return t, true
		}
	}
	return GreenToken{}, false
}

func (n *GreenNode) visit(fn func(GreenElement)) {
	fn(n)
	for _, c := range n.Children {
		if cn, ok := c.(*GreenNode); ok {
			cn.visit(fn)
		} else {
			fn(c)
		}
	}
}

// Pretty renders the node as an indented ASCII tree, in the teacher's
// tree_printer.go style (├──/└── branches), for debugging and golden tests.
func (n *GreenNode) Pretty() string {
	tp := newTreePrinter(func(s string, _ int) string { return s })
	prettyPrintCST(tp, n, 0)
	return tp.output.String()
}

func prettyPrintCST(tp *treePrinter[int], e GreenElement, depth int) {
	switch v := e.(type) {
	case *GreenNode:
		tp.writel(v.Kind.String())
		for i, c := range v.Children {
			last := i == len(v.Children)-1
			if last {
				tp.pwrite("└── ")
				tp.indent("    ")
			} else {
				tp.pwrite("├── ")
				tp.indent("│   ")
			}
			prettyPrintCST(tp, c, depth+1)
			tp.unindent()
		}
	case GreenToken:
		if v.Kind.IsTrivia() {
			tp.writel("(trivia " + strconv.Quote(v.Text) + ")")
			return
		}
		tp.writel(strconv.Quote(v.Text))
	}
}
