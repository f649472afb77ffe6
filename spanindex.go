package flux

// spanIndex maps every GreenNode reachable from one file's Root to its
// absolute byte Span within that file. The green tree itself carries no
// offsets (spec section 3: "Nodes carry no semantic data"), so HIR lowering
// (C10) needs this side table to attach real spans to diagnostics and to
// HirExpr/Type values it produces while walking item bodies that live deep
// inside a module's Root tree.
//
// Built once per module with buildSpanIndex (a single pre-order walk, O(tree
// size)) and reused for every function lowered from that module.
type spanIndex struct {
	file    FileID
	offsets map[*GreenNode]Range
}

// buildSpanIndex walks root once, recording every descendant node's byte
// range by accumulating a running cursor across tokens (including trivia,
// which the sink re-inserted into the tree) in tree order — the same
// "every byte belongs to exactly one token" accounting that keeps the sink
// itself lossless (spec section 8 property 1).
func buildSpanIndex(root *GreenNode, file FileID) *spanIndex {
	idx := &spanIndex{file: file, offsets: make(map[*GreenNode]Range)}
	if root != nil {
		idx.walk(root, 0)
	}
	return idx
}

func (idx *spanIndex) walk(n *GreenNode, start int) int {
	cursor := start
	for _, c := range n.Children {
		switch v := c.(type) {
		case GreenToken:
			cursor += len(v.Text)
		case *GreenNode:
			cursor = idx.walk(v, cursor)
		}
	}
	idx.offsets[n] = NewRange(start, cursor)
	return cursor
}

// Span returns n's absolute span. Panics via icePanic if n is not reachable
// from the root this index was built for: that means a caller passed a
// node from the wrong file's tree, an internal-compiler bug rather than a
// user-facing diagnostic.
func (idx *spanIndex) Span(n *GreenNode) Span {
	if n == nil {
		return Span{File: idx.file}
	}
	r, ok := idx.offsets[n]
	if !ok {
		icePanic("spanIndex.Span: node of kind %s not reachable from its module's root", n.Kind)
	}
	return NewSpan(r, idx.file)
}
