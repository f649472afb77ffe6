package flux

// marker reserves a Placeholder event and is later completed into a
// StartNode/FinishNode pair. Ported from
// original_source/flux-parser/src/parser/marker.rs: the Rust version uses a
// DropBomb to panic if a Marker is dropped uncompleted. Go has no
// destructors, so completion is instead verified once, in bulk, by
// (*Parser).Parse after the whole event stream is built (see
// assertAllMarkersCompleted in parser.go).
type marker struct {
	pos int
}

func newMarker(pos int) marker { return marker{pos: pos} }

// complete overwrites the reserved Placeholder with a StartNode event of
// the given kind and appends a matching FinishNode.
func (m marker) complete(p *Parser, kind SyntaxKind) completedMarker {
	if p.events[m.pos].kind != evPlaceholder {
		icePanic("marker.complete: event at %d is not a Placeholder", m.pos)
	}
	p.events[m.pos] = event{kind: evStartNode, synKind: kind}
	p.events = append(p.events, event{kind: evFinishNode})
	p.completedMarkers[m.pos] = true
	return completedMarker{pos: m.pos}
}

// abandon discards a marker without emitting a node, used when a grammar
// rule speculatively starts a marker and later decides not to build a node
// at all (the reserved Placeholder event is left in place; the sink skips
// it).
func (m marker) abandon(p *Parser) {
	p.completedMarkers[m.pos] = true
}

// completedMarker is the result of completing a marker. It may be preceded
// by a new marker that retroactively wraps it — this is
// how left-recursive constructs (binary expressions, postfix calls, member
// access) are expressed without back-patching the tree.
type completedMarker struct {
	pos int
}

// precede opens a new marker at the end of the event stream (after cm's
// events) and points cm's forward_parent at it, so that when
// cm.precede(p).complete runs, the new node becomes cm's parent.
func (cm completedMarker) precede(p *Parser) marker {
	newM := p.startMarker()
	ev := &p.events[cm.pos]
	if ev.kind != evStartNode {
		icePanic("completedMarker.precede: event at %d is not a StartNode", cm.pos)
	}
	ev.hasFwdParent = true
	ev.forwardParent = newM.pos - cm.pos
	return newM
}
