package lk

// edge is a canonical, order-independent pair of node indices: edge{a,b} always
// satisfies a < b, so it can be used as a map key regardless of traversal direction.
type edge [2]int

// newEdge canonicalizes (u,v) into an edge with the smaller index first.
func newEdge(u, v int) edge {
	if u < v {
		return edge{u, v}
	}
	return edge{v, u}
}

// edgeSet is a set of canonical edges, used to track which edges currently belong
// to a Tour (for gain accounting and debugging, not for traversal).
type edgeSet map[edge]struct{}

func newEdgeSet(capHint int) edgeSet {
	return make(edgeSet, capHint)
}

func (s edgeSet) add(u, v int) {
	s[newEdge(u, v)] = struct{}{}
}

func (s edgeSet) remove(u, v int) {
	delete(s, newEdge(u, v))
}

func (s edgeSet) has(u, v int) bool {
	_, ok := s[newEdge(u, v)]
	return ok
}

func (s edgeSet) clone() edgeSet {
	out := make(edgeSet, len(s))
	for e := range s {
		out[e] = struct{}{}
	}
	return out
}

// intersect returns the set of edges present in both s and o, used to narrow
// reductionEdges down to edges that have survived every local optimum seen so
// far (spec's "reduction edges").
func (s edgeSet) intersect(o edgeSet) edgeSet {
	out := make(edgeSet, len(s))
	for e := range s {
		if _, ok := o[e]; ok {
			out[e] = struct{}{}
		}
	}
	return out
}
