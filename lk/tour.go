// This file implements Tour, the cyclic doubly-linked list the engine searches
// over, and its sequential-exchange swap primitives. Node positions are arena
// indices into Tour.nodes (not pointers), per the rest of this package's style;
// pred/succ/pos are themselves arena indices/integers.
//
// Swap primitives grounded on the original project's Tour class: swap_feasible
// reverses the shorter of the two arcs created by the two broken edges (classic
// 2-opt segment reversal); swap_unfeasible deliberately splits the cycle in two
// so that a later swap_node_between_t2_t3 can reconnect it through a third,
// independently chosen edge; swap_double_bridge performs a non-sequential 4-opt
// move that a sequence of 2-opt moves alone cannot reach.
package lk

import "math/rand"

// Node is one arena slot of a Tour. succ/pred/pos are indices/ordinals, never
// pointers, so Tour can be copied/reset cheaply and Nodes stay comparable.
type Node struct {
	succ int
	pred int
	pos  int
}

// swapRecord captures enough state to invert one primitive swap via Restore.
// bridgeSnapshot is populated only for swapDoubleBridge records, since that
// move touches eight endpoints at once rather than the usual four.
type swapRecord struct {
	kind            SwapKind
	t1, t2, t3, t4  int
	bridgeNodes     [8]int
	bridgeSnapshot  [8]Node
	bridgeOldEdges  [4]edge
	bridgeNewEdges  [4]edge
}

// Tour is a closed Hamiltonian cycle over n nodes, represented as an arena of
// Node values linked by succ/pred, plus a position index used to pick the
// shorter of two arcs to reverse.
type Tour struct {
	nodes     []Node
	ids       []string
	dist      Distances
	edges     edgeSet
	swapStack []swapRecord
}

// Distances is the minimal read surface Tour needs from the cost matrix; kept
// as a narrow interface so Tour does not import matrix directly.
type Distances interface {
	At(i, j int) (float64, error)
}

// NewTour builds the canonical ring tour 0→1→…→n-1→0 over ids, with dist
// attached for cost queries. ids must be unique and len(ids) ≥ 3.
//
// Complexity: O(n).
func NewTour(ids []string, dist Distances) (*Tour, error) {
	n := len(ids)
	if n < 3 {
		return nil, ErrTooFewNodes
	}
	seen := make(map[string]struct{}, n)
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, ErrDuplicateNodeID
		}
		seen[id] = struct{}{}
	}

	t := &Tour{
		nodes: make([]Node, n),
		ids:   append([]string(nil), ids...),
		dist:  dist,
		edges: newEdgeSet(n),
	}
	for i := 0; i < n; i++ {
		t.nodes[i] = Node{succ: (i + 1) % n, pred: (i - 1 + n) % n, pos: i}
		t.edges.add(i, (i+1)%n)
	}
	return t, nil
}

// Len returns the number of nodes in the tour.
func (t *Tour) Len() int { return len(t.nodes) }

// Succ returns the successor of node i.
func (t *Tour) Succ(i int) int { return t.nodes[i].succ }

// Pred returns the predecessor of node i.
func (t *Tour) Pred(i int) int { return t.nodes[i].pred }

// Pos returns the position ordinal of node i (not maintained by unfeasible,
// node-between or double-bridge swaps; Restore renumbers it, see Restore).
func (t *Tour) Pos(i int) int { return t.nodes[i].pos }

// IDs returns the external id for each arena index, in arena order (NOT tour
// order). The returned slice must not be mutated.
func (t *Tour) IDs() []string { return t.ids }

// Cost sums edge weights along the current succ chain starting at node 0.
//
// Complexity: O(n).
func (t *Tour) Cost() (float64, error) {
	var sum float64
	cur := 0
	for i := 0; i < len(t.nodes); i++ {
		next := t.nodes[cur].succ
		w, err := t.dist.At(cur, next)
		if err != nil {
			return 0, err
		}
		sum += w
		cur = next
	}
	return round1e9(sum), nil
}

// OrderedIDs returns the external ids walked in succ order starting at node 0,
// with the starting id repeated at the end to close the cycle.
//
// Complexity: O(n).
func (t *Tour) OrderedIDs() []string {
	n := len(t.nodes)
	out := make([]string, 0, n+1)
	cur := 0
	for i := 0; i < n; i++ {
		out = append(out, t.ids[cur])
		cur = t.nodes[cur].succ
	}
	out = append(out, t.ids[0])
	return out
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

func (t *Tour) setSucc(a, b int) { t.nodes[a].succ = b }
func (t *Tour) setPred(a, b int) { t.nodes[a].pred = b }

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Feasibility classification
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

func allDistinct4(a, b, c, d int) bool {
	return a != b && a != c && a != d && b != c && b != d && c != d
}

// IsSwapFeasible reports whether (t1,t2,t3,t4) — two existing tour edges
// (t1,t2) and (t3,t4) — can be exchanged for (t2,t3) and (t1,t4) by reversing
// one arc, yielding a single Hamiltonian cycle. This holds exactly when the
// two edges run in opposite local orientation around the cycle.
func (t *Tour) IsSwapFeasible(t1, t2, t3, t4 int) bool {
	if !allDistinct4(t1, t2, t3, t4) {
		return false
	}
	forward := t.nodes[t1].succ == t2
	backward := t.nodes[t1].pred == t2
	if !forward && !backward {
		return false
	}
	if forward {
		return t.nodes[t3].pred == t4
	}
	return t.nodes[t3].succ == t4
}

// IsSwapUnfeasible reports whether (t1,t2,t3,t4) run in the SAME local
// orientation, so swapping them would split the cycle into two disjoint
// cycles rather than producing a single reconnected tour. Quadruples where t2
// neighbours t3 or t1 neighbours t4 are refused, so each cycle keeps at least
// three nodes.
func (t *Tour) IsSwapUnfeasible(t1, t2, t3, t4 int) bool {
	if !allDistinct4(t1, t2, t3, t4) {
		return false
	}
	if t.nodes[t2].succ == t3 || t.nodes[t2].pred == t3 || t.nodes[t1].succ == t4 || t.nodes[t1].pred == t4 {
		return false
	}
	forward := t.nodes[t1].succ == t2
	backward := t.nodes[t1].pred == t2
	if !forward && !backward {
		return false
	}
	if forward {
		return t.nodes[t3].succ == t4
	}
	return t.nodes[t3].pred == t4
}

// Between reports whether node m lies strictly inside the directed arc from a
// to b along succ, walking succ from a. Used only on intermediate two-cycle
// states produced by SwapUnfeasible, where pos is not meaningful and the
// O(1) pos-mode test from the feasible side cannot be trusted.
//
// Complexity: O(n).
func (t *Tour) Between(a, m, b int) bool {
	cur := t.nodes[a].succ
	for cur != b {
		if cur == m {
			return true
		}
		cur = t.nodes[cur].succ
	}
	return false
}

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// swap_feasible
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// reverseWalk flips succ/pred for every node on the OLD succ-chain from from
// to to (inclusive), and — unless isSubtour — assigns pos := anchorPos,
// anchorPos-1, … in walk order.
func (t *Tour) reverseWalk(from, to, anchorPos int, isSubtour bool) {
	cur := from
	p := anchorPos
	for {
		next := t.nodes[cur].succ
		t.nodes[cur].succ, t.nodes[cur].pred = t.nodes[cur].pred, t.nodes[cur].succ
		if !isSubtour {
			t.nodes[cur].pos = p
			p--
		}
		if cur == to {
			break
		}
		cur = next
	}
}

// SwapFeasible breaks edges (t1,t2) and (t3,t4) and reconnects as (t2,t3) and
// (t1,t4), reversing whichever of the two resulting arcs is shorter.
//
// Preconditions: IsSwapFeasible(t1,t2,t3,t4) holds (not re-checked here — hot
// path; callers classify once and act).
//
// isSubtour, when true, skips pos maintenance and picks the arc to reverse by
// node ids rather than by length (used while exploring within an
// already-split unfeasible state, where pos is not meaningful) and records the
// swap as swapFeasibleReversed so Restore knows to invert it the same way.
//
// Complexity: O(min(arcLen, n-arcLen)).
func (t *Tour) SwapFeasible(t1, t2, t3, t4 int, isSubtour, record bool) {
	if t.nodes[t1].succ != t2 {
		t1, t2 = t2, t1
		t3, t4 = t4, t3
	}
	n := len(t.nodes)
	segSize := mod(t.nodes[t2].pos-t.nodes[t3].pos, n)

	t.edges.remove(t1, t2)
	t.edges.remove(t3, t4)

	reverseT3T1 := 2*segSize <= n
	if isSubtour {
		// pos is stale inside a split state, so the arc is picked by node ids:
		// the test flips between a swap and its inverse, so both reverse the
		// same nodes and Restore returns the exact succ/pred.
		lo13, lo24 := t1, t2
		if t3 < lo13 {
			lo13 = t3
		}
		if t4 < lo24 {
			lo24 = t4
		}
		reverseT3T1 = lo13 < lo24
	}

	if reverseT3T1 {
		t.reverseWalk(t3, t1, t.nodes[t1].pos, isSubtour)
		t.setSucc(t3, t2)
		t.setPred(t2, t3)
		t.setPred(t1, t4)
		t.setSucc(t4, t1)
	} else {
		t.reverseWalk(t2, t4, t.nodes[t4].pos, isSubtour)
		t.setSucc(t2, t3)
		t.setPred(t3, t2)
		t.setPred(t4, t1)
		t.setSucc(t1, t4)
	}

	t.edges.add(t2, t3)
	t.edges.add(t1, t4)

	if record {
		kind := swapFeasible
		if isSubtour {
			kind = swapFeasibleReversed
		}
		t.swapStack = append(t.swapStack, swapRecord{kind: kind, t1: t1, t2: t2, t3: t3, t4: t4})
	}
}

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// swap_unfeasible
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// reverseSubcycle flips succ/pred for every node in the closed subcycle
// containing start, without touching pos (used only on already-split,
// pos-invalid subcycles).
func (t *Tour) reverseSubcycle(start int) {
	cur := start
	for {
		next := t.nodes[cur].succ
		t.nodes[cur].succ, t.nodes[cur].pred = t.nodes[cur].pred, t.nodes[cur].succ
		if next == start {
			break
		}
		cur = next
	}
}

// SwapUnfeasible breaks edges (t1,t2) and (t3,t4) and reconnects as (t1,t4)
// and (t2,t3), deliberately producing two disjoint cycles: one carrying the
// t1–t4 arc, the other carrying the t2–t3 arc. A later SwapNodeBetweenT2T3
// call reconnects them into a single Hamiltonian cycle.
//
// reverseSubtour, when true, reverses the subcycle containing t1 after
// relinking — used to undo a prior SwapNodeBetweenT2T3 that had reversed that
// subcycle.
//
// Preconditions: IsSwapUnfeasible(t1,t2,t3,t4) holds.
//
// Complexity: O(n) when reverseSubtour is set (walks a subcycle), else O(1).
func (t *Tour) SwapUnfeasible(t1, t2, t3, t4 int, reverseSubtour, record bool) {
	t.edges.remove(t1, t2)
	t.edges.remove(t3, t4)

	forward := t.nodes[t1].succ == t2
	if forward {
		t.setSucc(t1, t4)
		t.setPred(t4, t1)
		t.setSucc(t3, t2)
		t.setPred(t2, t3)
	} else {
		t.setPred(t1, t4)
		t.setSucc(t4, t1)
		t.setPred(t3, t2)
		t.setSucc(t2, t3)
	}

	t.edges.add(t1, t4)
	t.edges.add(t2, t3)

	if reverseSubtour {
		t.reverseSubcycle(t1)
	}

	if record {
		t.swapStack = append(t.swapStack, swapRecord{kind: swapUnfeasible, t1: t1, t2: t2, t3: t3, t4: t4})
	}
}

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// swap_node_between_t2_t3
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// SwapNodeBetweenT2T3 reconnects the two disjoint cycles produced by a prior
// SwapUnfeasible(t1,_,_,t4) into a single Hamiltonian cycle, breaking a third
// edge (t5,t6) on the other subcycle. It determines from local orientation
// whether the t5–t6 subcycle needs reversing so its endpoints line up with
// (t1,t4), and records that outcome as the swap's kind so Restore can invert
// it precisely.
//
// Preconditions: t1 and t4 lie on one subcycle; t5 and t6 lie on the other,
// adjacent subcycle, with t6 == succ(t5) or t6 == pred(t5).
//
// Complexity: O(size of the t5/t6 subcycle) when reversal is needed, else O(1).
func (t *Tour) SwapNodeBetweenT2T3(t1, t4, t5, t6 int, record bool) {
	t4FollowsT1 := t.nodes[t1].succ == t4

	var reverseNeeded bool
	if t4FollowsT1 {
		reverseNeeded = t.nodes[t5].pred == t6
	} else {
		reverseNeeded = t.nodes[t5].succ == t6
	}
	if reverseNeeded {
		t.reverseSubcycle(t5)
	}

	if t4FollowsT1 {
		t.setSucc(t1, t6)
		t.setPred(t6, t1)
		t.setSucc(t5, t4)
		t.setPred(t4, t5)
	} else {
		t.setPred(t1, t6)
		t.setSucc(t6, t1)
		t.setPred(t5, t4)
		t.setSucc(t4, t5)
	}

	t.edges.remove(t1, t4)
	t.edges.remove(t5, t6)
	t.edges.add(t1, t6)
	t.edges.add(t5, t4)

	if record {
		kind := swapNodeBetweenT2T3
		if reverseNeeded {
			kind = swapNodeBetweenT2T3Reversed
		}
		t.swapStack = append(t.swapStack, swapRecord{kind: kind, t1: t1, t2: t4, t3: t5, t4: t6})
	}
}

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// swap_double_bridge
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// SwapDoubleBridge performs the non-sequential 4-opt "double bridge" move:
// given four existing tour edges (supplied as eight endpoints, in any per-edge
// order and any edge order), it cuts all four and reconnects by crossing
// alternating pairs, which no sequence of 2-opt/3-opt moves can reach in one
// step. Each pair's direction and the pairs' cyclic order are both normalized
// internally, so the move is invariant to how the caller names t1..t8.
//
// Complexity: O(1) relinking + O(log 1) for the fixed 4-element sort.
func (t *Tour) SwapDoubleBridge(a1, b1, a2, b2, a3, b3, a4, b4 int, record bool) {
	norm := func(a, b int) (int, int) {
		if t.nodes[a].succ == b {
			return a, b
		}
		return b, a
	}
	type dir struct{ p, q int }
	pairs := [4]dir{}
	p, q := norm(a1, b1)
	pairs[0] = dir{p, q}
	p, q = norm(a2, b2)
	pairs[1] = dir{p, q}
	p, q = norm(a3, b3)
	pairs[2] = dir{p, q}
	p, q = norm(a4, b4)
	pairs[3] = dir{p, q}

	// Sort the 4 directed edges by the cycle position of their tail.
	for i := 1; i < 4; i++ {
		for j := i; j > 0 && t.nodes[pairs[j-1].p].pos > t.nodes[pairs[j].p].pos; j-- {
			pairs[j-1], pairs[j] = pairs[j], pairs[j-1]
		}
	}

	p0, q0 := pairs[0].p, pairs[0].q
	p1, q1 := pairs[1].p, pairs[1].q
	p2, q2 := pairs[2].p, pairs[2].q
	p3, q3 := pairs[3].p, pairs[3].q

	var rec swapRecord
	if record {
		// Double-bridge touches eight endpoints at once (not the usual four), so
		// its inverse is a direct snapshot-restore rather than a relabeled
		// re-call through the generic kind table.
		rec.kind = swapDoubleBridge
		rec.bridgeNodes = [8]int{p0, q0, p1, q1, p2, q2, p3, q3}
		for i, node := range rec.bridgeNodes {
			rec.bridgeSnapshot[i] = t.nodes[node]
		}
		rec.bridgeOldEdges = [4]edge{newEdge(p0, q0), newEdge(p1, q1), newEdge(p2, q2), newEdge(p3, q3)}
	}

	t.edges.remove(p0, q0)
	t.edges.remove(p1, q1)
	t.edges.remove(p2, q2)
	t.edges.remove(p3, q3)

	t.setSucc(p0, q2)
	t.setPred(q2, p0)
	t.setSucc(p2, q0)
	t.setPred(q0, p2)
	t.setSucc(p1, q3)
	t.setPred(q3, p1)
	t.setSucc(p3, q1)
	t.setPred(q1, p3)

	t.edges.add(p0, q2)
	t.edges.add(p2, q0)
	t.edges.add(p1, q3)
	t.edges.add(p3, q1)

	if record {
		rec.bridgeNewEdges = [4]edge{newEdge(p0, q2), newEdge(p2, q0), newEdge(p1, q3), newEdge(p3, q1)}
		t.swapStack = append(t.swapStack, rec)
	}
}

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Restore
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// Restore pops and inverts the most recent swap on the stack, returning to
// the exact tour state (succ/pred/edges) that preceded it. pos is renumbered
// from node 0 afterwards when a non-feasible record was undone or remains
// stacked and the tour is a single cycle.
//
// Complexity: O(1) amortized for feasible/unfeasible inverses; O(n) worst case
// when the inverted swap itself requires reversing a subcycle.
func (t *Tour) Restore() error {
	if len(t.swapStack) == 0 {
		return ErrEmptySwapStack
	}
	rec := t.swapStack[len(t.swapStack)-1]
	t.swapStack = t.swapStack[:len(t.swapStack)-1]

	switch rec.kind {
	case swapFeasible:
		t.SwapFeasible(rec.t4, rec.t1, rec.t2, rec.t3, false, false)
	case swapFeasibleReversed:
		t.SwapFeasible(rec.t4, rec.t1, rec.t2, rec.t3, true, false)
	case swapUnfeasible:
		t.SwapUnfeasible(rec.t4, rec.t1, rec.t2, rec.t3, false, false)
	case swapNodeBetweenT2T3:
		t.SwapUnfeasible(rec.t4, rec.t1, rec.t2, rec.t3, false, false)
	case swapNodeBetweenT2T3Reversed:
		t.SwapUnfeasible(rec.t4, rec.t1, rec.t2, rec.t3, true, false)
	case swapDoubleBridge:
		for _, e := range rec.bridgeNewEdges {
			delete(t.edges, e)
		}
		for i, node := range rec.bridgeNodes {
			t.nodes[node] = rec.bridgeSnapshot[i]
		}
		for _, e := range rec.bridgeOldEdges {
			t.edges[e] = struct{}{}
		}
	}

	// pos is renumbered 0..n-1 along succ from node 0 when the undone record
	// or one still on the stack is not a plain feasible swap, provided the
	// tour is one whole cycle again.
	stale := rec.kind != swapFeasible
	for _, r := range t.swapStack {
		stale = stale || r.kind != swapFeasible
	}
	steps, cur := 1, t.nodes[0].succ
	for ; stale && cur != 0; cur = t.nodes[cur].succ {
		steps++
	}
	if stale && steps == len(t.nodes) {
		for i := 0; i < steps; i++ {
			t.nodes[cur].pos = i
			cur = t.nodes[cur].succ
		}
	}
	return nil
}

// RestoreAll pops and inverts every remaining swap on the stack, in order.
func (t *Tour) RestoreAll() error {
	for len(t.swapStack) > 0 {
		if err := t.Restore(); err != nil {
			return err
		}
	}
	return nil
}

// Mark returns the current swap-stack depth, for use with RestoreTo.
func (t *Tour) Mark() int { return len(t.swapStack) }

// RestoreTo unwinds the swap stack back down to the given depth (as returned
// by an earlier Mark), inverting each swap above it in LIFO order.
func (t *Tour) RestoreTo(depth int) error {
	for len(t.swapStack) > depth {
		if err := t.Restore(); err != nil {
			return err
		}
	}
	return nil
}

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Shuffle
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// Shuffle reassigns succ/pred/pos to a random permutation of the arena nodes
// using rng, keeping node 0 fixed as the cycle anchor. The swap stack and
// edge set are reset to match the new cycle.
//
// Complexity: O(n).
func (t *Tour) Shuffle(rng *rand.Rand) {
	n := len(t.nodes)
	perm := make([]int, n-1)
	for i := range perm {
		perm[i] = i + 1
	}
	shuffleIntsInPlace(perm, rng)

	order := make([]int, n)
	order[0] = 0
	copy(order[1:], perm)

	for i := 0; i < n; i++ {
		cur := order[i]
		next := order[(i+1)%n]
		t.nodes[cur].succ = next
		t.nodes[next].pred = cur
		t.nodes[cur].pos = i
	}

	t.edges = newEdgeSet(n)
	for i := 0; i < n; i++ {
		t.edges.add(order[i], order[(i+1)%n])
	}
	t.swapStack = t.swapStack[:0]
}
