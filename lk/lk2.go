// This file implements LK2: the feasible-only recursive sequential exchange
// (Helsgaun's simplification of the full LK1 engine — feasible swaps only, no
// unfeasible branch, no reduction, no double-bridge). Starting from a broken
// edge (t1,t2), it tries joining t2 to a nearby t3, closing the tour through
// t4, or — if closing is not yet profitable — breaking (t3,t4) and recursing
// to extend the chain one level deeper, mirroring the original project's
// lk2_select_broken_edge/lk2_select_joined_edge mutual recursion.
package lk

import "context"

func (t *Tour) dist2(a, b int) float64 {
	w, err := t.dist.At(a, b)
	if err != nil {
		return 0
	}
	return w
}

// lk2SelectBrokenEdge applies the tentative feasible swap that breaks (t3,t4)
// and joins (t2,t3), then either closes the tour through (t4,t1) if that is
// already profitable, or recurses into lk2SelectJoinedEdge to extend the
// chain. On failure it undoes exactly its own swap before returning, so a
// caller's sibling candidates see a clean tour.
func lk2SelectBrokenEdge(t *Tour, ni *NeighborIndex, visited map[uint64]struct{}, depth, maxDepth int, gain float64, t1, t2, t3, t4 int, broken, joined edgeSet, eps float64) bool {
	if t1 == t4 || broken.has(t3, t4) || joined.has(t3, t4) {
		return false
	}
	if !t.IsSwapFeasible(t1, t2, t3, t4) {
		return false
	}

	mark := t.Mark()
	t.SwapFeasible(t1, t2, t3, t4, false, true)
	broken.add(t3, t4)

	closeCost := t.dist2(t4, t1)
	newGain := gain + t.dist2(t3, t4) - closeCost

	ok := false
	if _, dup := visited[t.fingerprint()]; !dup {
		if newGain > eps {
			joined.add(t4, t1)
			ok = true
		} else if depth < maxDepth {
			ok = lk2SelectJoinedEdge(t, ni, visited, depth+1, maxDepth, newGain, t1, t4, broken, joined, eps)
		}
	}

	if !ok {
		broken.remove(t3, t4)
		_ = t.RestoreTo(mark)
	}
	return ok
}

// lk2SelectJoinedEdge tries each of t2's nearest neighbors as the next t3,
// computing t4 from local orientation the same way the top-level candidate
// selection does, and recurses into lk2SelectBrokenEdge for each candidate
// that passes the disjointness and gain checks.
func lk2SelectJoinedEdge(t *Tour, ni *NeighborIndex, visited map[uint64]struct{}, depth, maxDepth int, gain float64, t1, t2 int, broken, joined edgeSet, eps float64) bool {
	forward := t.Succ(t1) == t2
	for _, t3 := range ni.GetBestNeighbors(t2) {
		if t3 == t1 || t3 == t2 {
			continue
		}
		if broken.has(t2, t3) || joined.has(t2, t3) || t.edges.has(t2, t3) {
			continue
		}
		newGain := gain - t.dist2(t2, t3)
		if newGain <= eps {
			continue
		}
		var t4 int
		if forward {
			t4 = t.Pred(t3)
		} else {
			t4 = t.Succ(t3)
		}

		joined.add(t2, t3)
		if lk2SelectBrokenEdge(t, ni, visited, depth, maxDepth, newGain, t1, t2, t3, t4, broken, joined, eps) {
			return true
		}
		joined.remove(t2, t3)
	}
	return false
}

// lk2ImproveOne tries every (t2, t3) starting candidate for t1, in turn
// seeding the broken/joined sets and entering the recursive chain. Mirrors
// lk2_main's single-t1 body.
func lk2ImproveOne(t *Tour, ni *NeighborIndex, visited map[uint64]struct{}, t1 int, eps float64, maxDepth int) bool {
	for _, t2 := range [2]int{t.Succ(t1), t.Pred(t1)} {
		forward := t.Succ(t1) == t2
		for _, t3 := range ni.GetBestNeighbors(t2) {
			if t3 == t1 || t3 == t2 || t.edges.has(t2, t3) {
				continue
			}
			gain := t.dist2(t1, t2) - t.dist2(t2, t3)
			if gain <= eps {
				continue
			}
			var t4 int
			if forward {
				t4 = t.Pred(t3)
			} else {
				t4 = t.Succ(t3)
			}

			broken := newEdgeSet(4)
			joined := newEdgeSet(4)
			broken.add(t1, t2)
			joined.add(t2, t3)
			if lk2SelectBrokenEdge(t, ni, visited, 1, maxDepth, gain, t1, t2, t3, t4, broken, joined, eps) {
				t.swapStack = t.swapStack[:0]
				visited[t.fingerprint()] = struct{}{}
				return true
			}
		}
	}
	return false
}

// lk2Main drives lk2ImproveOne over every node until a full pass yields no
// improvement, mirroring the original project's lk2_main/lk2_improve split.
// ctx is polled every 2048 candidate checks (tsp/two_opt.go's checkDeadline
// cadence, generalized from a wall-clock deadline to a cooperative
// cancellation signal); a canceled ctx stops the pass early and returns
// ErrContextDone.
//
// Complexity: O(passes · n · k^maxDepth) worst case, pruned heavily in
// practice by the gain and disjointness checks.
func lk2Main(ctx context.Context, t *Tour, ni *NeighborIndex, order []int, eps float64, maxDepth int) (int, error) {
	improvements := 0
	improved := true
	step := 0
	visited := map[uint64]struct{}{}
	for improved {
		improved = false
		for _, t1 := range order {
			step++
			if step&2047 == 0 {
				if err := ctx.Err(); err != nil {
					return improvements, ErrContextDone
				}
			}
			if lk2ImproveOne(t, ni, visited, t1, eps, maxDepth) {
				improved = true
				improvements++
			}
		}
	}
	return improvements, nil
}
