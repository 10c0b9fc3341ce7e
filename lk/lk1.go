// This file implements LK1: the full engine. On top of LK2's feasible
// exchange it adds an unfeasible branch (break two edges into two disjoint
// cycles, then reconnect through a third broken edge found on the other
// subcycle — LK paper step 6(b)), a per-level backtracking vector bounding
// how many candidates are tried at each recursion depth, a reduction gate
// that prunes deep break candidates against edges surviving every local
// optimum seen so far, and a gain-checked double-bridge kick between outer
// runs to escape the local optimum the feasible/unfeasible search alone would
// settle into.
package lk

import (
	"context"
	"math/rand"
	"time"
)

// lk1FeasibleSearch applies a swap at the current recursion level — either a
// plain feasible exchange or, when viaNodeBetween is set, a reconnection of
// two disjoint subcycles via SwapNodeBetweenT2T3 — then decides whether to
// close the tour here or recurse one level deeper through
// tryLK1Continuation. gain is the total gain already banked by the caller,
// before this level's break/join.
func lk1FeasibleSearch(t *Tour, ni *NeighborIndex, level int, gain float64, viaNodeBetween bool, t1, t2, t3, t4 int, broken, joined, reductionEdges edgeSet, solutions map[uint64]struct{}, opts Options) bool {
	if opts.ReductionLevel > 0 && level >= opts.ReductionLevel && reductionEdges.has(t3, t4) {
		return false
	}

	// The closing edge (t4,t1) is judged against the tour as it stands before
	// this level's swap, which itself adds (t1,t4).
	closeValid := !t.edges.has(t4, t1) && !broken.has(t4, t1)

	mark := t.Mark()
	if viaNodeBetween {
		t.SwapNodeBetweenT2T3(t1, t2, t3, t4, true)
	} else {
		if !t.IsSwapFeasible(t1, t2, t3, t4) {
			return false
		}
		t.SwapFeasible(t1, t2, t3, t4, false, true)
	}
	broken.add(t3, t4)
	joined.add(t2, t3)

	// Repeated-tour prune: this level's swap always yields a valid complete
	// cycle, so if its shape was already produced earlier this pass there is
	// nothing new to explore from here.
	if _, seen := solutions[t.fingerprint()]; seen {
		broken.remove(t3, t4)
		joined.remove(t2, t3)
		_ = t.RestoreTo(mark)
		return false
	}

	closeGain := gain + t.dist2(t3, t4) - t.dist2(t4, t1)

	ok := tryLK1Continuation(t, ni, level, closeGain, closeValid, t1, t4, broken, joined, reductionEdges, solutions, opts)
	if !ok {
		broken.remove(t3, t4)
		joined.remove(t2, t3)
		_ = t.RestoreTo(mark)
	}
	return ok
}

// tryLK1Continuation implements the backtracking loop at the tail of
// lk1_feasible_search: try up to backtrackWidth(level) neighbors of t4 as the
// next join candidate, preferring an immediate close over recursing deeper
// whenever closing is both valid and better than continuing through that
// candidate. If no candidate yields a deeper improvement, fall back to
// closing here if that alone is profitable.
func tryLK1Continuation(t *Tour, ni *NeighborIndex, level int, closeGain float64, closeValid bool, t1, t4 int, broken, joined, reductionEdges edgeSet, solutions map[uint64]struct{}, opts Options) bool {
	if level < opts.MaxDepth {
		width := backtrackWidth(opts.Backtracking, level)
		tried := 0
		forward := t.Succ(t1) == t4
		for _, t5 := range ni.GetBestNeighbors(t4) {
			if tried >= width {
				break
			}
			if t5 == t1 || t5 == t4 {
				continue
			}
			if broken.has(t4, t5) || joined.has(t4, t5) || t.edges.has(t4, t5) {
				continue
			}
			exploreGain := closeGain + t.dist2(t4, t1) - t.dist2(t4, t5)
			if exploreGain <= opts.Eps {
				continue
			}

			var t6 int
			if forward {
				t6 = t.Pred(t5)
			} else {
				t6 = t.Succ(t5)
			}
			if t6 == t1 || t6 == t4 || broken.has(t5, t6) || joined.has(t5, t6) {
				continue
			}
			tried++

			if closeValid && closeGain > exploreGain && closeGain > opts.Eps {
				return true
			}
			if lk1FeasibleSearch(t, ni, level+1, exploreGain, false, t1, t4, t5, t6, broken, joined, reductionEdges, solutions, opts) {
				return true
			}
		}
	}

	return closeValid && closeGain > opts.Eps
}

// lk1UnfeasibleSearch implements the LK paper's step 6(b): after splitting
// the tour into two subcycles via SwapUnfeasible, it looks for a third edge
// (t5,t6) that reconnects them into a single profitable cycle. t5 on t1's
// subcycle (Case A) requires a further feasible swap plus a fourth edge
// (t7,t8) taken from t2's subcycle before the reconnection is valid; t5 on
// t2's subcycle (Case B) reconnects directly via SwapNodeBetweenT2T3.
func lk1UnfeasibleSearch(t *Tour, ni *NeighborIndex, t1, t2, t3, t4 int, broken, joined, reductionEdges edgeSet, solutions map[uint64]struct{}, opts Options) bool {
	if !t.IsSwapUnfeasible(t1, t2, t3, t4) {
		return false
	}

	mark := t.Mark()
	t.SwapUnfeasible(t1, t2, t3, t4, false, true)
	broken.add(t3, t4)
	joined.add(t2, t3)

	width := backtrackWidth(opts.Backtracking, 1)
	tried := 0
	ok := false
	for _, t5 := range ni.GetBestNeighbors(t4) {
		if tried >= width {
			break
		}
		if t5 == t1 || t5 == t2 || t5 == t3 || t5 == t4 {
			continue
		}
		exploreGain := t.dist2(t3, t4) - t.dist2(t4, t5)
		if exploreGain <= opts.Eps {
			continue
		}

		forward := t.Succ(t1) == t4
		var t6 int
		if forward {
			t6 = t.Pred(t5)
		} else {
			t6 = t.Succ(t5)
		}
		if t6 == t1 || t6 == t2 || t6 == t3 || t6 == t4 {
			continue
		}
		tried++

		if t.Between(t1, t5, t1) {
			// Case A: t5 lies on t1's subcycle. A direct reconnect through
			// (t5,t6) alone is not a valid single-cycle tour; a further
			// feasible swap against t2's subcycle (t7,t8) is required.
			if !t.IsSwapFeasible(t1, t4, t5, t6) {
				continue
			}
			innerMark := t.Mark()
			t.SwapFeasible(t1, t4, t5, t6, true, true)
			gainAfterA := exploreGain + t.dist2(t5, t6) - t.dist2(t6, t1)

			w2 := backtrackWidth(opts.Backtracking, 2)
			tried2 := 0
			forward2 := t.Succ(t1) == t6
			found := false
			for _, t7 := range ni.GetBestNeighbors(t6) {
				if tried2 >= w2 {
					break
				}
				if t7 == t1 || t7 == t2 || t7 == t3 || t7 == t4 || t7 == t5 || t7 == t6 {
					continue
				}
				if !t.Between(t2, t7, t2) {
					continue
				}
				tried2++
				var t8 int
				if forward2 {
					t8 = t.Pred(t7)
				} else {
					t8 = t.Succ(t7)
				}
				if lk1FeasibleSearch(t, ni, 4, gainAfterA, true, t1, t6, t7, t8, broken, joined, reductionEdges, solutions, opts) {
					found = true
					break
				}
			}
			if found {
				ok = true
				break
			}
			_ = t.RestoreTo(innerMark)
			continue
		}

		// Case B: t5 lies on t2's subcycle, reconnect directly.
		if lk1FeasibleSearch(t, ni, 3, exploreGain, true, t1, t4, t5, t6, broken, joined, reductionEdges, solutions, opts) {
			ok = true
			break
		}
	}

	if !ok {
		broken.remove(t3, t4)
		joined.remove(t2, t3)
		_ = t.RestoreTo(mark)
	}
	return ok
}

// lk1DoubleBridgeSearch picks four disjoint tour edges at random, applies
// SwapDoubleBridge, and accepts the move only when the four removed edges
// cost more than the four added edges by more than eps; otherwise it restores and
// tries again, up to maxTests times. Edges already in reductionEdges — ones
// that have survived every local optimum seen so far — are excluded from
// selection, since disturbing them has repeatedly failed to pay off.
func lk1DoubleBridgeSearch(t *Tour, rng *rand.Rand, reductionEdges edgeSet, maxTests int, eps float64) bool {
	n := t.Len()
	if n < 8 {
		return false
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	shuffleIntsInPlace(idx, rng)

	candidates := make([]int, 0, n)
	for _, a := range idx {
		if !reductionEdges.has(a, t.Succ(a)) {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) < 4 {
		return false
	}

	for attempt := 0; attempt < maxTests; attempt++ {
		shuffleIntsInPlace(candidates, rng)
		a1 := candidates[0]
		b1 := t.Succ(a1)
		a2, b2 := pickDisjointEdge(t, candidates, 1, a1, b1)
		if a2 < 0 {
			continue
		}
		a3, b3 := pickDisjointEdge(t, candidates, 1, a1, b1, a2, b2)
		if a3 < 0 {
			continue
		}
		a4, b4 := pickDisjointEdge(t, candidates, 1, a1, b1, a2, b2, a3, b3)
		if a4 < 0 {
			continue
		}

		removed := t.dist2(a1, b1) + t.dist2(a2, b2) + t.dist2(a3, b3) + t.dist2(a4, b4)
		mark := t.Mark()
		t.SwapDoubleBridge(a1, b1, a2, b2, a3, b3, a4, b4, true)
		added := newEdgeCost(t, mark)
		if removed-added > eps {
			return true
		}
		_ = t.RestoreTo(mark)
	}
	return false
}

// newEdgeCost sums the cost of the four edges a SwapDoubleBridge recorded at
// the top of the swap stack, used to decide whether the kick just applied
// was actually an improvement.
func newEdgeCost(t *Tour, mark int) float64 {
	if len(t.swapStack) <= mark {
		return 0
	}
	rec := t.swapStack[len(t.swapStack)-1]
	var sum float64
	for _, e := range rec.bridgeNewEdges {
		sum += t.dist2(e[0], e[1])
	}
	return sum
}

// pickDisjointEdge scans idx starting at from for a node whose incident
// forward edge shares no endpoint with any of the excluded nodes.
func pickDisjointEdge(t *Tour, idx []int, from int, excl ...int) (int, int) {
	n := len(idx)
	for i := from; i < n; i++ {
		a := idx[i]
		b := t.Succ(a)
		clash := false
		for _, e := range excl {
			if a == e || b == e {
				clash = true
				break
			}
		}
		if !clash {
			return a, b
		}
	}
	return -1, -1
}

// lk1AttemptT1 tries every (t2, t3, t4) starting candidate for t1, dispatching
// to the feasible or unfeasible branch depending on which kind of swap the
// candidate produces. Mirrors lk1_main's single-t1 body. Each t3 neighbor of
// t2 offers two reconnection points, t3's tour predecessor and successor; both
// are tried since is_swap_feasible depends on which one is picked, not on a
// direction derived from t1/t2 alone — fixing t4 to a single derived side
// would make every candidate feasible by construction and starve the
// unfeasible branch entirely.
func lk1AttemptT1(t *Tour, ni *NeighborIndex, t1 int, reductionEdges edgeSet, solutions map[uint64]struct{}, opts Options, width0 int) bool {
	for _, t2 := range [2]int{t.Succ(t1), t.Pred(t1)} {
		brokenCost := t.dist2(t1, t2)
		tried := 0
		for _, cand := range bestNeighborCandidates(t, ni, t2) {
			if tried >= width0 {
				break
			}
			t3, t4 := cand.T3, cand.T4
			if t3 == t1 || t3 == t2 || t4 == t1 || t4 == t2 || t4 == t3 || t.edges.has(t2, t3) {
				continue
			}
			gain := brokenCost - t.dist2(t3, t2)
			if gain <= opts.Eps {
				continue
			}
			tried++

			broken := newEdgeSet(8)
			joined := newEdgeSet(8)
			broken.add(t1, t2)

			var accepted bool
			if t.IsSwapFeasible(t1, t2, t3, t4) {
				accepted = lk1FeasibleSearch(t, ni, 1, gain, false, t1, t2, t3, t4, broken, joined, reductionEdges, solutions, opts)
			} else {
				accepted = lk1UnfeasibleSearch(t, ni, t1, t2, t3, t4, broken, joined, reductionEdges, solutions, opts)
			}
			if accepted {
				solutions[t.fingerprint()] = struct{}{}
				solutions[t.fingerprintPred()] = struct{}{}
				return true
			}
		}
	}
	return false
}

// lk1Improve runs one outer LK1 pass: try every t1 in order, accepting the
// first improving feasible-or-unfeasible chain found for it. ctx is polled
// every 2048 t1 candidates; a canceled ctx stops the pass early and returns
// ErrContextDone alongside whatever improvements were already accepted.
//
// Complexity: bounded per t1 by the backtracking vector and MaxDepth, times
// the number of cycles to convergence.
func lk1Improve(ctx context.Context, t *Tour, ni *NeighborIndex, order []int, reductionEdges edgeSet, opts Options) (int, error) {
	improvements := 0
	improved := true
	step := 0
	width0 := backtrackWidth(opts.Backtracking, 0)
	solutions := make(map[uint64]struct{})
	for improved {
		improved = false
		for _, t1 := range order {
			step++
			if step&2047 == 0 {
				if err := ctx.Err(); err != nil {
					return improvements, ErrContextDone
				}
			}
			if lk1AttemptT1(t, ni, t1, reductionEdges, solutions, opts, width0) {
				improved = true
				improvements++
			}
		}
	}
	return improvements, nil
}

// lk1Main drives the outer double-bridge restart loop: run lk1Improve to a
// local optimum, narrow reductionEdges to the edges that have now survived
// every local optimum seen so far, remember the best tour seen, kick with a
// gain-checked double bridge once reductionCycle local optima have elapsed,
// and repeat up to opts.MaxRuns times, until ctx is done, or until
// opts.TimeLimit elapses (tsp/two_opt.go's soft-deadline pattern). On ctx
// cancellation or time-limit expiry the best tour found so far is restored
// and ErrContextDone / ErrTimeLimit is returned alongside it — not treated as
// a fatal failure by callers that only want a best-effort result.
func lk1Main(ctx context.Context, t *Tour, ni *NeighborIndex, order []int, opts Options, rng *rand.Rand) (bestCost float64, runs, improvements int, err error) {
	bestCost, err = t.Cost()
	if err != nil {
		return 0, 0, 0, err
	}
	bestSnapshot := snapshotTour(t)
	reductionEdges := newEdgeSet(t.Len())
	cycles := 0

	var deadline time.Time
	useDeadline := opts.TimeLimit > 0
	if useDeadline {
		deadline = time.Now().Add(opts.TimeLimit)
	}

	var loopErr error
	for run := 0; run < opts.MaxRuns; run++ {
		if err := ctx.Err(); err != nil {
			loopErr = ErrContextDone
			break
		}

		// reductionEdges gates deep break candidates only while no more than
		// ReductionCycle cycles have completed.
		gate := reductionEdges
		if cycles > opts.ReductionCycle {
			gate = newEdgeSet(0)
		}
		inc, ierr := lk1Improve(ctx, t, ni, order, gate, opts)
		improvements += inc
		runs++
		if ierr != nil {
			loopErr = ierr
		}

		cycles++
		if cycles == 1 {
			reductionEdges = t.edges.clone()
		} else {
			reductionEdges = reductionEdges.intersect(t.edges)
		}

		cost, cerr := t.Cost()
		if cerr != nil {
			return 0, 0, 0, cerr
		}
		if cost < bestCost-opts.Eps {
			bestCost = cost
			bestSnapshot = snapshotTour(t)
		}

		if loopErr != nil {
			break
		}
		if useDeadline && time.Now().After(deadline) {
			loopErr = ErrTimeLimit
			break
		}
		if run == opts.MaxRuns-1 {
			break
		}

		if cycles >= opts.ReductionCycle {
			lk1DoubleBridgeSearch(t, deriveRNG(rng, uint64(run)), reductionEdges, opts.MaxTests, opts.Eps)
		}
	}

	restoreTour(t, bestSnapshot)
	return bestCost, runs, improvements, loopErr
}

// tourSnapshot is a plain copy of a Tour's mutable state, used to remember the
// best tour found across LK1's outer double-bridge restarts.
type tourSnapshot struct {
	nodes []Node
	edges edgeSet
}

func snapshotTour(t *Tour) tourSnapshot {
	nodes := make([]Node, len(t.nodes))
	copy(nodes, t.nodes)
	return tourSnapshot{nodes: nodes, edges: t.edges.clone()}
}

func restoreTour(t *Tour, s tourSnapshot) {
	copy(t.nodes, s.nodes)
	t.edges = s.edges.clone()
	t.swapStack = t.swapStack[:0]
}
