// This file implements the two baseline collaborators that round out the
// original project's variant table: a greedy nearest-neighbor construction and
// an exhaustive brute-force search, grounded on
// original_source/src/lk_heuristic/models/tsp.py's nn_improve/bf_improve.
// Neither does local search; both rewire tour in place and leave its swap
// stack untouched (there is nothing to Restore afterward).
package lk

// NearestNeighborImprove replaces tour's cycle with a greedy nearest-neighbor
// tour: starting at arena index 0, repeatedly step to the closest unvisited
// node (ties broken by the lower arena index), until every node has been
// visited, then close back to 0.
//
// Complexity: O(n²).
func NearestNeighborImprove(t *Tour) error {
	n := t.Len()
	visited := make([]bool, n)
	order := make([]int, 0, n)

	cur := 0
	visited[cur] = true
	order = append(order, cur)

	for len(order) < n {
		best := -1
		var bestCost float64
		for cand := 0; cand < n; cand++ {
			if visited[cand] {
				continue
			}
			w, err := t.dist.At(cur, cand)
			if err != nil {
				return err
			}
			if best < 0 || w < bestCost {
				best = cand
				bestCost = w
			}
		}
		visited[best] = true
		order = append(order, best)
		cur = best
	}

	relinkOrder(t, order)
	return nil
}

// BruteForceImprove replaces tour's cycle with the minimum-cost Hamiltonian
// cycle found by enumerating every permutation of nodes 1..n-1, fixing node 0
// as anchor (rotations of the same cycle are not distinct tours). Only
// intended for small n (documented, not enforced, matching the original's
// lack of a guard); callers that want a hard ceiling should check
// BruteForceNodeLimit themselves and return ErrBruteForceTooLarge.
//
// Complexity: O((n-1)!).
func BruteForceImprove(t *Tour) error {
	n := t.Len()
	rest := make([]int, 0, n-1)
	for i := 1; i < n; i++ {
		rest = append(rest, i)
	}

	bestOrder := append([]int{0}, rest...)
	bestCost, err := tourCostOf(t, bestOrder)
	if err != nil {
		return err
	}

	perm := append([]int(nil), rest...)
	var permute func(k int) error
	permute = func(k int) error {
		if k == len(perm) {
			cand := append([]int{0}, perm...)
			cost, cerr := tourCostOf(t, cand)
			if cerr != nil {
				return cerr
			}
			if cost < bestCost {
				bestCost = cost
				bestOrder = append([]int(nil), cand...)
			}
			return nil
		}
		for i := k; i < len(perm); i++ {
			perm[k], perm[i] = perm[i], perm[k]
			if err := permute(k + 1); err != nil {
				return err
			}
			perm[k], perm[i] = perm[i], perm[k]
		}
		return nil
	}
	if err := permute(0); err != nil {
		return err
	}

	relinkOrder(t, bestOrder)
	return nil
}

// tourCostOf sums edge weights along order (a closed cycle starting and ending
// implicitly at order[0]) without mutating t.
func tourCostOf(t *Tour, order []int) (float64, error) {
	var sum float64
	n := len(order)
	for i := 0; i < n; i++ {
		a := order[i]
		b := order[(i+1)%n]
		w, err := t.dist.At(a, b)
		if err != nil {
			return 0, err
		}
		sum += w
	}
	return round1e9(sum), nil
}

// relinkOrder overwrites t's succ/pred/pos and edge set to match order, and
// clears the swap stack (there is no primitive-swap history for a wholesale
// rewire).
func relinkOrder(t *Tour, order []int) {
	n := len(order)
	es := newEdgeSet(n)
	for i := 0; i < n; i++ {
		cur := order[i]
		next := order[(i+1)%n]
		t.nodes[cur].succ = next
		t.nodes[next].pred = cur
		t.nodes[cur].pos = i
		es.add(cur, next)
	}
	t.edges = es
	t.swapStack = t.swapStack[:0]
}
