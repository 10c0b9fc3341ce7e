// This file builds the dense cost matrix and per-node neighbor lists the engine
// searches over, grounded on the sibling tsp package's cost-summation style
// (round1e9 stabilization, strict sentinel errors, no hidden allocations in hot
// paths) and wired onto the shared matrix.Dense storage.
package lk

import (
	"math"
	"sort"

	"github.com/lkheuristic/tsplk/matrix"
)

// roundScale controls final cost stabilization precision (1e-9).
const roundScale = 1e9

func round1e9(x float64) float64 {
	return math.Round(x*roundScale) / roundScale
}

// Point2D is a planar coordinate.
type Point2D struct {
	X, Y float64
}

// Point3D is a spatial coordinate.
type Point3D struct {
	X, Y, Z float64
}

// CostFunc computes the travel cost between two points identified by index.
// Implementations must be pure (no side effects) and symmetric for the engine's
// feasibility predicates to hold: CostFunc(i,j) == CostFunc(j,i).
type CostFunc func(i, j int) float64

// EuclideanDistance2D returns a CostFunc over pts using the planar L2 norm.
func EuclideanDistance2D(pts []Point2D) CostFunc {
	return func(i, j int) float64 {
		dx := pts[i].X - pts[j].X
		dy := pts[i].Y - pts[j].Y
		return math.Sqrt(dx*dx + dy*dy)
	}
}

// EuclideanDistance3D returns a CostFunc over pts using the spatial L2 norm.
func EuclideanDistance3D(pts []Point3D) CostFunc {
	return func(i, j int) float64 {
		dx := pts[i].X - pts[j].X
		dy := pts[i].Y - pts[j].Y
		dz := pts[i].Z - pts[j].Z
		return math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
}

// NewCostMatrix evaluates fn once per unordered pair i<j in [0,n), mirrors each
// value, and returns a symmetric *matrix.Dense with a zero diagonal.
//
// Contract:
//   - n ≥ 2.
//   - fn must be symmetric; NewCostMatrix does not enforce this, it only evaluates
//     the upper triangle and mirrors it, so an asymmetric fn would be silently
//     symmetrized to fn(i,j) for both directions.
//
// Complexity: O(n²) time, O(n²) space.
func NewCostMatrix(n int, fn CostFunc) (*matrix.Dense, error) {
	d, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := round1e9(fn(i, j))
			if err = d.Set(i, j, w); err != nil {
				return nil, err
			}
			if err = d.Set(j, i, w); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// edgeCost fetches the weight for edge (u,v) with strict validation, mirroring
// the sibling tsp package's edgeCost helper.
//
// Complexity: O(1).
func edgeCost(m matrix.Matrix, u, v int) (float64, error) {
	nr, nc := m.Rows(), m.Cols()
	if nr != nc || nr <= 0 {
		return 0, ErrTooFewNodes
	}
	if u < 0 || u >= nr || v < 0 || v >= nr {
		return 0, ErrUnknownNodeID
	}
	w, err := m.At(u, v)
	if err != nil {
		return 0, ErrUnknownNodeID
	}
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, ErrUnknownNodeID
	}
	return w, nil
}

// NeighborIndex holds, for each node, its K nearest neighbors by cost in
// ascending order. It is built once and never mutated afterward.
type NeighborIndex struct {
	k    int
	list [][]int
}

// BuildNeighborIndex computes the k nearest neighbors of every node under dist.
// Self is excluded. If k >= n-1, every other node is included (sorted by cost).
//
// Complexity: O(n² log n) time, O(n·k) space.
func BuildNeighborIndex(dist *matrix.Dense, k int) (*NeighborIndex, error) {
	n := dist.Rows()
	if k <= 0 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}

	idx := &NeighborIndex{k: k, list: make([][]int, n)}
	cands := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		cands = cands[:0]
		for j := 0; j < n; j++ {
			if j != i {
				cands = append(cands, j)
			}
		}
		weights := make([]float64, len(cands))
		for pos, j := range cands {
			w, err := edgeCost(dist, i, j)
			if err != nil {
				return nil, err
			}
			weights[pos] = w
		}
		order := make([]int, len(cands))
		for p := range order {
			order[p] = p
		}
		sort.Slice(order, func(a, b int) bool {
			return weights[order[a]] < weights[order[b]]
		})

		top := make([]int, k)
		for p := 0; p < k; p++ {
			top[p] = cands[order[p]]
		}
		idx.list[i] = top
	}
	return idx, nil
}

// GetBestNeighbors returns node i's precomputed nearest-neighbor list, closest
// first. The returned slice must not be mutated by the caller.
//
// Complexity: O(1).
func (ni *NeighborIndex) GetBestNeighbors(i int) []int {
	return ni.list[i]
}

// NeighborCandidate pairs a candidate break point t3 with one of its two
// possible reconnection points t4 (its tour predecessor or successor), plus
// the incremental gain that candidate offers over anchor's broken edge.
type NeighborCandidate struct {
	T3   int
	T4   int
	Gain float64
}

// bestNeighborCandidates expands every neighbor of anchor into both of its
// t4 choices (t3.pred and t3.succ), the way the original lk_heuristic model's
// get_best_neighbors does, and returns them sorted by descending gain. LK1
// must try both t4 directions per t3 since is_swap_feasible/is_swap_unfeasible
// depend on which one is picked, not on anchor's own successor/predecessor
// orientation.
//
// Complexity: O(k log k) for k = ni's configured neighbor-list size.
func bestNeighborCandidates(t *Tour, ni *NeighborIndex, anchor int) []NeighborCandidate {
	neighbors := ni.GetBestNeighbors(anchor)
	out := make([]NeighborCandidate, 0, 2*len(neighbors))
	for _, t3 := range neighbors {
		anchorCost := t.dist2(anchor, t3)
		for _, t4 := range [2]int{t.Pred(t3), t.Succ(t3)} {
			out = append(out, NeighborCandidate{
				T3:   t3,
				T4:   t4,
				Gain: t.dist2(t3, t4) - anchorCost,
			})
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].Gain > out[b].Gain
	})
	return out
}
