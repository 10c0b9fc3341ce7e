package lk

import (
	"log/slog"
	"time"
)

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Algorithm selector
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// Algorithm enumerates the top-level search strategies supported by Run.
type Algorithm int

const (
	// LK2 runs the feasible-only sequential exchange to a local optimum.
	LK2 Algorithm = iota

	// LK1 runs the full engine: feasible + unfeasible branches, reduction, and a
	// double-bridge kick between outer runs.
	LK1

	// NearestNeighbor builds a single greedy tour; no local search is applied.
	NearestNeighbor

	// BruteForce exhaustively searches all permutations (n ≤ 12 or so).
	BruteForce

	// TwoOptSeed seeds the tour via the 2-opt local search adapted from the
	// sibling tsp package, then polishes it with the LK2 search (lk2Main).
	TwoOptSeed

	// ThreeOptSeed seeds the tour via the sibling tsp package's ThreeOptOnly
	// dispatcher, then polishes it with the LK2 search (lk2Main).
	ThreeOptSeed
)

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Swap bookkeeping
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// SwapKind records which primitive produced a swapRecord, so Restore knows which
// inverse to apply.
type SwapKind int

const (
	swapFeasible SwapKind = iota
	swapFeasibleReversed
	swapUnfeasible
	swapNodeBetweenT2T3
	swapNodeBetweenT2T3Reversed
	swapDoubleBridge
)

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Results
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// Result encapsulates the output of a local-search run.
type Result struct {
	// TourIDs is the closed Hamiltonian cycle, starting and ending at the same id.
	TourIDs []string

	// Cost is the total tour length under the configured CostFunc.
	Cost float64

	// Improvements counts the number of accepted improving moves across the
	// whole run (one per improving t1 chain, which may chain several swaps).
	Improvements int

	// Runs counts the number of outer LK1 restarts performed (always 1 for LK2).
	Runs int
}

//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––
// Options & defaults
//–––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––––

// Default knobs.
const (
	// DefaultNeighborListSize is the number of nearest neighbors retained per node.
	DefaultNeighborListSize = 5

	// DefaultMaxDepth bounds sequential-exchange recursion depth (LK paper's k).
	DefaultMaxDepth = 5

	// DefaultMaxRuns bounds LK1's outer double-bridge restarts.
	DefaultMaxRuns = 1000

	// DefaultReductionLevel bounds the recursion level beyond which an edge
	// already in reductionEdges is no longer explored as a break candidate.
	DefaultReductionLevel = 4

	// DefaultReductionCycle is the number of completed local-optimum cycles
	// during which reductionEdges gates deep break candidates; once that many
	// cycles have completed, double-bridge kicks begin between runs.
	DefaultReductionCycle = 4

	// DefaultMaxTests bounds how many random edge quadruples lk1DoubleBridgeSearch
	// tries before giving up on finding a positive-gain kick.
	DefaultMaxTests = 50

	// DefaultEps is the minimal strictly-better improvement accepted by a swap,
	// matching gain_precision's documented default.
	DefaultEps = 0.01

	// BruteForceNodeLimit is the largest N for which BruteForceImprove will run.
	BruteForceNodeLimit = 12
)

// DefaultBacktracking is LK1's per-level candidate-count vector: at recursion
// level i (0-based), up to DefaultBacktracking[i] neighbor candidates are
// tried before backtracking; levels beyond the vector's length fall back to a
// single candidate (pure greedy).
var DefaultBacktracking = []int{5, 5}

// Options defines configurable parameters for the lk engine.
// Zero value is not meaningful; use DefaultOptions() and override fields as needed.
type Options struct {
	// Algo selects the top-level strategy. Default: LK2.
	Algo Algorithm

	// NeighborListSize is the number of nearest neighbors considered per node when
	// selecting candidate joined edges. Default: 5.
	NeighborListSize int

	// MaxDepth bounds sequential-exchange recursion depth for both LK1 and LK2;
	// a chain that has not closed by this depth is abandoned. Default: 5.
	MaxDepth int

	// Backtracking is LK1's per-level candidate-count vector (levels beyond its
	// length try a single candidate). Default: [5, 5].
	Backtracking []int

	// MaxRuns bounds LK1's outer double-bridge restarts. Default: 1000.
	MaxRuns int

	// ReductionLevel bounds the recursion level at which reductionEdges starts
	// pruning break candidates. Default: 4. Zero disables reduction.
	ReductionLevel int

	// ReductionCycle is the number of completed local-optimum cycles during which
	// reductionEdges gates deep break candidates; once that many cycles have
	// completed, double-bridge kicks begin between runs. Default: 4.
	ReductionCycle int

	// MaxTests bounds how many random quadruples lk1DoubleBridgeSearch tries
	// before giving up on a positive-gain kick. Default: 50.
	MaxTests int

	// Eps is the minimal improvement considered significant (gain_precision).
	// Default: 0.01.
	Eps float64

	// Seed controls deterministic behavior of randomized components. Default: 0
	// (fixed seed, deterministic).
	Seed int64

	// ShuffleCandidates randomizes the t1 iteration order using Seed; when
	// false, t1 is tried in index order. Neighbor lists keep their cost order
	// either way.
	ShuffleCandidates bool

	// TimeLimit optionally bounds wall-clock time for LK1's outer loop. Zero means
	// no limit (bounded only by MaxRuns and ctx).
	TimeLimit time.Duration

	// Logger receives a Warn when the cost reported by the search and a fresh
	// recomputation of the final tour differ by more than Eps; accumulated
	// search gains are not compared against cost deltas. Nil falls back to
	// slog.Default(); the search engine itself never logs on this path.
	Logger *slog.Logger
}

// DefaultOptions returns a fully populated Options struct with safe defaults:
//   - LK2 (feasible-only, passes repeated until one finds no improvement)
//   - 5 nearest neighbors per node, depth 5, no shuffling
//   - Deterministic RNG (Seed=0), no time limit
func DefaultOptions() Options {
	return Options{
		Algo:              LK2,
		NeighborListSize:  DefaultNeighborListSize,
		MaxDepth:          DefaultMaxDepth,
		Backtracking:      append([]int(nil), DefaultBacktracking...),
		MaxRuns:           DefaultMaxRuns,
		ReductionLevel:    DefaultReductionLevel,
		ReductionCycle:    DefaultReductionCycle,
		MaxTests:          DefaultMaxTests,
		Eps:               DefaultEps,
		Seed:              0,
		ShuffleCandidates: false,
		TimeLimit:         0,
	}
}

// backtrackWidth returns the candidate-count budget for recursion level
// (0-based); levels beyond the configured vector get a single candidate.
func backtrackWidth(backtracking []int, level int) int {
	if level < len(backtracking) {
		return backtracking[level]
	}
	return 1
}
