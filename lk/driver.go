// This file implements Run, the single entry point that wires together the
// cost model, neighbor index, tour, and chosen search variant, mirroring the
// sibling tsp package's SolveWithMatrix dispatcher: validate inputs once,
// route by Options.Algo, and return a stable Result.
package lk

import (
	"context"
	"log/slog"
	"math"

	"github.com/lkheuristic/tsplk/matrix"
	"github.com/lkheuristic/tsplk/tsp"
)

// Run builds the cost matrix and neighbor index from ids/costFn, constructs a
// Tour, and runs the configured Algorithm to (local) optimality, returning the
// resulting order, cost, and run statistics.
//
// Contracts:
//   - len(ids) ≥ 3, all distinct (NewTour's own checks).
//   - costFn must be symmetric; see CostFunc's contract.
//   - opts should come from DefaultOptions() with fields overridden as needed.
//
// Complexity: dominated by the chosen Algorithm; see types.go's doc comment
// per Algorithm value.
func Run(ctx context.Context, ids []string, costFn CostFunc, opts Options) (Result, error) {
	n := len(ids)
	dist, err := NewCostMatrix(n, costFn)
	if err != nil {
		return Result{}, err
	}

	k := opts.NeighborListSize
	if k <= 0 {
		k = DefaultNeighborListSize
	}
	ni, err := BuildNeighborIndex(dist, k)
	if err != nil {
		return Result{}, err
	}

	t, err := NewTour(ids, dist)
	if err != nil {
		return Result{}, err
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	rng := rngFromSeed(opts.Seed)
	if opts.ShuffleCandidates {
		shuffleIntsInPlace(order, rng)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		cost         float64
		runs         = 1
		improvements int
		runErr       error
	)

	switch opts.Algo {
	case LK2:
		improvements, runErr = lk2Main(ctx, t, ni, order, opts.Eps, opts.MaxDepth)
		if runErr != nil && runErr != ErrContextDone {
			return Result{}, runErr
		}
		cost, err = t.Cost()

	case LK1:
		cost, runs, improvements, runErr = lk1Main(ctx, t, ni, order, opts, rng)
		err = nil
		if runErr != nil && runErr != ErrContextDone && runErr != ErrTimeLimit {
			return Result{}, runErr
		}

	case NearestNeighbor:
		runErr = NearestNeighborImprove(t)
		if runErr != nil {
			return Result{}, runErr
		}
		cost, err = t.Cost()

	case BruteForce:
		if n > BruteForceNodeLimit {
			return Result{}, ErrBruteForceTooLarge
		}
		runErr = BruteForceImprove(t)
		if runErr != nil {
			return Result{}, runErr
		}
		cost, err = t.Cost()

	case TwoOptSeed:
		if seedErr := seedFromTwoOpt(t, dist, opts); seedErr != nil {
			return Result{}, seedErr
		}
		improvements, runErr = lk2Main(ctx, t, ni, order, opts.Eps, opts.MaxDepth)
		if runErr != nil && runErr != ErrContextDone {
			return Result{}, runErr
		}
		cost, err = t.Cost()

	case ThreeOptSeed:
		if seedErr := seedFromThreeOpt(t, dist, opts); seedErr != nil {
			return Result{}, seedErr
		}
		improvements, runErr = lk2Main(ctx, t, ni, order, opts.Eps, opts.MaxDepth)
		if runErr != nil && runErr != ErrContextDone {
			return Result{}, runErr
		}
		cost, err = t.Cost()

	default:
		return Result{}, ErrUnsupportedAlgorithm
	}

	if err != nil {
		return Result{}, err
	}

	verifyGainAccounting(logger, t, cost, opts.Eps)

	res := Result{
		TourIDs:      t.OrderedIDs(),
		Cost:         cost,
		Improvements: improvements,
		Runs:         runs,
	}
	if runErr == ErrContextDone || runErr == ErrTimeLimit {
		return res, runErr
	}
	return res, nil
}

// seedFromTwoOpt constructs an initial tour by running the sibling tsp
// package's deterministic first-improvement 2-opt over the identity order,
// then rewires t to match it. Grounded on tsp/two_opt.go, wired here as a
// construction heuristic for LK2's polishing pass rather than a raw identity
// or full shuffle start.
func seedFromTwoOpt(t *Tour, dist *matrix.Dense, opts Options) error {
	n := t.Len()
	initTour := make([]int, n+1)
	for i := 0; i <= n; i++ {
		initTour[i] = i % n
	}

	tspOpts := tsp.DefaultOptions()
	tspOpts.Symmetric = true
	tspOpts.Eps = opts.Eps
	tspOpts.Seed = opts.Seed

	seeded, _, err := tsp.TwoOpt(dist, initTour, tspOpts)
	if err != nil {
		return err
	}

	relinkOrder(t, seeded[:n])
	return nil
}

// seedFromThreeOpt constructs an initial tour via the sibling tsp package's
// ThreeOptOnly dispatcher (tsp.SolveWithMatrix), then rewires t to match it.
// SolveWithMatrix's ids parameter is validation-only and never reindexes the
// returned tour, so its Tour indices map directly onto dist's own rows/cols
// and thus onto t's arena indices without translation. Grounded on
// tsp/solve.go's ThreeOptOnly case and tsp/three_opt.go.
func seedFromThreeOpt(t *Tour, dist *matrix.Dense, opts Options) error {
	n := t.Len()

	tspOpts := tsp.DefaultOptions()
	tspOpts.Algo = tsp.ThreeOptOnly
	tspOpts.Symmetric = true
	tspOpts.Eps = opts.Eps
	tspOpts.Seed = opts.Seed
	tspOpts.EnableLocalSearch = true

	res, err := tsp.SolveWithMatrix(dist, nil, tspOpts)
	if err != nil {
		return err
	}

	relinkOrder(t, res.Tour[:n])
	return nil
}

// verifyGainAccounting cross-checks the tour's recomputed cost against its
// final value and logs a Warn on mismatch beyond eps, matching the numeric
// sanity policy: a discrepancy is logged, never fatal, since no caller can
// react usefully to a bookkeeping drift that the recomputed cost already
// corrects.
func verifyGainAccounting(logger *slog.Logger, t *Tour, reportedCost, eps float64) {
	actual, err := t.Cost()
	if err != nil {
		return
	}
	if math.Abs(actual-reportedCost) > eps {
		logger.Warn("lk: tour cost mismatch after search",
			"reported", reportedCost, "recomputed", actual, "eps", eps)
	}
}
