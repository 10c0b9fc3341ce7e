package lk

import "errors"

// Validation / input-shape errors. Do not wrap with fmt.Errorf where a sentinel suffices.
var (
	// ErrTooFewNodes indicates fewer than 3 distinct nodes were supplied; no tour exists.
	ErrTooFewNodes = errors.New("lk: fewer than 3 nodes")

	// ErrDuplicateNodeID indicates two input nodes share an id.
	ErrDuplicateNodeID = errors.New("lk: duplicate node id")

	// ErrUnknownNodeID indicates a swap/lookup referenced an id absent from the tour.
	ErrUnknownNodeID = errors.New("lk: unknown node id")

	// ErrInvalidPermutation indicates a candidate tour is not a permutation of all node ids.
	ErrInvalidPermutation = errors.New("lk: invalid permutation")

	// ErrInfeasibleSwap indicates a swap's node arguments do not satisfy the feasibility
	// predicate for the requested swap kind.
	ErrInfeasibleSwap = errors.New("lk: infeasible swap arguments")

	// ErrEmptySwapStack indicates Restore was called with nothing left to undo.
	ErrEmptySwapStack = errors.New("lk: swap stack is empty")
)

// Planner/engine governance sentinels.
var (
	// ErrUnsupportedAlgorithm is returned when Options.Algo selects an unavailable strategy.
	ErrUnsupportedAlgorithm = errors.New("lk: unsupported algorithm")

	// ErrTimeLimit indicates a user-specified time budget was exhausted.
	ErrTimeLimit = errors.New("lk: time limit exceeded")

	// ErrContextDone indicates the caller's context was canceled or timed out mid-search.
	ErrContextDone = errors.New("lk: context canceled")

	// ErrBruteForceTooLarge guards BruteForceImprove from running on instances where
	// (n-1)! would never finish in practice.
	ErrBruteForceTooLarge = errors.New("lk: instance too large for brute force")
)
