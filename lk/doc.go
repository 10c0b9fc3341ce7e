// Package lk implements a sequential k-opt local-search engine for the symmetric
// Euclidean Travelling Salesman Problem, in the Lin–Kernighan family (LK1 and LK2
// variants), with neighbor-list pruning, move reduction, and a double-bridge kick.
//
// # What & Why
//
// Given a set of 2D or 3D points, lk builds a Tour (a cyclic doubly-linked list over
// an arena of Node values) and repeatedly attempts sequential edge-exchange moves:
//
//   - LK2: the simpler variant — feasible swaps only, no unfeasible branch, no
//     reduction, no double-bridge. Converges to a 2-opt-flavored local optimum.
//   - LK1: the full variant — adds backtracking, an unfeasible branch (LK paper
//     step 6(b)), reduction across optimization cycles, and a double-bridge kick to
//     escape local optima across outer runs.
//
// # Algorithms & Complexity
//
//	lk2Main (LK2: feasible-only sequential exchange)
//	  Time:   bounded by backtracking width and recursion depth per t1; empirically
//	          near-linear per outer pass on Euclidean instances with K-nearest pruning.
//	lk1Main (LK1: full LK with unfeasible branch, reduction, double-bridge)
//	  Time:   wider search tree than LK2 (extra unfeasible branch + backtracking
//	          vector per level); reduction trims repeated deep branches after a few
//	          cycles.
//	NearestNeighborImprove / BruteForceImprove
//	  Baselines: O(N²) greedy construction; O((N-1)!) exhaustive search (N≤12 only).
//
// # Determinism & Stability
//
//   - No time-based randomness. Shuffling and double-bridge candidate selection use
//     Options.Seed; Seed==0 gives a fixed stream (see rng.go).
//   - Repeated-tour detection uses a 64-bit FNV-1a fingerprint of the succ/pred id
//     sequence (see fingerprint.go); false positives only skip exploration, they
//     never affect correctness.
//
// # Input Requirements
//
//	N ≥ 3 distinct node ids. Coordinates may repeat (zero-cost edges are legal).
//	The cost matrix is built once from a CostFunc (EuclideanDistance2D/3D) and never
//	mutated afterward.
package lk
