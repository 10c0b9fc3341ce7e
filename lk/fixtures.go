// This file provides reusable 2D point fixtures for tests, grounded on
// spec.md's end-to-end scenarios and the original project's test fixtures
// (original_source/tests/test_tour.py's 12-node hexagon ring). Kept in the
// package (not _test.go) so cmd/tsplk's demo can also exercise them.
package lk

import "strconv"

// HexagonPoints returns the 12-point regular hexagon fixture used throughout
// the swap-primitive tests: ids "0".."11" in ring order, matching the arena
// layout NewTour builds for a fresh 12-node tour.
func HexagonPoints() []Point2D {
	return []Point2D{
		{X: 1, Y: 3}, {X: 1.5, Y: 2.5}, {X: 2, Y: 2}, {X: 2, Y: 1},
		{X: 2, Y: 0}, {X: 1.5, Y: -0.5}, {X: 1, Y: -1}, {X: 0.5, Y: -0.5},
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}, {X: 0.5, Y: 2.5},
	}
}

// SquarePoints returns the 4-point unit-square fixture (optimal tour cost 4.0).
func SquarePoints() []Point2D {
	return []Point2D{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}
}

// TriangleWithCenterPoints returns the 5-point fixture used as the brute-force
// oracle comparison scenario.
func TriangleWithCenterPoints() []Point2D {
	return []Point2D{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 2}, {X: 1, Y: 0.5}, {X: 3, Y: 0},
	}
}

// SequentialIDs returns ids "0".."n-1", matching the arena-index-as-id
// convention the hexagon/square/triangle fixtures and their ground-truth
// tests assume.
func SequentialIDs(n int) []string {
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = strconv.Itoa(i)
	}
	return ids
}
