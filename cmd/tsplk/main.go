// Command tsplk is a small CLI demo wiring flags to lk.Options, running the
// requested Algorithm over the hexagon fixture (or a user-supplied point
// file), and reporting the resulting tour to stdout, mirroring the teacher
// repository's tsp.SolveWithMatrix dispatcher conventions.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lkheuristic/tsplk/lk"
)

func main() {
	var (
		algo       = flag.String("algo", "lk1", "algorithm: lk1, lk2, nn, bf, twoopt-seed, threeopt-seed")
		pointsFile = flag.String("points", "", "path to a 2-column \"x y\" points file; defaults to the hexagon fixture")
		neighbors  = flag.Int("neighbors", lk.DefaultNeighborListSize, "neighbor list size")
		maxRuns    = flag.Int("max-runs", lk.DefaultMaxRuns, "LK1 outer double-bridge restarts")
		seed       = flag.Int64("seed", 0, "RNG seed")
		timeLimit  = flag.Duration("time-limit", 0, "wall-clock budget, 0 = unlimited")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	pts, err := loadPoints(*pointsFile)
	if err != nil {
		logger.Error("failed to load points", "error", err)
		os.Exit(1)
	}
	ids := lk.SequentialIDs(len(pts))
	costFn := lk.EuclideanDistance2D(pts)

	opts := lk.DefaultOptions()
	opts.NeighborListSize = *neighbors
	opts.MaxRuns = *maxRuns
	opts.Seed = *seed
	opts.TimeLimit = *timeLimit
	opts.Logger = logger

	switch strings.ToLower(*algo) {
	case "lk1":
		opts.Algo = lk.LK1
	case "lk2":
		opts.Algo = lk.LK2
	case "nn":
		opts.Algo = lk.NearestNeighbor
	case "bf":
		opts.Algo = lk.BruteForce
	case "twoopt-seed":
		opts.Algo = lk.TwoOptSeed
	case "threeopt-seed":
		opts.Algo = lk.ThreeOptSeed
	default:
		logger.Error("unknown algorithm", "algo", *algo)
		os.Exit(1)
	}

	ctx := context.Background()
	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}

	start := time.Now()
	res, err := lk.Run(ctx, ids, costFn, opts)
	elapsed := time.Since(start)
	if err != nil && err != lk.ErrContextDone && err != lk.ErrTimeLimit {
		logger.Error("search failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("algorithm:    %s\n", *algo)
	fmt.Printf("nodes:        %d\n", len(pts))
	fmt.Printf("cost:         %.6f\n", res.Cost)
	fmt.Printf("improvements: %d\n", res.Improvements)
	fmt.Printf("runs:         %d\n", res.Runs)
	fmt.Printf("elapsed:      %s\n", elapsed)
	fmt.Printf("tour:         %s\n", strings.Join(res.TourIDs, " -> "))
	if err != nil {
		fmt.Printf("note:         search stopped early (%v)\n", err)
	}
}

// loadPoints reads whitespace-separated "x y" pairs, one per line, from path.
// An empty path falls back to the hexagon fixture so the demo runs with zero
// setup.
func loadPoints(path string) ([]lk.Point2D, error) {
	if path == "" {
		return lk.HexagonPoints(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pts []lk.Point2D
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("tsplk: malformed point line %q", line)
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, err
		}
		pts = append(pts, lk.Point2D{X: x, Y: y})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(pts) < 3 {
		return nil, lk.ErrTooFewNodes
	}
	return pts, nil
}
