package ensemble

import (
	"math"
	"runtime"
	"sync"
)

// roundHalfToEven implements the mandatory pre-scale rounding rule
// (spec.md §4.E, §9): round(1000*x)/1000, half-to-even on the scaled
// value. This must run identically on every platform and must not be
// reordered relative to the norm it feeds.
func roundHalfToEven(x float64) float64 {
	return math.RoundToEven(x*1000) / 1000
}

// PairIndices returns the lexicographically ordered (i,j), i<j, pair
// list for an RCT with n rows.
func PairIndices(n int) [][2]int {
	pairs := make([][2]int, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}

// chainDistance computes the reproducibly-rounded Euclidean distance
// between two coordinates, or reports it missing if either is.
func chainDistance(a, b Coord) MissingFloat {
	if a.Missing || b.Missing {
		return Absent()
	}
	dx := roundHalfToEven(a.X - b.X)
	dy := roundHalfToEven(a.Y - b.Y)
	dz := roundHalfToEven(a.Z - b.Z)
	norm := math.Sqrt(dx*dx + dy*dy + dz*dz)
	return Present(roundHalfToEven(norm))
}

// ComputeDistances implements the Pair Distance Engine (spec.md §4.E):
// one row per (i,j) pair in lexicographic order, one distance cell per
// chain. Rows are computed by a bounded worker pool, each worker
// writing into a disjoint slice index — the per-pair fork-join point
// spec.md §5 names.
func ComputeDistances(rct *RCT) []PairRow {
	n := rct.N()
	k := rct.K()
	pairs := PairIndices(n)
	rows := make([]PairRow, len(pairs))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	chunk := (len(pairs) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= len(pairs) {
			break
		}
		if end > len(pairs) {
			end = len(pairs)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for idx := start; idx < end; idx++ {
				i, j := pairs[idx][0], pairs[idx][1]
				distances := make([]MissingFloat, k)
				for c := 0; c < k; c++ {
					distances[c] = chainDistance(rct.Chains[c].Coords[i], rct.Chains[c].Coords[j])
				}
				rows[idx] = PairRow{I: i, J: j, Distances: distances}
			}
		}(start, end)
	}
	wg.Wait()

	return rows
}
