package ensemble

import (
	"math"
	"runtime"
	"sync"
)

// DDOF selects the denominator the DSA Scorer uses for a pair row's
// standard deviation. Population (denominator n) is the paper-mode
// default (spec.md §9's Open Question); Sample (n-1) is the one
// alternate configuration path spec.md acknowledges.
type DDOF int

const (
	DDOFPopulation DDOF = iota
	DDOFSample
)

const stdZeroSubstitute = 1e-4

// ScorePairRow implements the DSA Scorer (spec.md §4.F) for one pair
// row, writing Mean/Std/Score in place. If the row has no non-missing
// distances, all three are reported missing.
func ScorePairRow(row *PairRow, ddof DDOF) {
	vals := make([]float64, 0, len(row.Distances))
	for _, d := range row.Distances {
		if !d.Missing {
			vals = append(vals, d.Value)
		}
	}
	n := len(vals)
	if n == 0 {
		row.Mean, row.Std, row.Score = Absent(), Absent(), Absent()
		return
	}

	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(n)

	denom := float64(n)
	if ddof == DDOFSample && n > 1 {
		denom = float64(n - 1)
	}

	sumSq := 0.0
	for _, v := range vals {
		d := v - mean
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / denom)
	if std == 0 {
		std = stdZeroSubstitute
	}

	row.Mean = Present(mean)
	row.Std = Present(std)
	row.Score = Present(mean / std)
}

// ScorePairs scores every row with a bounded worker pool, the second
// of the two fork-join points spec.md §5 names (distance + scoring are
// independent per pair row, each worker owns its row's slice cell).
func ScorePairs(rows []PairRow, ddof DDOF) {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(rows) {
		workers = len(rows)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	chunk := (len(rows) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= len(rows) {
			break
		}
		if end > len(rows) {
			end = len(rows)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for idx := start; idx < end; idx++ {
				ScorePairRow(&rows[idx], ddof)
			}
		}(start, end)
	}
	wg.Wait()
}
