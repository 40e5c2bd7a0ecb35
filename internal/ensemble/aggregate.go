package ensemble

import "math"

// SamplePointsCap bounds the scatter sample aggregate.SamplePoints
// produces (SPEC_FULL.md §9, grounded on dsa.py's
// _sample_main_plot_points).
const SamplePointsCap = 5000

// ComputeUMF implements the UMF aggregator (spec.md §4.G): the
// arithmetic mean of score over all pair rows with a finite score.
// Fails with ErrNoValidScores if none exist.
func ComputeUMF(rows []PairRow) (float64, error) {
	sum, count := 0.0, 0
	for _, row := range rows {
		if row.Score.Missing || math.IsNaN(row.Score.Value) || math.IsInf(row.Score.Value, 0) {
			continue
		}
		sum += row.Score.Value
		count++
	}
	if count == 0 {
		return 0, newEngineError(ErrNoValidScores, "", "no pair row has a finite score", nil)
	}
	return sum / float64(count), nil
}

// ComputePairScoreStats implements the ensemble-wide pair statistics
// (spec.md §4.G): mean and std (denominator n-1, independent of
// Config.DDOF) of finite scores. The n=1 boundary case (spec.md §8) is
// reported explicitly: std is defined as zero rather than undefined.
func ComputePairScoreStats(rows []PairRow) PairScoreStats {
	vals := make([]float64, 0, len(rows))
	for _, row := range rows {
		if row.Score.Missing || math.IsNaN(row.Score.Value) || math.IsInf(row.Score.Value, 0) {
			continue
		}
		vals = append(vals, row.Score.Value)
	}
	n := len(vals)
	if n == 0 {
		return PairScoreStats{Mean: Absent(), Std: Absent()}
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(n)
	if n == 1 {
		return PairScoreStats{Mean: Present(mean), Std: Present(0)}
	}
	sumSq := 0.0
	for _, v := range vals {
		d := v - mean
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / float64(n-1))
	return PairScoreStats{Mean: Present(mean), Std: Present(std)}
}

// ComputePerResidueScores implements the per-residue reduction
// (spec.md §4.G): r_i = mean of finite score over all pair rows where
// residue index i is an endpoint. Rows is indexed in lexicographic
// (i,j) order over n residues.
func ComputePerResidueScores(rct *RCT, rows []PairRow) []PerResidueScore {
	n := rct.N()
	sums := make([]float64, n)
	counts := make([]int, n)

	for _, row := range rows {
		if row.Score.Missing || math.IsNaN(row.Score.Value) || math.IsInf(row.Score.Value, 0) {
			continue
		}
		sums[row.I] += row.Score.Value
		counts[row.I]++
		sums[row.J] += row.Score.Value
		counts[row.J]++
	}

	out := make([]PerResidueScore, n)
	for i := 0; i < n; i++ {
		out[i] = PerResidueScore{
			Index:         i,
			ResidueNumber: rct.RowResidueNumber[i],
			ResidueName:   rct.Reference[i],
		}
		if counts[i] == 0 {
			out[i].Score = Absent()
		} else {
			out[i].Score = Present(sums[i] / float64(counts[i]))
		}
	}
	return out
}

// BuildHeatmap implements the symmetric N×N score heatmap (spec.md
// §4.G), diagonal missing (NaN).
func BuildHeatmap(n int, rows []PairRow) Heatmap {
	values := make([][]MissingFloat, n)
	for i := range values {
		values[i] = make([]MissingFloat, n)
		values[i][i] = Absent()
	}
	for _, row := range rows {
		values[row.I][row.J] = row.Score
		values[row.J][row.I] = row.Score
	}
	return Heatmap{Size: n, Values: values}
}

// SamplePoints returns a capped, evenly-strided sample of
// (mean_distance, score) pairs for scatter plotting, grounded on
// dsa.py:_sample_main_plot_points. Deterministic stride sampling is
// used instead of randomized reservoir sampling so the sample is
// reproducible across runs on identical input.
func SamplePoints(rows []PairRow) []SamplePoint {
	valid := make([]SamplePoint, 0, len(rows))
	for _, row := range rows {
		if row.Mean.Missing || row.Score.Missing {
			continue
		}
		if math.IsNaN(row.Score.Value) || math.IsInf(row.Score.Value, 0) {
			continue
		}
		valid = append(valid, SamplePoint{MeanDistance: row.Mean.Value, Score: row.Score.Value})
	}
	if len(valid) <= SamplePointsCap {
		return valid
	}
	stride := len(valid) / SamplePointsCap
	if stride < 1 {
		stride = 1
	}
	sampled := make([]SamplePoint, 0, SamplePointsCap)
	for i := 0; i < len(valid) && len(sampled) < SamplePointsCap; i += stride {
		sampled = append(sampled, valid[i])
	}
	return sampled
}
