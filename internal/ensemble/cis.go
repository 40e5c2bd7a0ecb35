package ensemble

import "math"

// DetectCisPairs implements the Cis Detector (spec.md §4.H). A pair is
// eligible if at least one chain's distance is ≤ threshold; cis_num
// counts eligible pairs where every chain is ≤ threshold (no trans
// cell at all); mix counts eligible pairs with both a cis and a trans
// cell. Missing cells are excluded from both counts.
func DetectCisPairs(rows []PairRow, threshold float64) CisInfo {
	info := CisInfo{Threshold: threshold}

	var eligibleMeans, eligibleScores []float64

	for idx, row := range rows {
		cisCount, transCount := 0, 0
		for _, d := range row.Distances {
			if d.Missing {
				continue
			}
			if d.Value <= threshold {
				cisCount++
			} else {
				transCount++
			}
		}
		if cisCount == 0 {
			continue
		}

		info.Pairs = append(info.Pairs, idx)
		if transCount == 0 {
			info.CisNum++
		} else {
			info.Mix++
		}

		if !row.Mean.Missing && !math.IsNaN(row.Mean.Value) {
			eligibleMeans = append(eligibleMeans, row.Mean.Value)
		}
		if !row.Score.Missing && !math.IsNaN(row.Score.Value) && !math.IsInf(row.Score.Value, 0) {
			eligibleScores = append(eligibleScores, row.Score.Value)
		}
	}

	if len(info.Pairs) == 0 {
		info.DistMean = Present(0)
		info.DistStd = Present(0)
		info.ScoreMean = Present(0)
		return info
	}

	info.DistMean = Present(mean(eligibleMeans))
	info.DistStd = Present(sampleStd(eligibleMeans))
	info.ScoreMean = Present(mean(eligibleScores))
	return info
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func populationStd(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	sumSq := 0.0
	for _, v := range vals {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)))
}

// sampleStd is the sample (ddof=1) standard deviation, matching
// pandas' default Series.std() — cis_dist_std is computed this way to
// stay byte-compatible with cis_dist["distance mean"].std(). A
// single-element series has no sample variance (n-1 == 0), so it
// reports 0 rather than dividing by zero.
func sampleStd(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	sumSq := 0.0
	for _, v := range vals {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)-1))
}
