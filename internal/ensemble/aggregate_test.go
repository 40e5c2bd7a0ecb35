package ensemble

import (
	"math"
	"testing"
)

func scoredRow(i, j int, mean, std float64) PairRow {
	row := PairRow{I: i, J: j, Mean: Present(mean), Std: Present(std)}
	row.Score = Present(mean / std)
	return row
}

// TestComputeUMFIsMeanOfFiniteScores checks spec.md §8 invariant 5.
func TestComputeUMFIsMeanOfFiniteScores(t *testing.T) {
	rows := []PairRow{
		scoredRow(0, 1, 3.8, 1e-4),
		scoredRow(0, 2, 7.6, 1e-4),
		{I: 1, J: 2, Score: Absent()},
	}
	umf, err := ComputeUMF(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := (rows[0].Score.Value + rows[1].Score.Value) / 2
	if !almostEqual(umf, want) {
		t.Errorf("umf = %v, want %v", umf, want)
	}
}

func TestComputeUMFNoValidScores(t *testing.T) {
	rows := []PairRow{{Score: Absent()}}
	_, err := ComputeUMF(rows)
	ee, ok := err.(*EngineError)
	if !ok || ee.Kind != ErrNoValidScores {
		t.Fatalf("expected ErrNoValidScores, got %v", err)
	}
}

// TestComputePerResidueScoresInvariant checks spec.md §8 invariant 6.
func TestComputePerResidueScoresInvariant(t *testing.T) {
	rct := &RCT{
		Reference:        []string{"A", "B", "C"},
		RowResidueNumber: []int{1, 2, 3},
	}
	rows := []PairRow{
		scoredRow(0, 1, 1, 1),
		scoredRow(0, 2, 2, 1),
		scoredRow(1, 2, 3, 1),
	}
	scores := ComputePerResidueScores(rct, rows)

	want0 := (rows[0].Score.Value + rows[1].Score.Value) / 2
	if !almostEqual(scores[0].Score.Value, want0) {
		t.Errorf("residue 0 score = %v, want %v", scores[0].Score.Value, want0)
	}
}

// TestBuildHeatmapSymmetricWithMissingDiagonal checks invariant 2.
func TestBuildHeatmapSymmetricWithMissingDiagonal(t *testing.T) {
	rows := []PairRow{scoredRow(0, 1, 3.8, 1e-4)}
	hm := BuildHeatmap(2, rows)

	if !hm.Values[0][0].Missing || !hm.Values[1][1].Missing {
		t.Errorf("expected missing (NaN) diagonal")
	}
	if hm.Values[0][1].Value != hm.Values[1][0].Value {
		t.Errorf("heatmap not symmetric: H[0][1]=%v H[1][0]=%v", hm.Values[0][1].Value, hm.Values[1][0].Value)
	}
}

func TestComputePairScoreStatsSingleValueBoundary(t *testing.T) {
	rows := []PairRow{scoredRow(0, 1, 3.8, 1e-4)}
	stats := ComputePairScoreStats(rows)
	if stats.Std.Missing || stats.Std.Value != 0 {
		t.Errorf("expected std = 0 for a single finite score, got %+v", stats.Std)
	}
}

func TestSamplePointsCapsAt5000(t *testing.T) {
	rows := make([]PairRow, 12000)
	for i := range rows {
		rows[i] = scoredRow(0, 0, float64(i), 1)
	}
	points := SamplePoints(rows)
	if len(points) > SamplePointsCap {
		t.Errorf("sample exceeds cap: got %d, want <= %d", len(points), SamplePointsCap)
	}
	if len(points) == 0 {
		t.Errorf("expected a non-empty sample")
	}
}

func TestSamplePointsExcludesNonFinite(t *testing.T) {
	rows := []PairRow{
		{Mean: Present(1), Score: Present(math.NaN())},
		{Mean: Present(2), Score: Present(3)},
	}
	points := SamplePoints(rows)
	if len(points) != 1 || points[0].Score != 3 {
		t.Errorf("expected only the finite-score point, got %+v", points)
	}
}
