package ensemble

import "testing"

// TestScorePairRowInvariant checks spec.md §8 invariant 1:
// score = mean / (std if std != 0 else 1e-4), exactly.
func TestScorePairRowInvariant(t *testing.T) {
	row := PairRow{Distances: []MissingFloat{Present(3.8), Present(3.8), Present(3.8)}}
	ScorePairRow(&row, DDOFPopulation)

	if row.Std.Value != stdZeroSubstitute {
		t.Fatalf("expected std substitute %v, got %v", stdZeroSubstitute, row.Std.Value)
	}
	want := row.Mean.Value / stdZeroSubstitute
	if !almostEqual(row.Score.Value, want) {
		t.Errorf("score = %v, want mean/std = %v", row.Score.Value, want)
	}
}

// TestScorePairRowScenarioS2 implements scenario S2: identical
// triplicate distances produce std = 1e-4 and score = mean*1e4.
func TestScorePairRowScenarioS2(t *testing.T) {
	row := PairRow{Distances: []MissingFloat{Present(3.8), Present(3.8), Present(3.8)}}
	ScorePairRow(&row, DDOFPopulation)

	wantScore := row.Mean.Value * 1e4
	if !almostEqual(row.Score.Value, wantScore) {
		t.Errorf("score = %v, want %v", row.Score.Value, wantScore)
	}
}

func TestScorePairRowAllMissing(t *testing.T) {
	row := PairRow{Distances: []MissingFloat{Absent(), Absent()}}
	ScorePairRow(&row, DDOFPopulation)
	if !row.Mean.Missing || !row.Std.Missing || !row.Score.Missing {
		t.Errorf("expected mean/std/score missing when all distances missing")
	}
}

func TestScorePairRowSampleDDOF(t *testing.T) {
	row := PairRow{Distances: []MissingFloat{Present(1), Present(2), Present(3)}}
	ScorePairRow(&row, DDOFSample)
	// population variance = 2/3, sample variance = 1 (denominator 2)
	if !almostEqual(row.Std.Value*row.Std.Value, 1.0) {
		t.Errorf("sample variance = %v, want 1.0", row.Std.Value*row.Std.Value)
	}
}

func TestScorePairsMatchesSequential(t *testing.T) {
	rows := make([]PairRow, 50)
	for i := range rows {
		rows[i] = PairRow{Distances: []MissingFloat{Present(float64(i) + 1), Present(float64(i) + 2)}}
	}
	ScorePairs(rows, DDOFPopulation)
	for i := range rows {
		want := PairRow{Distances: []MissingFloat{Present(float64(i) + 1), Present(float64(i) + 2)}}
		ScorePairRow(&want, DDOFPopulation)
		if !almostEqual(rows[i].Score.Value, want.Score.Value) {
			t.Errorf("row %d: parallel score %v != sequential score %v", i, rows[i].Score.Value, want.Score.Value)
		}
	}
}
