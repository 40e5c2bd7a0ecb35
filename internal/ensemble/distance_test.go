package ensemble

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestComputeDistancesScenarioS1 implements spec.md §8 scenario S1: two
// chains, three residues, no gaps.
func TestComputeDistancesScenarioS1(t *testing.T) {
	rct := &RCT{
		ReferenceID:      "REF",
		Reference:        []string{"ALA", "GLY", "SER"},
		RowResidueNumber: []int{1, 2, 3},
		Chains: []ChainColumn{
			{
				Residues: []Residue{{Number: 1}, {Number: 2}, {Number: 3}},
				Coords: []Coord{
					{X: 0, Y: 0, Z: 0},
					{X: 3.8, Y: 0, Z: 0},
					{X: 7.6, Y: 0, Z: 0},
				},
			},
			{
				Residues: []Residue{{Number: 1}, {Number: 2}, {Number: 3}},
				Coords: []Coord{
					{X: 0, Y: 0, Z: 0},
					{X: 3.8, Y: 0, Z: 0.5},
					{X: 7.6, Y: 0, Z: 1.0},
				},
			},
		},
	}

	rows := ComputeDistances(rct)
	if len(rows) != 3 {
		t.Fatalf("expected 3 pair rows, got %d", len(rows))
	}

	want := map[[2]int][2]float64{
		{0, 1}: {3.800, 3.833},
		{0, 2}: {7.600, 7.666},
		{1, 2}: {3.800, 3.833},
	}

	for _, row := range rows {
		w, ok := want[[2]int{row.I, row.J}]
		if !ok {
			t.Fatalf("unexpected pair (%d,%d)", row.I, row.J)
		}
		for k, d := range row.Distances {
			if d.Missing {
				t.Fatalf("pair (%d,%d) chain %d: unexpected missing distance", row.I, row.J, k)
			}
			if !almostEqual(d.Value, w[k]) {
				t.Errorf("pair (%d,%d) chain %d: got %v, want %v", row.I, row.J, k, d.Value, w[k])
			}
		}
	}
}

func TestChainDistanceMissingPropagates(t *testing.T) {
	d := chainDistance(Coord{Missing: true}, Coord{X: 1, Y: 1, Z: 1})
	if !d.Missing {
		t.Errorf("expected missing distance when an endpoint is missing")
	}
}

func TestRoundHalfToEven(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0.0005, 0.0}, // ties to even: 0.5 -> 0
		{0.0015, 0.002},
		{0.0025, 0.002}, // ties to even: 2.5 -> 2
	}
	for _, c := range cases {
		got := roundHalfToEven(c.in)
		if !almostEqual(got, c.want) {
			t.Errorf("roundHalfToEven(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPairIndicesLexicographicOrder(t *testing.T) {
	pairs := PairIndices(4)
	want := [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	if len(pairs) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(pairs), len(want))
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair %d: got %v, want %v", i, pairs[i], want[i])
		}
	}
}
