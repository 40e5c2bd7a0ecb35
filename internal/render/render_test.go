package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/flexfold/ensemble/internal/ensemble"
)

func TestWriteHeatmapPNGProducesValidImageOfExpectedSize(t *testing.T) {
	hm := ensemble.Heatmap{
		Size: 2,
		Values: [][]ensemble.MissingFloat{
			{ensemble.MissingFloat{}, ensemble.MissingFloat{Value: 50}},
			{ensemble.MissingFloat{Value: 50}, ensemble.MissingFloat{}},
		},
	}
	hm.Values[0][0].Missing = true
	hm.Values[1][1].Missing = true

	var buf bytes.Buffer
	opts := DefaultHeatmapOptions()
	opts.CellPixels = 3
	if err := WriteHeatmapPNG(&buf, hm, opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if w := img.Bounds().Dx(); w != 6 {
		t.Errorf("width = %d, want 6", w)
	}
}

func TestWriteScatterPNGHandlesEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteScatterPNG(&buf, nil, DefaultScatterOptions()); err != nil {
		t.Fatalf("unexpected error on empty input: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
}

func TestCellColorClipsToRange(t *testing.T) {
	low := cellColor(ensemble.MissingFloat{Value: -100}, 20, 110)
	high := cellColor(ensemble.MissingFloat{Value: 1000}, 20, 110)
	if low == high {
		t.Errorf("expected distinct clipped colours at the extremes, got %v for both", low)
	}
}
