package render

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/flexfold/ensemble/internal/ensemble"
)

// HeatmapOptions controls the score range the colour ramp is clipped
// to, mirroring heatmap.py:save_heatmap_png's vmin/vmax clipping of
// the slide-deck's fixed 20..130 display range.
type HeatmapOptions struct {
	VMin, VMax float64
	CellPixels int
}

// DefaultHeatmapOptions matches the reference implementation's
// defaults.
func DefaultHeatmapOptions() HeatmapOptions {
	return HeatmapOptions{VMin: 20, VMax: 130, CellPixels: 4}
}

// WriteHeatmapPNG renders a Heatmap to w as a PNG, with missing cells
// drawn white and present cells clipped to [VMin, VMax] and mapped
// through the reversed-rainbow ramp.
func WriteHeatmapPNG(w io.Writer, hm ensemble.Heatmap, opts HeatmapOptions) error {
	if opts.CellPixels <= 0 {
		opts.CellPixels = 1
	}
	n := hm.Size
	side := n * opts.CellPixels
	img := image.NewRGBA(image.Rect(0, 0, side, side))

	span := opts.VMax - opts.VMin
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c := cellColor(hm.Values[i][j], opts.VMin, span)
			fillCell(img, i, j, opts.CellPixels, c)
		}
	}
	return png.Encode(w, img)
}

func cellColor(v ensemble.MissingFloat, vmin, span float64) color.RGBA {
	if v.Missing {
		return color.RGBA{255, 255, 255, 255}
	}
	x := v.Value
	if x < vmin {
		x = vmin
	}
	if span <= 0 {
		return rainbowReversed(0)
	}
	if x > vmin+span {
		x = vmin + span
	}
	return rainbowReversed((x - vmin) / span)
}

// fillCell paints one (row, col) heatmap cell, drawing row 0 at the
// bottom of the image to match matplotlib's origin="lower" convention.
func fillCell(img *image.RGBA, row, col, cellPixels int, c color.RGBA) {
	n := img.Bounds().Dy() / cellPixels
	flippedRow := n - 1 - row
	x0, y0 := col*cellPixels, flippedRow*cellPixels
	for dy := 0; dy < cellPixels; dy++ {
		for dx := 0; dx < cellPixels; dx++ {
			img.SetRGBA(x0+dx, y0+dy, c)
		}
	}
}
