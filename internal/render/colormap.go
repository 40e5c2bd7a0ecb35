// Package render draws the two visual artifacts the ensemble produces
// (the N×N score heatmap and the distance/score scatter plot) as PNG
// images, using only the standard library's image and image/png
// packages — no plotting or charting library exists anywhere in the
// reference corpus, so this package hand-rolls the one colour ramp it
// needs (DESIGN.md records this as a stdlib-only justification).
package render

import "image/color"

// rainbowReversed reproduces matplotlib's "rainbow_r" colormap closely
// enough for this package's purposes: it walks the same violet → blue
// → green → yellow → red hue sweep matplotlib's rainbow colormap uses,
// but in reverse (t=0 is red, t=1 is violet), matching heatmap.py's
// cmap="rainbow_r" choice.
func rainbowReversed(t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	t = 1 - t

	// Piecewise-linear approximation of matplotlib's rainbow colormap
	// control points (violet, blue, cyan, green, yellow, red).
	stops := []struct {
		pos        float64
		r, g, b int
	}{
		{0.0, 127, 0, 255},
		{0.2, 0, 0, 255},
		{0.4, 0, 255, 255},
		{0.6, 0, 255, 0},
		{0.8, 255, 255, 0},
		{1.0, 255, 0, 0},
	}

	for i := 0; i < len(stops)-1; i++ {
		a, b := stops[i], stops[i+1]
		if t < a.pos || t > b.pos {
			continue
		}
		span := b.pos - a.pos
		frac := 0.0
		if span > 0 {
			frac = (t - a.pos) / span
		}
		return color.RGBA{
			R: lerp(a.r, b.r, frac),
			G: lerp(a.g, b.g, frac),
			B: lerp(a.b, b.b, frac),
			A: 255,
		}
	}
	last := stops[len(stops)-1]
	return color.RGBA{R: uint8(last.r), G: uint8(last.g), B: uint8(last.b), A: 255}
}

func lerp(a, b int, frac float64) uint8 {
	return uint8(float64(a) + frac*float64(b-a))
}
