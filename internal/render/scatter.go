package render

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/flexfold/ensemble/internal/ensemble"
)

// ScatterOptions sizes the plotted image; axes are auto-scaled to the
// data's min/max with no margin (a zero-width range is widened by 1).
type ScatterOptions struct {
	Width, Height int
	PointRadius   int
}

func DefaultScatterOptions() ScatterOptions {
	return ScatterOptions{Width: 640, Height: 480, PointRadius: 2}
}

// WriteScatterPNG renders the (mean_distance, score) sample points
// (SPEC_FULL.md §9's distance/score scatter sample) as a PNG
// scatter plot on a white background, distance on X and score on Y.
func WriteScatterPNG(w io.Writer, points []ensemble.SamplePoint, opts ScatterOptions) error {
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	white := color.RGBA{255, 255, 255, 255}
	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			img.SetRGBA(x, y, white)
		}
	}
	if len(points) == 0 {
		return png.Encode(w, img)
	}

	minX, maxX, minY, maxY := axisBounds(points)
	dot := color.RGBA{31, 119, 180, 255}
	for _, p := range points {
		px := project(p.MeanDistance, minX, maxX, opts.Width)
		py := opts.Height - 1 - project(p.Score, minY, maxY, opts.Height)
		drawDot(img, px, py, opts.PointRadius, dot)
	}
	return png.Encode(w, img)
}

func axisBounds(points []ensemble.SamplePoint) (minX, maxX, minY, maxY float64) {
	minX, maxX = points[0].MeanDistance, points[0].MeanDistance
	minY, maxY = points[0].Score, points[0].Score
	for _, p := range points {
		if p.MeanDistance < minX {
			minX = p.MeanDistance
		}
		if p.MeanDistance > maxX {
			maxX = p.MeanDistance
		}
		if p.Score < minY {
			minY = p.Score
		}
		if p.Score > maxY {
			maxY = p.Score
		}
	}
	if minX == maxX {
		maxX = minX + 1
	}
	if minY == maxY {
		maxY = minY + 1
	}
	return minX, maxX, minY, maxY
}

func project(v, lo, hi float64, span int) int {
	frac := (v - lo) / (hi - lo)
	p := int(frac * float64(span-1))
	if p < 0 {
		return 0
	}
	if p >= span {
		return span - 1
	}
	return p
}

func drawDot(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	bounds := img.Bounds()
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			x, y := cx+dx, cy+dy
			if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}
			img.SetRGBA(x, y, c)
		}
	}
}
