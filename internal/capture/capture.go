// Package capture post-processes screenshots: it scales them down, stamps a
// caption and stores them as numbered files in a per-run directory.
package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Options controls Process.
type Options struct {
	// Scale in (0, 1]. Zero means no scaling.
	Scale float64
	// Caption is drawn in the bottom-left corner when non-empty.
	Caption string
}

var (
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// basicfont.Face7x13 metrics.
const (
	glyphWidth  = 7
	glyphHeight = 13
	margin      = 6
)

// Process decodes a PNG, applies opts and re-encodes it.
func Process(data []byte, opts Options) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	if opts.Scale < 0 || opts.Scale > 1 {
		return nil, fmt.Errorf("scale must be in (0, 1], got %g", opts.Scale)
	}

	dst := Scale(src, opts.Scale)
	if opts.Caption != "" {
		DrawCaption(dst, opts.Caption)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Scale resizes img by factor using Catmull-Rom resampling. A factor of 0 or
// 1 only converts to RGBA.
func Scale(img image.Image, factor float64) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if factor > 0 && factor < 1 {
		w = max(1, int(float64(w)*factor))
		h = max(1, int(float64(h)*factor))
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// DrawCaption writes text with a dark outline near the bottom-left corner.
func DrawCaption(img *image.RGBA, text string) {
	x := img.Bounds().Min.X + margin
	y := img.Bounds().Max.Y - margin
	if y-glyphHeight < img.Bounds().Min.Y {
		y = img.Bounds().Min.Y + glyphHeight
	}

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(img, text, x+dx, y+dy, outlineColor)
		}
	}
	drawString(img, text, x, y, textColor)
}

func drawString(img *image.RGBA, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// CaptionWidth returns the pixel width of text in the caption font.
func CaptionWidth(text string) int {
	return len([]rune(text)) * glyphWidth
}
