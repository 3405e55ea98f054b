package atlas

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

const maxColors = 256

var errTooManyColors = errors.New("atlas: palette cannot exceed 256 colors")

// Encode writes the sheet page m to w as a PNG. If colors is greater than
// zero the image is first quantized down to a palette of at most that many
// colors.
func Encode(w io.Writer, m image.Image, colors int) error {
	if colors <= 0 {
		return png.Encode(w, m)
	}
	if colors > maxColors {
		return errTooManyColors
	}

	b := m.Bounds()

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, colors), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)

	return png.Encode(w, pm)
}
