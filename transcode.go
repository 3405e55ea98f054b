package spriter

import (
	"errors"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"github.com/bodgit/spriter/atlas"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var errEmptyImage = errors.New("image has no pixels")

// transcode decodes the image at path and returns it scaled to the size of
// each tier, in the same order as atlas.Tiers.
func transcode(path string) ([]image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if m.Bounds().Empty() {
		return nil, &DecodeError{Path: path, Err: errEmptyImage}
	}

	src := dropAlpha(m)

	tiles := make([]image.Image, len(atlas.Tiers))
	for i, t := range atlas.Tiers {
		tiles[i] = transform.Resize(src, t.Size, t.Size, transform.Box)
	}

	return tiles, nil
}

// dropAlpha returns a copy of m with the alpha channel discarded rather than
// blended, so every pixel keeps its straight color and is fully opaque.
func dropAlpha(m image.Image) *image.RGBA {
	b := m.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if src, ok := m.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			s := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			d := dst.Pix[dst.PixOffset(0, y):]
			for x := 0; x < b.Dx(); x++ {
				copy(d[x*4:x*4+3], s[x*4:x*4+3])
				d[x*4+3] = 0xff
			}
		}
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{c.R, c.G, c.B, 0xff})
		}
	}

	return dst
}
