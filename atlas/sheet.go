package atlas

import (
	"image"
	"image/draw"
)

// Cell records where an image was placed within a sheet.
type Cell struct {
	// Texture is the filename of the page the image was placed on
	Texture string
	// Bounds is the pixel rectangle within the page
	Bounds image.Rectangle
}

// Sheet packs equally sized images into pages of a fixed grid.
type Sheet struct {
	category string
	tier     Tier
	width    int
	height   int

	page   int
	x, y   int
	placed int

	image *image.RGBA
}

// NewSheet returns an empty sheet for the given category and tier that is
// width by height cells in size.
func NewSheet(category string, width, height int, tier Tier) *Sheet {
	s := &Sheet{
		category: category,
		tier:     tier,
		width:    width,
		height:   height,
		image:    image.NewRGBA(image.Rect(0, 0, width*tier.Size, height*tier.Size)),
	}
	s.clear()
	return s
}

func (s *Sheet) clear() {
	draw.Draw(s.image, s.image.Bounds(), image.Black, image.Point{}, draw.Src)
}

// Tier returns the tier the sheet is packing.
func (s *Sheet) Tier() Tier {
	return s.tier
}

// Page returns the index of the current page.
func (s *Sheet) Page() int {
	return s.page
}

// Texture returns the filename of the current page.
func (s *Sheet) Texture() string {
	return s.tier.Texture(s.category, s.page)
}

// Place copies m into the next free cell of the current page and returns
// where it was placed. The image should already be scaled to the tier size,
// anything outside of the cell is clipped. Place must not be called on a full
// sheet.
func (s *Sheet) Place(m image.Image) Cell {
	if s.Full() {
		panic("atlas: place on full sheet")
	}

	size := s.tier.Size
	r := image.Rect(s.x*size, s.y*size, s.x*size+size, s.y*size+size)
	draw.Draw(s.image, r, m, m.Bounds().Min, draw.Src)

	c := Cell{
		Texture: s.Texture(),
		Bounds:  r,
	}

	s.placed++
	s.x++
	if s.x == s.width {
		s.x = 0
		s.y++
	}

	return c
}

// Full reports whether every cell of the current page has been used.
func (s *Sheet) Full() bool {
	return s.y == s.height
}

// Empty reports whether nothing has been placed on the current page.
func (s *Sheet) Empty() bool {
	return s.placed == 0
}

// Image returns the current page. A partially filled page is trimmed to the
// rows that have been used.
func (s *Sheet) Image() image.Image {
	rows := (s.placed + s.width - 1) / s.width
	return s.image.SubImage(image.Rect(0, 0, s.width*s.tier.Size, rows*s.tier.Size))
}

// Next starts a new, blank page.
func (s *Sheet) Next() {
	s.page++
	s.x, s.y = 0, 0
	s.placed = 0
	s.clear()
}
