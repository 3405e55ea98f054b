package spriter

import (
	"image"
	"os"
	"path/filepath"

	"github.com/bodgit/spriter/atlas"
	"github.com/bodgit/spriter/manifest"
	"github.com/sirupsen/logrus"
)

// packer keeps one sheet per tier in step for a single category.
type packer struct {
	sheets []*atlas.Sheet
	// Entities placed on the current page
	names []string
}

func newPacker(c Category) *packer {
	p := new(packer)
	for _, t := range atlas.Tiers {
		p.sheets = append(p.sheets, atlas.NewSheet(c.Name, c.Width, c.Height, t))
	}
	return p
}

func placement(c atlas.Cell) manifest.Placement {
	return manifest.Placement{
		X:       c.Bounds.Min.X,
		Y:       c.Bounds.Min.Y,
		Width:   c.Bounds.Dx(),
		Height:  c.Bounds.Dy(),
		Texture: c.Texture,
	}
}

func (p *packer) place(name string, tiles []image.Image) manifest.Entry {
	cells := make([]atlas.Cell, len(p.sheets))
	for i, sheet := range p.sheets {
		cells[i] = sheet.Place(tiles[i])
	}
	p.names = append(p.names, name)

	return manifest.Entry{
		Regular: placement(cells[0]),
		Small:   placement(cells[1]),
		Tiny:    placement(cells[2]),
	}
}

func (p *packer) full() bool {
	return p.sheets[0].Full()
}

func (p *packer) empty() bool {
	return p.sheets[0].Empty()
}

func (p *packer) texture() string {
	return p.sheets[0].Texture()
}

func (p *packer) next() {
	for _, sheet := range p.sheets {
		sheet.Next()
	}
	p.names = p.names[:0]
}

// flush writes the current page of every tier and starts the next one. If
// any tier can't be written the entities on that page are dropped from the
// manifest so it never references a missing texture.
func (s *Spriter) flush(root string, p *packer, entries *manifest.Category, m *manifest.Manifest) {
	failed := false
	for _, sheet := range p.sheets {
		if err := s.writeSheet(root, sheet); err != nil {
			s.record(m, err)
			failed = true
		}
	}

	if failed {
		for _, name := range p.names {
			if e, ok := entries.Get(name); ok && e.Regular.Texture == p.texture() {
				entries.Delete(name)
			}
		}
	}

	p.next()
}

func (s *Spriter) writeSheet(root string, sheet *atlas.Sheet) error {
	file := filepath.Join(root, "img", "sprite", sheet.Texture())

	if err := os.MkdirAll(filepath.Dir(file), 0777); err != nil {
		return &EncodeError{Path: file, Err: err}
	}

	f, err := os.Create(file)
	if err != nil {
		return &EncodeError{Path: file, Err: err}
	}

	if err := atlas.Encode(f, sheet.Image(), s.colors); err != nil {
		f.Close()
		return &EncodeError{Path: file, Err: err}
	}

	if err := f.Close(); err != nil {
		return &EncodeError{Path: file, Err: err}
	}

	b := sheet.Image().Bounds()
	s.logger.WithFields(logrus.Fields{
		"texture": sheet.Texture(),
		"width":   b.Dx(),
		"height":  b.Dy(),
	}).Debug("Wrote atlas page")

	return nil
}
