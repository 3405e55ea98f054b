/*
Package atlas implements the fixed grid texture atlases that the spriter packs
entity images into.

Each atlas, or sheet, is a grid of square cells all the same size. Images are
placed into cells in row-major order starting from the top-left corner; once
the last row is filled the sheet is full and must be written out before the
next page can be started. Sheets are always opaque RGB, so the written PNG is
8-bit truecolor with no alpha channel unless it is quantized to a palette.
*/
package atlas

import "fmt"

// Tier describes one of the resolutions each entity image is packed at.
type Tier struct {
	// Name is the key used in the manifest
	Name string
	// Prefix is prepended to the category name to form the texture filename
	Prefix string
	// Size is the width and height in pixels of a cell
	Size int
}

var (
	// Regular is the full resolution tier
	Regular = Tier{Name: "regular", Size: 48}
	// Small is the reduced resolution tier
	Small = Tier{Name: "small", Prefix: "small_", Size: 36}
	// Tiny is the smallest resolution tier
	Tiny = Tier{Name: "tiny", Prefix: "tiny_", Size: 24}
)

// Tiers lists every tier in the order they appear in the manifest.
var Tiers = []Tier{Regular, Small, Tiny}

// Texture returns the filename of the given page for a category at this
// tier, for example "small_champion0.png".
func (t Tier) Texture(category string, page int) string {
	return fmt.Sprintf("%s%s%d.png", t.Prefix, category, page)
}
