package spriter

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/spriter/manifest"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeImage(t *testing.T, file string, w, h int, c color.Color) {
	t.Helper()

	require.Nil(t, os.MkdirAll(filepath.Dir(file), 0777))

	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Set(x, y, c)
		}
	}

	f, err := os.Create(file)
	require.Nil(t, err)
	defer f.Close()
	require.Nil(t, png.Encode(f, m))
}

func writeFile(t *testing.T, file, contents string) {
	t.Helper()
	require.Nil(t, os.MkdirAll(filepath.Dir(file), 0777))
	require.Nil(t, os.WriteFile(file, []byte(contents), 0666))
}

func imageSize(t *testing.T, file string) image.Point {
	t.Helper()

	f, err := os.Open(file)
	require.Nil(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.Nil(t, err)
	return image.Pt(cfg.Width, cfg.Height)
}

type output struct {
	Errors []string                                            `json:"errors"`
	Result map[string]map[string]map[string]manifest.Placement `json:"result"`
}

func readOutput(t *testing.T, root string) output {
	t.Helper()

	b, err := os.ReadFile(filepath.Join(root, manifest.Filename))
	require.Nil(t, err)

	var out output
	require.Nil(t, json.Unmarshal(b, &out))
	return out
}

func TestRun(t *testing.T) {
	root := t.TempDir()

	for i := 0; i < 41; i++ {
		writeImage(t, filepath.Join(root, "img", "spell", fmt.Sprintf("s%02d.png", i)), 64, 64, color.NRGBA{0xff, 0x00, 0x00, 0xff})
	}
	writeImage(t, filepath.Join(root, "img", "champion", "ahri.png"), 120, 120, color.NRGBA{0x00, 0xff, 0x00, 0xff})
	writeImage(t, filepath.Join(root, "img", "champion", "zed.png"), 30, 50, color.NRGBA{0x00, 0x00, 0xff, 0xff})
	writeFile(t, filepath.Join(root, "img", "champion", "broken.png"), "not an image")
	require.Nil(t, os.MkdirAll(filepath.Join(root, "img", "champion", "subdir"), 0777))

	s, err := New(DefaultCategories, discardLogger(), Workers(4))
	require.Nil(t, err)

	m, err := s.Run(root)
	require.Nil(t, err)

	kinds := make(map[string]int)
	for _, d := range m.Errors() {
		kinds[d.Kind]++
	}
	assert.Equal(t, map[string]int{KindDecode: 1, KindMissingCategory: 5}, kinds)

	out := readOutput(t, root)
	assert.Len(t, out.Errors, 6)
	assert.Contains(t, out.Errors[0], "broken.png")

	// Every category is present even if it was missing on disk
	assert.Len(t, out.Result, len(DefaultCategories))
	assert.Empty(t, out.Result["item"])

	assert.Len(t, out.Result["champion"], 2)
	assert.Equal(t, manifest.Placement{X: 0, Y: 0, Width: 48, Height: 48, Texture: "champion0.png"}, out.Result["champion"]["ahri"]["regular"])
	assert.Equal(t, manifest.Placement{X: 36, Y: 0, Width: 36, Height: 36, Texture: "small_champion0.png"}, out.Result["champion"]["zed"]["small"])
	assert.Equal(t, manifest.Placement{X: 24, Y: 0, Width: 24, Height: 24, Texture: "tiny_champion0.png"}, out.Result["champion"]["zed"]["tiny"])

	assert.Len(t, out.Result["spell"], 41)
	assert.Equal(t, manifest.Placement{X: 432, Y: 144, Width: 48, Height: 48, Texture: "spell0.png"}, out.Result["spell"]["s39"]["regular"])
	assert.Equal(t, manifest.Placement{X: 0, Y: 0, Width: 48, Height: 48, Texture: "spell1.png"}, out.Result["spell"]["s40"]["regular"])
	assert.Equal(t, manifest.Placement{X: 0, Y: 0, Width: 24, Height: 24, Texture: "tiny_spell1.png"}, out.Result["spell"]["s40"]["tiny"])

	sprite := filepath.Join(root, "img", "sprite")
	for file, size := range map[string]image.Point{
		"spell0.png":          image.Pt(480, 192),
		"spell1.png":          image.Pt(480, 48),
		"small_spell0.png":    image.Pt(360, 144),
		"small_spell1.png":    image.Pt(360, 36),
		"tiny_spell0.png":     image.Pt(240, 96),
		"tiny_spell1.png":     image.Pt(240, 24),
		"champion0.png":       image.Pt(480, 48),
		"small_champion0.png": image.Pt(360, 36),
		"tiny_champion0.png":  image.Pt(240, 24),
	} {
		assert.Equal(t, size, imageSize(t, filepath.Join(sprite, file)), file)
	}

	entries, err := os.ReadDir(sprite)
	require.Nil(t, err)
	assert.Len(t, entries, 9)

	for category, entities := range out.Result {
		for entity, tiers := range entities {
			for tier, p := range tiers {
				assert.FileExists(t, filepath.Join(sprite, p.Texture), "%s/%s/%s", category, entity, tier)
			}
		}
	}
}

func assertColor(t *testing.T, want color.RGBA, c color.Color) {
	t.Helper()
	got := color.RGBAModel.Convert(c).(color.RGBA)
	assert.InDelta(t, want.R, got.R, 1)
	assert.InDelta(t, want.G, got.G, 1)
	assert.InDelta(t, want.B, got.B, 1)
	assert.Equal(t, want.A, got.A)
}

func TestRunPixels(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "img", "map", "a.png"), 10, 10, color.NRGBA{0xff, 0x00, 0x00, 0xff})
	writeImage(t, filepath.Join(root, "img", "map", "b.png"), 100, 20, color.NRGBA{0x00, 0x00, 0xff, 0x80})

	s, err := New([]Category{{"map", 6, 6}}, discardLogger())
	require.Nil(t, err)

	m, err := s.Run(root)
	require.Nil(t, err)
	assert.Empty(t, m.Errors())

	f, err := os.Open(filepath.Join(root, "img", "sprite", "map0.png"))
	require.Nil(t, err)
	defer f.Close()

	page, err := png.Decode(f)
	require.Nil(t, err)
	assert.Equal(t, image.Rect(0, 0, 288, 48), page.Bounds())

	assertColor(t, color.RGBA{0xff, 0x00, 0x00, 0xff}, page.At(10, 10))
	// Alpha is dropped, not blended
	assertColor(t, color.RGBA{0x00, 0x00, 0xff, 0xff}, page.At(60, 40))
	// Unused cells are black
	assertColor(t, color.RGBA{0x00, 0x00, 0x00, 0xff}, page.At(200, 10))
}

func TestRunDeterministic(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 25; i++ {
		writeImage(t, filepath.Join(root, "img", "passive", fmt.Sprintf("p%02d.png", i)), 16+i, 16+i, color.NRGBA{uint8(i * 10), 0x80, uint8(255 - i*10), 0xff})
	}

	categories := []Category{{"passive", 10, 3}}

	read := func() (string, []byte) {
		b, err := os.ReadFile(filepath.Join(root, manifest.Filename))
		require.Nil(t, err)
		page, err := os.ReadFile(filepath.Join(root, "img", "sprite", "passive0.png"))
		require.Nil(t, err)
		return string(b), page
	}

	s, err := New(categories, discardLogger(), Workers(1))
	require.Nil(t, err)
	_, err = s.Run(root)
	require.Nil(t, err)
	wantJSON, wantPage := read()

	s, err = New(categories, discardLogger(), Workers(8))
	require.Nil(t, err)
	_, err = s.Run(root)
	require.Nil(t, err)
	gotJSON, gotPage := read()

	assert.Equal(t, wantJSON, gotJSON)
	assert.Equal(t, wantPage, gotPage)
}

func TestRunEncodeError(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "img", "spell", "flash.png"), 8, 8, color.White)
	// A file where the sprite directory should be
	writeFile(t, filepath.Join(root, "img", "sprite"), "")

	s, err := New([]Category{{"spell", 10, 4}}, discardLogger())
	require.Nil(t, err)

	m, err := s.Run(root)
	require.Nil(t, err)

	require.Len(t, m.Errors(), 3)
	for _, d := range m.Errors() {
		assert.Equal(t, KindEncode, d.Kind)
	}
	assert.Equal(t, 0, m.Category("spell").Len())
}

func TestRunPartialEncodeError(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 12; i++ {
		writeImage(t, filepath.Join(root, "img", "spell", fmt.Sprintf("s%02d.png", i)), 8, 8, color.White)
	}
	// Only the small tier of the second page can't be written
	require.Nil(t, os.MkdirAll(filepath.Join(root, "img", "sprite", "small_spell1.png"), 0777))

	s, err := New([]Category{{"spell", 10, 1}}, discardLogger())
	require.Nil(t, err)

	m, err := s.Run(root)
	require.Nil(t, err)

	require.Len(t, m.Errors(), 1)
	assert.Equal(t, KindEncode, m.Errors()[0].Kind)
	assert.Contains(t, m.Errors()[0].Message, "small_spell1.png")

	var want []string
	for i := 0; i < 10; i++ {
		want = append(want, fmt.Sprintf("s%02d", i))
	}
	assert.Equal(t, want, m.Category("spell").Names())

	// The other tiers of the second page were still written
	sprite := filepath.Join(root, "img", "sprite")
	assert.FileExists(t, filepath.Join(sprite, "spell1.png"))
	assert.FileExists(t, filepath.Join(sprite, "tiny_spell1.png"))

	out := readOutput(t, root)
	for entity, tiers := range out.Result["spell"] {
		for tier, p := range tiers {
			assert.Regexp(t, `spell0\.png$`, p.Texture, "%s/%s", entity, tier)
		}
	}
}

func TestRunExactPages(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 40; i++ {
		writeImage(t, filepath.Join(root, "img", "spell", fmt.Sprintf("s%02d.png", i)), 8, 8, color.White)
	}

	s, err := New([]Category{{"spell", 10, 4}}, discardLogger())
	require.Nil(t, err)

	m, err := s.Run(root)
	require.Nil(t, err)
	assert.Empty(t, m.Errors())
	assert.Equal(t, 40, m.Category("spell").Len())

	sprite := filepath.Join(root, "img", "sprite")
	entries, err := os.ReadDir(sprite)
	require.Nil(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"small_spell0.png", "spell0.png", "tiny_spell0.png"}, names)

	assert.Equal(t, image.Pt(480, 192), imageSize(t, filepath.Join(sprite, "spell0.png")))
	assert.Equal(t, image.Pt(360, 144), imageSize(t, filepath.Join(sprite, "small_spell0.png")))
	assert.Equal(t, image.Pt(240, 96), imageSize(t, filepath.Join(sprite, "tiny_spell0.png")))
}

func TestRunDuplicateStem(t *testing.T) {
	root := t.TempDir()
	// Decoding sniffs the content so the extension doesn't matter
	writeImage(t, filepath.Join(root, "img", "item", "a.jpg"), 8, 8, color.White)
	writeImage(t, filepath.Join(root, "img", "item", "a.png"), 8, 8, color.Black)
	writeImage(t, filepath.Join(root, "img", "item", "b.png"), 8, 8, color.White)

	logger, hook := logtest.NewNullLogger()

	s, err := New([]Category{{"item", 10, 10}}, logger)
	require.Nil(t, err)

	m, err := s.Run(root)
	require.Nil(t, err)
	assert.Empty(t, m.Errors())

	c := m.Category("item")
	assert.Equal(t, []string{"a", "b"}, c.Names())

	a, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, manifest.Placement{X: 48, Y: 0, Width: 48, Height: 48, Texture: "item0.png"}, a.Regular)

	b, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 96, b.Regular.X)

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["entity"] == "a" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRunInvalidUTF8Name(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "img", "item")
	require.Nil(t, os.MkdirAll(dir, 0777))

	file := filepath.Join(dir, "bad\xffname.png")
	f, err := os.Create(file)
	if err != nil {
		t.Skipf("filesystem rejects invalid UTF-8 names: %v", err)
	}
	require.Nil(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 4, 4))))
	require.Nil(t, f.Close())

	logger, hook := logtest.NewNullLogger()

	s, err := New([]Category{{"item", 10, 10}}, logger)
	require.Nil(t, err)

	m, err := s.Run(root)
	require.Nil(t, err)
	assert.Equal(t, 1, m.Category("item").Len())

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["path"] == file {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRunMissingCategory(t *testing.T) {
	root := t.TempDir()

	s, err := New([]Category{{"item", 10, 10}}, discardLogger())
	require.Nil(t, err)

	m, err := s.Run(root)
	require.Nil(t, err)

	require.Len(t, m.Errors(), 1)
	assert.Equal(t, KindMissingCategory, m.Errors()[0].Kind)
	assert.Contains(t, m.Errors()[0].Message, filepath.Join(root, "img", "item"))
	assert.Equal(t, 0, m.Category("item").Len())
}

func TestRunManifestUnwritable(t *testing.T) {
	root := t.TempDir()
	require.Nil(t, os.Mkdir(filepath.Join(root, manifest.Filename), 0777))

	s, err := New([]Category{{"item", 10, 10}}, discardLogger())
	require.Nil(t, err)

	_, err = s.Run(root)
	assert.NotNil(t, err)
}

func TestNewOptions(t *testing.T) {
	_, err := New(DefaultCategories, discardLogger(), Workers(0))
	assert.NotNil(t, err)

	_, err = New(DefaultCategories, discardLogger(), Colors(300))
	assert.NotNil(t, err)

	_, err = New(nil, discardLogger())
	assert.Equal(t, errNoCategories, err)

	s, err := New(DefaultCategories, discardLogger(), Workers(3), Colors(64))
	require.Nil(t, err)
	assert.Equal(t, 3, s.workers)
	assert.Equal(t, 64, s.colors)
}

func TestErrorsUnwrap(t *testing.T) {
	err := error(&DecodeError{Path: "a.png", Err: os.ErrNotExist})
	assert.True(t, errors.Is(err, os.ErrNotExist))

	var de *DecodeError
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, "a.png", de.Path)
}
