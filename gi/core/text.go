package core

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// AtlasSize is the edge length of the glyph atlas texture.
const AtlasSize = 256

type Glyph struct {
	UVMin   [2]float32
	UVMax   [2]float32
	Size    [2]float32
	Offset  [2]float32
	Advance float32
}

// GlyphAtlas rasterizes the printable ASCII range of a font into a single
// alpha texture and builds quad vertices for overlay strings.
type GlyphAtlas struct {
	Image      *image.Alpha
	Glyphs     map[rune]Glyph
	LineHeight float32
	Ascent     float32
}

// NewGlyphAtlas loads a TTF or OTF font from disk and packs its glyphs.
func NewGlyphAtlas(fontPath string, size float64) (*GlyphAtlas, error) {
	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	parsed, err := opentype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	defer face.Close()

	a := &GlyphAtlas{
		Image:  image.NewAlpha(image.Rect(0, 0, AtlasSize, AtlasSize)),
		Glyphs: make(map[rune]Glyph),
	}
	metrics := face.Metrics()
	a.LineHeight = float32(metrics.Height.Ceil())
	a.Ascent = float32(metrics.Ascent.Ceil())

	x, y, rowH := 1, 1, 0
	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		w := mask.Bounds().Dx()
		h := mask.Bounds().Dy()
		if x+w+1 >= AtlasSize {
			x = 1
			y += rowH + 2
			rowH = 0
		}
		if y+h+1 >= AtlasSize {
			return nil, fmt.Errorf("glyph atlas overflow at %q", r)
		}
		draw.Draw(a.Image, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)

		a.Glyphs[r] = Glyph{
			UVMin:   [2]float32{float32(x) / AtlasSize, float32(y) / AtlasSize},
			UVMax:   [2]float32{float32(x+w) / AtlasSize, float32(y+h) / AtlasSize},
			Size:    [2]float32{float32(w), float32(h)},
			Offset:  [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			Advance: float32(adv) / 64.0,
		}
		x += w + 2
		if h > rowH {
			rowH = h
		}
	}
	return a, nil
}

// AppendQuads appends two triangles per glyph to dst. Vertices are packed as
// x, y, u, v in screen pixels with the pen starting at (px, py).
func (a *GlyphAtlas) AppendQuads(dst []float32, text string, px, py float32) []float32 {
	x := px
	y := py + a.Ascent
	for _, r := range text {
		if r == '\n' {
			x = px
			y += a.LineHeight
			continue
		}
		g, ok := a.Glyphs[r]
		if !ok {
			continue
		}
		x0 := x + g.Offset[0]
		y0 := y + g.Offset[1]
		x1 := x0 + g.Size[0]
		y1 := y0 + g.Size[1]
		u0, v0 := g.UVMin[0], g.UVMin[1]
		u1, v1 := g.UVMax[0], g.UVMax[1]

		dst = append(dst,
			x0, y0, u0, v0,
			x1, y0, u1, v0,
			x1, y1, u1, v1,

			x0, y0, u0, v0,
			x1, y1, u1, v1,
			x0, y1, u0, v1,
		)
		x += g.Advance
	}
	return dst
}
