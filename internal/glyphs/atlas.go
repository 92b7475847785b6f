// Package glyphs bakes the Go Regular font into a single-channel texture
// atlas and lays out strings as textured quads.
package glyphs

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	atlasWidth = 256
	padding    = 1
	firstRune  = 32
	lastRune   = 126
	fallback   = '?'
)

// Glyph is one baked character. X, Y, W and H locate its bitmap in the
// atlas; the bearings offset the bitmap from the pen position on the
// baseline, with BearingY negative above the baseline.
type Glyph struct {
	X, Y, W, H         int
	BearingX, BearingY int
	Advance            int
}

// Atlas holds the printable ASCII range at one pixel size.
type Atlas struct {
	Image  *image.Alpha
	Glyphs map[rune]Glyph

	Ascent     int
	LineHeight int
}

// New bakes the atlas at size pixels.
func New(size float64) (*Atlas, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	defer face.Close()

	a := &Atlas{Glyphs: make(map[rune]Glyph, lastRune-firstRune+1)}
	m := face.Metrics()
	a.Ascent = m.Ascent.Ceil()
	a.LineHeight = m.Height.Ceil()

	// first pass places glyphs, second pass draws them once the height is known
	x, y, rowH := 0, 0, 0
	for r := rune(firstRune); r <= lastRune; r++ {
		dr, _, _, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		g := Glyph{
			W:        dr.Dx(),
			H:        dr.Dy(),
			BearingX: dr.Min.X,
			BearingY: dr.Min.Y,
			Advance:  int(math.Round(float64(advance) / 64)),
		}
		if g.W > 0 && g.H > 0 {
			if x+g.W > atlasWidth {
				x = 0
				y += rowH + padding
				rowH = 0
			}
			g.X, g.Y = x, y
			x += g.W + padding
			if g.H > rowH {
				rowH = g.H
			}
		}
		a.Glyphs[r] = g
	}

	a.Image = image.NewAlpha(image.Rect(0, 0, atlasWidth, y+rowH))
	for r, g := range a.Glyphs {
		if g.W == 0 || g.H == 0 {
			continue
		}
		_, mask, maskp, _, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		draw.Draw(a.Image, image.Rect(g.X, g.Y, g.X+g.W, g.Y+g.H), mask, maskp, draw.Src)
	}
	return a, nil
}

func (a *Atlas) glyph(r rune) (Glyph, bool) {
	g, ok := a.Glyphs[r]
	if !ok {
		g, ok = a.Glyphs[fallback]
	}
	return g, ok
}

// Quad is a glyph placed on screen. X and Y are the top-left corner in
// pixels with y pointing down; U and V address the atlas in [0, 1].
type Quad struct {
	X, Y, W, H     float32
	U0, V0, U1, V1 float32
}

// Layout places s with its pen starting at (x, baseline). Blank glyphs
// advance the pen without producing a quad.
func (a *Atlas) Layout(s string, x, baseline float32) []Quad {
	b := a.Image.Bounds()
	aw, ah := float32(b.Dx()), float32(b.Dy())

	quads := make([]Quad, 0, len(s))
	for _, r := range s {
		g, ok := a.glyph(r)
		if !ok {
			continue
		}
		if g.W > 0 && g.H > 0 {
			quads = append(quads, Quad{
				X:  x + float32(g.BearingX),
				Y:  baseline + float32(g.BearingY),
				W:  float32(g.W),
				H:  float32(g.H),
				U0: float32(g.X) / aw,
				V0: float32(g.Y) / ah,
				U1: float32(g.X+g.W) / aw,
				V1: float32(g.Y+g.H) / ah,
			})
		}
		x += float32(g.Advance)
	}
	return quads
}

// Width is the advance of s in pixels.
func (a *Atlas) Width(s string) float32 {
	w := 0
	for _, r := range s {
		if g, ok := a.glyph(r); ok {
			w += g.Advance
		}
	}
	return float32(w)
}
