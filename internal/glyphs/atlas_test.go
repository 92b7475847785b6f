package glyphs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAtlas(t *testing.T) *Atlas {
	t.Helper()
	a, err := New(13)
	require.NoError(t, err)
	return a
}

func TestNewBakesASCII(t *testing.T) {
	a := newAtlas(t)

	assert.Len(t, a.Glyphs, lastRune-firstRune+1)
	assert.Equal(t, atlasWidth, a.Image.Bounds().Dx())
	assert.Positive(t, a.Image.Bounds().Dy())
	assert.Positive(t, a.Ascent)
	assert.GreaterOrEqual(t, a.LineHeight, a.Ascent)

	g := a.Glyphs['A']
	assert.Positive(t, g.W)
	assert.Positive(t, g.H)
	assert.Negative(t, g.BearingY)
	assert.Positive(t, g.Advance)

	space := a.Glyphs[' ']
	assert.Zero(t, space.W)
	assert.Positive(t, space.Advance)
}

func TestGlyphsHaveInk(t *testing.T) {
	a := newAtlas(t)
	g := a.Glyphs['M']
	var ink int
	for y := g.Y; y < g.Y+g.H; y++ {
		for x := g.X; x < g.X+g.W; x++ {
			ink += int(a.Image.AlphaAt(x, y).A)
		}
	}
	assert.Positive(t, ink)
}

func TestLayout(t *testing.T) {
	a := newAtlas(t)

	quads := a.Layout("A B", 10, 20)
	require.Len(t, quads, 2)
	first, second := quads[0], quads[1]

	assert.Equal(t, float32(10+a.Glyphs['A'].BearingX), first.X)
	assert.Less(t, first.Y, float32(20))
	assert.InDelta(t, 20, first.Y+first.H, 2)

	penB := float32(10 + a.Glyphs['A'].Advance + a.Glyphs[' '].Advance)
	assert.Equal(t, penB+float32(a.Glyphs['B'].BearingX), second.X)

	for _, q := range quads {
		assert.GreaterOrEqual(t, q.U0, float32(0))
		assert.LessOrEqual(t, q.U1, float32(1))
		assert.GreaterOrEqual(t, q.V0, float32(0))
		assert.LessOrEqual(t, q.V1, float32(1))
		assert.Less(t, q.U0, q.U1)
		assert.Less(t, q.V0, q.V1)
	}
}

func TestWidth(t *testing.T) {
	a := newAtlas(t)
	want := a.Glyphs['6'].Advance + a.Glyphs['0'].Advance
	assert.Equal(t, float32(want), a.Width("60"))
	assert.Zero(t, a.Width(""))
}

func TestUnknownRuneFallsBack(t *testing.T) {
	a := newAtlas(t)
	assert.Equal(t, a.Width("?"), a.Width("é"))
	assert.Len(t, a.Layout("é", 0, 0), 1)
}
