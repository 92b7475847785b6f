package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piggy-viewer/core"
	"piggy-viewer/internal/params"
)

type recordingCanvas struct {
	rects int
	texts []string
}

func (c *recordingCanvas) FillRect(_, _, _, _ float32, _ core.Color) { c.rects++ }
func (c *recordingCanvas) Text(s string, _, _ float32, _ core.Color) { c.texts = append(c.texts, s) }

func newTestPanel(t *testing.T) (*Panel, *params.Store) {
	t.Helper()
	s := params.NewStore()
	require.NoError(t, s.AddBool("autoRotate", "Auto Rotate", "Scene", true))
	require.NoError(t, s.AddNumber("pixelSize", "Pixel Size", "Scene", 2, 16, 4))
	require.NoError(t, s.AddNumber("light.position.x", "Position X", "Lighting", 0, 30, 10))
	p := New(s)
	p.Layout(1280)
	return p, s
}

func center(r *Rect) (float32, float32) {
	return r.X + r.W/2, r.Y + r.H/2
}

func TestNewBuildsFolders(t *testing.T) {
	p, _ := newTestPanel(t)
	folders := p.Folders()
	require.Len(t, folders, 2)
	assert.Equal(t, "Scene", folders[0].Title)
	assert.Len(t, folders[0].Widgets, 2)
	assert.Equal(t, "Lighting", folders[1].Title)

	assert.IsType(t, &Toggle{}, p.Widget("autoRotate"))
	slider, ok := p.Widget("pixelSize").(*Slider)
	require.True(t, ok)
	assert.Equal(t, 4.0, slider.Value)
	assert.Equal(t, "Pixel Size", slider.Label)
}

func TestLayoutAnchorsTopRight(t *testing.T) {
	p, _ := newTestPanel(t)
	header := p.Folders()[0].Header
	assert.Equal(t, float32(1280-DefaultWidth-rightMargin), header.X)
	assert.Equal(t, float32(0), header.Y)
	assert.Equal(t, float32(5*DefaultRowHeight), p.Height())

	b := p.Widget("pixelSize").Bounds()
	assert.Equal(t, float32(2*DefaultRowHeight), b.Y)
	assert.True(t, p.Contains(center(b)))
	assert.False(t, p.Contains(10, 10))
}

func TestToggleWritesStore(t *testing.T) {
	p, s := newTestPanel(t)
	assert.True(t, p.PointerDown(center(p.Widget("autoRotate").Bounds())))
	assert.False(t, p.Dragging())

	on, err := s.Bool("autoRotate")
	require.NoError(t, err)
	assert.False(t, on)
}

func TestSliderDragWritesStore(t *testing.T) {
	p, s := newTestPanel(t)
	slider := p.Widget("pixelSize").(*Slider)
	track := slider.track()

	assert.True(t, p.PointerDown(track.X+track.W, track.Y+1))
	assert.True(t, p.Dragging())
	v, _ := s.Number("pixelSize")
	assert.Equal(t, 16.0, v)

	// dragging past the track clamps to the range
	p.PointerMove(track.X-100, 0)
	v, _ = s.Number("pixelSize")
	assert.Equal(t, 2.0, v)

	p.PointerMove(track.X+track.W/2, 0)
	v, _ = s.Number("pixelSize")
	assert.InDelta(t, 9.0, v, 1e-5)

	p.PointerUp()
	assert.False(t, p.Dragging())
	p.PointerMove(track.X, 0)
	v, _ = s.Number("pixelSize")
	assert.InDelta(t, 9.0, v, 1e-5)
}

func TestSliderLabelClickDoesNotChangeValue(t *testing.T) {
	p, s := newTestPanel(t)
	b := p.Widget("pixelSize").Bounds()
	assert.True(t, p.PointerDown(b.X+5, b.Y+5))
	assert.False(t, p.Dragging())
	v, _ := s.Number("pixelSize")
	assert.Equal(t, 4.0, v)
}

func TestWidgetsFollowStore(t *testing.T) {
	p, s := newTestPanel(t)
	require.NoError(t, s.Set("light.position.x", 100.0))
	require.NoError(t, s.Set("autoRotate", false))

	assert.Equal(t, 30.0, p.Widget("light.position.x").(*Slider).Value)
	assert.False(t, p.Widget("autoRotate").(*Toggle).IsOn)
}

func TestFolderCollapse(t *testing.T) {
	p, _ := newTestPanel(t)
	scene := p.Folders()[0]

	assert.True(t, p.PointerDown(center(&scene.Header)))
	assert.False(t, scene.Open)
	assert.Equal(t, float32(3*DefaultRowHeight), p.Height())
	assert.Equal(t, Rect{}, *p.Widget("pixelSize").Bounds())
	assert.Equal(t, float32(DefaultRowHeight), p.Folders()[1].Header.Y)

	assert.True(t, p.PointerDown(center(&scene.Header)))
	assert.True(t, scene.Open)
	assert.Equal(t, float32(5*DefaultRowHeight), p.Height())
}

func TestDraw(t *testing.T) {
	p, _ := newTestPanel(t)
	c := &recordingCanvas{}
	p.Draw(c)
	assert.Contains(t, c.texts, "v Scene")
	assert.Contains(t, c.texts, "Pixel Size")
	assert.Contains(t, c.texts, "4")
	assert.Contains(t, c.texts, "10")

	p.Visible = false
	c = &recordingCanvas{}
	p.Draw(c)
	assert.Zero(t, c.rects)
	assert.False(t, p.Contains(1200, 10))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "4", formatValue(4))
	assert.Equal(t, "1.571", formatValue(1.5707963))
	assert.Equal(t, "0.5", formatValue(0.5))
	assert.Equal(t, "-20", formatValue(-20))
}
