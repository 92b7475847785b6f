package panel

import (
	"fmt"

	"piggy-viewer/core"
)

// Canvas is the drawing surface a panel renders onto. Coordinates are logical
// window pixels with the origin at the top-left; y passed to Text is the baseline.
type Canvas interface {
	FillRect(x, y, w, h float32, c core.Color)
	Text(s string, x, y float32, c core.Color)
}

var (
	colorBackground = core.ColorHex(0x1a1a1a)
	colorHeader     = core.ColorHex(0x000000)
	colorTrack      = core.ColorHex(0x303030)
	colorNumber     = core.ColorHex(0x2fa1d6)
	colorToggleOn   = core.ColorHex(0x806787)
	colorText       = core.ColorHex(0xeeeeee)
	colorHover      = core.ColorHex(0x555555)
)

// Widget is one row of the panel bound to a parameter.
type Widget interface {
	Name() string
	Bounds() *Rect
	Draw(c Canvas)
	// Press handles a primary click inside Bounds and reports whether a drag
	// should follow.
	Press(x, y float32) bool
	Drag(x float32)
	Refresh(value any)
}

type Rect struct {
	X, Y, W, H float32
}

func (r *Rect) SetPosition(x, y float32) { r.X, r.Y = x, y }
func (r *Rect) SetSize(w, h float32)     { r.W, r.H = w, h }

func (r *Rect) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// labelWidth is the fraction of a row used by the label column.
const labelWidth = 0.4

// Slider edits a numeric parameter between Min and Max.
type Slider struct {
	Rect
	name     string
	Label    string
	Min, Max float64
	Value    float64
	OnChange func(v float64)
}

func NewSlider(name, label string, min, max, initial float64, onChange func(float64)) *Slider {
	return &Slider{name: name, Label: label, Min: min, Max: max, Value: initial, OnChange: onChange}
}

func (s *Slider) Name() string  { return s.name }
func (s *Slider) Bounds() *Rect { return &s.Rect }

func (s *Slider) track() Rect {
	x := s.X + s.W*labelWidth
	return Rect{X: x, Y: s.Y + 3, W: s.W - (x - s.X) - 4, H: s.H - 6}
}

func (s *Slider) fraction() float32 {
	if s.Max <= s.Min {
		return 0
	}
	return float32((s.Value - s.Min) / (s.Max - s.Min))
}

func (s *Slider) Draw(c Canvas) {
	c.FillRect(s.X, s.Y, s.W, s.H, colorBackground)
	c.FillRect(s.X, s.Y, 3, s.H, colorNumber)
	c.Text(s.Label, s.X+8, s.Y+s.H-6, colorText)

	t := s.track()
	c.FillRect(t.X, t.Y, t.W, t.H, colorTrack)
	c.FillRect(t.X, t.Y, t.W*s.fraction(), t.H, colorNumber)
	c.Text(formatValue(s.Value), t.X+4, s.Y+s.H-6, colorText)
}

func (s *Slider) Press(x, _ float32) bool {
	if x < s.track().X {
		return false
	}
	s.Drag(x)
	return true
}

// Drag maps x across the track onto [Min, Max].
func (s *Slider) Drag(x float32) {
	t := s.track()
	if t.W <= 0 {
		return
	}
	f := (x - t.X) / t.W
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	v := s.Min + float64(f)*(s.Max-s.Min)
	if v == s.Value {
		return
	}
	s.Value = v
	if s.OnChange != nil {
		s.OnChange(v)
	}
}

func (s *Slider) Refresh(value any) {
	if v, ok := value.(float64); ok {
		s.Value = v
	}
}

// Toggle edits a boolean parameter; a click anywhere on the row flips it.
type Toggle struct {
	Rect
	name     string
	Label    string
	IsOn     bool
	OnToggle func(on bool)
}

func NewToggle(name, label string, initial bool, onToggle func(bool)) *Toggle {
	return &Toggle{name: name, Label: label, IsOn: initial, OnToggle: onToggle}
}

func (t *Toggle) Name() string  { return t.name }
func (t *Toggle) Bounds() *Rect { return &t.Rect }

func (t *Toggle) Draw(c Canvas) {
	c.FillRect(t.X, t.Y, t.W, t.H, colorBackground)
	c.FillRect(t.X, t.Y, 3, t.H, colorToggleOn)
	c.Text(t.Label, t.X+8, t.Y+t.H-6, colorText)

	box := t.H - 8
	bx := t.X + t.W*labelWidth
	c.FillRect(bx, t.Y+4, box, box, colorTrack)
	if t.IsOn {
		c.FillRect(bx+3, t.Y+7, box-6, box-6, colorText)
	}
}

func (t *Toggle) Press(_, _ float32) bool {
	t.IsOn = !t.IsOn
	if t.OnToggle != nil {
		t.OnToggle(t.IsOn)
	}
	return false
}

func (t *Toggle) Drag(float32) {}

func (t *Toggle) Refresh(value any) {
	if on, ok := value.(bool); ok {
		t.IsOn = on
	}
}

func formatValue(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	// trim trailing zeros the way lil-gui prints numbers
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
