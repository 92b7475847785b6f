// Package panel is the in-window control panel: collapsible folders of
// sliders and toggles bound to a params.Store.
package panel

import (
	"go.uber.org/zap"

	"piggy-viewer/internal/logger"
	"piggy-viewer/internal/params"
)

const (
	DefaultWidth     = 245
	DefaultRowHeight = 24
	rightMargin      = 15
)

// Folder groups the widgets of one parameter group under a clickable header.
type Folder struct {
	Title   string
	Open    bool
	Header  Rect
	Widgets []Widget
}

type Panel struct {
	Width     float32
	RowHeight float32
	Visible   bool

	folders []*Folder
	byName  map[string]Widget
	active  Widget
	height  float32
}

// New builds one folder per store group, a slider per numeric field and a
// toggle per boolean field. Widgets start from the store's values, write
// through Set and follow every later change, whatever its source.
func New(store *params.Store) *Panel {
	p := &Panel{
		Width:     DefaultWidth,
		RowHeight: DefaultRowHeight,
		Visible:   true,
		byName:    make(map[string]Widget),
	}

	folders := map[string]*Folder{}
	for _, g := range store.Groups() {
		f := &Folder{Title: g, Open: true}
		folders[g] = f
		p.folders = append(p.folders, f)
	}

	for _, field := range store.Fields() {
		name := field.Name
		set := func(v any) {
			if err := store.Set(name, v); err != nil {
				logger.Log.Warn("panel write rejected", zap.String("name", name), zap.Error(err))
			}
		}

		var w Widget
		switch field.Kind {
		case params.Number:
			v, _ := store.Number(name)
			w = NewSlider(name, field.Label, field.Min, field.Max, v, func(v float64) { set(v) })
		case params.Bool:
			on, _ := store.Bool(name)
			w = NewToggle(name, field.Label, on, func(on bool) { set(on) })
		default:
			continue
		}
		f := folders[field.Group]
		f.Widgets = append(f.Widgets, w)
		p.byName[name] = w
	}

	store.SubscribeAll(func(name string, value any) {
		if w, ok := p.byName[name]; ok {
			w.Refresh(value)
		}
	})
	return p
}

func (p *Panel) Folders() []*Folder { return p.folders }

// Widget returns the widget bound to a parameter name.
func (p *Panel) Widget(name string) Widget { return p.byName[name] }

// Height is the laid-out height from the last Layout call.
func (p *Panel) Height() float32 { return p.height }

// Layout anchors the panel to the top-right corner of a viewport of the given
// logical width. Widgets of closed folders get empty bounds.
func (p *Panel) Layout(viewportWidth float32) {
	x := viewportWidth - p.Width - rightMargin
	y := float32(0)
	for _, f := range p.folders {
		f.Header = Rect{X: x, Y: y, W: p.Width, H: p.RowHeight}
		y += p.RowHeight
		for _, w := range f.Widgets {
			b := w.Bounds()
			if !f.Open {
				*b = Rect{}
				continue
			}
			b.SetPosition(x, y)
			b.SetSize(p.Width, p.RowHeight-1)
			y += p.RowHeight
		}
	}
	p.height = y
}

func (p *Panel) Draw(c Canvas) {
	if !p.Visible {
		return
	}
	for _, f := range p.folders {
		h := f.Header
		c.FillRect(h.X, h.Y, h.W, h.H, colorHeader)
		marker := "v "
		if !f.Open {
			marker = "> "
		}
		c.Text(marker+f.Title, h.X+8, h.Y+h.H-7, colorText)
		if !f.Open {
			continue
		}
		for _, w := range f.Widgets {
			if w == p.active {
				b := w.Bounds()
				c.FillRect(b.X, b.Y, b.W, b.H, colorHover)
			}
			w.Draw(c)
		}
	}
}

// Contains reports whether (x, y) hits the panel.
func (p *Panel) Contains(x, y float32) bool {
	if !p.Visible || len(p.folders) == 0 {
		return false
	}
	first := p.folders[0].Header
	r := Rect{X: first.X, Y: first.Y, W: p.Width, H: p.height}
	return r.Contains(x, y)
}

// PointerDown handles a primary button press and reports whether the panel
// consumed it.
func (p *Panel) PointerDown(x, y float32) bool {
	if !p.Contains(x, y) {
		return false
	}
	for _, f := range p.folders {
		if f.Header.Contains(x, y) {
			f.Open = !f.Open
			p.Layout(f.Header.X + p.Width + rightMargin)
			return true
		}
		if !f.Open {
			continue
		}
		for _, w := range f.Widgets {
			if w.Bounds().Contains(x, y) {
				if w.Press(x, y) {
					p.active = w
				}
				return true
			}
		}
	}
	return true
}

func (p *Panel) PointerMove(x, _ float32) {
	if p.active != nil {
		p.active.Drag(x)
	}
}

func (p *Panel) PointerUp() {
	p.active = nil
}

// Dragging reports whether a slider captured the pointer.
func (p *Panel) Dragging() bool { return p.active != nil }
