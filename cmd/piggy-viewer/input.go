package main

import (
	"go.uber.org/zap"

	"piggy-viewer/core"
	"piggy-viewer/internal/logger"
)

// inputState remembers last frame's buttons for edge detection.
type inputState struct {
	keyDown       map[int]bool
	primaryDown   bool
	secondaryDown bool
	lastX, lastY  float32
}

func newInputState() inputState {
	return inputState{keyDown: make(map[int]bool)}
}

// pressed reports whether key went down since the previous call.
func (a *app) pressed(key int) bool {
	down := a.window.IsKeyPressed(key)
	was := a.input.keyDown[key]
	a.input.keyDown[key] = down
	return down && !was
}

// handleKeys: Esc quits, F5/F9 save/load the preset, H hides the panel,
// P toggles the pixelation pass.
func (a *app) handleKeys() {
	if a.window.IsKeyPressed(core.KeyEscape) {
		a.window.Close()
	}
	save, load := a.pressed(core.KeyF5), a.pressed(core.KeyF9)
	hide, pixel := a.pressed(core.KeyH), a.pressed(core.KeyP)
	if a.session == nil {
		return
	}
	store := a.session.Params

	if save {
		if err := store.SavePreset(a.cfg.Preset, a.cfg.Variant); err != nil {
			logger.Log.Error("save preset", zap.Error(err))
		} else {
			logger.Log.Info("preset saved", zap.String("path", a.cfg.Preset))
		}
	}
	if load {
		if err := store.LoadPreset(a.cfg.Preset, a.cfg.Variant); err != nil {
			logger.Log.Warn("load preset", zap.Error(err))
		} else {
			logger.Log.Info("preset loaded", zap.String("path", a.cfg.Preset))
		}
	}
	if hide {
		a.panel.Visible = !a.panel.Visible
	}
	if pixel {
		if on, err := store.Bool("pixelShader"); err == nil {
			store.Set("pixelShader", !on)
		}
	}
}

// handlePointer routes the mouse to the panel first and to the orbit
// controls when the panel does not take it.
func (a *app) handlePointer() {
	cx, cy := a.window.GetCursorPos()
	x, y := float32(cx), float32(cy)
	primary := a.window.IsMouseButtonPressed(core.MouseButtonLeft)
	secondary := a.window.IsMouseButtonPressed(core.MouseButtonRight)
	in := &a.input
	defer func() {
		in.primaryDown, in.secondaryDown = primary, secondary
		in.lastX, in.lastY = x, y
	}()
	if a.session == nil {
		return
	}
	ctl := a.session.Controls

	if primary && !in.primaryDown {
		if !a.panel.PointerDown(x, y) {
			ctl.PointerDown(x, y, false)
		}
	}
	if secondary && !in.secondaryDown && !a.panel.Contains(x, y) {
		ctl.PointerDown(x, y, true)
	}

	if x != in.lastX || y != in.lastY {
		if a.panel.Dragging() {
			a.panel.PointerMove(x, y)
		} else {
			ctl.PointerMove(x, y)
		}
	}

	if !primary && in.primaryDown {
		a.panel.PointerUp()
		ctl.PointerUp()
	}
	if !secondary && in.secondaryDown && !primary {
		ctl.PointerUp()
	}
}

func (a *app) scroll(_, yoff float64) {
	if a.session == nil {
		return
	}
	cx, cy := a.window.GetCursorPos()
	if a.panel.Contains(float32(cx), float32(cy)) {
		return
	}
	a.session.Controls.Scroll(float32(yoff))
}
