package main

import (
	"piggy-viewer/core"
	"piggy-viewer/internal/opengl"
)

const statsPadding = 4

var (
	statsBackground   = core.ColorHex(0x000022)
	statsText         = core.ColorHex(0x00ffff)
	loadingBackground = core.ColorHex(0x000000)
	loadingText       = core.ColorHex(0xeeeeee)
	loadingError      = core.ColorHex(0xff5555)
)

// drawOverlay draws the stats box, the panel and the loading screen over
// the rendered frame.
func (a *app) drawOverlay() {
	w, h := float32(a.window.Width), float32(a.window.Height)
	o := a.engine.Overlay()
	o.Begin(w, h)

	if a.session != nil {
		drawStats(o, a.session.Stats.Lines())
		a.panel.Draw(o)
	}
	if a.loading.Visible() {
		drawLoading(o, w, h, a.loading.Alpha(), a.loadFailed)
	}
	a.engine.FlushOverlay()
}

// drawStats draws lines in a box anchored at the top-left corner.
func drawStats(o *opengl.Overlay, lines []string) {
	lh := o.LineHeight()
	var width float32
	for _, l := range lines {
		width = max(width, o.TextWidth(l))
	}
	o.FillRect(0, 0, width+2*statsPadding, lh*float32(len(lines))+2*statsPadding, statsBackground)
	for i, l := range lines {
		o.Text(l, statsPadding, statsPadding+o.Ascent()+lh*float32(i), statsText)
	}
}

func drawLoading(o *opengl.Overlay, w, h, alpha float32, failed bool) {
	bg := loadingBackground
	bg.A = alpha
	o.FillRect(0, 0, w, h, bg)

	msg, c := "Loading...", loadingText
	if failed {
		msg, c = "Failed to load assets", loadingError
	}
	c.A = alpha
	o.Text(msg, (w-o.TextWidth(msg))/2, h/2, c)
}
