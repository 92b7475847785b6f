package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResizedFansOut(t *testing.T) {
	w := &Window{Width: 800, Height: 600}
	var got [][2]int
	w.OnResize(func(width, height int) { got = append(got, [2]int{width, height}) })
	w.OnResize(func(width, height int) { got = append(got, [2]int{-width, -height}) })

	w.resized(1024, 768)
	assert.Equal(t, 1024, w.Width)
	assert.Equal(t, 768, w.Height)

	// framebuffer-only change: logical size is re-sent unchanged
	w.resized(w.Width, w.Height)
	assert.Equal(t, [][2]int{{1024, 768}, {-1024, -768}, {1024, 768}, {-1024, -768}}, got)
}
