// Package viewer assembles the piggy scene and drives it frame by frame:
// asset loading, parameter bindings, the render loop and resize handling.
// Nothing here touches OpenGL; drawing goes through the Renderer and
// Composer interfaces.
package viewer

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"piggy-viewer/scene"
)

// ErrAssetLoad wraps every failure to read or decode a scene asset.
var ErrAssetLoad = errors.New("asset load failed")

// Path is the way a frame reaches the window.
type Path int

const (
	// Direct renders the scene straight to the window.
	Direct Path = iota
	// PostProcessed renders offscreen and pixelates the result.
	PostProcessed
)

func (p Path) String() string {
	if p == PostProcessed {
		return "post-processed"
	}
	return "direct"
}

// Viewport is the window size in logical pixels plus the device pixel ratio.
type Viewport struct {
	Width  int
	Height int
	DPR    float32
}

// Physical returns the framebuffer size in device pixels.
func (v Viewport) Physical() (int, int) {
	dpr := v.DPR
	if dpr <= 0 {
		dpr = 1
	}
	return int(float32(v.Width) * dpr), int(float32(v.Height) * dpr)
}

// PixelPass holds the uniforms of the pixelation pass.
type PixelPass struct {
	PixelSize  float32
	Resolution mgl32.Vec2
}

// Renderer draws a scene directly to the output surface.
type Renderer interface {
	SetSize(width, height int)
	Render(s *scene.Scene) error
}

// Composer draws a scene offscreen and presents it through the pixel pass.
type Composer interface {
	SetSize(width, height int)
	Render(s *scene.Scene, pass PixelPass) error
}

// Options are the scene-level switches the render loop reads every frame.
type Options struct {
	AutoRotate  bool
	PixelShader bool
	PixelSize   float32
}
