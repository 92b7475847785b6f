package viewer

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"piggy-viewer/internal/logger"
)

// Resize adapts the camera, the output surfaces and the pixel pass to a new
// logical window size. Zero sizes, as reported for a minimized window, are
// ignored.
func (s *Session) Resize(vp Viewport) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}
	if vp.DPR <= 0 {
		vp.DPR = 1
	}
	s.Viewport = vp

	s.Scene.Camera.UpdateAspectRatio(float32(vp.Width), float32(vp.Height))
	s.Controls.ViewportHeight = float32(vp.Height)

	w, h := vp.Physical()
	s.renderer.SetSize(w, h)
	if s.composer != nil {
		s.composer.SetSize(w, h)
	}
	s.Pass.Resolution = mgl32.Vec2{float32(vp.Width) * vp.DPR, float32(vp.Height) * vp.DPR}

	logger.Log.Debug("resized",
		zap.Int("width", vp.Width),
		zap.Int("height", vp.Height),
		zap.Float32("dpr", vp.DPR))
}
