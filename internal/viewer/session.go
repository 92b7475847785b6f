package viewer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"piggy-viewer/internal/config"
	"piggy-viewer/internal/logger"
	"piggy-viewer/internal/params"
	"piggy-viewer/internal/stats"
	"piggy-viewer/scene"
)

// changeQueue bounds the parameter changes other goroutines may queue between frames.
const changeQueue = 64

// Session is the running viewer: the assembled scene, its controls and
// parameters and the render targets. Every method must be called on the
// render thread.
type Session struct {
	Variant string

	Scene    *scene.Scene
	Model    *scene.Node
	Plane    *scene.Node
	Ground   *scene.Texture
	Spot     *scene.Light
	Controls *scene.OrbitControls
	Params   *params.Store
	Stats    *stats.Stats

	Options  Options
	Pass     PixelPass
	Viewport Viewport
	// Path is the path taken by the last frame.
	Path Path

	// Changes queues parameter writes from other goroutines; Frame drains it.
	Changes chan params.Change

	renderer Renderer
	composer Composer
}

// NewSession binds the parameters of variant to asm and sizes everything for vp.
// composer may be nil for the classic variant, which never post-processes.
func NewSession(asm *Assembly, variant string, r Renderer, c Composer, vp Viewport) (*Session, error) {
	if asm == nil || r == nil {
		return nil, errors.New("new session: assembly and renderer are required")
	}
	s := &Session{
		Variant:  variant,
		Scene:    asm.Scene,
		Model:    asm.Model,
		Plane:    asm.Plane,
		Ground:   asm.Ground,
		Spot:     asm.Spot,
		Stats:    stats.New(),
		Changes:  make(chan params.Change, changeQueue),
		renderer: r,
		composer: c,
	}
	s.Options = Options{AutoRotate: true, PixelShader: variant != config.VariantClassic, PixelSize: 4}
	if s.Options.PixelShader && c == nil {
		return nil, errors.New("new session: pixel variant needs a composer")
	}

	ctl := scene.NewOrbitControls(asm.Scene.Camera)
	ctl.EnablePan = false
	ctl.EnableZoom = false
	ctl.AutoRotate = s.Options.AutoRotate
	s.Controls = ctl

	store, err := s.bindParams()
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	s.Params = store

	s.Resize(vp)
	logger.Log.Debug("session ready",
		zap.String("variant", variant),
		zap.Int("params", len(store.Fields())))
	return s, nil
}

// ApplyOverrides sets configured parameter values. Values that do not fit a
// parameter are logged and skipped.
func (s *Session) ApplyOverrides(values map[string]any) {
	if len(values) == 0 {
		return
	}
	if err := s.Params.Apply(values); err != nil {
		logger.Log.Warn("ignored parameter overrides", zap.Error(err))
	}
}
