package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"piggy-viewer/core"
	"piggy-viewer/internal/glyphs"
	"piggy-viewer/internal/logger"
	"piggy-viewer/internal/opengl"
	"piggy-viewer/internal/viewer"
	"piggy-viewer/scene"
)

// overlayFontSize is the glyph height of the stats and panel text in logical pixels.
const overlayFontSize = 13

var errNoCamera = errors.New("no scene or camera")

// RenderEngine is the high-level renderer that drives the OpenGL backend.
// It renders straight to the window and, through Composer, into the
// pixelation pass.
type RenderEngine struct {
	gl      *opengl.Renderer
	pixel   *opengl.PixelPassFBO
	overlay *opengl.Overlay

	ShadowsEnabled bool

	width, height int

	// Per-frame stats (populated during Render)
	lastObjects   int
	lastVertices  int
	lastTriangles int
}

// NewRenderEngine initialises OpenGL for a framebuffer of width×height
// physical pixels. The window's context must be current.
func NewRenderEngine(width, height int) (*RenderEngine, error) {
	glRenderer, err := opengl.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}
	glRenderer.SetViewport(width, height)

	pixel, err := opengl.NewPixelPassFBO(width, height)
	if err != nil {
		glRenderer.Destroy()
		return nil, err
	}

	atlas, err := glyphs.New(overlayFontSize)
	if err != nil {
		pixel.Destroy()
		glRenderer.Destroy()
		return nil, fmt.Errorf("font atlas: %w", err)
	}
	overlay, err := opengl.NewOverlay(atlas)
	if err != nil {
		pixel.Destroy()
		glRenderer.Destroy()
		return nil, err
	}

	logger.Log.Info("render engine initialized", zap.Int("width", width), zap.Int("height", height))
	return &RenderEngine{
		gl:      glRenderer,
		pixel:   pixel,
		overlay: overlay,
		width:   width,
		height:  height,
	}, nil
}

// Upload moves every texture and mesh of s to the GPU and allocates the
// shadow map of the first shadow-casting spot light. Must be called from
// the main thread.
func (re *RenderEngine) Upload(s *scene.Scene) error {
	var errs []error
	s.Root.Traverse(func(n *scene.Node) {
		if n.Mesh == nil {
			return
		}
		if mat := n.Mesh.Material; mat != nil && mat.AlbedoTexture != nil {
			if err := opengl.UploadTexture(mat.AlbedoTexture); err != nil {
				errs = append(errs, fmt.Errorf("node %q: %w", n.Name, err))
			}
		}
		re.gl.Upload(n.Mesh)
	})

	if l := shadowLight(s); l != nil {
		if err := re.gl.EnableShadows(l.ShadowMapSize); err != nil {
			errs = append(errs, fmt.Errorf("shadows: %w", err))
		} else {
			re.ShadowsEnabled = true
		}
	}
	return errors.Join(errs...)
}

// shadowLight is the first spot light that casts shadows, or nil.
func shadowLight(s *scene.Scene) *scene.Light {
	for _, l := range s.Lights {
		if l != nil && l.Type == scene.LightTypeSpot && l.CastShadow && l.ShadowMapSize > 0 {
			return l
		}
	}
	return nil
}

// SetSize resizes the window viewport in physical pixels.
func (re *RenderEngine) SetSize(width, height int) {
	re.width, re.height = width, height
	re.gl.SetViewport(width, height)
}

// Render draws s straight to the window.
func (re *RenderEngine) Render(s *scene.Scene) error {
	return re.render(s, 0)
}

func (re *RenderEngine) render(s *scene.Scene, target uint32) error {
	if s == nil || s.Camera == nil {
		return errNoCamera
	}

	// ── Shadow pass ───────────────────────────────────────────────────────────
	light := shadowLight(s)
	doShadows := re.ShadowsEnabled && re.gl.HasShadowMap() && light != nil
	lightVP := mgl32.Ident4()

	nodes := s.GetVisibleNodes()
	if doShadows {
		lightVP = light.ShadowViewProjection()
		re.gl.BeginShadowPass()
		for _, node := range nodes {
			if !node.CastShadow {
				continue
			}
			re.gl.DrawMeshShadow(node.Mesh, lightVP.Mul4(node.GetWorldMatrix()))
		}
		re.gl.EndShadowPass(target)
	}

	// ── Main render pass ──────────────────────────────────────────────────────
	re.gl.BeginFrame(opengl.FrameParams{
		Target:        target,
		Background:    s.Background,
		Ambient:       s.Ambient(),
		Lights:        s.Lights,
		CameraPos:     s.Camera.Position,
		LightViewProj: lightVP,
		HasShadows:    doShadows,
	})

	// casters outside the view still shadow what is inside it
	vp := s.Camera.GetViewProjectionMatrix()
	objects, vertices, triangles := 0, 0, 0
	for _, node := range s.NodesInFrustum(vp) {
		model := node.GetWorldMatrix()
		re.gl.DrawMesh(node.Mesh, vp.Mul4(model), model, node.ReceiveShadow)

		objects++
		vertices += len(node.Mesh.Vertices)
		if len(node.Mesh.Indices) > 0 {
			triangles += len(node.Mesh.Indices) / 3
		} else {
			triangles += len(node.Mesh.Vertices) / 3
		}
	}

	re.lastObjects = objects
	re.lastVertices = vertices
	re.lastTriangles = triangles
	return nil
}

// Clear fills the window with c; used while nothing can be rendered yet.
func (re *RenderEngine) Clear(c core.Color) {
	re.gl.BeginFrame(opengl.FrameParams{Background: c})
}

// Composer returns the pixelation path of the engine.
func (re *RenderEngine) Composer() viewer.Composer {
	return &pixelComposer{re: re}
}

// pixelComposer renders the scene into an off-screen target and resolves it
// to the window through the pixelation shader.
type pixelComposer struct {
	re *RenderEngine
}

func (c *pixelComposer) SetSize(width, height int) {
	c.re.pixel.Resize(width, height)
}

func (c *pixelComposer) Render(s *scene.Scene, pass viewer.PixelPass) error {
	if err := c.re.render(s, c.re.pixel.FBO); err != nil {
		return err
	}
	c.re.pixel.Blit(pass.PixelSize, pass.Resolution.X(), pass.Resolution.Y())
	return nil
}

// Overlay returns the 2D batcher drawn over the frame. Call Begin with the
// logical window size, draw, then FlushOverlay before swapping buffers.
func (re *RenderEngine) Overlay() *opengl.Overlay {
	return re.overlay
}

// FlushOverlay draws the queued overlay over the whole window.
func (re *RenderEngine) FlushOverlay() {
	re.gl.SetViewport(re.width, re.height)
	re.overlay.Flush()
}

// DrawStats returns stats from the most recent Render call.
func (re *RenderEngine) DrawStats() (objects, vertices, triangles int) {
	return re.lastObjects, re.lastVertices, re.lastTriangles
}

// Release frees the GPU copies of every texture and mesh in s.
func (re *RenderEngine) Release(s *scene.Scene) {
	s.Root.Traverse(func(n *scene.Node) {
		if n.Mesh == nil {
			return
		}
		if mat := n.Mesh.Material; mat != nil {
			opengl.DeleteTexture(mat.AlbedoTexture)
		}
		re.gl.ReleaseMesh(n.Mesh)
	})
}

func (re *RenderEngine) Destroy() {
	re.overlay.Destroy()
	re.pixel.Destroy()
	re.gl.Destroy()
}
