package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"piggy-viewer/internal/logger"
)

// PixelPassFBO is an off-screen render target that the scene renders into,
// resolved to the window by a pixelation shader that snaps every fragment to
// the corner of its pixelSize×pixelSize cell.
type PixelPassFBO struct {
	FBO      uint32 // framebuffer object
	ColorTex uint32 // RGBA8 colour attachment
	DepthRB  uint32 // depth renderbuffer
	Width    int32
	Height   int32

	prog          uint32
	colorTexLoc   int32
	resolutionLoc int32
	pixelSizeLoc  int32

	quadVAO uint32 // empty VAO for the fullscreen triangle
}

// ── Shaders ───────────────────────────────────────────────────────────────────

// ppVertSrc: fullscreen triangle via gl_VertexID (no VBO needed).
const ppVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

const ppPixelFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D colorTex;
uniform vec2      resolution;
uniform float     pixelSize;

void main() {
    vec2 dxy   = pixelSize / resolution;
    vec2 coord = dxy * floor(fragUV / dxy);
    outColor   = texture(colorTex, coord);
}
` + "\x00"

// ── Constructor ───────────────────────────────────────────────────────────────

func NewPixelPassFBO(width, height int) (*PixelPassFBO, error) {
	pp := &PixelPassFBO{}

	prog, err := newProgram(ppVertSrc, ppPixelFragSrc)
	if err != nil {
		return nil, fmt.Errorf("pixel pass shader: %w", err)
	}
	pp.prog = prog
	pp.colorTexLoc = gl.GetUniformLocation(prog, gl.Str("colorTex\x00"))
	pp.resolutionLoc = gl.GetUniformLocation(prog, gl.Str("resolution\x00"))
	pp.pixelSizeLoc = gl.GetUniformLocation(prog, gl.Str("pixelSize\x00"))

	gl.UseProgram(prog)
	gl.Uniform1i(pp.colorTexLoc, 0)

	gl.GenVertexArrays(1, &pp.quadVAO)

	pp.allocFBO(width, height)
	return pp, nil
}

// ── FBO lifecycle ─────────────────────────────────────────────────────────────

func (pp *PixelPassFBO) allocFBO(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	pp.Width = int32(width)
	pp.Height = int32(height)

	gl.GenTextures(1, &pp.ColorTex)
	gl.BindTexture(gl.TEXTURE_2D, pp.ColorTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		pp.Width, pp.Height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	// nearest keeps each cell a single flat colour
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenRenderbuffers(1, &pp.DepthRB)
	gl.BindRenderbuffer(gl.RENDERBUFFER, pp.DepthRB)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, pp.Width, pp.Height)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	gl.GenFramebuffers(1, &pp.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, pp.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
		gl.TEXTURE_2D, pp.ColorTex, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT,
		gl.RENDERBUFFER, pp.DepthRB)
	if s := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); s != gl.FRAMEBUFFER_COMPLETE {
		logger.Log.Warn("pixel pass FBO incomplete", zap.Uint32("status", s))
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (pp *PixelPassFBO) freeFBO() {
	if pp.FBO != 0 {
		gl.DeleteFramebuffers(1, &pp.FBO)
		pp.FBO = 0
	}
	if pp.ColorTex != 0 {
		gl.DeleteTextures(1, &pp.ColorTex)
		pp.ColorTex = 0
	}
	if pp.DepthRB != 0 {
		gl.DeleteRenderbuffers(1, &pp.DepthRB)
		pp.DepthRB = 0
	}
}

// Resize recreates the FBO at the new pixel dimensions.
func (pp *PixelPassFBO) Resize(width, height int) {
	if int32(width) == pp.Width && int32(height) == pp.Height {
		return
	}
	pp.freeFBO()
	pp.allocFBO(width, height)
}

// Destroy frees all GPU resources owned by this object.
func (pp *PixelPassFBO) Destroy() {
	pp.freeFBO()
	if pp.prog != 0 {
		gl.DeleteProgram(pp.prog)
		pp.prog = 0
	}
	if pp.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &pp.quadVAO)
		pp.quadVAO = 0
	}
}

// ── Blit ──────────────────────────────────────────────────────────────────────

// Blit resolves the FBO to the window framebuffer through the pixelation
// shader. resolution is the framebuffer size in physical pixels.
func (pp *PixelPassFBO) Blit(pixelSize, resW, resH float32) {
	if pixelSize < 1 {
		pixelSize = 1
	}
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, pp.Width, pp.Height)

	gl.UseProgram(pp.prog)
	gl.Uniform1f(pp.pixelSizeLoc, pixelSize)
	gl.Uniform2f(pp.resolutionLoc, resW, resH)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, pp.ColorTex)

	gl.BindVertexArray(pp.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}
