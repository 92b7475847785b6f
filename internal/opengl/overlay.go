package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"piggy-viewer/core"
	"piggy-viewer/internal/glyphs"
)

// ── Overlay shaders ──────────────────────────────────────────────────────────

// Screen-space quads in logical pixels, origin top-left.
const overlayVertSrc = `
#version 410 core
layout(location = 0) in vec2 inPos;
layout(location = 1) in vec2 inUV;
layout(location = 2) in vec4 inColor;

uniform mat4 proj;

out vec2 fragUV;
out vec4 fragColor;

void main() {
    gl_Position = proj * vec4(inPos, 0.0, 1.0);
    fragUV      = inUV;
    fragColor   = inColor;
}
` + "\x00"

// Negative UVs mark solid quads; otherwise the atlas red channel is coverage.
const overlayFragSrc = `
#version 410 core
in vec2 fragUV;
in vec4 fragColor;

out vec4 outColor;

uniform sampler2D atlas;

void main() {
    float coverage = fragUV.x < 0.0 ? 1.0 : texture(atlas, fragUV).r;
    outColor = vec4(fragColor.rgb, fragColor.a * coverage);
}
` + "\x00"

const floatsPerVert = 8 // pos(2) + uv(2) + color(4)

// Overlay batches flat rectangles and text into one draw call per frame. It
// implements panel.Canvas; call Begin, draw, then Flush.
type Overlay struct {
	prog     uint32
	vao      uint32
	vbo      uint32
	atlasTex uint32
	projLoc  int32
	vboCap   int // current VBO capacity in floats

	atlas *glyphs.Atlas
	buf   []float32
	proj  mgl32.Mat4
}

// NewOverlay compiles the overlay shader and uploads the glyph atlas.
func NewOverlay(atlas *glyphs.Atlas) (*Overlay, error) {
	prog, err := newProgram(overlayVertSrc, overlayFragSrc)
	if err != nil {
		return nil, fmt.Errorf("overlay shader: %w", err)
	}

	o := &Overlay{
		prog:    prog,
		projLoc: gl.GetUniformLocation(prog, gl.Str("proj\x00")),
		atlas:   atlas,
	}

	gl.GenVertexArrays(1, &o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	const stride = int32(floatsPerVert * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(8))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, gl.PtrOffset(16))
	gl.BindVertexArray(0)

	b := atlas.Image.Bounds()
	gl.GenTextures(1, &o.atlasTex)
	gl.BindTexture(gl.TEXTURE_2D, o.atlasTex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(atlas.Image.Pix))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.UseProgram(prog)
	gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str("atlas\x00")), 0)
	return o, nil
}

// Begin starts a batch for a window of width×height logical pixels.
func (o *Overlay) Begin(width, height float32) {
	o.buf = o.buf[:0]
	o.proj = mgl32.Ortho(0, width, height, 0, -1, 1)
}

func (o *Overlay) quad(x, y, w, h, u0, v0, u1, v1 float32, c core.Color) {
	o.buf = append(o.buf,
		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y, u1, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,
		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,
		x, y+h, u0, v1, c.R, c.G, c.B, c.A,
	)
}

// FillRect queues a solid rectangle.
func (o *Overlay) FillRect(x, y, w, h float32, c core.Color) {
	o.quad(x, y, w, h, -1, -1, -1, -1, c)
}

// Text queues s with its baseline at y.
func (o *Overlay) Text(s string, x, y float32, c core.Color) {
	for _, q := range o.atlas.Layout(s, x, y) {
		o.quad(q.X, q.Y, q.W, q.H, q.U0, q.V0, q.U1, q.V1, c)
	}
}

// TextWidth is the advance of s in logical pixels.
func (o *Overlay) TextWidth(s string) float32 {
	return o.atlas.Width(s)
}

// LineHeight is the distance between baselines.
func (o *Overlay) LineHeight() float32 {
	return float32(o.atlas.LineHeight)
}

// Ascent is the height of the tallest glyphs above the baseline.
func (o *Overlay) Ascent() float32 {
	return float32(o.atlas.Ascent)
}

// Flush draws everything queued since Begin over the bound framebuffer.
func (o *Overlay) Flush() {
	if len(o.buf) == 0 {
		return
	}

	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	byteSize := len(o.buf) * 4
	if len(o.buf) > o.vboCap {
		gl.BufferData(gl.ARRAY_BUFFER, byteSize, gl.Ptr(o.buf), gl.DYNAMIC_DRAW)
		o.vboCap = len(o.buf)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, byteSize, gl.Ptr(o.buf))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(o.prog)
	gl.UniformMatrix4fv(o.projLoc, 1, false, &o.proj[0])
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, o.atlasTex)

	gl.BindVertexArray(o.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(o.buf)/floatsPerVert))
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
	o.buf = o.buf[:0]
}

func (o *Overlay) Destroy() {
	gl.DeleteTextures(1, &o.atlasTex)
	gl.DeleteVertexArrays(1, &o.vao)
	gl.DeleteBuffers(1, &o.vbo)
	gl.DeleteProgram(o.prog)
}
