package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"piggy-viewer/core"
	"piggy-viewer/internal/logger"
	"piggy-viewer/scene"
)

// maxSpotLights must match MAX_SPOT_LIGHTS in fragSrc.
const maxSpotLights = 4

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program uint32

	// Vertex transform uniforms
	mvpLoc           int32
	modelLoc         int32
	lightViewProjLoc int32
	uvRepeatLoc      int32

	ambientColorLoc int32
	cameraPosLoc    int32

	// Spot lights (up to maxSpotLights)
	spotLightCountLoc     int32
	spotLightPosLoc       [maxSpotLights]int32
	spotLightDirLoc       [maxSpotLights]int32
	spotLightColorLoc     [maxSpotLights]int32
	spotLightIntensityLoc [maxSpotLights]int32
	spotLightRangeLoc     [maxSpotLights]int32
	spotLightInnerLoc     [maxSpotLights]int32
	spotLightOuterLoc     [maxSpotLights]int32

	// Material uniforms (Phong)
	matAlbedoLoc    int32
	matSpecularLoc  int32
	matShininessLoc int32
	matEmissiveLoc  int32
	doubleSidedLoc  int32

	albedoTexLoc  int32
	hasTextureLoc int32

	// Shadow map uniforms (main shader)
	shadowMapLoc     int32
	hasShadowsLoc    int32
	receiveShadowLoc int32
	shadowTexelLoc   int32

	// Shadow depth shader
	shadowProg        uint32
	shadowLightMVPLoc int32

	// Shadow map FBO (nil if shadows not enabled)
	shadowMap *ShadowMap

	// Stored viewport for restoring after the shadow pass
	viewportW int32
	viewportH int32

	gpuMeshes map[*scene.Mesh]*GPUMesh
}

// ── Shaders ───────────────────────────────────────────────────────────────────

// vertex shader: MVP + model transform, world-space position and normal to
// fragment, light-space position for the shadow lookup.
const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;

uniform mat4 mvp;
uniform mat4 model;
uniform mat4 lightViewProj;
uniform vec2 uvRepeat;

out vec4 fragColor;
out vec3 fragNormal;
out vec2 fragUV;
out vec3 fragWorldPos;
out vec4 fragLightSpacePos;

void main() {
    vec4 worldPos     = model * vec4(inPosition, 1.0);
    gl_Position       = mvp * vec4(inPosition, 1.0);
    fragColor         = inColor;
    fragNormal        = mat3(model) * inNormal;
    fragUV            = inUV * uvRepeat;
    fragWorldPos      = worldPos.xyz;
    fragLightSpacePos = lightViewProj * worldPos;
}
` + "\x00"

// fragment shader: Phong with an ambient term and spot lights. The cone
// fades from the inner to the outer cosine; range falls off linearly.
const fragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec2 fragUV;
in vec3 fragWorldPos;
in vec4 fragLightSpacePos;

out vec4 outColor;

uniform vec3 ambientColor;
uniform vec3 cameraPos;

#define MAX_SPOT_LIGHTS 4
uniform int   spotLightCount;
uniform vec3  spotLightPos[MAX_SPOT_LIGHTS];
uniform vec3  spotLightDir[MAX_SPOT_LIGHTS];
uniform vec3  spotLightColor[MAX_SPOT_LIGHTS];
uniform float spotLightIntensity[MAX_SPOT_LIGHTS];
uniform float spotLightRange[MAX_SPOT_LIGHTS];
uniform float spotLightInner[MAX_SPOT_LIGHTS];
uniform float spotLightOuter[MAX_SPOT_LIGHTS];

uniform vec3  matAlbedo;
uniform vec3  matSpecular;
uniform float matShininess;
uniform vec3  matEmissive;
uniform bool  doubleSided;

// Albedo texture (unit 0)
uniform sampler2D albedoTex;
uniform bool      hasTexture;

// Shadow map of the first spot light (unit 1)
uniform sampler2DShadow shadowMap;
uniform bool            hasShadows;
uniform bool            receiveShadow;
uniform float           shadowTexel;

float calcShadow() {
    vec3 p = fragLightSpacePos.xyz / fragLightSpacePos.w;
    p = p * 0.5 + 0.5;
    if (p.z > 1.0 || fragLightSpacePos.w <= 0.0) return 1.0;
    float shadow = 0.0;
    for (int x = -1; x <= 1; x++) {
        for (int y = -1; y <= 1; y++) {
            shadow += texture(shadowMap, vec3(p.xy + vec2(float(x), float(y)) * shadowTexel, p.z - 0.0005));
        }
    }
    return shadow / 9.0;
}

vec3 calcSpecular(vec3 N, vec3 L, vec3 V) {
    vec3 H = normalize(L + V);
    return matSpecular * pow(max(dot(N, H), 0.0), matShininess);
}

void main() {
    vec3 N = normalize(fragNormal);
    if (doubleSided && !gl_FrontFacing) {
        N = -N;
    }
    vec3 V = normalize(cameraPos - fragWorldPos);

    vec4 baseColor = fragColor * vec4(matAlbedo, 1.0);
    if (hasTexture) {
        baseColor *= texture(albedoTex, fragUV);
    }

    float shadowFactor = (hasShadows && receiveShadow) ? calcShadow() : 1.0;

    vec3 color = ambientColor * baseColor.rgb + matEmissive;
    for (int i = 0; i < spotLightCount && i < MAX_SPOT_LIGHTS; i++) {
        vec3  toLight = spotLightPos[i] - fragWorldPos;
        float dist    = length(toLight);
        float atten   = 1.0;
        if (spotLightRange[i] > 0.0) {
            atten = clamp(1.0 - dist / spotLightRange[i], 0.0, 1.0);
        }
        vec3  L     = normalize(toLight);
        float theta = dot(L, normalize(-spotLightDir[i]));
        float cone  = smoothstep(spotLightOuter[i], spotLightInner[i], theta);
        float NdL   = max(dot(N, L), 0.0);
        float contrib = atten * cone * spotLightIntensity[i];
        if (i == 0) {
            contrib *= shadowFactor;
        }
        color += spotLightColor[i] * contrib * NdL * baseColor.rgb;
        if (NdL > 0.0) {
            color += spotLightColor[i] * contrib * calcSpecular(N, L, V);
        }
    }
    outColor = vec4(color, baseColor.a);
}
` + "\x00"

// depth-only vertex shader for the shadow map pass
const depthVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
uniform mat4 lightMVP;
void main() {
    gl_Position = lightMVP * vec4(inPosition, 1.0);
}
` + "\x00"

// depth-only fragment shader (OpenGL writes depth implicitly)
const depthFragSrc = `
#version 410 core
void main() {}
` + "\x00"

// ── NewRenderer ───────────────────────────────────────────────────────────────

// NewRenderer initialises OpenGL.
// Must be called after the GLFW window context is made current.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Log.Info("OpenGL initialised",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("main shader compile: %w", err)
	}
	shadowProg, err := newProgram(depthVertSrc, depthFragSrc)
	if err != nil {
		return nil, fmt.Errorf("depth shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.CullFace(gl.BACK)

	uniform := func(name string) int32 {
		return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
	}
	r := &Renderer{
		program:    prog,
		shadowProg: shadowProg,

		mvpLoc:           uniform("mvp"),
		modelLoc:         uniform("model"),
		lightViewProjLoc: uniform("lightViewProj"),
		uvRepeatLoc:      uniform("uvRepeat"),

		ambientColorLoc: uniform("ambientColor"),
		cameraPosLoc:    uniform("cameraPos"),

		spotLightCountLoc: uniform("spotLightCount"),

		matAlbedoLoc:    uniform("matAlbedo"),
		matSpecularLoc:  uniform("matSpecular"),
		matShininessLoc: uniform("matShininess"),
		matEmissiveLoc:  uniform("matEmissive"),
		doubleSidedLoc:  uniform("doubleSided"),

		albedoTexLoc:  uniform("albedoTex"),
		hasTextureLoc: uniform("hasTexture"),

		shadowMapLoc:     uniform("shadowMap"),
		hasShadowsLoc:    uniform("hasShadows"),
		receiveShadowLoc: uniform("receiveShadow"),
		shadowTexelLoc:   uniform("shadowTexel"),

		shadowLightMVPLoc: gl.GetUniformLocation(shadowProg, gl.Str("lightMVP\x00")),

		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
	}

	for i := 0; i < maxSpotLights; i++ {
		r.spotLightPosLoc[i] = uniform(fmt.Sprintf("spotLightPos[%d]", i))
		r.spotLightDirLoc[i] = uniform(fmt.Sprintf("spotLightDir[%d]", i))
		r.spotLightColorLoc[i] = uniform(fmt.Sprintf("spotLightColor[%d]", i))
		r.spotLightIntensityLoc[i] = uniform(fmt.Sprintf("spotLightIntensity[%d]", i))
		r.spotLightRangeLoc[i] = uniform(fmt.Sprintf("spotLightRange[%d]", i))
		r.spotLightInnerLoc[i] = uniform(fmt.Sprintf("spotLightInner[%d]", i))
		r.spotLightOuterLoc[i] = uniform(fmt.Sprintf("spotLightOuter[%d]", i))
	}

	// Texture units: albedo=0, shadowMap=1
	gl.UseProgram(prog)
	gl.Uniform1i(r.albedoTexLoc, 0)
	gl.Uniform1i(r.shadowMapLoc, 1)

	ident := mgl32.Ident4()
	gl.UniformMatrix4fv(r.lightViewProjLoc, 1, false, &ident[0])

	return r, nil
}

// SetViewport resizes the OpenGL viewport and stores the dimensions for
// restoring after the shadow pass.
func (r *Renderer) SetViewport(width, height int) {
	r.viewportW = int32(width)
	r.viewportH = int32(height)
	gl.Viewport(0, 0, int32(width), int32(height))
}

// ── Shadow map ────────────────────────────────────────────────────────────────

// EnableShadows creates the depth FBO, or recreates it at a new size.
func (r *Renderer) EnableShadows(size int) error {
	if r.shadowMap != nil {
		if r.shadowMap.Size == int32(size) {
			return nil
		}
		r.shadowMap.Destroy()
		r.shadowMap = nil
	}
	sm, err := NewShadowMap(size)
	if err != nil {
		return err
	}
	r.shadowMap = sm
	return nil
}

// HasShadowMap reports whether the shadow FBO has been created.
func (r *Renderer) HasShadowMap() bool {
	return r.shadowMap != nil
}

// BeginShadowPass binds the depth FBO for the shadow pass.
func (r *Renderer) BeginShadowPass() {
	if r.shadowMap == nil {
		return
	}
	r.shadowMap.Bind()
	gl.UseProgram(r.shadowProg)
	gl.Disable(gl.CULL_FACE)
}

// DrawMeshShadow draws a mesh into the depth buffer using the depth-only shader.
func (r *Renderer) DrawMeshShadow(mesh *scene.Mesh, lightMVP mgl32.Mat4) {
	if r.shadowMap == nil {
		return
	}
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}
	gl.UniformMatrix4fv(r.shadowLightMVPLoc, 1, false, &lightMVP[0])
	r.draw(gpu, mesh)
}

// EndShadowPass restores the given framebuffer and the stored viewport.
func (r *Renderer) EndShadowPass(target uint32) {
	if r.shadowMap == nil {
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, target)
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
}

// ── BeginFrame ────────────────────────────────────────────────────────────────

// FrameParams are the per-frame inputs of the main pass.
type FrameParams struct {
	// Target is the framebuffer to draw into; 0 is the window.
	Target     uint32
	Background core.Color
	Ambient    core.Color
	Lights     []*scene.Light
	CameraPos  mgl32.Vec3
	// LightViewProj maps world space into the shadow map of the first spot light.
	LightViewProj mgl32.Mat4
	HasShadows    bool
}

// BeginFrame clears the target and sets per-frame lighting, camera and
// shadow uniforms.
func (r *Renderer) BeginFrame(p FrameParams) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, p.Target)
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
	gl.Enable(gl.DEPTH_TEST)
	gl.ClearColor(p.Background.R, p.Background.G, p.Background.B, p.Background.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.Uniform3f(r.ambientColorLoc, p.Ambient.R, p.Ambient.G, p.Ambient.B)
	gl.Uniform3f(r.cameraPosLoc, p.CameraPos.X(), p.CameraPos.Y(), p.CameraPos.Z())
	gl.UniformMatrix4fv(r.lightViewProjLoc, 1, false, &p.LightViewProj[0])

	if p.HasShadows && r.shadowMap != nil {
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, r.shadowMap.DepthTex)
		gl.Uniform1i(r.hasShadowsLoc, 1)
		gl.Uniform1f(r.shadowTexelLoc, 1/float32(r.shadowMap.Size))
	} else {
		gl.Uniform1i(r.hasShadowsLoc, 0)
	}

	spotIdx := 0
	for _, l := range p.Lights {
		if l == nil || l.Type != scene.LightTypeSpot || spotIdx >= maxSpotLights {
			continue
		}
		outer, inner := l.ConeCosines()
		dir := l.Direction()
		gl.Uniform3f(r.spotLightPosLoc[spotIdx], l.Position.X(), l.Position.Y(), l.Position.Z())
		gl.Uniform3f(r.spotLightDirLoc[spotIdx], dir.X(), dir.Y(), dir.Z())
		gl.Uniform3f(r.spotLightColorLoc[spotIdx], l.Color.R, l.Color.G, l.Color.B)
		gl.Uniform1f(r.spotLightIntensityLoc[spotIdx], l.Intensity)
		gl.Uniform1f(r.spotLightRangeLoc[spotIdx], l.Distance)
		gl.Uniform1f(r.spotLightInnerLoc[spotIdx], inner)
		gl.Uniform1f(r.spotLightOuterLoc[spotIdx], outer)
		spotIdx++
	}
	gl.Uniform1i(r.spotLightCountLoc, int32(spotIdx))
}

// ── DrawMesh ──────────────────────────────────────────────────────────────────

// DrawMesh draws a mesh with the given MVP and model matrices.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, mvp, model mgl32.Mat4, receiveShadow bool) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, &mvp[0])
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0])
	if receiveShadow {
		gl.Uniform1i(r.receiveShadowLoc, 1)
	} else {
		gl.Uniform1i(r.receiveShadowLoc, 0)
	}

	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}
	r.applyMaterial(mat)
	r.draw(gpu, mesh)
}

func (r *Renderer) draw(gpu *GPUMesh, mesh *scene.Mesh) {
	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(mesh.Vertices)))
	}
	gl.BindVertexArray(0)
}

// applyMaterial sets the material uniforms, face culling and textures.
// r.program must be active.
func (r *Renderer) applyMaterial(mat *scene.Material) {
	gl.Uniform3f(r.matAlbedoLoc, mat.Albedo.R, mat.Albedo.G, mat.Albedo.B)
	gl.Uniform3f(r.matSpecularLoc, mat.Specular.R, mat.Specular.G, mat.Specular.B)
	gl.Uniform1f(r.matShininessLoc, mat.Shininess)
	gl.Uniform3f(r.matEmissiveLoc, mat.Emissive.R, mat.Emissive.G, mat.Emissive.B)

	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
		gl.Uniform1i(r.doubleSidedLoc, 1)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.Uniform1i(r.doubleSidedLoc, 0)
	}

	if tex := mat.AlbedoTexture; tex != nil && tex.GLID != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
		gl.Uniform1i(r.hasTextureLoc, 1)
		gl.Uniform2f(r.uvRepeatLoc, tex.Repeat.X(), tex.Repeat.Y())
	} else {
		gl.Uniform1i(r.hasTextureLoc, 0)
		gl.Uniform2f(r.uvRepeatLoc, 1, 1)
	}
}

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.HasIndices {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	if r.shadowProg != 0 {
		gl.DeleteProgram(r.shadowProg)
	}
	gl.DeleteProgram(r.program)
}

// ── Internal helpers ──────────────────────────────────────────────────────────

// Upload creates the GPU buffers of mesh ahead of its first draw.
func (r *Renderer) Upload(mesh *scene.Mesh) {
	r.ensureUploaded(mesh)
}

// ensureUploaded uploads vertex/index data if not already done.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))
	uvOff := int(unsafe.Offsetof(v.UV))
	colorOff := int(unsafe.Offsetof(v.Color))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))

	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))

	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(uvOff))

	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointer(3, 4, gl.FLOAT, false, stride, gl.PtrOffset(colorOff))

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
			len(mesh.Indices)*4,
			gl.Ptr(mesh.Indices),
			gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %v", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
