package viewer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"piggy-viewer/core"
	"piggy-viewer/internal/config"
	"piggy-viewer/scene"
)

// Scene constants.
const (
	planeSize     = 50
	groundRepeat  = 5
	shadowMapSize = 1024

	cameraFOV  = 100
	cameraNear = 0.25
	cameraFar  = 1000
)

var (
	backgroundColor = core.ColorHex(0xcccccc)
	ambientColor    = core.ColorHex(0xdddddd)
	cameraPosition  = mgl32.Vec3{0, 25, 60}
	spotPosition    = mgl32.Vec3{10, 40, 25}
)

// Assets names the files the scene is built from.
type Assets struct {
	// Model is an OBJ file, or a .gltf/.glb file that carries its own materials.
	Model string
	// Materials is the MTL library referenced by an OBJ model. May be empty.
	Materials string
	Ground    string
}

// AssetsFromConfig resolves the configured asset names against the asset directory.
func AssetsFromConfig(c config.AssetsConfig) Assets {
	return Assets{
		Model:     c.Path(c.Model),
		Materials: c.Path(c.Materials),
		Ground:    c.Path(c.Ground),
	}
}

// Assembly is a fully wired scene, ready for GPU upload.
type Assembly struct {
	Scene  *scene.Scene
	Model  *scene.Node
	Plane  *scene.Node
	Ground *scene.Texture
	Spot   *scene.Light
}

// PlaneRotationX is the initial X rotation of the ground plane for a variant.
func PlaneRotationX(variant string) float32 {
	if variant == config.VariantClassic {
		return 3 * math32.Pi / 2
	}
	return math32.Pi / 2
}

func isGLTF(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return true
	}
	return false
}

// LoadMaterials reads the MTL library at path. An empty path yields an empty library.
func LoadMaterials(ctx context.Context, path string) (scene.MaterialLibrary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path == "" {
		return scene.MaterialLibrary{}, nil
	}
	lib, err := scene.LoadMTL(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	return lib, nil
}

// LoadModel reads the model at path, resolving OBJ materials from lib.
// Every mesh in the model casts and receives shadows.
func LoadModel(ctx context.Context, path string, lib scene.MaterialLibrary) (*scene.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		model *scene.Node
		err   error
	)
	if isGLTF(path) {
		model, err = scene.LoadGLTF(path)
	} else {
		model, err = scene.LoadOBJ(path, lib)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	model.SetShadows(true, true)
	return model, nil
}

// LoadGround reads the ground texture and sets it up to tile with hard texel edges.
func LoadGround(ctx context.Context, path string) (*scene.Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tex, err := scene.LoadTexture(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	tex.WrapS, tex.WrapT = scene.WrapRepeat, scene.WrapRepeat
	tex.MagFilter = scene.FilterNearest
	tex.Repeat = mgl32.Vec2{groundRepeat, groundRepeat}
	return tex, nil
}

// Assemble loads every asset in order (materials, model, ground) and builds
// the scene around them. Nothing is returned unless every asset loaded.
func Assemble(ctx context.Context, assets Assets, variant string) (*Assembly, error) {
	materials := assets.Materials
	if isGLTF(assets.Model) {
		materials = ""
	}
	lib, err := LoadMaterials(ctx, materials)
	if err != nil {
		return nil, err
	}
	model, err := LoadModel(ctx, assets.Model, lib)
	if err != nil {
		return nil, err
	}
	ground, err := LoadGround(ctx, assets.Ground)
	if err != nil {
		return nil, err
	}
	return build(model, ground, variant), nil
}

func build(model *scene.Node, ground *scene.Texture, variant string) *Assembly {
	s := scene.NewScene()
	s.Background = backgroundColor

	cam := scene.NewPerspectiveCamera(cameraFOV, 1, cameraNear, cameraFar)
	cam.SetPosition(cameraPosition)
	cam.LookAt(mgl32.Vec3{})
	s.SetCamera(cam)

	s.AddNode(model)

	mat := scene.NewPhongMaterial("Ground", core.ColorWhite)
	mat.DoubleSided = true
	mat.AlbedoTexture = ground
	plane := scene.NewNode("Plane")
	plane.Mesh = scene.CreatePlane(planeSize, planeSize, 1, 1)
	plane.Mesh.Material = mat
	plane.ReceiveShadow = true
	plane.SetRotationAxis(0, PlaneRotationX(variant))
	s.AddNode(plane)

	s.AddLight(scene.NewAmbientLight(ambientColor))

	// three.js penumbra is a fraction; the source scene asked for 25
	spot := scene.NewSpotLight(core.ColorWhite, 2, 100, math32.Pi/6, 25)
	spot.Position = spotPosition
	spot.CastShadow = true
	spot.ShadowMapSize = shadowMapSize
	s.AddLight(spot)

	return &Assembly{Scene: s, Model: model, Plane: plane, Ground: ground, Spot: spot}
}

// Result is the outcome of an asynchronous Assemble.
type Result struct {
	Assembly *Assembly
	Err      error
}

// LoadAsync runs Assemble on its own goroutine. The returned channel yields
// exactly one Result and is then closed.
func LoadAsync(ctx context.Context, assets Assets, variant string) <-chan Result {
	ready := make(chan Result, 1)
	go func() {
		defer close(ready)
		asm, err := Assemble(ctx, assets, variant)
		ready <- Result{Assembly: asm, Err: err}
	}()
	return ready
}
