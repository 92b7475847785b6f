package scene

import (
	"bytes"
	"image"
	"image/color"
	pngenc "image/png"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piggy-viewer/core"
)

func TestEulerFromQuat(t *testing.T) {
	tests := []mgl32.Vec3{
		{0, 0, 0},
		{0.3, 0, 0},
		{0, -0.5, 0},
		{0, 0, 1.2},
		{0.3, -0.5, 0.7},
	}
	for _, rot := range tests {
		m := core.Transform{Rotation: rot, Scale: mgl32.Vec3{1, 1, 1}}.RotationMatrix()
		got := EulerFromQuat(mgl32.Mat4ToQuat(m))
		for i := 0; i < 3; i++ {
			assert.InDelta(t, rot[i], got[i], 1e-4, "%v", rot)
		}
	}
}

func TestLoadGLTFMissingFile(t *testing.T) {
	_, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.glb"))
	assert.Error(t, err)
}

// writeTriangleGLB saves a one-triangle binary glTF whose node is translated
// to (1, 2, 3) and whose material samples an embedded 2x1 PNG.
func writeTriangleGLB(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{B: 255, A: 255})
	var png bytes.Buffer
	require.NoError(t, pngenc.Encode(&png, img))

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	imgIdx, err := modeler.WriteImage(doc, "swatch", "image/png", &png)
	require.NoError(t, err)

	doc.Textures = []*gltf.Texture{{Source: gltf.Index(imgIdx)}}
	doc.Materials = []*gltf.Material{{
		Name:        "Skin",
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  &[4]float64{1, 0.5, 0.25, 1},
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
			MetallicFactor:   gltf.Float(0),
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Material:   gltf.Index(0),
			Attributes: gltf.PrimitiveAttributes{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "n", Mesh: gltf.Index(0), Translation: [3]float64{1, 2, 3}}}
	doc.Scenes[0].Nodes = []int{0}
	require.NoError(t, gltf.SaveBinary(doc, path))
}

func TestLoadGLTF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	writeTriangleGLB(t, path)

	group, err := LoadGLTF(path)
	require.NoError(t, err)
	assert.Equal(t, "tri", group.Name)
	require.Len(t, group.Children, 1)

	n := group.Children[0]
	assert.Equal(t, "n", n.Name)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, n.Transform.Position)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, n.Transform.Scale)

	require.NotNil(t, n.Mesh)
	assert.Len(t, n.Mesh.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, n.Mesh.Indices)
	assert.True(t, n.Mesh.HasLocalAABB)
	assert.Equal(t, mgl32.Vec2{1, 0}, n.Mesh.Vertices[1].UV)
	// no NORMAL attribute: normals are generated from the winding
	for _, v := range n.Mesh.Vertices {
		assert.InDelta(t, 1, v.Normal.Z(), 1e-5)
	}

	mat := n.Mesh.Material
	require.NotNil(t, mat)
	assert.Equal(t, "Skin", mat.Name)
	assert.True(t, mat.DoubleSided)
	assert.InDelta(t, 0.5, mat.Albedo.G, 1e-6)
	assert.InDelta(t, 0, mat.Specular.R, 1e-6)

	tex := mat.AlbedoTexture
	require.NotNil(t, tex)
	assert.Equal(t, 2, tex.Width)
	assert.Equal(t, 1, tex.Height)
	assert.Equal(t, WrapRepeat, tex.WrapS)
	// first texel red, second blue
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, tex.Pixels)
}
