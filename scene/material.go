package scene

import "piggy-viewer/core"

// Material describes Phong surface properties for a mesh.
type Material struct {
	Name      string
	Albedo    core.Color // base diffuse color (multiplied with albedo texture if set)
	Specular  core.Color
	Shininess float32
	Emissive  core.Color

	// DoubleSided disables back-face culling and flips normals of back faces.
	DoubleSided bool

	// Optional albedo texture; if set, it is multiplied with Albedo.
	// Upload via the renderer before drawing.
	AlbedoTexture *Texture
}

// DefaultMaterial returns a plain white matte Phong material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Albedo:    core.ColorWhite,
		Specular:  core.Color{R: 0.07, G: 0.07, B: 0.07, A: 1},
		Shininess: 30,
	}
}

// NewPhongMaterial creates a Phong material with the given albedo color.
func NewPhongMaterial(name string, albedo core.Color) *Material {
	m := DefaultMaterial()
	m.Name = name
	m.Albedo = albedo
	return m
}
