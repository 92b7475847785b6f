package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"piggy-viewer/core"
)

// CreatePlane builds a width×height plane centred on the origin in the XY
// plane, facing +Z. UV (0,0) is the bottom-left corner.
func CreatePlane(width, height float32, widthSegments, heightSegments int) *Mesh {
	if widthSegments < 1 {
		widthSegments = 1
	}
	if heightSegments < 1 {
		heightSegments = 1
	}

	halfW := width / 2
	halfH := height / 2
	segW := width / float32(widthSegments)
	segH := height / float32(heightSegments)
	cols := widthSegments + 1

	vertices := make([]core.Vertex, 0, cols*(heightSegments+1))
	for iy := 0; iy <= heightSegments; iy++ {
		y := float32(iy)*segH - halfH
		for ix := 0; ix <= widthSegments; ix++ {
			x := float32(ix)*segW - halfW
			vertices = append(vertices, core.Vertex{
				Position: mgl32.Vec3{x, -y, 0},
				Normal:   mgl32.Vec3{0, 0, 1},
				UV: mgl32.Vec2{
					float32(ix) / float32(widthSegments),
					1 - float32(iy)/float32(heightSegments),
				},
				Color: core.ColorWhite,
			})
		}
	}

	indices := make([]uint32, 0, widthSegments*heightSegments*6)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(ix + cols*iy)
			b := uint32(ix + cols*(iy+1))
			c := uint32(ix + 1 + cols*(iy+1))
			d := uint32(ix + 1 + cols*iy)
			indices = append(indices, a, b, d, b, c, d)
		}
	}

	return CreateMeshFromData("Plane", vertices, indices)
}
