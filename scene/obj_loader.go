package scene

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"piggy-viewer/core"
)

// MaterialLibrary maps material names (as used by "usemtl") to materials.
type MaterialLibrary map[string]*Material

// objFace is an already-triangulated face (three vertex references).
type objFace struct {
	vIdx, vtIdx, vnIdx [3]int // 0-based position / UV / normal indices (-1 = absent)
}

type objObject struct {
	name    string
	matName string
	faces   []objFace
}

// LoadMTL parses a Wavefront .mtl file. Texture maps are resolved relative to
// the file and loaded eagerly, so a missing map fails the whole library.
func LoadMTL(path string) (MaterialLibrary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mtl %q: %w", path, err)
	}
	defer f.Close()

	lib, err := parseMTL(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("parse mtl %q: %w", path, err)
	}
	return lib, nil
}

func parseMTL(r io.Reader, dir string) (MaterialLibrary, error) {
	mats := MaterialLibrary{}
	var cur *Material

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) > 1 {
				m := DefaultMaterial()
				m.Name = fields[1]
				mats[fields[1]] = m
				cur = m
			}
		case "Kd":
			if cur != nil && len(fields) >= 4 {
				cur.Albedo = parseColor(fields[1:4])
			}
		case "Ks":
			if cur != nil && len(fields) >= 4 {
				cur.Specular = parseColor(fields[1:4])
			}
		case "Ke":
			if cur != nil && len(fields) >= 4 {
				cur.Emissive = parseColor(fields[1:4])
			}
		case "Ns":
			if cur != nil && len(fields) >= 2 {
				ns, _ := strconv.ParseFloat(fields[1], 32)
				cur.Shininess = float32(math.Max(1, ns))
			}
		case "map_Kd":
			if cur != nil && len(fields) >= 2 {
				// options such as "-s 1 1 1" precede the file name
				texPath := filepath.Join(dir, fields[len(fields)-1])
				tex, err := LoadTexture(texPath)
				if err != nil {
					return nil, err
				}
				tex.WrapS, tex.WrapT = WrapRepeat, WrapRepeat
				cur.AlbedoTexture = tex
				cur.Albedo = core.ColorWhite
			}
		}
	}
	return mats, scanner.Err()
}

func parseColor(fields []string) core.Color {
	r, _ := strconv.ParseFloat(fields[0], 32)
	g, _ := strconv.ParseFloat(fields[1], 32)
	b, _ := strconv.ParseFloat(fields[2], 32)
	return core.Color{R: float32(r), G: float32(g), B: float32(b), A: 1}
}

// LoadOBJ parses a Wavefront .obj file into a group node with one child per
// object/group. Faces reference materials from lib by name; "mtllib"
// directives are ignored, so load the library first with LoadMTL.
// Unknown or missing materials fall back to DefaultMaterial().
func LoadOBJ(path string, lib MaterialLibrary) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	group, err := ParseOBJ(f, name, lib)
	if err != nil {
		return nil, fmt.Errorf("parse obj %q: %w", path, err)
	}
	return group, nil
}

// ParseOBJ is LoadOBJ over an already-open reader.
func ParseOBJ(r io.Reader, name string, lib MaterialLibrary) (*Node, error) {
	// Indexed OBJ data pools
	var positions []mgl32.Vec3
	var normals []mgl32.Vec3
	var uvs []mgl32.Vec2

	var objects []objObject
	cur := &objObject{name: "default"}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				continue
			}
			positions = append(positions, parseVec3(fields[1:4]))

		case "vn":
			if len(fields) < 4 {
				continue
			}
			normals = append(normals, parseVec3(fields[1:4]))

		case "vt":
			if len(fields) < 3 {
				continue
			}
			u, _ := strconv.ParseFloat(fields[1], 32)
			v, _ := strconv.ParseFloat(fields[2], 32)
			uvs = append(uvs, mgl32.Vec2{float32(u), float32(v)})

		case "o", "g":
			// Push the current object if it has faces, then start a new one
			if len(cur.faces) > 0 {
				objects = append(objects, *cur)
			}
			objName := "default"
			if len(fields) > 1 {
				objName = fields[1]
			}
			cur = &objObject{name: objName, matName: cur.matName}

		case "usemtl":
			if len(fields) > 1 {
				// a material switch mid-object starts a new mesh
				if len(cur.faces) > 0 {
					objects = append(objects, *cur)
					cur = &objObject{name: cur.name}
				}
				cur.matName = fields[1]
			}

		case "f":
			if len(fields) < 4 {
				continue
			}
			fverts := make([]faceVertex, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				fverts = append(fverts, parseFaceVertex(tok, len(positions), len(uvs), len(normals)))
			}
			// Fan triangulation: 0-1-2, 0-2-3, 0-3-4, ...
			for i := 1; i+1 < len(fverts); i++ {
				f0, f1, f2 := fverts[0], fverts[i], fverts[i+1]
				cur.faces = append(cur.faces, objFace{
					vIdx:  [3]int{f0.v, f1.v, f2.v},
					vtIdx: [3]int{f0.vt, f1.vt, f2.vt},
					vnIdx: [3]int{f0.vn, f1.vn, f2.vn},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj: %w", err)
	}

	if len(cur.faces) > 0 {
		objects = append(objects, *cur)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no geometry found")
	}

	group := NewNode(name)
	for _, obj := range objects {
		mesh := buildMeshFromOBJ(obj.name, obj.faces, positions, normals, uvs)
		if mat, ok := lib[obj.matName]; ok {
			mesh.Material = mat
		} else {
			mesh.Material = DefaultMaterial()
		}
		mesh.MaterialName = obj.matName

		child := NewNode(obj.name)
		child.Mesh = mesh
		group.AddChild(child)
	}
	return group, nil
}

func parseVec3(fields []string) mgl32.Vec3 {
	x, _ := strconv.ParseFloat(fields[0], 32)
	y, _ := strconv.ParseFloat(fields[1], 32)
	z, _ := strconv.ParseFloat(fields[2], 32)
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

type faceVertex struct{ v, vt, vn int }

// parseFaceVertex parses one face vertex token: "v", "v/vt", "v//vn", "v/vt/vn".
// Returns 0-based indices (-1 if absent). OBJ is 1-based; negative indices
// count back from the end of the pools read so far.
func parseFaceVertex(tok string, nv, nvt, nvn int) faceVertex {
	parseIdx := func(s string, n int) int {
		if s == "" {
			return -1
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return -1
		}
		if i > 0 {
			return i - 1
		}
		return n + i
	}
	parts := strings.Split(tok, "/")
	res := faceVertex{v: -1, vt: -1, vn: -1}
	if len(parts) > 0 {
		res.v = parseIdx(parts[0], nv)
	}
	if len(parts) > 1 {
		res.vt = parseIdx(parts[1], nvt)
	}
	if len(parts) > 2 {
		res.vn = parseIdx(parts[2], nvn)
	}
	return res
}

// buildMeshFromOBJ converts parsed face data into a deduplicated Mesh.
func buildMeshFromOBJ(
	name string,
	faces []objFace,
	positions []mgl32.Vec3,
	normals []mgl32.Vec3,
	uvs []mgl32.Vec2,
) *Mesh {
	vertMap := map[faceVertex]uint32{}
	var vertices []core.Vertex
	var indices []uint32

	safePos := func(i int) mgl32.Vec3 {
		if i >= 0 && i < len(positions) {
			return positions[i]
		}
		return mgl32.Vec3{}
	}
	safeNorm := func(i int) mgl32.Vec3 {
		if i >= 0 && i < len(normals) {
			return normals[i]
		}
		return mgl32.Vec3{0, 1, 0}
	}
	safeUV := func(i int) mgl32.Vec2 {
		if i >= 0 && i < len(uvs) {
			return uvs[i]
		}
		return mgl32.Vec2{}
	}

	hasNormals := len(normals) > 0

	for _, face := range faces {
		for c := 0; c < 3; c++ {
			k := faceVertex{face.vIdx[c], face.vtIdx[c], face.vnIdx[c]}
			if idx, ok := vertMap[k]; ok {
				indices = append(indices, idx)
				continue
			}
			idx := uint32(len(vertices))
			vertices = append(vertices, core.Vertex{
				Position: safePos(k.v),
				Normal:   safeNorm(k.vn),
				UV:       safeUV(k.vt),
				Color:    core.ColorWhite,
			})
			vertMap[k] = idx
			indices = append(indices, idx)
		}
	}

	if !hasNormals {
		generateSmoothNormals(vertices, indices)
	}

	return CreateMeshFromData(name, vertices, indices)
}

// generateSmoothNormals computes area-weighted vertex normals.
func generateSmoothNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0 := vertices[i0].Position
		v1 := vertices[i1].Position
		v2 := vertices[i2].Position
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if accum[i].Len() > 0 {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}
