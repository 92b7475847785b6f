package scene

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"piggy-viewer/core"
)

// LoadGLTF opens a .glb or .gltf file and returns its default scene as one
// group node. Geometry, base-colour materials and textures and the node
// hierarchy are populated; metallic-roughness is approximated with Phong.
// Any unreadable texture or primitive fails the load.
func LoadGLTF(path string) (*Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)

	// ── 1. Textures ───────────────────────────────────────────────────────────
	texCache := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		img := doc.Images[*gt.Source]

		var tex *Texture
		switch {
		case img.BufferView != nil:
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				return nil, fmt.Errorf("gltf image %d: %w", *gt.Source, err)
			}
			name := img.Name
			if name == "" {
				name = fmt.Sprintf("gltf_img_%d", *gt.Source)
			}
			tex, err = DecodeTexture(bytes.NewReader(raw), name, false)
			if err != nil {
				return nil, fmt.Errorf("gltf image %d: %w", *gt.Source, err)
			}
		case img.IsEmbeddedResource():
			raw, err := img.MarshalData()
			if err != nil {
				return nil, fmt.Errorf("gltf image %d: %w", *gt.Source, err)
			}
			tex, err = DecodeTexture(bytes.NewReader(raw), fmt.Sprintf("gltf_img_%d", *gt.Source), false)
			if err != nil {
				return nil, fmt.Errorf("gltf image %d: %w", *gt.Source, err)
			}
		case img.URI != "":
			// glTF addresses texels from the top-left corner
			raw, err := LoadTexture(filepath.Join(dir, img.URI))
			if err != nil {
				return nil, fmt.Errorf("gltf image %d: %w", *gt.Source, err)
			}
			raw.Pixels = flipRows(raw.Pixels, raw.Width*4, raw.Height)
			tex = raw
		}
		if tex != nil {
			tex.WrapS, tex.WrapT = WrapRepeat, WrapRepeat
			texCache[i] = tex
		}
	}

	// ── 2. Materials ─────────────────────────────────────────────────────────
	matCache := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := DefaultMaterial()
		mat.Name = gm.Name
		mat.DoubleSided = gm.DoubleSided

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Albedo = core.Color{
				R: float32(cf[0]), G: float32(cf[1]),
				B: float32(cf[2]), A: float32(cf[3]),
			}
			if pbr.BaseColorTexture != nil {
				idx := pbr.BaseColorTexture.Index
				if idx < len(texCache) && texCache[idx] != nil {
					mat.AlbedoTexture = texCache[idx]
				}
			}
			// roughness → shininess, metallic → specular intensity
			roughness := float32(pbr.RoughnessFactorOrDefault())
			metallic := float32(pbr.MetallicFactorOrDefault())
			mat.Shininess = (1.0-roughness)*(1.0-roughness)*128.0 + 1.0
			s := metallic * 0.7
			mat.Specular = core.Color{R: s, G: s, B: s, A: 1}
		}
		ef := gm.EmissiveFactor
		mat.Emissive = core.Color{R: float32(ef[0]), G: float32(ef[1]), B: float32(ef[2]), A: 1}
		matCache[i] = mat
	}

	// ── 3. Mesh primitives ────────────────────────────────────────────────────
	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, *prim)
			if err != nil {
				return nil, fmt.Errorf("gltf mesh %d prim %d: %w", mi, pi, err)
			}
			if prim.Material != nil && *prim.Material < len(matCache) {
				m.Material = matCache[*prim.Material]
			} else {
				m.Material = DefaultMaterial()
			}
			meshPrims[mi] = append(meshPrims[mi], m)
		}
	}

	// ── 4. Nodes ──────────────────────────────────────────────────────────────
	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := NewNode(name)

		t := gn.TranslationOrDefault()
		n.SetPosition(mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])})

		sc := gn.ScaleOrDefault()
		n.SetScale(mgl32.Vec3{float32(sc[0]), float32(sc[1]), float32(sc[2])})

		r := gn.RotationOrDefault() // [x, y, z, w]
		q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
		n.SetRotation(EulerFromQuat(q))

		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			prims := meshPrims[*gn.Mesh]
			if len(prims) == 1 {
				n.Mesh = prims[0]
			} else {
				for pi, p := range prims {
					child := NewNode(fmt.Sprintf("%s_prim%d", name, pi))
					child.Mesh = p
					n.AddChild(child)
				}
			}
		}
		nodes[i] = n
	}

	for i, gn := range doc.Nodes {
		for _, childIdx := range gn.Children {
			if childIdx < len(nodes) {
				nodes[i].AddChild(nodes[childIdx])
			}
		}
	}

	// ── 5. Root nodes ─────────────────────────────────────────────────────────
	group := NewNode(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, rootIdx := range doc.Scenes[*doc.Scene].Nodes {
			if rootIdx < len(nodes) {
				group.AddChild(nodes[rootIdx])
			}
		}
	} else {
		for _, n := range nodes {
			if n.Parent == nil {
				group.AddChild(n)
			}
		}
	}
	if len(group.Children) == 0 {
		return nil, fmt.Errorf("gltf %q: no nodes", path)
	}
	return group, nil
}

// loadGLTFPrimitive converts one glTF mesh primitive into a Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: mgl32.Vec3(p),
			Normal:   mgl32.Vec3{0, 1, 0},
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			v.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}
	if len(normals) == 0 && len(indices) > 0 {
		generateSmoothNormals(verts, indices)
	}

	return CreateMeshFromData(name, verts, indices), nil
}

// EulerFromQuat returns XYZ-order Euler angles (radians) for q, matching
// core.Transform's Rx * Ry * Rz composition.
func EulerFromQuat(q mgl32.Quat) mgl32.Vec3 {
	m := q.Normalize().Mat4()
	m13 := clamp32(m.At(0, 2), -1, 1)
	y := math32.Asin(m13)
	if math32.Abs(m13) < 0.9999999 {
		return mgl32.Vec3{
			math32.Atan2(-m.At(1, 2), m.At(2, 2)),
			y,
			math32.Atan2(-m.At(0, 1), m.At(0, 0)),
		}
	}
	return mgl32.Vec3{math32.Atan2(m.At(2, 1), m.At(1, 1)), y, 0}
}
