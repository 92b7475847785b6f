package scene

import "github.com/go-gl/mathgl/mgl32"

// Plane is the half-space Normal·p + D >= 0. Normal points into the frustum.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// DistanceTo returns the signed distance from pt to the plane.
// Positive means inside.
func (p Plane) DistanceTo(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromVP extracts the six normalized frustum planes from a
// view-projection matrix (Gribb/Hartmann). mgl32 is column-major, so the
// clip-space rows come from Mat4.Row.
func FrustumFromVP(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)

	var f Frustum
	f.Planes[0] = normalizePlane(r3.Add(r0))
	f.Planes[1] = normalizePlane(r3.Sub(r0))
	f.Planes[2] = normalizePlane(r3.Add(r1))
	f.Planes[3] = normalizePlane(r3.Sub(r1))
	f.Planes[4] = normalizePlane(r3.Add(r2))
	f.Planes[5] = normalizePlane(r3.Sub(r2))
	return f
}

func normalizePlane(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v.W() / l}
}

// IntersectsFrustum returns false only if box lies entirely outside one of
// the planes. For each plane the corner furthest along the normal is tested.
func (box AABB) IntersectsFrustum(f *Frustum) bool {
	for _, p := range f.Planes {
		var pv mgl32.Vec3
		for i := 0; i < 3; i++ {
			pv[i] = box.Max[i]
			if p.Normal[i] < 0 {
				pv[i] = box.Min[i]
			}
		}
		if p.DistanceTo(pv) < 0 {
			return false
		}
	}
	return true
}

// ComputeAABB returns the world-space AABB of mesh under world. The cached
// local box is used when present; otherwise every vertex is transformed.
func ComputeAABB(mesh *Mesh, world mgl32.Mat4) AABB {
	if mesh.HasLocalAABB {
		return transformAABB(mesh.LocalAABB, world)
	}
	if len(mesh.Vertices) == 0 {
		return AABB{}
	}
	out := pointAABB(mgl32.TransformCoordinate(mesh.Vertices[0].Position, world))
	for _, v := range mesh.Vertices[1:] {
		out.extend(mgl32.TransformCoordinate(v.Position, world))
	}
	return out
}

func transformAABB(local AABB, m mgl32.Mat4) AABB {
	mn, mx := local.Min, local.Max
	out := pointAABB(mgl32.TransformCoordinate(mn, m))
	for c := 1; c < 8; c++ {
		corner := mn
		for i := 0; i < 3; i++ {
			if c&(1<<i) != 0 {
				corner[i] = mx[i]
			}
		}
		out.extend(mgl32.TransformCoordinate(corner, m))
	}
	return out
}

func pointAABB(p mgl32.Vec3) AABB { return AABB{Min: p, Max: p} }

func (box *AABB) extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < box.Min[i] {
			box.Min[i] = p[i]
		}
		if p[i] > box.Max[i] {
			box.Max[i] = p[i]
		}
	}
}

// NodesInFrustum returns the visible mesh nodes whose world bounds intersect
// the frustum of vp.
func (s *Scene) NodesInFrustum(vp mgl32.Mat4) []*Node {
	f := FrustumFromVP(vp)
	var out []*Node
	for _, n := range s.GetVisibleNodes() {
		if ComputeAABB(n.Mesh, n.GetWorldMatrix()).IntersectsFrustum(&f) {
			out = append(out, n)
		}
	}
	return out
}
