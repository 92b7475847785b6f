package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const polarEpsilon = 1e-6

// OrbitControls orbits a PerspectiveCamera around a target point on a sphere.
// Pointer drags rotate, the scroll wheel dollies and a secondary drag pans;
// each can be disabled. With AutoRotate set the camera circles the target at
// AutoRotateSpeed (2 = one orbit every 30 seconds).
type OrbitControls struct {
	Camera *PerspectiveCamera
	Target mgl32.Vec3

	EnableRotate bool
	EnableZoom   bool
	EnablePan    bool

	AutoRotate      bool
	AutoRotateSpeed float32

	EnableDamping bool
	DampingFactor float32

	RotateSpeed float32
	ZoomSpeed   float32
	PanSpeed    float32

	MinDistance   float32
	MaxDistance   float32
	MinPolarAngle float32
	MaxPolarAngle float32

	// ViewportHeight scales pointer deltas to angles; set it on resize.
	ViewportHeight float32

	deltaTheta float32
	deltaPhi   float32
	scale      float32
	panOffset  mgl32.Vec3

	dragging bool
	panning  bool
	lastX    float32
	lastY    float32
}

func NewOrbitControls(camera *PerspectiveCamera) *OrbitControls {
	return &OrbitControls{
		Camera:          camera,
		Target:          camera.Target,
		EnableRotate:    true,
		EnableZoom:      true,
		EnablePan:       true,
		AutoRotateSpeed: 2,
		DampingFactor:   0.05,
		RotateSpeed:     1,
		ZoomSpeed:       1,
		PanSpeed:        1,
		MinDistance:     0,
		MaxDistance:     math32.Inf(1),
		MinPolarAngle:   0,
		MaxPolarAngle:   math32.Pi,
		ViewportHeight:  1,
		scale:           1,
	}
}

// Dragging reports whether a rotate or pan gesture is in progress.
func (oc *OrbitControls) Dragging() bool {
	return oc.dragging || oc.panning
}

// Azimuth is the horizontal angle of the camera around the target, in radians.
func (oc *OrbitControls) Azimuth() float32 {
	offset := oc.Camera.Position.Sub(oc.Target)
	return math32.Atan2(offset.X(), offset.Z())
}

// Polar is the angle between the camera offset and the +Y axis, in radians.
func (oc *OrbitControls) Polar() float32 {
	offset := oc.Camera.Position.Sub(oc.Target)
	r := offset.Len()
	if r == 0 {
		return 0
	}
	return math32.Acos(clamp32(offset.Y()/r, -1, 1))
}

// Distance is the camera's distance from the target.
func (oc *OrbitControls) Distance() float32 {
	return oc.Camera.Position.Sub(oc.Target).Len()
}

func (oc *OrbitControls) rotateLeft(angle float32) {
	oc.deltaTheta -= angle
}

func (oc *OrbitControls) rotateUp(angle float32) {
	oc.deltaPhi -= angle
}

// autoRotationAngle is the azimuth step for dt seconds; dt <= 0 means one 60 Hz frame.
func (oc *OrbitControls) autoRotationAngle(dt float32) float32 {
	if dt <= 0 {
		dt = 1.0 / 60
	}
	return 2 * math32.Pi / 60 * oc.AutoRotateSpeed * dt
}

// Update applies pending rotation, dolly and pan and repositions the camera.
// It returns true when the camera moved.
func (oc *OrbitControls) Update(dt float32) bool {
	cam := oc.Camera
	offset := cam.Position.Sub(oc.Target)

	radius := offset.Len()
	theta := math32.Atan2(offset.X(), offset.Z())
	phi := float32(0)
	if radius > 0 {
		phi = math32.Acos(clamp32(offset.Y()/radius, -1, 1))
	}

	if oc.AutoRotate && !oc.Dragging() {
		oc.rotateLeft(oc.autoRotationAngle(dt))
	}

	if oc.EnableDamping {
		theta += oc.deltaTheta * oc.DampingFactor
		phi += oc.deltaPhi * oc.DampingFactor
	} else {
		theta += oc.deltaTheta
		phi += oc.deltaPhi
	}

	minPhi := math32.Max(oc.MinPolarAngle, polarEpsilon)
	maxPhi := math32.Min(oc.MaxPolarAngle, math32.Pi-polarEpsilon)
	phi = clamp32(phi, minPhi, maxPhi)

	radius = clamp32(radius*oc.scale, oc.MinDistance, oc.MaxDistance)

	if oc.EnableDamping {
		oc.Target = oc.Target.Add(oc.panOffset.Mul(oc.DampingFactor))
	} else {
		oc.Target = oc.Target.Add(oc.panOffset)
	}

	sinPhi := math32.Sin(phi)
	offset = mgl32.Vec3{
		radius * sinPhi * math32.Sin(theta),
		radius * math32.Cos(phi),
		radius * sinPhi * math32.Cos(theta),
	}

	prev := cam.Position
	cam.Position = oc.Target.Add(offset)
	cam.LookAt(oc.Target)

	if oc.EnableDamping {
		oc.deltaTheta *= 1 - oc.DampingFactor
		oc.deltaPhi *= 1 - oc.DampingFactor
		oc.panOffset = oc.panOffset.Mul(1 - oc.DampingFactor)
	} else {
		oc.deltaTheta = 0
		oc.deltaPhi = 0
		oc.panOffset = mgl32.Vec3{}
	}
	oc.scale = 1

	return prev.Sub(cam.Position).Len() > 1e-6
}

// PointerDown starts a rotate gesture (primary) or a pan gesture (secondary).
func (oc *OrbitControls) PointerDown(x, y float32, secondary bool) {
	if secondary {
		if !oc.EnablePan {
			return
		}
		oc.panning = true
	} else {
		if !oc.EnableRotate {
			return
		}
		oc.dragging = true
	}
	oc.lastX, oc.lastY = x, y
}

func (oc *OrbitControls) PointerMove(x, y float32) {
	if !oc.Dragging() {
		return
	}
	dx, dy := x-oc.lastX, y-oc.lastY
	oc.lastX, oc.lastY = x, y

	h := oc.ViewportHeight
	if h <= 0 {
		h = 1
	}
	if oc.dragging {
		oc.rotateLeft(2 * math32.Pi * dx / h * oc.RotateSpeed)
		oc.rotateUp(2 * math32.Pi * dy / h * oc.RotateSpeed)
		return
	}
	oc.pan(dx, dy, h)
}

func (oc *OrbitControls) PointerUp() {
	oc.dragging = false
	oc.panning = false
}

// Scroll dollies toward the target for positive dy.
func (oc *OrbitControls) Scroll(dy float32) {
	if !oc.EnableZoom || dy == 0 {
		return
	}
	zoomScale := math32.Pow(0.95, oc.ZoomSpeed)
	if dy > 0 {
		oc.scale *= zoomScale
	} else {
		oc.scale /= zoomScale
	}
}

func (oc *OrbitControls) pan(dx, dy, h float32) {
	offset := oc.Camera.Position.Sub(oc.Target)
	dist := offset.Len() * math32.Tan(mgl32.DegToRad(oc.Camera.FOV)/2)

	forward := offset.Normalize()
	right := oc.Camera.Up.Cross(forward).Normalize()
	up := forward.Cross(right)

	moveX := right.Mul(-2 * dx * dist / h * oc.PanSpeed)
	moveY := up.Mul(2 * dy * dist / h * oc.PanSpeed)
	oc.panOffset = oc.panOffset.Add(moveX).Add(moveY)
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
