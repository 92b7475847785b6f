package viewer

import (
	"fmt"
	"math"

	"piggy-viewer/internal/config"
	"piggy-viewer/internal/params"
)

// binding ties one parameter to the object that owns its value.
// get reads the owner at bind time; set writes the owner on every change.
type binding struct {
	name, label, group string
	kind               params.Kind
	min, max           float64

	get func() any
	set func(any)
}

func number(name, label, group string, min, max float64, get func() float32, set func(float32)) binding {
	return binding{
		name: name, label: label, group: group,
		kind: params.Number, min: min, max: max,
		get: func() any { return float64(get()) },
		set: func(v any) { set(float32(v.(float64))) },
	}
}

func toggle(name, label, group string, get func() bool, set func(bool)) binding {
	return binding{
		name: name, label: label, group: group,
		kind: params.Bool,
		get:  func() any { return get() },
		set:  func(v any) { set(v.(bool)) },
	}
}

// bindings lists every parameter of the session's variant in panel order.
func (s *Session) bindings() []binding {
	const twoPi = 2 * math.Pi
	axes := [3]string{"x", "y", "z"}
	upper := [3]string{"X", "Y", "Z"}

	var b []binding
	if s.Variant == config.VariantClassic {
		b = append(b,
			toggle("autoRotate", "Auto Rotate", "Camera",
				func() bool { return s.Options.AutoRotate },
				func(v bool) { s.Options.AutoRotate = v }),
		)
	} else {
		b = append(b,
			toggle("autoRotate", "Auto Rotate", "Scene",
				func() bool { return s.Options.AutoRotate },
				func(v bool) { s.Options.AutoRotate = v }),
			toggle("pixelShader", "Pixel Shader", "Scene",
				func() bool { return s.Options.PixelShader },
				func(v bool) { s.Options.PixelShader = v }),
			number("pixelSize", "Pixel Size", "Scene", 2, 16,
				func() float32 { return s.Options.PixelSize },
				func(v float32) { s.Options.PixelSize = v }),
		)
	}

	model := s.Model
	for i := range axes {
		axis := i
		b = append(b, number("piggy.position."+axes[i], "Position "+upper[i], "Piggy", -20, 20,
			func() float32 { return model.Transform.Position[axis] },
			func(v float32) { model.SetPositionAxis(axis, v) }))
	}
	for i := range axes {
		axis := i
		b = append(b, number("piggy.rotation."+axes[i], "Rotation "+upper[i], "Piggy", 0, twoPi,
			func() float32 { return model.Transform.Rotation[axis] },
			func(v float32) { model.SetRotationAxis(axis, v) }))
	}

	plane := s.Plane
	for i := range axes {
		axis := i
		b = append(b, number("plane.rotation."+axes[i], "Rotation "+upper[i], "Plane", 0, twoPi,
			func() float32 { return plane.Transform.Rotation[axis] },
			func(v float32) { plane.SetRotationAxis(axis, v) }))
	}
	ground := s.Ground
	for i := range axes[:2] {
		axis := i
		b = append(b, number("plane.texture.repeat."+axes[i], "Texture Repeat "+upper[i], "Plane", 1, 10,
			func() float32 { return ground.Repeat[axis] },
			func(v float32) { ground.SetRepeatAxis(axis, v) }))
	}

	spot := s.Spot
	lightMax := [3]float64{30, 100, 50}
	for i := range axes {
		axis := i
		b = append(b, number("light.position."+axes[i], "Position "+upper[i], "Lighting", 0, lightMax[i],
			func() float32 { return spot.Position[axis] },
			func(v float32) { spot.SetPositionAxis(axis, v) }))
	}
	return b
}

// bindParams declares every binding on a new store, seeded from the current
// owner values, and subscribes the owners to later changes.
func (s *Session) bindParams() (*params.Store, error) {
	store := params.NewStore()
	for _, b := range s.bindings() {
		var err error
		switch b.kind {
		case params.Bool:
			err = store.AddBool(b.name, b.label, b.group, b.get().(bool))
		default:
			err = store.AddNumber(b.name, b.label, b.group, b.min, b.max, b.get().(float64))
		}
		if err != nil {
			return nil, fmt.Errorf("bind %q: %w", b.name, err)
		}
		set := b.set
		if err := store.Subscribe(b.name, func(_ string, v any) { set(v) }); err != nil {
			return nil, fmt.Errorf("bind %q: %w", b.name, err)
		}
		// an owner value outside the range was clamped by the store
		if v, _ := store.Get(b.name); v != b.get() {
			b.set(v)
		}
	}
	return store, nil
}
