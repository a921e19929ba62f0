package scene

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// NewDefaultScene creates the reference scene: a red sphere straight ahead,
// a large green sphere up and to the left, and a small blue sphere down and
// to the right, nearer to the camera.
func NewDefaultScene() *Scene {
	return New("default",
		geometry.NewSphere(core.NewVec3(0, 0, -5), 1.0, core.NewVec3(1.0, 0.2, 0.2)),
		geometry.NewSphere(core.NewVec3(-2, 1, -6), 1.5, core.NewVec3(0.2, 1.0, 0.2)),
		geometry.NewSphere(core.NewVec3(2, -0.5, -4), 0.8, core.NewVec3(0.2, 0.2, 1.0)),
	)
}

// NewStackedScene places a small yellow sphere directly in front of a large
// purple one on the camera axis, so the center of the frame shows occlusion.
func NewStackedScene() *Scene {
	return New("stacked",
		geometry.NewSphere(core.NewVec3(0, 0, -8), 2.5, core.NewVec3(0.6, 0.2, 0.8)),
		geometry.NewSphere(core.NewVec3(0, 0, -4), 0.7, core.NewVec3(0.9, 0.9, 0.1)),
	)
}

// NewEmptyScene creates a scene with no spheres; every pixel is background.
func NewEmptyScene() *Scene {
	return New("empty")
}
