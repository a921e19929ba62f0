package renderer

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// LightDirection returns the unit direction of the directional light at the
// given time. The light sweeps side to side along X as time advances.
func LightDirection(time float64) core.Vec3 {
	return core.NewVec3(math.Sin(time), 1, -1).Normalize()
}

// Lambert returns the diffuse intensity for a surface normal, clamped below
// at zero so surfaces facing away from the light receive none.
func Lambert(normal, lightDir core.Vec3) float64 {
	return max(0, normal.Dot(lightDir))
}
