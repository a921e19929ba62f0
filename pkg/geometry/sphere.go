package geometry

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// Sphere represents a sphere shape with a flat base color
type Sphere struct {
	Center core.Vec3
	Radius float64
	Color  core.Vec3 // RGB, nominally in [0, 1]
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, color core.Vec3) Sphere {
	return Sphere{
		Center: center,
		Radius: radius,
		Color:  color,
	}
}

// Hit returns the distance along the ray to the near intersection with the
// sphere. Only the near root of the quadratic is considered, so a ray whose
// origin is inside the sphere reports no hit. Hits at t <= 0 are rejected.
func (s Sphere) Hit(ray core.Ray) (float64, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	b := 2.0 * oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, false
	}

	t := (-b - math.Sqrt(discriminant)) / (2.0 * a)
	if !(t > 0) {
		return 0, false
	}
	return t, true
}

// NormalAt returns the outward unit normal at a point on the sphere surface
func (s Sphere) NormalAt(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Normalize()
}
