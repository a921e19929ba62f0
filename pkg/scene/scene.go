package scene

import (
	"fmt"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// Scene is an ordered list of spheres. Order is the order in which the
// renderer tests them; ties on hit distance go to the earlier sphere.
type Scene struct {
	Name    string
	spheres []geometry.Sphere
}

// New creates a scene holding a copy of the given spheres
func New(name string, spheres ...geometry.Sphere) *Scene {
	s := &Scene{Name: name}
	s.spheres = append(s.spheres, spheres...)
	return s
}

// Spheres returns a copy of the spheres in iteration order
func (s *Scene) Spheres() []geometry.Sphere {
	out := make([]geometry.Sphere, len(s.spheres))
	copy(out, s.spheres)
	return out
}

// Len returns the number of spheres
func (s *Scene) Len() int {
	return len(s.spheres)
}

// At returns the sphere at index i. It panics if i is out of range.
func (s *Scene) At(i int) geometry.Sphere {
	return s.spheres[i]
}

// Add appends spheres to the end of the scene
func (s *Scene) Add(spheres ...geometry.Sphere) {
	s.spheres = append(s.spheres, spheres...)
}

// Replace swaps the sphere at index i
func (s *Scene) Replace(i int, sphere geometry.Sphere) error {
	if i < 0 || i >= len(s.spheres) {
		return fmt.Errorf("replace sphere %d: %w (scene has %d)", i, ErrIndexOutOfRange, len(s.spheres))
	}
	s.spheres[i] = sphere
	return nil
}

// Clear removes every sphere
func (s *Scene) Clear() {
	s.spheres = s.spheres[:0]
}

// Hit finds the nearest sphere along the ray, returning its index and the
// hit distance. Only hits strictly closer than tMax are considered.
func (s *Scene) Hit(ray core.Ray, tMax float64) (int, float64, bool) {
	closestIndex := -1
	closestSoFar := tMax

	for i, sphere := range s.spheres {
		if t, isHit := sphere.Hit(ray); isHit && t < closestSoFar {
			closestSoFar = t
			closestIndex = i
		}
	}

	return closestIndex, closestSoFar, closestIndex >= 0
}
