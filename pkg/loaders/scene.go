package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// ErrInvalidSphere is returned when a sphere entry fails validation
var ErrInvalidSphere = errors.New("invalid sphere")

// SceneFile is the JSON representation of a scene
type SceneFile struct {
	Name    string       `json:"name,omitempty"`
	Spheres []SphereFile `json:"spheres"`
}

// SphereFile is the JSON representation of one sphere.
// Vectors are written as [x, y, z] arrays.
type SphereFile struct {
	Center [3]float64 `json:"center"`
	Radius float64    `json:"radius"`
	Color  [3]float64 `json:"color"`
}

// LoadScene reads a scene from a JSON file
func LoadScene(filename string) (*scene.Scene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	s, err := ParseScene(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// ParseScene decodes and validates a JSON scene
func ParseScene(r io.Reader) (*scene.Scene, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var sf SceneFile
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("failed to decode scene: %w", err)
	}

	s := scene.New(sf.Name)
	for i, entry := range sf.Spheres {
		sphere, err := entry.Build()
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		s.Add(sphere)
	}
	return s, nil
}

// Build validates the entry and converts it to a geometry.Sphere
func (sf SphereFile) Build() (geometry.Sphere, error) {
	center := vecFromArray(sf.Center)
	color := vecFromArray(sf.Color)

	if !center.IsFinite() {
		return geometry.Sphere{}, fmt.Errorf("%w: center %v is not finite", ErrInvalidSphere, sf.Center)
	}
	if !color.IsFinite() {
		return geometry.Sphere{}, fmt.Errorf("%w: color %v is not finite", ErrInvalidSphere, sf.Color)
	}
	if !(sf.Radius > 0) || math.IsInf(sf.Radius, 0) {
		return geometry.Sphere{}, fmt.Errorf("%w: radius must be positive and finite, got %v", ErrInvalidSphere, sf.Radius)
	}

	return geometry.NewSphere(center, sf.Radius, color), nil
}

// EncodeScene writes the scene as indented JSON
func EncodeScene(w io.Writer, s *scene.Scene) error {
	sf := SceneFile{
		Name:    s.Name,
		Spheres: make([]SphereFile, 0, s.Len()),
	}
	for _, sphere := range s.Spheres() {
		sf.Spheres = append(sf.Spheres, SphereFile{
			Center: arrayFromVec(sphere.Center),
			Radius: sphere.Radius,
			Color:  arrayFromVec(sphere.Color),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(sf); err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	return nil
}

func vecFromArray(a [3]float64) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}

func arrayFromVec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
