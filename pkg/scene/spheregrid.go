package scene

import (
	"math"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
)

// Sphere grid layout. The grid sits in a plane facing the camera, far
// enough back that every sphere is inside a 4:3 frame.
const (
	gridColumns = 9
	gridRows    = 7
	gridSpacing = 2.2
	gridDepth   = -12.0
	gridRadius  = 0.8
)

// oklchToRGB converts OKLCH color values to linear RGB clamped to [0, 1].
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
//
// The two matrices are the standard OKLab ones (Björn Ottosson, 2020):
// OKLab to non-linear LMS, then cubed LMS to linear sRGB.
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// NewSphereGridScene creates a grid of spheres facing the camera. Hue varies
// across columns and chroma across rows, so the orbiting light sweeps over a
// full color wheel.
func NewSphereGridScene() *Scene {
	s := New("grid")

	minChroma := 0.05
	maxChroma := 0.25
	originX := -float64(gridColumns-1) * gridSpacing / 2
	originY := -float64(gridRows-1) * gridSpacing / 2

	for i := 0; i < gridColumns; i++ {
		for j := 0; j < gridRows; j++ {
			center := core.NewVec3(
				originX+float64(i)*gridSpacing,
				originY+float64(j)*gridSpacing,
				gridDepth,
			)

			hue := float64(i) / float64(gridColumns) * 360.0
			chroma := minChroma + float64(j)/float64(gridRows-1)*(maxChroma-minChroma)
			lightness := 0.65 + 0.1*math.Sin(float64(i+j)*0.5)

			s.Add(geometry.NewSphere(center, gridRadius, oklchToRGB(lightness, chroma, hue)))
		}
	}

	return s
}
