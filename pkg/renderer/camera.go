package renderer

import (
	"github.com/df07/go-sphere-raytracer/pkg/core"
)

// Camera is a fixed pinhole camera at the origin looking down -Z.
// The image plane sits at z = -1 and spans [-aspect, aspect] horizontally
// and [-1, 1] vertically.
type Camera struct {
	width, height int
	aspectRatio   float64
	origin        core.Vec3
}

// NewCamera creates a camera for an image of the given pixel size
func NewCamera(width, height int) *Camera {
	return &Camera{
		width:       width,
		height:      height,
		aspectRatio: float64(width) / float64(height),
		origin:      core.NewVec3(0, 0, 0),
	}
}

// GetRay returns the normalized primary ray through pixel (x, y), where
// (0, 0) is the top-left pixel.
func (c *Camera) GetRay(x, y int) core.Ray {
	u := float64(x)/float64(c.width)*2.0 - 1.0
	v := float64(y)/float64(c.height)*2.0 - 1.0
	u *= c.aspectRatio
	v = -v // image rows grow downward, camera up is +Y

	direction := core.NewVec3(u, v, -1).Normalize()
	return core.NewRay(c.origin, direction)
}
