package export

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Scale resizes img by factor. Downscaling uses Catmull-Rom for a smooth
// preview; upscaling uses nearest-neighbor so individual pixels stay crisp.
func Scale(img image.Image, factor float64) (*image.RGBA, error) {
	if !(factor > 0) {
		return nil, fmt.Errorf("scale factor must be positive, got %v", factor)
	}

	src := img.Bounds()
	width := max(1, int(float64(src.Dx())*factor))
	height := max(1, int(float64(src.Dy())*factor))
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	var scaler xdraw.Scaler = xdraw.CatmullRom
	if factor > 1 {
		scaler = xdraw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Bounds(), img, src, xdraw.Src, nil)
	return dst, nil
}
