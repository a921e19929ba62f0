package renderer

import (
	"image"
	"image/color"
)

// BytesPerPixel is the number of channels stored per pixel (R, G, B, A)
const BytesPerPixel = 4

// Frame is a borrowed view of a raytracer's pixel buffer. Pix holds
// Height rows of Stride bytes, row-major from the top-left pixel, each
// pixel stored as R, G, B, A. The view aliases the raytracer's memory:
// it must be treated as read-only and is overwritten by the next render.
type Frame struct {
	Width  int
	Height int
	Stride int
	Pix    []uint8
}

// Bounds returns the pixel rectangle covered by the frame
func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// PixOffset returns the index of the first byte of pixel (x, y)
func (f Frame) PixOffset(x, y int) int {
	return y*f.Stride + x*BytesPerPixel
}

// At returns the color of pixel (x, y). Out-of-range coordinates return
// the zero color.
func (f Frame) At(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(f.Bounds())) {
		return color.RGBA{}
	}
	i := f.PixOffset(x, y)
	p := f.Pix[i : i+BytesPerPixel : i+BytesPerPixel]
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Image wraps the frame as an *image.RGBA sharing the same bytes
func (f Frame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: f.Stride,
		Rect:   f.Bounds(),
	}
}

// Clone returns an independent copy of the frame's pixels as an image
func (f Frame) Clone() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	copy(img.Pix, f.Pix)
	return img
}
