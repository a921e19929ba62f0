package export

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
)

// ErrNoFrames is returned when encoding an animation without frames
var ErrNoFrames = errors.New("animation has no frames")

// GIFAnimation accumulates frames for an animated GIF.
// Delay is in 100ths of a second (e.g. 5 => 20 fps).
type GIFAnimation struct {
	Delay int
	out   gif.GIF
}

// NewGIFAnimation creates an empty looping animation
func NewGIFAnimation(delay int) *GIFAnimation {
	return &GIFAnimation{
		Delay: delay,
		out:   gif.GIF{LoopCount: 0},
	}
}

// DelayForFPS converts frames per second to a GIF frame delay
func DelayForFPS(fps int) int {
	if fps <= 0 {
		return 100
	}
	return max(1, 100/fps)
}

// Add quantizes img to the Plan 9 palette with Floyd-Steinberg dithering
// and appends it
func (a *GIFAnimation) Add(img image.Image) {
	paletted := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(paletted, paletted.Bounds(), img, img.Bounds().Min)

	a.out.Image = append(a.out.Image, paletted)
	a.out.Delay = append(a.out.Delay, a.Delay)
}

// Len returns the number of frames added so far
func (a *GIFAnimation) Len() int {
	return len(a.out.Image)
}

// Encode writes the animation as a GIF
func (a *GIFAnimation) Encode(w io.Writer) error {
	if len(a.out.Image) == 0 {
		return ErrNoFrames
	}
	if err := gif.EncodeAll(w, &a.out); err != nil {
		return fmt.Errorf("failed to encode GIF: %w", err)
	}
	return nil
}

// Save writes the animation to filename
func (a *GIFAnimation) Save(filename string) error {
	return saveFile(filename, a.Encode)
}
