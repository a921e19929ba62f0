package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const captionMargin = 4

var (
	captionColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	captionShadow = color.RGBA{A: 255}
)

// Caption draws text in the bottom-left corner of img with a one-pixel
// drop shadow, modifying img in place. Images too small to hold the text
// and its margins are left untouched.
func Caption(img draw.Image, text string) {
	face := basicfont.Face7x13
	bounds := img.Bounds()
	if CaptionWidth(text)+2*captionMargin+1 > bounds.Dx() || face.Height+2*captionMargin > bounds.Dy() {
		return
	}
	x := bounds.Min.X + captionMargin
	y := bounds.Max.Y - captionMargin - face.Descent

	drawString(img, face, captionShadow, x+1, y+1, text)
	drawString(img, face, captionColor, x, y, text)
}

// TimeCaption formats the time parameter for a frame caption
func TimeCaption(t float64) string {
	return fmt.Sprintf("t=%.2f", t)
}

// CaptionWidth returns the width in pixels text occupies when captioned
func CaptionWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}

func drawString(dst draw.Image, face font.Face, c color.Color, x, y int, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
