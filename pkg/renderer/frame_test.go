package renderer

import (
	"image"
	"image/color"
	"testing"
)

func newTestFrame() Frame {
	// 2x2 frame: red, green / blue, white
	return Frame{
		Width:  2,
		Height: 2,
		Stride: 8,
		Pix: []uint8{
			255, 0, 0, 255, 0, 255, 0, 255,
			0, 0, 255, 255, 255, 255, 255, 255,
		},
	}
}

func TestFrame_At(t *testing.T) {
	frame := newTestFrame()

	tests := []struct {
		x, y     int
		expected color.RGBA
	}{
		{0, 0, color.RGBA{255, 0, 0, 255}},
		{1, 0, color.RGBA{0, 255, 0, 255}},
		{0, 1, color.RGBA{0, 0, 255, 255}},
		{1, 1, color.RGBA{255, 255, 255, 255}},
		{-1, 0, color.RGBA{}},
		{2, 0, color.RGBA{}},
		{0, 2, color.RGBA{}},
	}

	for _, tt := range tests {
		if got := frame.At(tt.x, tt.y); got != tt.expected {
			t.Errorf("At(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.expected)
		}
	}
}

func TestFrame_ImageSharesPixels(t *testing.T) {
	frame := newTestFrame()
	img := frame.Image()

	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("Expected 2x2 bounds, got %v", img.Bounds())
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Expected white at (1,1), got %v", got)
	}

	frame.Pix[0] = 7
	if img.Pix[0] != 7 {
		t.Error("Expected Image to alias the frame's pixels")
	}
}

func TestFrame_CloneIsIndependent(t *testing.T) {
	frame := newTestFrame()
	img := frame.Clone()

	frame.Pix[0] = 7
	if img.Pix[0] != 255 {
		t.Errorf("Expected clone to keep original value 255, got %d", img.Pix[0])
	}
	if got := img.RGBAAt(0, 1); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("Expected blue at (0,1), got %v", got)
	}
}
