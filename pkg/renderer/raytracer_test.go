package renderer

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/geometry"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

var ambientRGBA = color.RGBA{R: 25, G: 25, B: 25, A: 255}

func newTestRaytracer(t *testing.T, s *scene.Scene, opts ...Option) *Raytracer {
	t.Helper()
	rt, err := NewRaytracer(s, opts...)
	if err != nil {
		t.Fatalf("Failed to create raytracer: %v", err)
	}
	return rt
}

// expectedPixel shades a pixel without going through the raytracer, testing
// every sphere and keeping the nearest strictly-closer hit.
func expectedPixel(s *scene.Scene, width, height, x, y int, time float64) color.RGBA {
	camera := NewCamera(width, height)
	ray := camera.GetRay(x, y)
	light := LightDirection(time)

	pixel := Ambient
	closest := 10000.0
	for _, sphere := range s.Spheres() {
		if t, ok := sphere.Hit(ray); ok && t < closest {
			closest = t
			normal := ray.At(t).Subtract(sphere.Center).Normalize()
			intensity := math.Max(0, normal.Dot(light))
			pixel = sphere.Color.Multiply(intensity).Add(Ambient)
		}
	}

	channel := func(c float64) uint8 {
		return uint8(math.Max(0, math.Min(255, c*255)))
	}
	return color.RGBA{R: channel(pixel.X), G: channel(pixel.Y), B: channel(pixel.Z), A: 255}
}

func TestNewRaytracer_Defaults(t *testing.T) {
	rt := newTestRaytracer(t, scene.NewDefaultScene())

	width, height := rt.Size()
	if width != 800 || height != 600 {
		t.Errorf("Expected 800x600, got %dx%d", width, height)
	}

	frame := rt.Buffer()
	if len(frame.Pix) != 800*600*4 {
		t.Errorf("Expected buffer of %d bytes, got %d", 800*600*4, len(frame.Pix))
	}
	if frame.Stride != 800*4 {
		t.Errorf("Expected stride %d, got %d", 800*4, frame.Stride)
	}
	if cap(frame.Pix) != len(frame.Pix) {
		t.Errorf("Expected view capacity to equal its length, got cap %d len %d", cap(frame.Pix), len(frame.Pix))
	}
}

func TestNewRaytracer_InvalidSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 600},
		{"zero height", 800, 0},
		{"negative", -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRaytracer(scene.NewDefaultScene(), WithSize(tt.width, tt.height))
			if !errors.Is(err, ErrInvalidSize) {
				t.Errorf("Expected ErrInvalidSize, got %v", err)
			}
		})
	}
}

func TestRaytracer_CenterPixelHitsRedSphere(t *testing.T) {
	s := scene.NewDefaultScene()
	rt := newTestRaytracer(t, s)

	ray := rt.camera.GetRay(400, 300)
	idx, dist, isHit := s.Hit(ray, maxDistance)
	if !isHit || idx != 0 {
		t.Fatalf("Expected central ray to hit sphere 0, got index %d hit %t", idx, isHit)
	}
	if math.Abs(dist-4) > 1e-9 {
		t.Errorf("Expected hit distance 4, got %f", dist)
	}

	// The visible face points at the camera (+Z) while the light always has a
	// negative Z component, so the nearest surface is unlit and shows ambient.
	rt.Render(0)
	if got := rt.Buffer().At(400, 300); got != ambientRGBA {
		t.Errorf("Expected unlit center pixel %v, got %v", ambientRGBA, got)
	}
}

func TestRaytracer_CornersAreBackground(t *testing.T) {
	rt := newTestRaytracer(t, scene.NewDefaultScene())
	rt.Render(0)
	frame := rt.Buffer()

	corners := [][2]int{{0, 0}, {799, 0}, {0, 599}, {799, 599}}
	for _, c := range corners {
		if got := frame.At(c[0], c[1]); got != ambientRGBA {
			t.Errorf("Corner (%d,%d): expected %v, got %v", c[0], c[1], ambientRGBA, got)
		}
	}
}

func TestRaytracer_LitRimTakesSphereColor(t *testing.T) {
	rt := newTestRaytracer(t, scene.NewDefaultScene())
	rt.Render(0)

	// Upper rim of the red sphere, where the normal tilts toward the light
	got := rt.Buffer().At(400, 245)
	if got.R <= ambientRGBA.R {
		t.Errorf("Expected lit red channel above ambient, got %v", got)
	}
	if got.R <= got.G || got.R <= got.B {
		t.Errorf("Expected red to dominate on the red sphere, got %v", got)
	}
	if got.G != got.B {
		t.Errorf("Expected equal green and blue for base color (1, 0.2, 0.2), got %v", got)
	}
}

func TestRaytracer_MatchesReferenceShading(t *testing.T) {
	const width, height = 200, 150
	s := scene.NewDefaultScene()
	rt := newTestRaytracer(t, s, WithSize(width, height))

	for _, time := range []float64{0, 0.7, math.Pi / 2, 4} {
		rt.Render(time)
		frame := rt.Buffer()

		for y := 0; y < height; y += 7 {
			for x := 0; x < width; x += 5 {
				want := expectedPixel(s, width, height, x, y, time)
				if got := frame.At(x, y); got != want {
					t.Fatalf("t=%g pixel (%d,%d): expected %v, got %v", time, x, y, want, got)
				}
			}
		}
	}
}

func TestRaytracer_NearestHitWins(t *testing.T) {
	red := core.NewVec3(1, 0, 0)
	green := core.NewVec3(0, 1, 0)
	// Both spheres sit slightly below the central ray so it grazes their
	// upper, lit faces.
	near := geometry.NewSphere(core.NewVec3(0, -0.9, -4), 1, red)
	far := geometry.NewSphere(core.NewVec3(0, -0.9, -8), 1, green)

	tests := []struct {
		name    string
		spheres []geometry.Sphere
	}{
		{"near listed first", []geometry.Sphere{near, far}},
		{"far listed first", []geometry.Sphere{far, near}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newTestRaytracer(t, scene.New(tt.name, tt.spheres...), WithSize(80, 60))
			rt.Render(0)

			got := rt.Buffer().At(40, 30)
			if got.R <= 100 {
				t.Errorf("Expected the near red sphere to be lit, got %v", got)
			}
			if got.G != 25 || got.B != 25 {
				t.Errorf("Expected no green from the occluded sphere, got %v", got)
			}
		})
	}
}

func TestRaytracer_Deterministic(t *testing.T) {
	rt := newTestRaytracer(t, scene.NewDefaultScene(), WithSize(160, 120))

	rt.Render(1.25)
	first := bytes.Clone(rt.Buffer().Pix)

	rt.Render(3)
	rt.Render(1.25)
	second := rt.Buffer().Pix

	if !bytes.Equal(first, second) {
		t.Error("Expected identical buffers for identical time values")
	}
}

func TestRaytracer_LightSweep(t *testing.T) {
	rt := newTestRaytracer(t, scene.NewDefaultScene())

	rt.Render(0)
	atZero := rt.Buffer().At(400, 245)
	frameAtZero := bytes.Clone(rt.Buffer().Pix)

	rt.Render(math.Pi / 2)
	atQuarter := rt.Buffer().At(400, 245)

	if atZero == atQuarter {
		t.Errorf("Expected lit pixel to change with time, both %v", atZero)
	}
	if atQuarter.R >= atZero.R {
		t.Errorf("Expected upper rim to dim as the light swings sideways: %v -> %v", atZero, atQuarter)
	}
	if bytes.Equal(frameAtZero, rt.Buffer().Pix) {
		t.Error("Expected frame to change between t=0 and t=π/2")
	}
}

func TestRaytracer_AlphaAlwaysOpaque(t *testing.T) {
	rt := newTestRaytracer(t, scene.NewDefaultScene(), WithSize(64, 48))
	rt.Render(2)

	pix := rt.Buffer().Pix
	for i := 3; i < len(pix); i += BytesPerPixel {
		if pix[i] != 255 {
			t.Fatalf("Expected alpha 255 at byte %d, got %d", i, pix[i])
		}
	}
}

func TestRaytracer_EmptySceneIsBackground(t *testing.T) {
	for _, s := range []*scene.Scene{scene.NewEmptyScene(), nil} {
		rt := newTestRaytracer(t, s, WithSize(32, 24))
		rt.Render(0)

		frame := rt.Buffer()
		for y := 0; y < frame.Height; y++ {
			for x := 0; x < frame.Width; x++ {
				if got := frame.At(x, y); got != ambientRGBA {
					t.Fatalf("Pixel (%d,%d): expected %v, got %v", x, y, ambientRGBA, got)
				}
			}
		}
		if rt.Stats().HitPixels != 0 {
			t.Errorf("Expected no hit pixels, got %d", rt.Stats().HitPixels)
		}
	}
}

func TestRaytracer_SceneChangesBetweenRenders(t *testing.T) {
	rt := newTestRaytracer(t, scene.NewDefaultScene(), WithSize(80, 60))
	rt.Render(0)
	if rt.Stats().HitPixels == 0 {
		t.Fatal("Expected the default scene to cover some pixels")
	}

	rt.Scene().Clear()
	rt.Render(0)
	if rt.Stats().HitPixels != 0 {
		t.Errorf("Expected no hits after clearing the scene, got %d", rt.Stats().HitPixels)
	}
}

func TestRaytracer_Stats(t *testing.T) {
	rt := newTestRaytracer(t, scene.NewDefaultScene(), WithSize(80, 60))
	rt.Render(0.5)

	stats := rt.Stats()
	if stats.TotalPixels != 80*60 {
		t.Errorf("Expected %d total pixels, got %d", 80*60, stats.TotalPixels)
	}
	if stats.Time != 0.5 {
		t.Errorf("Expected time 0.5, got %f", stats.Time)
	}
	if stats.Workers != 1 {
		t.Errorf("Expected serial render to report 1 worker, got %d", stats.Workers)
	}
	if c := stats.Coverage(); c <= 0 || c >= 1 {
		t.Errorf("Expected partial coverage, got %f", c)
	}
}

func TestRaytracer_RenderContextMatchesRender(t *testing.T) {
	tests := []struct {
		name    string
		workers int
	}{
		{"single worker", 1},
		{"uneven bands", 7},
		{"more workers than rows", 500},
	}

	serial := newTestRaytracer(t, scene.NewDefaultScene(), WithSize(160, 120))
	serial.Render(2.5)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parallel := newTestRaytracer(t, scene.NewDefaultScene(), WithSize(160, 120), WithWorkers(tt.workers))
			if err := parallel.RenderContext(context.Background(), 2.5); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if !bytes.Equal(serial.Buffer().Pix, parallel.Buffer().Pix) {
				t.Error("Expected parallel render to match serial render byte for byte")
			}
			if serial.Stats().HitPixels != parallel.Stats().HitPixels {
				t.Errorf("Expected %d hit pixels, got %d", serial.Stats().HitPixels, parallel.Stats().HitPixels)
			}
		})
	}
}

func TestRaytracer_RenderContextCancelled(t *testing.T) {
	rt := newTestRaytracer(t, scene.NewDefaultScene(), WithSize(160, 120), WithWorkers(4))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rt.RenderContext(ctx, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRaytracer_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rt := newTestRaytracer(t, scene.NewDefaultScene(), WithSize(16, 12), WithLogger(logger))
	rt.Render(0)

	if !strings.Contains(buf.String(), "frame rendered") {
		t.Errorf("Expected debug log of the frame, got: %s", buf.String())
	}
}

func TestToByte(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected uint8
	}{
		{"negative clamps to zero", -0.5, 0},
		{"zero", 0, 0},
		{"ambient truncates", 0.1, 25},
		{"half", 0.5, 127},
		{"one", 1, 255},
		{"overexposed clamps", 1.1, 255},
		{"NaN", math.NaN(), 0},
		{"positive infinity", math.Inf(1), 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toByte(tt.input); got != tt.expected {
				t.Errorf("toByte(%f) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}
