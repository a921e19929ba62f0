package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600

	// maxDistance is larger than any plausible scene extent and acts as
	// "no hit yet" for nearest-hit resolution.
	maxDistance = 10000.0
)

// Ambient is the background color and the minimum brightness added to every
// lit surface.
var Ambient = core.NewVec3(0.1, 0.1, 0.1)

// ErrInvalidSize is returned when the requested image size is not positive
var ErrInvalidSize = errors.New("image size must be positive")

// Options configures a Raytracer
type Options struct {
	Width   int
	Height  int
	Workers int // Goroutines used by RenderContext (0 = use CPU count)
	Logger  *slog.Logger
}

// Option mutates Options
type Option func(*Options)

// WithSize sets the image size in pixels
func WithSize(width, height int) Option {
	return func(o *Options) {
		o.Width = width
		o.Height = height
	}
}

// WithWorkers sets the number of goroutines RenderContext uses
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// DefaultOptions returns the 800x600 configuration with logging disabled
func DefaultOptions() Options {
	return Options{
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		Workers: 0,
	}
}

// Raytracer owns a scene and the pixel buffer it renders into.
// It is not safe for concurrent use; callers serialize Render calls.
type Raytracer struct {
	scene   *scene.Scene
	camera  *Camera
	width   int
	height  int
	workers int
	buffer  []uint8
	stats   RenderStats
	logger  *slog.Logger
}

// NewRaytracer creates a raytracer for the scene and allocates its buffer
func NewRaytracer(s *scene.Scene, opts ...Option) (*Raytracer, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.Width <= 0 || options.Height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidSize, options.Width, options.Height)
	}
	if options.Workers <= 0 {
		options.Workers = runtime.NumCPU()
	}
	if options.Logger == nil {
		options.Logger = newNopLogger()
	}
	if s == nil {
		s = scene.NewEmptyScene()
	}

	return &Raytracer{
		scene:   s,
		camera:  NewCamera(options.Width, options.Height),
		width:   options.Width,
		height:  options.Height,
		workers: options.Workers,
		buffer:  make([]uint8, options.Width*options.Height*BytesPerPixel),
		logger:  options.Logger,
	}, nil
}

// Scene returns the scene being rendered. Mutating it between renders is
// allowed; mutating it during RenderContext is not.
func (rt *Raytracer) Scene() *scene.Scene {
	return rt.scene
}

// Size returns the image dimensions in pixels
func (rt *Raytracer) Size() (width, height int) {
	return rt.width, rt.height
}

// Stats returns statistics for the most recent completed render
func (rt *Raytracer) Stats() RenderStats {
	return rt.stats
}

// Buffer returns a view of the most recently rendered frame
func (rt *Raytracer) Buffer() Frame {
	n := len(rt.buffer)
	return Frame{
		Width:  rt.width,
		Height: rt.height,
		Stride: rt.width * BytesPerPixel,
		Pix:    rt.buffer[:n:n],
	}
}

// Render recomputes every pixel for the given time on the calling goroutine
func (rt *Raytracer) Render(t float64) {
	start := time.Now()
	lightDir := LightDirection(t)

	hits := rt.renderRows(0, rt.height, lightDir)

	rt.finishFrame(t, hits, 1, start)
}

// RenderContext renders the frame in row bands across the configured number
// of goroutines. Every band writes a disjoint region of the buffer, so the
// result is identical to Render. If ctx is cancelled the render stops
// between rows, the error is returned and the buffer is left partially
// updated.
func (rt *Raytracer) RenderContext(ctx context.Context, t float64) error {
	start := time.Now()
	lightDir := LightDirection(t)

	workers := min(rt.workers, rt.height)
	bandHeight := (rt.height + workers - 1) / workers

	var hits atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for y0 := 0; y0 < rt.height; y0 += bandHeight {
		y1 := min(y0+bandHeight, rt.height)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				hits.Add(int64(rt.renderRows(y, y+1, lightDir)))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		rt.logger.Debug("render cancelled", "time", t, "err", err)
		return fmt.Errorf("render at t=%g: %w", t, err)
	}

	rt.finishFrame(t, int(hits.Load()), workers, start)
	return nil
}

// renderRows renders rows [y0, y1) and returns how many pixels hit a sphere
func (rt *Raytracer) renderRows(y0, y1 int, lightDir core.Vec3) int {
	hits := 0
	for y := y0; y < y1; y++ {
		for x := 0; x < rt.width; x++ {
			color, hit := rt.shadePixel(x, y, lightDir)
			if hit {
				hits++
			}
			rt.writePixel(x, y, color)
		}
	}
	return hits
}

// shadePixel computes the color seen through pixel (x, y)
func (rt *Raytracer) shadePixel(x, y int, lightDir core.Vec3) (core.Vec3, bool) {
	ray := rt.camera.GetRay(x, y)

	idx, t, isHit := rt.scene.Hit(ray, maxDistance)
	if !isHit {
		return Ambient, false
	}

	sphere := rt.scene.At(idx)
	hitPoint := ray.At(t)
	normal := sphere.NormalAt(hitPoint)
	intensity := Lambert(normal, lightDir)

	return sphere.Color.Multiply(intensity).Add(Ambient), true
}

// writePixel stores a linear color as opaque 8-bit RGBA
func (rt *Raytracer) writePixel(x, y int, color core.Vec3) {
	i := (y*rt.width + x) * BytesPerPixel
	p := rt.buffer[i : i+BytesPerPixel : i+BytesPerPixel]
	p[0] = toByte(color.X)
	p[1] = toByte(color.Y)
	p[2] = toByte(color.Z)
	p[3] = 255
}

// toByte scales a channel by 255, clamps to [0, 255] and truncates
func toByte(c float64) uint8 {
	v := c * 255
	if !(v > 0) { // also catches NaN
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func (rt *Raytracer) finishFrame(t float64, hits, workers int, start time.Time) {
	rt.stats = RenderStats{
		Time:        t,
		TotalPixels: rt.width * rt.height,
		HitPixels:   hits,
		Workers:     workers,
		Elapsed:     time.Since(start),
	}
	rt.logger.Debug("frame rendered",
		"time", t,
		"width", rt.width,
		"height", rt.height,
		"hitPixels", hits,
		"workers", workers,
		"elapsed", rt.stats.Elapsed)
}
