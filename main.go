package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/df07/go-sphere-raytracer/pkg/export"
	"github.com/df07/go-sphere-raytracer/pkg/loaders"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// config holds the parsed command line
type config struct {
	sceneName string
	width     int
	height    int
	time      float64
	duration  float64
	fps       int
	scale     float64
	caption   bool
	workers   int
	out       string
	logLevel  string
}

func main() {
	cfg := config{}
	flag.StringVar(&cfg.sceneName, "scene", "default", "Built-in scene name or path to a .json scene file")
	flag.IntVar(&cfg.width, "width", renderer.DefaultWidth, "Image width in pixels")
	flag.IntVar(&cfg.height, "height", renderer.DefaultHeight, "Image height in pixels")
	flag.Float64Var(&cfg.time, "time", 0, "Time parameter for a still frame, or the start time of an animation")
	flag.Float64Var(&cfg.duration, "duration", 0, "Animation length in seconds (0 renders a single PNG)")
	flag.IntVar(&cfg.fps, "fps", 10, "Animation frames per second")
	flag.Float64Var(&cfg.scale, "scale", 1, "Scale factor applied to the output image")
	flag.BoolVar(&cfg.caption, "caption", false, "Stamp the time value onto each frame")
	flag.IntVar(&cfg.workers, "workers", 0, "Render goroutines (0 = CPU count)")
	flag.StringVar(&cfg.out, "out", "", "Output file (default output/<scene>/render_<timestamp>.png|.gif)")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		printHelp(os.Stdout)
		return
	}

	logger, err := newLogger(os.Stderr, cfg.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.Error("render failed", "err", err)
		os.Exit(1)
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Sphere Raytracer")
	fmt.Fprintln(w, "Usage: raytracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scene.ListScenes() {
		fmt.Fprintf(w, "  %-8s - %s\n", info.ID, info.Description)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "With -duration > 0 an animated GIF is written instead of a PNG.")
}

// newLogger builds a text logger at the named level
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// createScene resolves a built-in scene name or loads a JSON scene file
func createScene(sceneName string) (*scene.Scene, error) {
	if strings.HasSuffix(sceneName, ".json") {
		s, err := loaders.LoadScene(sceneName)
		if err != nil {
			return nil, err
		}
		if s.Name == "" {
			s.Name = strings.TrimSuffix(filepath.Base(sceneName), ".json")
		}
		return s, nil
	}
	return scene.ByName(sceneName)
}

// outputPath returns the explicit output path or a timestamped default
func outputPath(out, sceneName, ext string, now time.Time) string {
	if out != "" {
		return out
	}
	if sceneName == "" {
		sceneName = "scene"
	}
	filename := fmt.Sprintf("render_%s.%s", now.Format("20060102_150405"), ext)
	return filepath.Join("output", sceneName, filename)
}

// Flag limits. Scale bounds are the same as the web server's.
const (
	maxSize     = 8192
	maxFPS      = 60
	maxFrames   = 3600
	minScale    = 0.1
	maxScale    = 4.0
	maxDuration = 600.0
)

// validate checks flag values before any allocation happens
func (cfg config) validate() error {
	if cfg.width < 1 || cfg.width > maxSize || cfg.height < 1 || cfg.height > maxSize {
		return fmt.Errorf("size must be between 1x1 and %dx%d, got %dx%d", maxSize, maxSize, cfg.width, cfg.height)
	}
	if !(cfg.scale >= minScale && cfg.scale <= maxScale) {
		return fmt.Errorf("scale must be between %g and %g, got %v", minScale, maxScale, cfg.scale)
	}
	if w, h := float64(cfg.width)*cfg.scale, float64(cfg.height)*cfg.scale; w > maxSize || h > maxSize {
		return fmt.Errorf("scaled output %.0fx%.0f exceeds %dx%d", w, h, maxSize, maxSize)
	}
	if !(cfg.duration >= 0 && cfg.duration <= maxDuration) {
		return fmt.Errorf("duration must be between 0 and %g, got %v", maxDuration, cfg.duration)
	}
	if cfg.duration > 0 {
		if cfg.fps < 1 || cfg.fps > maxFPS {
			return fmt.Errorf("fps must be between 1 and %d for an animation, got %d", maxFPS, cfg.fps)
		}
		if frames := cfg.duration * float64(cfg.fps); frames > maxFrames {
			return fmt.Errorf("animation of %.0f frames exceeds %d", frames, maxFrames)
		}
	}
	return nil
}

func run(ctx context.Context, cfg config, logger *slog.Logger, stdout io.Writer) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	s, err := createScene(cfg.sceneName)
	if err != nil {
		return fmt.Errorf("failed to create scene: %w", err)
	}
	logger.Info("using scene", "name", s.Name, "spheres", s.Len())

	rt, err := renderer.NewRaytracer(s,
		renderer.WithSize(cfg.width, cfg.height),
		renderer.WithWorkers(cfg.workers),
		renderer.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	startTime := time.Now()

	if cfg.duration == 0 {
		filename := outputPath(cfg.out, s.Name, "png", startTime)
		if err := renderStill(ctx, rt, cfg, filename); err != nil {
			return err
		}
		stats := rt.Stats()
		p.Fprintf(stdout, "Rendered %d pixels (%d hit, %.1f%%) in %v\n",
			stats.TotalPixels, stats.HitPixels, stats.Coverage()*100, time.Since(startTime).Round(time.Millisecond))
		fmt.Fprintf(stdout, "Render saved as %s\n", filename)
		return nil
	}

	filename := outputPath(cfg.out, s.Name, "gif", startTime)
	frames, err := renderAnimation(ctx, rt, cfg, filename)
	if err != nil {
		return err
	}
	width, height := rt.Size()
	p.Fprintf(stdout, "Rendered %d frames of %d pixels in %v\n",
		frames, width*height, time.Since(startTime).Round(time.Millisecond))
	fmt.Fprintf(stdout, "Animation saved as %s\n", filename)
	return nil
}

func renderStill(ctx context.Context, rt *renderer.Raytracer, cfg config, filename string) error {
	if err := rt.RenderContext(ctx, cfg.time); err != nil {
		return err
	}

	img, err := finishFrame(rt.Buffer().Clone(), cfg, cfg.time)
	if err != nil {
		return err
	}
	return export.SavePNG(filename, img)
}

func renderAnimation(ctx context.Context, rt *renderer.Raytracer, cfg config, filename string) (int, error) {
	animConfig := renderer.NewAnimationConfig(cfg.time, cfg.duration, cfg.fps)
	anim := export.NewGIFAnimation(export.DelayForFPS(cfg.fps))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frameChan, errChan := rt.Animate(ctx, animConfig)
	for frame := range frameChan {
		img, err := finishFrame(frame.Image, cfg, frame.Time)
		if err != nil {
			return 0, err
		}
		anim.Add(img)
	}
	if err := <-errChan; err != nil {
		return 0, err
	}

	if err := anim.Save(filename); err != nil {
		return 0, err
	}
	return anim.Len(), nil
}

// finishFrame applies the optional scale and caption
func finishFrame(img *image.RGBA, cfg config, t float64) (*image.RGBA, error) {
	if cfg.scale != 1 {
		scaled, err := export.Scale(img, cfg.scale)
		if err != nil {
			return nil, err
		}
		img = scaled
	}
	if cfg.caption {
		export.Caption(img, export.TimeCaption(t))
	}
	return img, nil
}
