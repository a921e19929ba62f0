// Command viewer opens a window that re-renders the scene every tick while
// the light orbits with wall-clock time.
//
// Controls: space pauses, left/right arrows step time while paused,
// up/down change the playback speed, R resets time to zero.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/df07/go-sphere-raytracer/pkg/loaders"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

func main() {
	sceneName := flag.String("scene", "default", "Built-in scene name or path to a .json scene file")
	width := flag.Int("width", renderer.DefaultWidth, "Render width in pixels")
	height := flag.Int("height", renderer.DefaultHeight, "Render height in pixels")
	windowScale := flag.Float64("window-scale", 1, "Window size relative to the render size")
	speed := flag.Float64("speed", 1, "Time units per second")
	workers := flag.Int("workers", 0, "Render goroutines (0 = CPU count)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := loadScene(*sceneName)
	if err != nil {
		logger.Error("failed to create scene", "err", err)
		os.Exit(2)
	}

	rt, err := renderer.NewRaytracer(s,
		renderer.WithSize(*width, *height),
		renderer.WithWorkers(*workers),
		renderer.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create raytracer", "err", err)
		os.Exit(2)
	}

	game := newGame(rt, *speed)

	ebiten.SetWindowSize(int(float64(*width)**windowScale), int(float64(*height)**windowScale))
	ebiten.SetWindowTitle(fmt.Sprintf("Sphere Raytracer - %s", s.Name))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("viewer stopped", "err", err)
		os.Exit(1)
	}
}

func loadScene(name string) (*scene.Scene, error) {
	if s, err := scene.ByName(name); err == nil {
		return s, nil
	}
	return loaders.LoadScene(name)
}
