package main

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

const (
	minSpeed = 0.125
	maxSpeed = 16
)

// game drives one Render per tick and shows the buffer
type game struct {
	rt     *renderer.Raytracer
	time   float64
	speed  float64
	paused bool
	dirty  bool // time changed since the last render
}

func newGame(rt *renderer.Raytracer, speed float64) *game {
	return &game{rt: rt, speed: max(minSpeed, min(maxSpeed, speed)), dirty: true}
}

func (g *game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.time = 0
		g.dirty = true
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		g.speed = min(maxSpeed, g.speed*2)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		g.speed = max(minSpeed, g.speed/2)
	}

	if g.paused {
		if ebiten.IsKeyPressed(ebiten.KeyRight) {
			g.time += dt * g.speed
			g.dirty = true
		}
		if ebiten.IsKeyPressed(ebiten.KeyLeft) {
			g.time -= dt * g.speed
			g.dirty = true
		}
	} else {
		g.time += dt * g.speed
		g.dirty = true
	}

	if !g.dirty {
		return nil
	}
	g.dirty = false
	return g.rt.RenderContext(context.Background(), g.time)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.WritePixels(g.rt.Buffer().Pix)

	stats := g.rt.Stats()
	status := fmt.Sprintf("t=%.2f x%g  %.1fms  %.0f FPS", g.time, g.speed,
		float64(stats.Elapsed.Microseconds())/1000, ebiten.ActualFPS())
	if g.paused {
		status += "  [paused]"
	}
	ebitenutil.DebugPrint(screen, status)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.rt.Size()
}
