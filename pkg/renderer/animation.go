package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// ErrInvalidAnimation is returned for animation configs that render nothing
var ErrInvalidAnimation = errors.New("invalid animation config")

// AnimationConfig describes a sequence of frames at evenly spaced times
type AnimationConfig struct {
	Start  float64 // Time of the first frame
	Step   float64 // Time added between frames
	Frames int     // Number of frames to render
}

// NewAnimationConfig spreads frames over duration seconds at fps frames per
// second, starting at start.
func NewAnimationConfig(start, duration float64, fps int) AnimationConfig {
	frames := int(duration * float64(fps))
	if frames < 1 {
		frames = 1
	}
	step := 0.0
	if fps > 0 {
		step = 1.0 / float64(fps)
	}
	return AnimationConfig{Start: start, Step: step, Frames: frames}
}

// Validate checks that the config describes at least one frame
func (c AnimationConfig) Validate() error {
	if c.Frames <= 0 {
		return fmt.Errorf("%w: frames must be positive, got %d", ErrInvalidAnimation, c.Frames)
	}
	return nil
}

// TimeAt returns the time parameter of frame i
func (c AnimationConfig) TimeAt(i int) float64 {
	return c.Start + float64(i)*c.Step
}

// FrameResult is one rendered animation frame
type FrameResult struct {
	Index  int
	Time   float64
	Image  *image.RGBA // Independent copy, safe to keep after later frames
	Stats  RenderStats
	IsLast bool
}

// Animate renders the configured frames in order on a background goroutine.
// Frames are delivered on the first channel; at most one error (including
// context cancellation) is delivered on the second. Both channels are
// closed when rendering stops. The raytracer must not be used by anything
// else until the frame channel is closed.
func (rt *Raytracer) Animate(ctx context.Context, config AnimationConfig) (<-chan FrameResult, <-chan error) {
	frameChan := make(chan FrameResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(frameChan)
		defer close(errChan)

		if err := config.Validate(); err != nil {
			errChan <- err
			return
		}

		rt.logger.Info("starting animation", "frames", config.Frames, "start", config.Start, "step", config.Step)

		for i := 0; i < config.Frames; i++ {
			t := config.TimeAt(i)
			if err := rt.RenderContext(ctx, t); err != nil {
				errChan <- err
				return
			}

			result := FrameResult{
				Index:  i,
				Time:   t,
				Image:  rt.Buffer().Clone(),
				Stats:  rt.Stats(),
				IsLast: i == config.Frames-1,
			}

			select {
			case frameChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}

		rt.logger.Info("animation complete", "frames", config.Frames)
	}()

	return frameChan, errChan
}
