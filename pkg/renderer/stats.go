package renderer

import "time"

// RenderStats contains statistics about the most recent frame
type RenderStats struct {
	Time        float64       // Time parameter the frame was rendered at
	TotalPixels int           // Total number of pixels rendered
	HitPixels   int           // Pixels whose primary ray hit a sphere
	Workers     int           // Goroutines used (1 for serial renders)
	Elapsed     time.Duration // Wall-clock render time
}

// Coverage returns the fraction of pixels that hit a sphere
func (s RenderStats) Coverage() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.HitPixels) / float64(s.TotalPixels)
}
