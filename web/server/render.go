package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/export"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
)

// AnimateRequest extends FrameRequest with the animation parameters
type AnimateRequest struct {
	FrameRequest
	Frames  int
	FPS     int
	Caption bool
}

// FrameUpdate represents a single animation frame sent via SSE
type FrameUpdate struct {
	Index       int     `json:"index"`
	TotalFrames int     `json:"totalFrames"`
	Time        float64 `json:"time"`
	ImageData   string  `json:"imageData"` // Base64 encoded PNG
	Stats       Stats   `json:"stats"`
	IsLast      bool    `json:"isLast"`
	ElapsedMs   int64   `json:"elapsedMs"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "frame", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// handleAnimate renders frames as time advances and streams them via SSE
func (s *Server) handleAnimate(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx := r.Context()

	// Create unified SSE event channel for thread-safe writing
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeSSEEvents(ctx, w, sseEventChan)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseAnimateRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Setup console logging and streaming
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan, s.logger.Handler())

	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()
	stopConsole := func() {
		close(consoleChan)
		<-consoleDone
	}

	rt, err := s.newRaytracer(&req.FrameRequest, webLogger)
	if err != nil {
		stopConsole()
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	config := renderer.AnimationConfig{
		Start:  req.Time,
		Step:   1 / float64(req.FPS),
		Frames: req.Frames,
	}
	startTime := time.Now()
	frameChan, errChan := rt.Animate(ctx, config)

	for frame := range frameChan {
		if err := s.handleFrameResult(ctx, sseEventChan, frame, req, startTime); err != nil {
			webLogger.Error("failed to send frame", "index", frame.Index, "err", err)
		}
	}
	renderErr := <-errChan
	stopConsole()

	if renderErr != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", renderErr))
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents writes every SSE event from a single goroutine until the
// channel is closed. After a failed write the remaining events are drained
// so senders never block.
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	failed := false

	for event := range sseEventChan {
		if failed || ctx.Err() != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			failed = true
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// streamConsoleMessages forwards console messages until consoleChan is closed
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for consoleMsg := range consoleChan {
		data, err := json.Marshal(consoleMsg)
		if err != nil {
			s.logger.Warn("failed to marshal console message", "err", err)
			continue
		}

		select {
		case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
		case <-ctx.Done():
		}
	}
}

// handleFrameResult encodes a frame and queues it as a "frame" event
func (s *Server) handleFrameResult(ctx context.Context, sseEventChan chan<- SSEEvent, frame renderer.FrameResult, req *AnimateRequest, startTime time.Time) error {
	img := frame.Image
	if req.Scale != 1 {
		scaled, err := export.Scale(img, req.Scale)
		if err != nil {
			return err
		}
		img = scaled
	}
	if req.Caption {
		export.Caption(img, export.TimeCaption(frame.Time))
	}

	imageData, err := export.Base64PNG(img)
	if err != nil {
		return fmt.Errorf("failed to encode frame %d: %w", frame.Index, err)
	}

	data, err := json.Marshal(FrameUpdate{
		Index:       frame.Index,
		TotalFrames: req.Frames,
		Time:        frame.Time,
		ImageData:   imageData,
		Stats:       newStats(frame.Stats),
		IsLast:      frame.IsLast,
		ElapsedMs:   time.Since(startTime).Milliseconds(),
	})
	if err != nil {
		return err
	}

	select {
	case sseEventChan <- SSEEvent{Type: "frame", Data: string(data)}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// parseAnimateRequest parses request parameters
func (s *Server) parseAnimateRequest(r *http.Request) (*AnimateRequest, error) {
	values := r.URL.Query()

	frameReq, err := s.parseFrameRequest(values)
	if err != nil {
		return nil, err
	}
	req := &AnimateRequest{FrameRequest: *frameReq}

	// "start" reads better than "time" for an animation; accept either
	if values.Get("start") != "" {
		if req.Time, err = parseFloatParam(values, "start", 0, -maxTime, maxTime); err != nil {
			return nil, err
		}
	}
	if req.Frames, err = parseIntParam(values, "frames", 30, 1, maxFrames); err != nil {
		return nil, err
	}
	if req.FPS, err = parseIntParam(values, "fps", 10, 1, maxFPS); err != nil {
		return nil, err
	}
	req.Caption = values.Get("caption") == "true"

	if req.Width*req.Height*req.Frames > 800*600*120 {
		s.logger.Warn("large animation requested, may stream slowly",
			"width", req.Width, "height", req.Height, "frames", req.Frames)
	}

	return req, nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
