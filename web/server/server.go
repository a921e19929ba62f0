package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/export"
	"github.com/df07/go-sphere-raytracer/pkg/loaders"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

//go:embed static
var staticFiles embed.FS

// Parameter limits shared by the frame and animate endpoints
const (
	minSize   = 16
	maxSize   = 2000
	maxFrames = 600
	maxFPS    = 60
	minScale  = 0.1
	maxScale  = 4.0
	maxTime   = 1e6
)

// Config configures the web server
type Config struct {
	Port   int
	Width  int    // Default frame width when the request does not set one
	Height int    // Default frame height when the request does not set one
	Scene  string // Default scene name
	Logger *slog.Logger
}

// Server handles web requests for the sphere raytracer
type Server struct {
	config Config
	logger *slog.Logger
}

// NewServer creates a new web server
func NewServer(config Config) *Server {
	if config.Width <= 0 {
		config.Width = renderer.DefaultWidth
	}
	if config.Height <= 0 {
		config.Height = renderer.DefaultHeight
	}
	if config.Scene == "" {
		config.Scene = "default"
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(nopHandler{})
	}
	return &Server{config: config, logger: logger}
}

// FrameRequest holds the parameters shared by the render endpoints
type FrameRequest struct {
	Scene  string
	Width  int
	Height int
	Time   float64
	Scale  float64
}

// Stats represents render statistics sent to the client
type Stats struct {
	TotalPixels int     `json:"totalPixels"`
	HitPixels   int     `json:"hitPixels"`
	Coverage    float64 `json:"coverage"`
	Workers     int     `json:"workers"`
	RenderMs    float64 `json:"renderMs"`
}

func newStats(s renderer.RenderStats) Stats {
	return Stats{
		TotalPixels: s.TotalPixels,
		HitPixels:   s.HitPixels,
		Coverage:    s.Coverage(),
		Workers:     s.Workers,
		RenderMs:    float64(s.Elapsed.Microseconds()) / 1000,
	}
}

// Handler returns the HTTP handler with all routes registered
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene", s.handleScene)
	mux.HandleFunc("/api/frame", s.handleFrame)
	mux.HandleFunc("/api/animate", s.handleAnimate)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", "http://localhost"+srv.Addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down web server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// handleIndex serves the embedded viewer page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, staticFiles, "static/index.html")
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.ListScenes())
}

// handleScene returns a built-in scene in the JSON scene file format
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("scene")
	if name == "" {
		name = s.config.Scene
	}

	sceneObj, err := scene.ByName(name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := loaders.EncodeScene(&buf, sceneObj); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleFrame renders a single frame and responds with a PNG
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFrameRequest(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rt, err := s.newRaytracer(req, s.logger)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if err := rt.RenderContext(r.Context(), req.Time); err != nil {
		s.logger.Warn("frame render aborted", "err", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	img := rt.Buffer().Image()
	if req.Scale != 1 {
		if img, err = export.Scale(img, req.Scale); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	var buf bytes.Buffer
	if err := export.EncodePNG(&buf, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	stats := rt.Stats()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Hit-Pixels", strconv.Itoa(stats.HitPixels))
	w.Header().Set("X-Render-Ms", strconv.FormatInt(stats.Elapsed.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// parseFrameRequest parses the parameters shared by the render endpoints
func (s *Server) parseFrameRequest(values url.Values) (*FrameRequest, error) {
	req := &FrameRequest{Scene: s.config.Scene}
	if name := values.Get("scene"); name != "" {
		req.Scene = name
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", s.config.Width, minSize, maxSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", s.config.Height, minSize, maxSize); err != nil {
		return nil, err
	}
	if req.Time, err = parseFloatParam(values, "time", 0, -maxTime, maxTime); err != nil {
		return nil, err
	}
	if req.Scale, err = parseFloatParam(values, "scale", 1, minScale, maxScale); err != nil {
		return nil, err
	}
	return req, nil
}

// newRaytracer creates the scene and a raytracer owned by a single request
func (s *Server) newRaytracer(req *FrameRequest, logger *slog.Logger) (*renderer.Raytracer, error) {
	sceneObj, err := scene.ByName(req.Scene)
	if err != nil {
		return nil, err
	}
	return renderer.NewRaytracer(sceneObj,
		renderer.WithSize(req.Width, req.Height),
		renderer.WithLogger(logger),
	)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		// NaN fails both comparisons, so check it explicitly
		if parsed != parsed || parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %s", key, min, max, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
