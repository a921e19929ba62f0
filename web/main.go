package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
	"github.com/df07/go-sphere-raytracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	width := flag.Int("width", renderer.DefaultWidth, "Default frame width")
	height := flag.Int("height", renderer.DefaultHeight, "Default frame height")
	sceneName := flag.String("scene", "default", "Default scene")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", *logLevel)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if _, err := scene.ByName(*sceneName); err != nil {
		logger.Error("invalid default scene", "err", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Create and start web server
	webServer := server.NewServer(server.Config{
		Port:   *port,
		Width:  *width,
		Height: *height,
		Scene:  *sceneName,
		Logger: logger,
	})

	logger.Info("sphere raytracer web server", "url", fmt.Sprintf("http://localhost:%d", *port))

	if err := webServer.Start(ctx); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
