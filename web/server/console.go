package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warn", "error"
}

// consoleHandler is a slog.Handler that copies records to a base handler
// and forwards them to a web console channel without blocking.
type consoleHandler struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	base        slog.Handler
	attrs       []slog.Attr
}

// NewWebLogger creates a logger for a specific render that writes to base
// and streams each record to consoleChan. Records are dropped from the
// console when the channel is full.
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage, base slog.Handler) *slog.Logger {
	if base == nil {
		base = nopHandler{}
	}
	return slog.New(&consoleHandler{
		renderID:    renderID,
		consoleChan: consoleChan,
		base:        base.WithAttrs([]slog.Attr{slog.String("render", renderID)}),
	})
}

func (h *consoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo || h.base.Enabled(ctx, level)
}

func (h *consoleHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.base.Enabled(ctx, record.Level) {
		if err := h.base.Handle(ctx, record); err != nil {
			return err
		}
	}

	if h.consoleChan == nil || record.Level < slog.LevelInfo {
		return nil
	}

	var b strings.Builder
	b.WriteString(record.Message)
	writeAttr := func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	record.Attrs(writeAttr)

	select {
	case h.consoleChan <- ConsoleMessage{
		Message:   b.String(),
		Timestamp: record.Time,
		Level:     strings.ToLower(record.Level.String()),
	}:
	default:
		// Channel full, skip (don't block)
	}
	return nil
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{
		renderID:    h.renderID,
		consoleChan: h.consoleChan,
		base:        h.base.WithAttrs(attrs),
		attrs:       append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	return &consoleHandler{
		renderID:    h.renderID,
		consoleChan: h.consoleChan,
		base:        h.base.WithGroup(name),
		attrs:       h.attrs,
	}
}

// nopHandler discards every record
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
