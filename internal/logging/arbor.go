package logging

import (
	"context"
	"log/slog"

	"github.com/ternarybob/arbor"
)

// ArborHandler forwards slog records to an arbor logger so library logs
// share the application's writers and level.
type ArborHandler struct {
	logger arbor.ILogger
	attrs  []slog.Attr
	group  string
	level  slog.Level
}

// NewArborHandler creates a handler writing records at or above level.
func NewArborHandler(logger arbor.ILogger, level slog.Level) *ArborHandler {
	return &ArborHandler{logger: logger, level: level}
}

func (h *ArborHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *ArborHandler) Handle(_ context.Context, r slog.Record) error {
	var ev arbor.ILogEvent
	switch {
	case r.Level >= slog.LevelError:
		ev = h.logger.Error()
	case r.Level >= slog.LevelWarn:
		ev = h.logger.Warn()
	case r.Level >= slog.LevelInfo:
		ev = h.logger.Info()
	default:
		ev = h.logger.Debug()
	}

	for _, a := range h.attrs {
		ev = ev.Str(h.key(a.Key), a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		ev = ev.Str(h.key(a.Key), a.Value.String())
		return true
	})
	ev.Msg(r.Message)
	return nil
}

func (h *ArborHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *ArborHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		name = clone.group + "." + name
	}
	clone.group = name
	return &clone
}

func (h *ArborHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

// ParseLevel maps a config level name to a slog level. Unknown names map
// to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
