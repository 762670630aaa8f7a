// Package log routes slog records from WASM extensions to the host through
// the log_message import, and replays them into a host logger.
package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/reglet-dev/reglet-abi/domain/errors"
)

// WasmLogHandler implements slog.Handler by encoding each record as a
// LogMessageWire and passing it to an emitter. In a wasip1 guest the default
// emitter calls the host's log_message import.
type WasmLogHandler struct {
	opts   handlerConfig
	attrs  []LogAttrWire
	prefix string
}

// HandlerOption configures the WasmLogHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	emit      func(payload []byte)
	extension string
	level     slog.Level
	addSource bool
}

func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		emit:  emitToHost,
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level are dropped in the guest.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file:line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithExtension stamps every record with the extension name.
func WithExtension(name string) HandlerOption {
	return func(c *handlerConfig) {
		c.extension = name
	}
}

// WithEmitter replaces the function encoded records are handed to.
func WithEmitter(fn func(payload []byte)) HandlerOption {
	return func(c *handlerConfig) {
		c.emit = fn
	}
}

// NewHandler creates a new WasmLogHandler with the given options.
func NewHandler(opts ...HandlerOption) *WasmLogHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &WasmLogHandler{opts: cfg}
}

// Enabled reports whether the handler handles records at the given level.
func (h *WasmLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level
}

// Handle encodes record and emits it.
func (h *WasmLogHandler) Handle(_ context.Context, record slog.Record) error {
	payload, err := json.Marshal(h.wire(record))
	if err != nil {
		return &errors.WireFormatError{Operation: "encode", Type: "LogMessageWire", Err: err}
	}
	h.opts.emit(payload)
	return nil
}

func (h *WasmLogHandler) wire(record slog.Record) LogMessageWire {
	msg := LogMessageWire{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
		Extension: h.opts.extension,
	}
	if h.opts.addSource && record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		msg.Source = fmt.Sprintf("%s:%d", frame.File, frame.Line)
	}

	msg.Attrs = append(msg.Attrs, h.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		msg.Attrs = appendAttrWire(msg.Attrs, h.prefix, a)
		return true
	})
	return msg
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *WasmLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	for _, a := range attrs {
		clone.attrs = appendAttrWire(clone.attrs, h.prefix, a)
	}
	return clone
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *WasmLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.prefix = h.prefix + name + "."
	return clone
}

func (h *WasmLogHandler) clone() *WasmLogHandler {
	return &WasmLogHandler{
		opts:   h.opts,
		attrs:  append([]LogAttrWire(nil), h.attrs...),
		prefix: h.prefix,
	}
}
