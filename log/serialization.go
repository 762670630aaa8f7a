package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/reglet-dev/reglet-abi/domain/errors"
)

// LogMessageWire is the JSON payload of the log_message import.
type LogMessageWire struct {
	Timestamp time.Time     `json:"timestamp"`
	Attrs     []LogAttrWire `json:"attrs,omitempty"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
	Extension string        `json:"extension,omitempty"`
	Source    string        `json:"source,omitempty"`
}

// LogAttrWire represents a single slog attribute for wire transfer. Groups
// are flattened into dotted keys.
type LogAttrWire struct {
	Key   string `json:"key"`
	Type  string `json:"type"` // "string", "int64", "uint64", "bool", "float64", "time", "duration", "error", "json", "any"
	Value string `json:"value"`
}

// toLogAttrWire converts a slog.Attr to LogAttrWire. Group values are
// rendered with %v; use appendAttrWire to flatten them.
func toLogAttrWire(attr slog.Attr) LogAttrWire {
	wire := LogAttrWire{Key: attr.Key}
	v := attr.Value.Resolve()

	switch v.Kind() {
	case slog.KindString:
		wire.Type, wire.Value = "string", v.String()
	case slog.KindInt64:
		wire.Type, wire.Value = "int64", strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		wire.Type, wire.Value = "uint64", strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		wire.Type, wire.Value = "bool", strconv.FormatBool(v.Bool())
	case slog.KindFloat64:
		wire.Type, wire.Value = "float64", strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindTime:
		wire.Type, wire.Value = "time", v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		wire.Type, wire.Value = "duration", v.Duration().String()
	case slog.KindAny:
		switch x := v.Any().(type) {
		case nil:
			wire.Type, wire.Value = "any", "<nil>"
		case error:
			wire.Type, wire.Value = "error", x.Error()
		default:
			if data, err := json.Marshal(x); err == nil {
				wire.Type, wire.Value = "json", string(data)
			} else {
				wire.Type, wire.Value = "any", fmt.Sprintf("%v", x)
			}
		}
	default:
		wire.Type, wire.Value = "any", fmt.Sprintf("%v", v.Any())
	}
	return wire
}

// appendAttrWire appends attr to dst, prefixing keys and flattening groups.
func appendAttrWire(dst []LogAttrWire, prefix string, attr slog.Attr) []LogAttrWire {
	v := attr.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		group := v.Group()
		if len(group) == 0 {
			return dst
		}
		inner := prefix
		if attr.Key != "" {
			inner = prefix + attr.Key + "."
		}
		for _, a := range group {
			dst = appendAttrWire(dst, inner, a)
		}
		return dst
	}
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	wire := toLogAttrWire(slog.Attr{Key: attr.Key, Value: v})
	wire.Key = prefix + wire.Key
	return append(dst, wire)
}

// fromLogAttrWire reverses toLogAttrWire. Values that fail to parse are kept
// as strings.
func fromLogAttrWire(w LogAttrWire) slog.Attr {
	switch w.Type {
	case "int64":
		if n, err := strconv.ParseInt(w.Value, 10, 64); err == nil {
			return slog.Int64(w.Key, n)
		}
	case "uint64":
		if n, err := strconv.ParseUint(w.Value, 10, 64); err == nil {
			return slog.Uint64(w.Key, n)
		}
	case "bool":
		if b, err := strconv.ParseBool(w.Value); err == nil {
			return slog.Bool(w.Key, b)
		}
	case "float64":
		if f, err := strconv.ParseFloat(w.Value, 64); err == nil {
			return slog.Float64(w.Key, f)
		}
	case "time":
		if t, err := time.Parse(time.RFC3339Nano, w.Value); err == nil {
			return slog.Time(w.Key, t)
		}
	case "duration":
		if d, err := time.ParseDuration(w.Value); err == nil {
			return slog.Duration(w.Key, d)
		}
	case "json":
		return slog.Any(w.Key, json.RawMessage(w.Value))
	}
	return slog.String(w.Key, w.Value)
}

// Replay decodes a LogMessageWire payload and hands it to logger's handler,
// keeping the guest's timestamp and level. extra attributes are added
// before the guest's own.
func Replay(ctx context.Context, logger *slog.Logger, payload []byte, extra ...slog.Attr) error {
	var msg LogMessageWire
	if err := json.Unmarshal(payload, &msg); err != nil {
		return &errors.WireFormatError{Operation: "decode", Type: "LogMessageWire", Err: err}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(msg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if !logger.Enabled(ctx, level) {
		return nil
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	record := slog.NewRecord(ts, level, msg.Message, 0)
	record.AddAttrs(extra...)
	if msg.Extension != "" {
		record.AddAttrs(slog.String("extension", msg.Extension))
	}
	if msg.Source != "" {
		record.AddAttrs(slog.String("source", msg.Source))
	}
	for _, a := range msg.Attrs {
		record.AddAttrs(fromLogAttrWire(a))
	}
	return logger.Handler().Handle(ctx, record)
}
