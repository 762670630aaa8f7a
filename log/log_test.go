package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	abierrors "github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLogAttrWire(t *testing.T) {
	tests := []struct {
		name     string
		attr     slog.Attr
		wantType string
		wantVal  string
	}{
		{name: "string", attr: slog.String("key", "value"), wantType: "string", wantVal: "value"},
		{name: "int64", attr: slog.Int64("key", 123), wantType: "int64", wantVal: "123"},
		{name: "uint64", attr: slog.Uint64("key", 7), wantType: "uint64", wantVal: "7"},
		{name: "bool", attr: slog.Bool("key", true), wantType: "bool", wantVal: "true"},
		{name: "float64", attr: slog.Float64("key", 1.23), wantType: "float64", wantVal: "1.23"},
		{
			name:     "time",
			attr:     slog.Time("key", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			wantType: "time",
			wantVal:  "2024-01-01T00:00:00Z",
		},
		{name: "duration", attr: slog.Duration("key", time.Hour), wantType: "duration", wantVal: "1h0m0s"},
		{name: "error", attr: slog.Any("key", errors.New("test error")), wantType: "error", wantVal: "test error"},
		{name: "nil", attr: slog.Any("key", nil), wantType: "any", wantVal: "<nil>"},
		{name: "log valuer", attr: slog.Any("key", logValuer{val: "resolved"}), wantType: "string", wantVal: "resolved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := toLogAttrWire(tt.attr)
			assert.Equal(t, tt.attr.Key, wire.Key)
			assert.Equal(t, tt.wantType, wire.Type)
			assert.Equal(t, tt.wantVal, wire.Value)
		})
	}
}

func TestToLogAttrWire_JSON(t *testing.T) {
	type slotRef struct {
		Field string `json:"field"`
	}
	obj := slotRef{Field: "Dup"}

	wire := toLogAttrWire(slog.Any("key", obj))
	assert.Equal(t, "json", wire.Type)

	var decoded slotRef
	require.NoError(t, json.Unmarshal([]byte(wire.Value), &decoded))
	assert.Equal(t, obj, decoded)
}

type logValuer struct {
	val string
}

func (l logValuer) LogValue() slog.Value {
	return slog.StringValue(l.val)
}

func TestAppendAttrWire_FlattensGroups(t *testing.T) {
	attr := slog.Group("handle", slog.Int64("index", 3), slog.Group("origin", slog.String("slot", "Dup")))
	got := appendAttrWire(nil, "req.", attr)

	require.Len(t, got, 2)
	assert.Equal(t, "req.handle.index", got[0].Key)
	assert.Equal(t, "req.handle.origin.slot", got[1].Key)
	assert.Empty(t, appendAttrWire(nil, "", slog.Group("empty")))
	assert.Empty(t, appendAttrWire(nil, "", slog.Attr{}))
}

func TestNewHandler_Defaults(t *testing.T) {
	h := NewHandler()
	assert.True(t, h.Enabled(context.TODO(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.TODO(), slog.LevelDebug))
}

func capture(opts ...HandlerOption) (*slog.Logger, *[]LogMessageWire) {
	var got []LogMessageWire
	opts = append(opts, WithEmitter(func(payload []byte) {
		var m LogMessageWire
		if err := json.Unmarshal(payload, &m); err == nil {
			got = append(got, m)
		}
	}))
	return slog.New(NewHandler(opts...)), &got
}

func TestWasmLogHandler_Encodes(t *testing.T) {
	logger, got := capture(WithLevel(slog.LevelDebug), WithExtension("pairs"), WithSource(true))

	logger.With("ctx", "c1").WithGroup("slot").Debug("called", "name", "Dup", "n", 2)

	require.Len(t, *got, 1)
	m := (*got)[0]
	assert.Equal(t, "DEBUG", m.Level)
	assert.Equal(t, "called", m.Message)
	assert.Equal(t, "pairs", m.Extension)
	assert.Contains(t, m.Source, "log_test.go:")
	assert.Equal(t, []LogAttrWire{
		{Key: "ctx", Type: "string", Value: "c1"},
		{Key: "slot.name", Type: "string", Value: "Dup"},
		{Key: "slot.n", Type: "int64", Value: "2"},
	}, m.Attrs)
}

func TestWasmLogHandler_FiltersLevel(t *testing.T) {
	logger, got := capture(WithLevel(slog.LevelWarn))
	logger.Info("dropped")
	logger.Warn("kept")

	require.Len(t, *got, 1)
	assert.Equal(t, "kept", (*got)[0].Message)
}

func TestReplay(t *testing.T) {
	var guestPayload []byte
	guest := slog.New(NewHandler(WithExtension("pairs"), WithEmitter(func(p []byte) { guestPayload = p })))
	guest.Warn("slow slot", "ms", 12, "ok", false)
	require.NotEmpty(t, guestPayload)

	var buf bytes.Buffer
	hostLogger := slog.New(slog.NewTextHandler(&buf, nil))
	require.NoError(t, Replay(context.Background(), hostLogger, guestPayload, slog.String("module", "m1")))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="slow slot"`)
	assert.Contains(t, out, "module=m1")
	assert.Contains(t, out, "extension=pairs")
	assert.Contains(t, out, "ms=12")
	assert.Contains(t, out, "ok=false")
}

func TestReplay_Errors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	err := Replay(context.Background(), logger, []byte("{not json"))
	var wf *abierrors.WireFormatError
	require.ErrorAs(t, err, &wf)
	assert.Equal(t, "decode", wf.Operation)

	require.NoError(t, Replay(context.Background(), logger, []byte(`{"level":"INFO","message":"quiet"}`)))
	assert.Empty(t, buf.String())

	require.NoError(t, Replay(context.Background(), logger, []byte(`{"level":"bogus","message":"x"}`)))
	assert.Empty(t, buf.String(), "unknown levels fall back to INFO")
}

func TestFromLogAttrWire(t *testing.T) {
	tests := []struct {
		in   LogAttrWire
		want slog.Value
	}{
		{LogAttrWire{Key: "k", Type: "int64", Value: "-4"}, slog.Int64Value(-4)},
		{LogAttrWire{Key: "k", Type: "uint64", Value: "4"}, slog.Uint64Value(4)},
		{LogAttrWire{Key: "k", Type: "bool", Value: "true"}, slog.BoolValue(true)},
		{LogAttrWire{Key: "k", Type: "float64", Value: "0.5"}, slog.Float64Value(0.5)},
		{LogAttrWire{Key: "k", Type: "duration", Value: "2s"}, slog.DurationValue(2 * time.Second)},
		{LogAttrWire{Key: "k", Type: "int64", Value: "x"}, slog.StringValue("x")},
		{LogAttrWire{Key: "k", Type: "error", Value: "boom"}, slog.StringValue("boom")},
	}

	for _, tt := range tests {
		got := fromLogAttrWire(tt.in)
		assert.Equal(t, "k", got.Key)
		assert.True(t, tt.want.Equal(got.Value), "%s: got %v", tt.in.Type, got.Value)
	}
}
