package log

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsslink/vsslink-go/pkg/signal"
	"github.com/vsslink/vsslink-go/pkg/wire"
)

func sampleEvent() Event {
	op := wire.OpGet
	field := signal.FieldValue
	return Event{
		Timestamp:    time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC),
		ConnectionID: "6e1b0f74-0c3e-4c9b-9a44-1a6f2a3d9f01",
		Direction:    DirectionOut,
		Layer:        LayerWire,
		Category:     CategoryMessage,
		RemoteAddr:   "broker:55555",
		Message: &MessageEvent{
			Type:      MessageTypeRequest,
			MessageID: 17,
			Operation: &op,
			Path:      "Vehicle.Speed",
			Field:     &field,
		},
	}
}

func TestEventRoundTrip(t *testing.T) {
	in := sampleEvent()

	data, err := EncodeEvent(in)
	require.NoError(t, err)

	out, err := DecodeEvent(data)
	require.NoError(t, err)

	assert.True(t, in.Timestamp.Equal(out.Timestamp), "timestamp drifted: %v vs %v", in.Timestamp, out.Timestamp)
	assert.Equal(t, in.ConnectionID, out.ConnectionID)
	assert.Equal(t, DirectionOut, out.Direction)
	require.NotNil(t, out.Message)
	assert.Equal(t, "Vehicle.Speed", out.Message.Path)
	require.NotNil(t, out.Message.Operation)
	assert.Equal(t, wire.OpGet, *out.Message.Operation)
	assert.Nil(t, out.Frame)
	assert.Nil(t, out.StateChange)
}

func TestTraceLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.vtrace")

	fl, err := NewTraceLogger(path)
	require.NoError(t, err)

	fl.Log(sampleEvent())
	fl.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "other-conn",
		Direction:    DirectionIn,
		Layer:        LayerClient,
		Category:     CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityConnection,
			OldState: "CONNECTING",
			NewState: "CONNECTED",
		},
	})
	require.NoError(t, fl.Close())

	// Logging after close is a no-op, not a panic.
	fl.Log(sampleEvent())

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	var events []Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
	require.Len(t, events, 2)
	assert.Equal(t, "Vehicle.Speed", events[0].Message.Path)
	assert.Equal(t, "CONNECTED", events[1].StateChange.NewState)
}

func TestFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.vtrace")

	fl, err := NewTraceLogger(path)
	require.NoError(t, err)
	fl.Log(sampleEvent())
	ev := sampleEvent()
	ev.ConnectionID = "wanted"
	fl.Log(ev)
	require.NoError(t, fl.Close())

	r, err := NewFilteredReader(path, Filter{ConnectionID: "wanted"})
	require.NoError(t, err)
	defer r.Close()

	got, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "wanted", got.ConnectionID)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestMultiLogger(t *testing.T) {
	var a, b recordingLogger
	m := NewMultiLogger(&a, nil, &b)

	m.Log(sampleEvent())

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestOrNoop(t *testing.T) {
	assert.NotPanics(t, func() { OrNoop(nil).Log(sampleEvent()) })

	var r recordingLogger
	OrNoop(&r).Log(sampleEvent())
	assert.Len(t, r.events, 1)
}

type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(e Event) { r.events = append(r.events, e) }

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogAdapter(logger).Log(sampleEvent())

	out := buf.String()
	assert.Contains(t, out, "Vehicle.Speed")
	assert.Contains(t, out, "REQUEST")
	assert.Contains(t, out, "broker:55555")
}
