package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// TraceLogger writes client events to a .vtrace file: a bare
// concatenation of CBOR-encoded Events, read back by Reader and the
// vsslink-trace tool. It is safe for concurrent use.
type TraceLogger struct {
	mu      sync.Mutex
	file    *os.File
	encoder *cbor.Encoder
	closed  bool
}

// NewTraceLogger opens a trace file for appending, creating it with
// mode 0644 if needed. Appending to an existing trace is valid; events
// from multiple sessions concatenate cleanly.
func NewTraceLogger(path string) (*TraceLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &TraceLogger{
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Log appends one event to the trace.
// Encoding errors are dropped; tracing must never disrupt the client.
func (l *TraceLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	_ = l.encoder.Encode(event)
}

// Close closes the trace file. Close is idempotent, and events logged
// after Close are silently dropped.
func (l *TraceLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*TraceLogger)(nil)
