package log

// Logger receives client events from the transport, wire, and client
// layers. Implementations must be safe for concurrent use; the transport
// read loop calls Log inline, so slow sinks should queue.
type Logger interface {
	Log(event Event)
}

// NoopLogger discards all events. It is the default sink when tracing
// and debug output are both disabled, and is usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// OrNoop returns l, or a NoopLogger when l is nil, so callers can hold
// a Logger without nil checks on every event.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}

var _ Logger = NoopLogger{}
