package log

// MultiLogger fans one event stream out to several sinks, typically a
// TraceLogger for the .vtrace file plus a SlogAdapter echoing to the
// console.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger creates a MultiLogger over the given sinks.
// Nil sinks are skipped.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	m := &MultiLogger{sinks: make([]Logger, 0, len(sinks))}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Log delivers the event to every sink, in registration order.
func (m *MultiLogger) Log(event Event) {
	for _, s := range m.sinks {
		s.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
