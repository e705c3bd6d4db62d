package transport

import (
	"io"
	"sync"

	"github.com/vsslink/vsslink-go/pkg/signal"
)

// streamBufferSize is the per-stream update queue depth. The read loop
// blocks once a consumer falls this far behind, applying backpressure to
// the whole connection rather than dropping updates.
const streamBufferSize = 128

// stream implements Stream on top of a per-subscription update queue
// fed by the connection's read loop.
type stream struct {
	id   uint32
	conn *Conn

	updates chan signal.Update

	mu   sync.Mutex
	err  error
	once sync.Once
	done chan struct{}
}

func newStream(id uint32, conn *Conn) *stream {
	return &stream{
		id:      id,
		conn:    conn,
		updates: make(chan signal.Update, streamBufferSize),
		done:    make(chan struct{}),
	}
}

// enqueue queues an update for the consumer. Called only from the read
// loop; blocks when the consumer lags, stops when the stream ends.
func (s *stream) enqueue(u signal.Update) {
	select {
	case s.updates <- u:
	case <-s.done:
	}
}

// Recv returns the next update in broker order. Queued updates are
// drained before any termination error is reported.
func (s *stream) Recv() (signal.Update, error) {
	select {
	case u := <-s.updates:
		return u, nil
	default:
	}

	select {
	case u := <-s.updates:
		return u, nil
	case <-s.done:
		// Drain updates that raced with termination.
		select {
		case u := <-s.updates:
			return u, nil
		default:
		}
		return signal.Update{}, s.termErr()
	}
}

// Close detaches the stream from the connection. Subsequent or blocked
// Recv calls return io.EOF.
func (s *stream) Close() error {
	s.end(nil)
	s.conn.removeStream(s.id)
	return nil
}

// end terminates the stream. A nil cause is a deliberate close and
// surfaces as io.EOF; anything else is reported as-is.
func (s *stream) end(cause error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = cause
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *stream) termErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		return io.EOF
	}
	return s.err
}

// Compile-time interface satisfaction check.
var _ Stream = (*stream)(nil)
