package transport

import (
	"context"

	"github.com/vsslink/vsslink-go/pkg/signal"
)

// Transport is the narrow broker contract the client core consumes.
// Implemented by Conn; tests substitute fakes.
type Transport interface {
	// Get reads an entry value for the given view, in broker string form.
	Get(ctx context.Context, path string, view signal.View) (string, error)

	// Set writes an entry field.
	Set(ctx context.Context, path, value string, field signal.Field) error

	// OpenStream opens a subscription stream for an entry field.
	OpenStream(ctx context.Context, path string, field signal.Field) (Stream, error)

	// ServerInfo returns broker diagnostic information.
	ServerInfo(ctx context.Context) (Info, error)

	// Close tears down the connection. All pending calls and open
	// streams fail with ErrConnectionClosed.
	Close() error
}

// Stream delivers updates for one subscription in broker order.
type Stream interface {
	// Recv blocks until the next update, stream end, or transport
	// failure. A deliberate broker close returns io.EOF; transport
	// failures return an error wrapping ErrConnectionClosed.
	Recv() (signal.Update, error)

	// Close detaches the stream. Recv calls unblock with io.EOF.
	Close() error
}

// Dialer establishes transport connections to a broker address.
type Dialer interface {
	Dial(ctx context.Context, address string) (Transport, error)
}

// Info carries broker server information.
type Info struct {
	// Name is the broker implementation name.
	Name string

	// Version is the broker version string.
	Version string
}
