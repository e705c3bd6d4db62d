package transport

import (
	"errors"
	"fmt"

	"github.com/vsslink/vsslink-go/pkg/wire"
)

// Transport errors.
var (
	// ErrConnectionClosed indicates the connection is gone; pending calls
	// and open streams fail with an error wrapping this sentinel.
	ErrConnectionClosed = errors.New("connection closed")
)

// StatusError is a broker-reported failure for a single call.
// The transport delivered the request and the broker rejected it.
type StatusError struct {
	// Op is the operation that failed.
	Op wire.Operation

	// Path is the entry path the operation targeted, if any.
	Path string

	// Status is the broker's status code.
	Status wire.Status

	// Detail is the broker's human-readable explanation, if any.
	Detail string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %s (%s)", e.Op, e.Path, e.Status, e.Detail)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

// AsStatusError unwraps err into a StatusError if it is one.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
