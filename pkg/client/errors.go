package client

import "errors"

// Client errors.
var (
	// ErrNotConnected is returned by value operations attempted while no
	// connection is established.
	ErrNotConnected = errors.New("not connected")

	// ErrClientClosed is returned after Close.
	ErrClientClosed = errors.New("client closed")

	// ErrConversion is returned by the generic accessors when a broker
	// string cannot be parsed into the requested type.
	ErrConversion = errors.New("value conversion failed")
)
