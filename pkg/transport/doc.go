// Package transport provides the client side of the vsslink broker
// transport.
//
// The transport layer handles:
//   - TCP connections, optionally wrapped in TLS
//   - Length-prefixed message framing
//   - Request/response correlation by message ID
//   - Routing of subscription notifications to streams
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      CBOR Messages             │
//	├────────────────────────────────┤
//	│   Length-Prefix Framing (4B)   │
//	├────────────────────────────────┤
//	│       TLS (optional)           │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// A single background goroutine reads frames from the connection and
// dispatches them: responses wake the waiting caller, notifications are
// queued on per-subscription streams. When the connection fails, every
// pending call and every open stream is failed with ErrConnectionClosed.
//
// Callers above this package consume the Transport, Stream and Dialer
// interfaces only; the wire protocol never leaks past them.
package transport
