// Package connection provides connection lifecycle management for the
// broker client.
//
// This package handles:
//   - Connection state tracking
//   - Exponential backoff between reconnection attempts
//   - Jitter to prevent thundering herd
//   - A background supervisor that reconnects after transport failure
//
// # Reconnection Strategy
//
// When a connection is lost, the supervisor retries with exponential
// backoff:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s
//  3. Maximum delay: 30 seconds
//  4. Continue at 30s until successful
//  5. Reset to 1s on successful reconnection
//
// Retries continue until the manager is closed; reconnection failures
// are never surfaced to application code.
//
// # Jitter
//
// To avoid synchronized retries from multiple clients:
//
//	actual_delay = base_delay + random(0, base_delay * 0.25)
//
// # Supervisor
//
// The supervisor goroutine blocks on a channel until signaled through
// NotifyConnectionLost, so it burns no CPU while the connection is
// healthy. Close wakes any pending backoff wait promptly.
package connection
