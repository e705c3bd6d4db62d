// Package client provides the public facade for talking to a vehicle
// signal broker.
//
// A Client presents a simple get/set/subscribe API over entry paths
// while internally managing the transport connection, automatic
// reconnection with backoff, and restoration of subscriptions after a
// transport failure. Application code never sees wire or transport
// types.
//
// # Resilience
//
// Transport failures never crash the client. Synchronous get/set calls
// fail with an error until connectivity returns; subscription callbacks
// silently resume once their streams are restored. Reconnection runs in
// the background and is retried indefinitely until Close.
//
// Values are raw broker strings. The generic accessors
// (GetCurrentValueAs, SetCurrentValueAs and their target-field
// counterparts) convert between strings and Go primitive types;
// interpretation beyond that (units, ranges, tree structure) is the
// caller's business.
package client
