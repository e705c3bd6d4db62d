// Package subscription tracks the client's active signal subscriptions.
//
// Each subscription is identified by its (path, field) pair. Registering
// the same pair twice fails with ErrDuplicateSubscription; callers that
// want a second consumer for a signal must fan out in their own callback.
//
// # Lifecycle
//
// A subscription enters the registry in the live state when its stream
// opens. When the stream fails with a transport error, the worker marks
// the entry pending instead of removing it; pending entries are replayed
// against the new connection after every reconnect, preserving the
// original callback. An entry that fails to restore stays pending and is
// retried on the next cycle. It is never dropped.
//
// Only a deliberate, broker-initiated end of the stream removes the
// entry, so a fresh subscribe to the same (path, field) succeeds
// afterwards.
package subscription
