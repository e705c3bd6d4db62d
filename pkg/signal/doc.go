// Package signal defines the core vocabulary shared by the broker client:
// entry paths, field and view selectors, streamed updates, and the strict
// string codec for primitive signal values.
//
// # Paths
//
// A signal is addressed by its entry path, a dotted string such as
// "Vehicle.Speed". The client treats paths and values as opaque strings;
// interpreting units, ranges or tree structure is the caller's concern.
//
// # Fields and Views
//
// Every entry carries two writable fields: the sensed current value
// (FieldValue) and the commanded actuator target (FieldActuatorTarget).
// Reads select a view: ViewCurrent, ViewTarget, or ViewAll.
//
// # Codec
//
// Parse and Format convert between the broker's string representation and
// a closed set of primitive Go types. Parse is strict: the entire input
// must be consumed, so "72rpm" is a failure, not a partial success. Parse
// reports failure with a boolean rather than an error to keep hot-path
// value reads allocation-free.
package signal
