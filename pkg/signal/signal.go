package signal

// Field selects which writable field of an entry an operation targets.
// The numeric values are part of the broker protocol.
type Field uint8

const (
	// FieldValue targets the sensed current value of an entry.
	FieldValue Field = 1

	// FieldActuatorTarget targets the commanded actuator setpoint.
	FieldActuatorTarget Field = 2
)

// String returns a human-readable field name.
func (f Field) String() string {
	switch f {
	case FieldValue:
		return "VALUE"
	case FieldActuatorTarget:
		return "ACTUATOR_TARGET"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether f is a known field selector.
func (f Field) Valid() bool {
	return f == FieldValue || f == FieldActuatorTarget
}

// View selects which side of an entry a read returns.
// The numeric values are part of the broker protocol.
type View uint8

const (
	// ViewCurrent reads the sensed current value.
	ViewCurrent View = 0

	// ViewTarget reads the actuator target value.
	ViewTarget View = 1

	// ViewAll reads both sides of the entry.
	ViewAll View = 2
)

// String returns a human-readable view name.
func (v View) String() string {
	switch v {
	case ViewCurrent:
		return "CURRENT"
	case ViewTarget:
		return "TARGET"
	case ViewAll:
		return "ALL"
	default:
		return "UNKNOWN"
	}
}

// Update is one streamed change delivered by a subscription.
type Update struct {
	// Path is the entry path the update belongs to.
	Path string

	// Value is the new value in its broker string form.
	Value string

	// Field indicates which field of the entry changed.
	Field Field
}

// Callback receives subscription updates. It is invoked on an unspecified
// worker goroutine, zero or more times, until the subscription's stream
// ends. Implementations must be safe for concurrent use when the same
// callback is passed to multiple subscriptions.
type Callback func(path, value string, field Field)
