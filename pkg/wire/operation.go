package wire

// Operation represents a vsslink protocol operation.
type Operation uint8

const (
	// OpGet reads an entry value for a given view.
	OpGet Operation = 1

	// OpSet writes an entry field.
	OpSet Operation = 2

	// OpSubscribe opens a notification stream for an entry field.
	OpSubscribe Operation = 3

	// OpInfo requests broker server information.
	OpInfo Operation = 4
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpGet:
		return "Get"
	case OpSet:
		return "Set"
	case OpSubscribe:
		return "Subscribe"
	case OpInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the operation is a known vsslink operation.
func (o Operation) IsValid() bool {
	return o >= OpGet && o <= OpInfo
}
