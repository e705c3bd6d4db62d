package wire

// Status represents a response status code.
type Status uint8

const (
	// StatusSuccess indicates the operation completed successfully.
	StatusSuccess Status = 0

	// StatusUnknownPath indicates the entry path does not exist.
	StatusUnknownPath Status = 1

	// StatusInvalidField indicates an unknown field selector.
	StatusInvalidField Status = 2

	// StatusInvalidView indicates an unknown view selector.
	StatusInvalidView Status = 3

	// StatusUnavailable indicates the entry exists but has no value yet.
	StatusUnavailable Status = 4

	// StatusTooManySubscriptions indicates the broker's stream limit is reached.
	StatusTooManySubscriptions Status = 5

	// StatusInternal indicates a broker-side failure.
	StatusInternal Status = 6
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusUnknownPath:
		return "UNKNOWN_PATH"
	case StatusInvalidField:
		return "INVALID_FIELD"
	case StatusInvalidView:
		return "INVALID_VIEW"
	case StatusUnavailable:
		return "UNAVAILABLE"
	case StatusTooManySubscriptions:
		return "TOO_MANY_SUBSCRIPTIONS"
	case StatusInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// IsError returns true if the status indicates an error.
func (s Status) IsError() bool {
	return s != StatusSuccess
}
