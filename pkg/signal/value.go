package signal

import "strconv"

// Primitive is the closed set of Go types the codec converts to and from
// the broker's string representation.
type Primitive interface {
	bool |
		int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64
}

// Parse converts a broker string into a primitive value. It reports false
// and returns the zero value unless the entire string is a valid textual
// representation of T; trailing characters are a failure, not a partial
// success.
func Parse[T Primitive](s string) (T, bool) {
	var out T

	switch p := any(&out).(type) {
	case *bool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return out, false
		}
		*p = v
	case *int8:
		v, err := strconv.ParseInt(s, 10, 8)
		if err != nil {
			return out, false
		}
		*p = int8(v)
	case *int16:
		v, err := strconv.ParseInt(s, 10, 16)
		if err != nil {
			return out, false
		}
		*p = int16(v)
	case *int32:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return out, false
		}
		*p = int32(v)
	case *int64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return out, false
		}
		*p = v
	case *uint8:
		v, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return out, false
		}
		*p = uint8(v)
	case *uint16:
		v, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return out, false
		}
		*p = uint16(v)
	case *uint32:
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return out, false
		}
		*p = uint32(v)
	case *uint64:
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return out, false
		}
		*p = v
	case *float32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return out, false
		}
		*p = float32(v)
	case *float64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return out, false
		}
		*p = v
	}

	return out, true
}

// Format converts a primitive value into the broker's string form.
// The output round-trips through Parse.
func Format[T Primitive](v T) string {
	switch x := any(v).(type) {
	case bool:
		return strconv.FormatBool(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	// Unreachable: Primitive is a closed set of exactly the types above.
	return ""
}
