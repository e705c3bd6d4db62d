// Package version provides protocol version parsing and comparison.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the protocol version implemented by this library.
const Current = "1.0"

// Version represents a parsed "major.minor" protocol version.
type Version struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil || parts[0] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || parts[1] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return Version{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}

// CheckBroker verifies that a broker-reported version string is
// compatible with this library. An empty or unparseable string is
// not an error; older brokers may not report a version at all.
func CheckBroker(reported string) (compatible bool, warning string) {
	if reported == "" {
		return true, ""
	}

	broker, err := Parse(reported)
	if err != nil {
		return true, ""
	}

	current, _ := Parse(Current)
	if !current.Compatible(broker) {
		return false, fmt.Sprintf("broker protocol version %s is incompatible with client version %s", broker, current)
	}
	return true, ""
}
