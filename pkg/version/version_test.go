package version

import (
	"testing"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		input string
		major uint16
		minor uint16
	}{
		{"1.0", 1, 0},
		{"1.1", 1, 1},
		{"2.0", 2, 0},
		{"10.23", 10, 23},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if v.Major != tt.major {
				t.Errorf("Major = %d, want %d", v.Major, tt.major)
			}
			if v.Minor != tt.minor {
				t.Errorf("Minor = %d, want %d", v.Minor, tt.minor)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"1",
		"abc",
		"1.0.0",
		"1.x",
		"-1.0",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			if err == nil {
				t.Errorf("Parse(%q) should return error", input)
			}
		})
	}
}

func TestVersion_String(t *testing.T) {
	v, err := Parse("10.23")
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "10.23" {
		t.Errorf("String() = %q, want %q", v.String(), "10.23")
	}
}

func TestCompatible(t *testing.T) {
	v10, _ := Parse("1.0")
	v11, _ := Parse("1.1")
	v20, _ := Parse("2.0")

	if !v10.Compatible(v11) {
		t.Error("1.0 should be compatible with 1.1")
	}
	if !v11.Compatible(v10) {
		t.Error("1.1 should be compatible with 1.0")
	}
	if v10.Compatible(v20) {
		t.Error("1.0 should NOT be compatible with 2.0")
	}
}

func TestCheckBroker(t *testing.T) {
	tests := []struct {
		name       string
		reported   string
		compatible bool
		wantWarn   bool
	}{
		{"SameMajor", "1.1", true, false},
		{"Exact", Current, true, false},
		{"NewerMajor", "2.0", false, true},
		{"Empty", "", true, false},
		{"Unparseable", "dev-build", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compatible, warning := CheckBroker(tt.reported)
			if compatible != tt.compatible {
				t.Errorf("CheckBroker(%q) compatible = %v, want %v", tt.reported, compatible, tt.compatible)
			}
			if (warning != "") != tt.wantWarn {
				t.Errorf("CheckBroker(%q) warning = %q, wantWarn %v", tt.reported, warning, tt.wantWarn)
			}
		})
	}
}

func TestCurrent(t *testing.T) {
	v, err := Parse(Current)
	if err != nil {
		t.Fatalf("Parse(Current) returned error: %v", err)
	}
	if v.Major != 1 || v.Minor != 0 {
		t.Errorf("Current version = %s, want 1.0", v)
	}
}
