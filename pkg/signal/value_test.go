package signal

import "testing"

func TestParseStrict(t *testing.T) {
	t.Run("TrailingCharacters", func(t *testing.T) {
		// The broker occasionally concatenates units onto values when
		// providers misbehave; those must never parse.
		for _, s := range []string{"72rpm", "1.5 ", " 1.5", "0x10", "12,5", "true!"} {
			if _, ok := Parse[float64](s); ok {
				t.Errorf("Parse[float64](%q) succeeded, want failure", s)
			}
		}
		if _, ok := Parse[int32]("42abc"); ok {
			t.Error("Parse[int32](42abc) succeeded, want failure")
		}
	})

	t.Run("Bool", func(t *testing.T) {
		v, ok := Parse[bool]("true")
		if !ok || v != true {
			t.Errorf("Parse[bool](true) = (%v, %v)", v, ok)
		}
		v, ok = Parse[bool]("0")
		if !ok || v != false {
			t.Errorf("Parse[bool](0) = (%v, %v)", v, ok)
		}
		if _, ok := Parse[bool]("yes"); ok {
			t.Error("Parse[bool](yes) succeeded, want failure")
		}
	})

	t.Run("IntegerRange", func(t *testing.T) {
		if v, ok := Parse[uint8]("255"); !ok || v != 255 {
			t.Errorf("Parse[uint8](255) = (%d, %v)", v, ok)
		}
		if _, ok := Parse[uint8]("256"); ok {
			t.Error("Parse[uint8](256) succeeded, want range failure")
		}
		if _, ok := Parse[uint16]("-1"); ok {
			t.Error("Parse[uint16](-1) succeeded, want failure")
		}
		if v, ok := Parse[int16]("-32768"); !ok || v != -32768 {
			t.Errorf("Parse[int16](-32768) = (%d, %v)", v, ok)
		}
	})

	t.Run("Float", func(t *testing.T) {
		if v, ok := Parse[float64]("88.4"); !ok || v != 88.4 {
			t.Errorf("Parse[float64](88.4) = (%g, %v)", v, ok)
		}
		if v, ok := Parse[float32]("1.5e3"); !ok || v != 1500 {
			t.Errorf("Parse[float32](1.5e3) = (%g, %v)", v, ok)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if _, ok := Parse[int64](""); ok {
			t.Error("Parse[int64]() succeeded, want failure")
		}
	})
}

func TestFormatRoundTrip(t *testing.T) {
	if s := Format(true); s != "true" {
		t.Errorf("Format(true) = %q", s)
	}
	if s := Format(int32(-17)); s != "-17" {
		t.Errorf("Format(int32(-17)) = %q", s)
	}
	if s := Format(uint64(18446744073709551615)); s != "18446744073709551615" {
		t.Errorf("Format(max uint64) = %q", s)
	}

	// Floats must survive a format/parse cycle bit-exact.
	for _, f := range []float64{0, 88.4, -0.25, 1e-9, 3.14159265358979} {
		got, ok := Parse[float64](Format(f))
		if !ok || got != f {
			t.Errorf("round trip %g: got (%g, %v)", f, got, ok)
		}
	}
	for _, f := range []float32{55.5, -1.25, 2.5e7} {
		got, ok := Parse[float32](Format(f))
		if !ok || got != f {
			t.Errorf("round trip %g: got (%g, %v)", f, got, ok)
		}
	}
}

func TestFieldAndViewNames(t *testing.T) {
	if FieldValue.String() != "VALUE" || FieldActuatorTarget.String() != "ACTUATOR_TARGET" {
		t.Error("unexpected field names")
	}
	if Field(9).String() != "UNKNOWN" {
		t.Error("unknown field should stringify as UNKNOWN")
	}
	if !FieldValue.Valid() || Field(0).Valid() {
		t.Error("Valid() misclassifies fields")
	}
	if ViewCurrent.String() != "CURRENT" || ViewTarget.String() != "TARGET" || ViewAll.String() != "ALL" {
		t.Error("unexpected view names")
	}
}
