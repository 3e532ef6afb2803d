package asstime

import "testing"

func TestParseFormatRoundTrip(t *testing.T) {
	cases := []string{
		"0:00:00.00",
		"0:00:05.00",
		"1:23:45.67",
		"100:00:00.00",
	}
	for _, in := range cases {
		cs, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", in, err)
		}
		out := Format(cs)
		cs2, err := Parse(out)
		if err != nil {
			t.Fatalf("re-Parse(%q) error: %v", out, err)
		}
		if cs != cs2 {
			t.Fatalf("round-trip mismatch: %v != %v", cs, cs2)
		}
	}
}

func TestParseRejectsOutOfRange(t *testing.T) {
	bad := []string{
		"0:60:00.00",
		"0:00:60.00",
		"0:00:00.100",
		"0:00:00",
		"abc",
		"",
	}
	for _, in := range bad {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) expected error, got nil", in)
		}
	}
}

func TestDurationMs(t *testing.T) {
	start, _ := Parse("0:00:00.00")
	end, _ := Parse("0:00:05.00")
	durMs := (end - start).Seconds() * 1000
	if durMs != 5000 {
		t.Fatalf("expected 5000ms, got %v", durMs)
	}
}
