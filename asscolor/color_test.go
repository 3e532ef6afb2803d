package asscolor

import "testing"

func TestParseForms(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{"&H00FFFFFF&", Color{R: 255, G: 255, B: 255, A: 255}},
		{"&H000000FF&", Color{R: 255, G: 0, B: 0, A: 255}},
		{"&HFF000000", Color{R: 0, G: 0, B: 0, A: 0}},
		{"0xFF0000", Color{R: 255, G: 0, B: 0, A: 255}},
		{"0000FF", Color{R: 255, G: 0, B: 0, A: 255}},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestRoundTripOpaqueAndTransparent(t *testing.T) {
	for _, c := range []Color{
		{R: 10, G: 20, B: 30, A: 255},
		{R: 10, G: 20, B: 30, A: 0},
	} {
		s := Format(c)
		got, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", s, err)
		}
		if got != c {
			t.Fatalf("round trip mismatch: %+v != %+v (via %q)", got, c, s)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("&HXYZ&"); err == nil {
		t.Fatal("expected error for non-hex color")
	}
	if _, err := Parse("&H12345&"); err == nil {
		t.Fatal("expected error for wrong digit count")
	}
}
