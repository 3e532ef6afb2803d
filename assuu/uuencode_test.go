package assuu

import "testing"

func TestDecodeLineSpecExample(t *testing.T) {
	got, err := DecodeLine("#0V%T")
	if err != nil {
		t.Fatalf("DecodeLine error: %v", err)
	}
	if string(got) != "Cat" {
		t.Fatalf("got %q, want %q", got, "Cat")
	}
}

func TestDecodeMultiLine(t *testing.T) {
	got, err := Decode([]string{"#0V%T"})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if string(got) != "Cat" {
		t.Fatalf("got %q, want %q", got, "Cat")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("Cat"),
		[]byte("Hello, uuencoded world! This is a longer payload that spans multiple lines."),
		{},
		{0, 1, 2, 3, 255, 254},
	}
	for _, p := range payloads {
		lines, err := Encode(p)
		if err != nil {
			t.Fatalf("Encode error: %v", err)
		}
		if lines[len(lines)-1] != "end" {
			t.Fatalf("expected trailing 'end' terminator, got %v", lines)
		}
		got, err := Decode(lines[:len(lines)-1])
		if err != nil {
			t.Fatalf("Decode error: %v", err)
		}
		if string(got) != string(p) {
			t.Fatalf("round trip mismatch: got %v want %v", got, p)
		}
	}
}

func TestDecodeLineTruncatedBodyErrors(t *testing.T) {
	_, err := DecodeLine("#0V")
	if err == nil {
		t.Fatal("expected error for truncated body")
	}
}
