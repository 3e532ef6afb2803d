package asstag

import "testing"

func TestTokenizeOverrideTags(t *testing.T) {
	text := `{\b1\i1\c&H00FF00&}Styled text{\r}`
	tokens, col := Tokenize(text, Default)
	if len(col.Issues()) != 0 {
		t.Fatalf("unexpected issues: %v", col.Issues())
	}
	var tags []TagInstance
	for _, tok := range tokens {
		if tok.Kind == TokenBlock {
			tags = append(tags, tok.Tags...)
		}
	}
	if len(tags) != 4 {
		t.Fatalf("expected 4 tag instances, got %d: %+v", len(tags), tags)
	}
	names := []string{tags[0].Name, tags[1].Name, tags[2].Name, tags[3].Name}
	want := []string{"b", "i", "c", "r"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("tag[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestPlainTextStripsOverridesAndExpandsEscapes(t *testing.T) {
	text := `{\b1\i1\c&H00FF00&}Styled text{\r}`
	pt := PlainText(text)
	if pt != "Styled text" {
		t.Fatalf("PlainText = %q", pt)
	}
	for _, r := range pt {
		if r == '{' || r == '}' {
			t.Fatalf("plain text retains a brace: %q", pt)
		}
	}

	esc := `line one\Nline two\hindented`
	pt2 := PlainText(esc)
	if pt2 != "line one\nline two indented" {
		t.Fatalf("PlainText escape expansion = %q", pt2)
	}
}

func TestUnterminatedBlockDiagnostic(t *testing.T) {
	text := `{\b1 unterminated`
	_, col := Tokenize(text, Default)
	if len(col.Issues()) == 0 {
		t.Fatal("expected an issue for unterminated block")
	}
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	r := NewRegistry()
	h := &genericHandler{name: "b", apply: func(Args, StateMutator, float64) error { return nil }}
	if err := r.Register(h); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(h); err == nil {
		t.Fatal("expected error on duplicate registration")
	}
}

func TestSplitArgsHandlesParens(t *testing.T) {
	a := splitArgs("(100,200)")
	if len(a.Parts) != 2 || a.Parts[0] != "100" || a.Parts[1] != "200" {
		t.Fatalf("splitArgs = %+v", a)
	}
}
