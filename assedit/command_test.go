package assedit

import (
	"strings"
	"testing"
)

func TestCreateEditDeleteCloneStyle(t *testing.T) {
	doc := NewDocument(s1Source)

	create := &CreateStyleCommand{Values: map[string]string{
		"Name": "Alt", "Fontname": "Arial", "Fontsize": "24",
		"PrimaryColour": "&H00FFFFFF", "SecondaryColour": "&H000000FF",
		"OutlineColour": "&H00000000", "BackColour": "&H00000000",
		"Bold": "0", "Italic": "0", "Underline": "0", "StrikeOut": "0",
		"ScaleX": "100", "ScaleY": "100", "Spacing": "0", "Angle": "0",
		"BorderStyle": "1", "Outline": "2", "Shadow": "0", "Alignment": "2",
		"MarginL": "10", "MarginR": "10", "MarginV": "10", "Encoding": "1",
	}}
	if res, err := create.Execute(doc); err != nil || !res.Success {
		t.Fatalf("create: %v %+v", err, res)
	}
	if !strings.Contains(doc.Text(), "Alt,Arial,24") {
		t.Fatalf("created row not found: %q", doc.Text())
	}

	edit := &EditStyleCommand{Name: "Alt", Column: "Fontsize", Value: "30"}
	if res, err := edit.Execute(doc); err != nil || !res.Success {
		t.Fatalf("edit: %v %+v", err, res)
	}
	if !strings.Contains(doc.Text(), "Alt,Arial,30") {
		t.Fatalf("edited row not found: %q", doc.Text())
	}

	clone := &CloneStyleCommand{SourceName: "Alt", NewName: "Alt2"}
	if res, err := clone.Execute(doc); err != nil || !res.Success {
		t.Fatalf("clone: %v %+v", err, res)
	}
	if !strings.Contains(doc.Text(), "Alt2,Arial,30") {
		t.Fatalf("cloned row not found: %q", doc.Text())
	}

	del := &DeleteStyleCommand{Name: "Alt2"}
	if res, err := del.Execute(doc); err != nil || !res.Success {
		t.Fatalf("delete: %v %+v", err, res)
	}
	if strings.Contains(doc.Text(), "Alt2,") {
		t.Fatalf("deleted row still present: %q", doc.Text())
	}
}

func TestKaraokeGenerateAdjustApply(t *testing.T) {
	doc := NewDocument(s1Source)
	idx := strings.Index(doc.Text(), "Hello World!")
	r := Range{idx, idx + len("Hello World!")}

	gen := &GenerateKaraokeCommand{Range: r, TotalCs: 200}
	if res, err := gen.Execute(doc); err != nil || !res.Success {
		t.Fatalf("generate: %v %+v", err, res)
	}
	if !strings.Contains(doc.Text(), `\k100}Hello`) {
		t.Fatalf("karaoke tags not generated: %q", doc.Text())
	}

	newIdx := strings.Index(doc.Text(), "Hello")
	adjust := &AdjustKaraokeCommand{Pos: newIdx, DeltaCs: 20}
	if res, err := adjust.Execute(doc); err != nil || !res.Success {
		t.Fatalf("adjust: %v %+v", err, res)
	}
	if !strings.Contains(doc.Text(), `\k120}`) {
		t.Fatalf("adjusted duration not found: %q", doc.Text())
	}

	apply := &ApplyKaraokeCommand{Pos: newIdx, Kind: "kf"}
	if res, err := apply.Execute(doc); err != nil || !res.Success {
		t.Fatalf("apply: %v %+v", err, res)
	}
	if !strings.Contains(doc.Text(), `\kf120}`) {
		t.Fatalf("applied karaoke kind not found: %q", doc.Text())
	}
}

func TestExtensionRegistryBuiltinCommands(t *testing.T) {
	doc := NewDocument("hello")
	cmd, err := DefaultExtensions.Build("text.insert", map[string]string{"pos": "0", "text": "X"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if res, err := cmd.Execute(doc); err != nil || !res.Success {
		t.Fatalf("execute: %v %+v", err, res)
	}
	if doc.Text() != "Xhello" {
		t.Fatalf("text = %q", doc.Text())
	}
}

func TestExtensionRegistryDuplicateRejected(t *testing.T) {
	r := NewExtensionRegistry()
	noop := func(map[string]string) (Command, error) { return nil, nil }
	if err := r.Register("x", noop); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register("x", noop); err == nil {
		t.Fatal("expected error on duplicate registration")
	}
}
