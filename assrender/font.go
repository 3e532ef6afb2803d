/*
Package assrender rasterizes a parsed Script into pre-multiplied-alpha RGBA
frames (spec.md §4.6): event scheduling, override-tag-driven layout, a
three-tier glyph cache, and pixel composition.
*/
package assrender

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

func tracer() tracing.Trace {
	return tracing.Select("assgo.assrender")
}

// Face is one loaded, parsed font usable for rasterization, named after
// the teacher's ScalableFont (font.go): same fields, same sfnt-based
// parsing, generalized to be one entry of a FontStack rather than a single
// global font.
type Face struct {
	Fontname string
	Filepath string
	Binary   []byte
	SFNT     *sfnt.Font

	index int // position in the owning FontStack, used as the glyph cache key's FontIndex
}

// LoadFace loads an OpenType font (TTF or OTF) from a file.
func LoadFace(path string) (*Face, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFace(path, b)
}

// ParseFace parses an OpenType font already in memory. path is recorded for
// diagnostics only and may be empty.
func ParseFace(path string, raw []byte) (*Face, error) {
	f := &Face{Filepath: path, Binary: raw}
	sf, err := sfnt.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("assrender: parse font %q: %w", path, err)
	}
	f.SFNT = sf
	if name, err := sf.Name(nil, sfnt.NameIDFull); err == nil {
		f.Fontname = name
		tracer().Debugf("loaded font %q from %q", name, path)
	}
	return f, nil
}

// FontStack is the renderer's "stack of font byte blobs" input (spec.md
// §4.6): an ordered list of Faces, looked up by family name with a
// first-registered fallback when a style names a font that was never
// registered (so rendering degrades to a substitute face rather than
// failing outright; spec.md §7's "collect issues, don't abort").
//
// FontStack is safe for concurrent reads; Register takes a write lock.
type FontStack struct {
	mu    sync.RWMutex
	faces []*Face
	byName map[string]*Face
}

// NewFontStack returns an empty stack. A Renderer with no registered faces
// uses the fixed-rectangle fallback path (spec.md §4.6's "Fallback").
func NewFontStack() *FontStack {
	return &FontStack{byName: make(map[string]*Face)}
}

// Register adds face to the stack, indexed (case-insensitively) by its
// reported Fontname.
func (fs *FontStack) Register(face *Face) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	face.index = len(fs.faces)
	fs.faces = append(fs.faces, face)
	if face.Fontname != "" {
		fs.byName[strings.ToLower(face.Fontname)] = face
	}
}

// Lookup resolves a style's Fontname column to a Face: an exact
// case-insensitive name match, else the first registered Face, else
// (nil, false) when the stack is empty.
func (fs *FontStack) Lookup(name string) (*Face, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if f, ok := fs.byName[strings.ToLower(name)]; ok {
		return f, true
	}
	if len(fs.faces) > 0 {
		return fs.faces[0], true
	}
	return nil, false
}

// Empty reports whether no faces have been registered, selecting the
// fixed-rectangle fallback path.
func (fs *FontStack) Empty() bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.faces) == 0
}
