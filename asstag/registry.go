/*
Package asstag provides the override-tag micro-parser for ASS dialogue text
(`{\tag(args)\tag…}`) and a process-wide, append-only tag registry.

The registry mirrors the teacher's shaperRegistry (harfbuzz.shaperRegistry):
an RWMutex-guarded slice of named entries, lock-free-ish reads, rejecting a
second registration under the same name. Here the entries are tag Handlers
rather than shaping engines, and registration additionally records argument
shape and animation support (spec.md §4.2).
*/
package asstag

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("assgo.asstag")
}

// ErrTagAlreadyRegistered is returned by Register (and Registry.Register)
// when a handler for the same tag name already exists.
var ErrTagAlreadyRegistered = errors.New("asstag: tag already registered")

// ArgKind enumerates the argument shapes a Handler may declare (spec.md §4.2).
type ArgKind int

const (
	KindInteger ArgKind = iota
	KindFloat
	KindString
	KindColor
	KindPosition // a pair (x, y)
	// Optional and VarArgs are modifiers listed alongside a base ArgKind;
	// asstag does not interpret them, and Handler.ArgKinds serves
	// introspection/tooling only.
	KindOptional
	KindVarArgs
)

// Args is the parsed argument list handed to Handler.Apply. Handlers
// interpret the slice according to their own declared ArgKinds; asstag
// itself does not typecheck arguments beyond giving the handler the raw,
// comma-split, parenthesis-aware text.
type Args struct {
	Raw   string   // the full argument text between the tag name and the next tag/brace
	Parts []string // Raw (outer parens stripped) split on top-level commas, trimmed; empty only if that is blank
}

// Handler describes one override tag: its expected argument shape, whether
// it participates in time-based animation (spec.md's `\t`), and the
// callback that applies it to a running style state.
//
// StateMutator is an opaque mutation target; assrender supplies a concrete
// StyleState-shaped implementation. asstag is kept independent of assrender
// so that assanalysis can use the same registry purely for tag inventory
// and complexity scoring without importing the renderer.
type Handler interface {
	Name() string
	ArgKinds() []ArgKind
	SupportsAnimation() bool
	Apply(args Args, state StateMutator, tNowMs float64) error
}

// StateMutator is the minimal interface a style-state needs to satisfy for
// tag handlers to mutate it. assrender.StyleState implements this.
type StateMutator interface {
	SetBool(field string, v bool)
	SetFloat(field string, v float64)
	SetString(field string, v string)
	SetColor(field string, argbHex string)
	SetPosition(x, y float64)
	SetMove(x1, y1, x2, y2, t1, t2 float64)
	SetFade(inMs, outMs float64)
	SetAnimation(field string, from, to float64, t1, t2Ms float64)
	SetRotation(axis byte, degrees float64)
	SetKaraoke(kind string, durationCs int)
	SetClip(raw string, inverse bool)
	SetDraw(scale int)
	Reset()
}

// Registry is a process-wide, append-only map of tag name to Handler.
// Lookups take an RLock; registration takes a write Lock and rejects
// duplicate names (spec.md §4.2, §5).
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Handler
	order   []string // registration order, for deterministic introspection
}

// NewRegistry creates an empty registry. Most callers use the package-level
// Default registry instead; NewRegistry exists for tests and for embedders
// that want an isolated tag set.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Handler)}
}

// Register adds handler under handler.Name(). It is idempotent only in the
// sense that re-registering the same *Handler value is rejected exactly
// like any other conflicting registration — callers must not attempt to
// register twice; semantics never depend on registration order (spec.md §9).
func (r *Registry) Register(handler Handler) error {
	if handler == nil {
		return fmt.Errorf("asstag: cannot register nil handler")
	}
	name := strings.TrimSpace(handler.Name())
	if name == "" {
		return fmt.Errorf("asstag: cannot register handler with empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %q", ErrTagAlreadyRegistered, name)
	}
	r.byName[name] = handler
	r.order = append(r.order, name)
	tracer().Debugf("registered override tag handler %q", name)
	return nil
}

// Lookup returns the handler registered for name, if any.
func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byName[name]
	return h, ok
}

// Names returns every registered tag name in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Default is the process-wide registry populated with built-in handlers at
// package initialization (spec.md §4.2, §9: "constructed once at library
// bootstrap; do not hide initialization behind lazy statics that capture
// implicit ordering dependencies" — init() below is the single, explicit,
// order-independent bootstrap point).
var Default = NewRegistry()

func init() {
	for _, h := range builtinHandlers() {
		if err := Default.Register(h); err != nil {
			panic(fmt.Sprintf("asstag: bootstrap registration failed for %q: %v", h.Name(), err))
		}
	}
}
