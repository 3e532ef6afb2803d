package assedit

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// CommandResult reports the outcome of a Command's Execute (spec.md §4.4).
type CommandResult struct {
	Success     bool
	Changed     Range
	NewCursor   int
	Description string
}

// Command is one undoable editing operation (spec.md §4.4). Built-in
// commands wrap Document.Replace/Insert/Delete; custom commands registered
// through a CommandFactory (below) may do the same or compose several
// buffer edits into one logical undo step by issuing them through
// ReplaceRaw and calling Document.Revalidate once at the end.
type Command interface {
	Execute(d *Document) (CommandResult, error)
}

// CommandFactory builds a Command from a name and a string-keyed argument
// map, e.g. as parsed from a scripting console or a UI action. It mirrors
// asstag.Registry's and asstag's tag-handler registry pattern, adapted from
// a tag name -> Handler map to a command name -> constructor map
// (SPEC_FULL.md §3, supplementing spec.md's fixed built-in command set with
// the original editor's ExtensionRegistry for pluggable commands).
type CommandFactory func(args map[string]string) (Command, error)

// ErrCommandAlreadyRegistered is returned by ExtensionRegistry.Register for
// a duplicate command name.
var ErrCommandAlreadyRegistered = errors.New("assedit: command already registered")

// ExtensionRegistry is a process-wide, append-only map of command name to
// CommandFactory, following the same idempotent-registration discipline as
// asstag.Registry.
type ExtensionRegistry struct {
	mu      sync.RWMutex
	byName  map[string]CommandFactory
}

// NewExtensionRegistry returns an empty registry.
func NewExtensionRegistry() *ExtensionRegistry {
	return &ExtensionRegistry{byName: make(map[string]CommandFactory)}
}

// Register adds factory under name.
func (r *ExtensionRegistry) Register(name string, factory CommandFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %q", ErrCommandAlreadyRegistered, name)
	}
	r.byName[name] = factory
	return nil
}

// Build looks up name and invokes its factory with args.
func (r *ExtensionRegistry) Build(name string, args map[string]string) (Command, error) {
	r.mu.RLock()
	factory, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("assedit: no command registered for %q", name)
	}
	return factory(args)
}

// DefaultExtensions is the process-wide registry populated with the
// generic text commands at package initialization; style and karaoke
// commands are registered per-Document use case since they need schema
// context (a StylesSection/EventsSection to locate rows in), unlike the
// stateless text commands.
var DefaultExtensions = NewExtensionRegistry()

func init() {
	must := func(name string, f CommandFactory) {
		if err := DefaultExtensions.Register(name, f); err != nil {
			panic(fmt.Sprintf("assedit: bootstrap registration failed for %q: %v", name, err))
		}
	}
	must("text.insert", func(args map[string]string) (Command, error) {
		pos, err := intArg(args, "pos")
		if err != nil {
			return nil, err
		}
		return &InsertTextCommand{Pos: pos, Text: args["text"]}, nil
	})
	must("text.delete", func(args map[string]string) (Command, error) {
		start, err := intArg(args, "start")
		if err != nil {
			return nil, err
		}
		end, err := intArg(args, "end")
		if err != nil {
			return nil, err
		}
		return &DeleteTextCommand{Range: Range{start, end}}, nil
	})
	must("text.replace", func(args map[string]string) (Command, error) {
		start, err := intArg(args, "start")
		if err != nil {
			return nil, err
		}
		end, err := intArg(args, "end")
		if err != nil {
			return nil, err
		}
		return &ReplaceTextCommand{Range: Range{start, end}, Text: args["text"]}, nil
	})
}

func intArg(args map[string]string, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("assedit: missing argument %q", key)
	}
	n := 0
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return 0, fmt.Errorf("assedit: argument %q is not an integer: %q", key, v)
	}
	return n, nil
}

// InsertTextCommand inserts Text at Pos (spec.md §4.4's "generic text
// insert").
type InsertTextCommand struct {
	Pos  int
	Text string
}

func (c *InsertTextCommand) Execute(d *Document) (CommandResult, error) {
	if err := d.Insert(c.Pos, c.Text); err != nil {
		return CommandResult{}, err
	}
	return CommandResult{
		Success: true, Changed: Range{c.Pos, c.Pos + len(c.Text)},
		NewCursor: c.Pos + len(c.Text), Description: fmt.Sprintf("insert %d bytes at %d", len(c.Text), c.Pos),
	}, nil
}

// DeleteTextCommand removes Range (spec.md §4.4's "generic text delete").
type DeleteTextCommand struct {
	Range Range
}

func (c *DeleteTextCommand) Execute(d *Document) (CommandResult, error) {
	if err := d.Delete(c.Range); err != nil {
		return CommandResult{}, err
	}
	return CommandResult{
		Success: true, Changed: Range{c.Range.Start, c.Range.Start},
		NewCursor: c.Range.Start, Description: fmt.Sprintf("delete [%d,%d)", c.Range.Start, c.Range.End),
	}, nil
}

// ReplaceTextCommand substitutes Range with Text (spec.md §4.4's "generic
// text replace").
type ReplaceTextCommand struct {
	Range Range
	Text  string
}

func (c *ReplaceTextCommand) Execute(d *Document) (CommandResult, error) {
	if err := d.Replace(c.Range, c.Text); err != nil {
		return CommandResult{}, err
	}
	return CommandResult{
		Success: true, Changed: Range{c.Range.Start, c.Range.Start + len(c.Text)},
		NewCursor: c.Range.Start + len(c.Text),
		Description: fmt.Sprintf("replace [%d,%d) with %d bytes", c.Range.Start, c.Range.End, len(c.Text)),
	}, nil
}

// GenerateKaraokeCommand rewrites the dialogue text under Range by
// inserting a `\k<dur>` tag before each whitespace-delimited word, splitting
// the range's duration evenly (spec.md §4.4's "karaoke generate").
type GenerateKaraokeCommand struct {
	Range     Range
	TotalCs   int // total karaoke duration in centiseconds, divided across words
	KaraokeTag string // "k", "kf", or "ko"; defaults to "k"
}

func (c *GenerateKaraokeCommand) Execute(d *Document) (CommandResult, error) {
	tag := c.KaraokeTag
	if tag == "" {
		tag = "k"
	}
	original, err := d.TextRange(c.Range)
	if err != nil {
		return CommandResult{}, err
	}
	words := strings.Fields(original)
	if len(words) == 0 {
		return CommandResult{}, fmt.Errorf("assedit: karaoke range contains no words")
	}
	per := c.TotalCs / len(words)
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "{\\%s%d}%s", tag, per, w)
	}
	if err := d.Replace(c.Range, b.String()); err != nil {
		return CommandResult{}, err
	}
	return CommandResult{
		Success: true, Changed: Range{c.Range.Start, c.Range.Start + b.Len()},
		NewCursor: c.Range.Start + b.Len(),
		Description: fmt.Sprintf("generate karaoke over %d words", len(words)),
	}, nil
}
