package assedit

import (
	"sort"

	"github.com/google/uuid"
)

// EventKind identifies the kind of DocumentEvent (spec.md §4.4's "Event
// channel").
type EventKind int

const (
	EventEdited EventKind = iota
	EventSelectionChanged
	EventSaved
	EventLoaded
	EventValidated
	EventSearchCompleted
)

func (k EventKind) String() string {
	switch k {
	case EventEdited:
		return "Edited"
	case EventSelectionChanged:
		return "SelectionChanged"
	case EventSaved:
		return "Saved"
	case EventLoaded:
		return "Loaded"
	case EventValidated:
		return "Validated"
	case EventSearchCompleted:
		return "SearchCompleted"
	default:
		return "Unknown"
	}
}

// DocumentEvent is broadcast to subscribers on every committed edit,
// selection change, save, load, validation completion, and search
// completion (spec.md §4.4).
type DocumentEvent struct {
	Kind      EventKind
	Version   uint64
	Range     Range
	Modifying bool // true iff this event represents a document mutation
}

// EventFilter is a predicate over DocumentEvent. Filters compose via And,
// Or and Not (SPEC_FULL.md §3, supplementing spec.md §4.4's "filters (by
// kind, by modification/non-modification, by custom predicate)" with the
// original editor's composable filter combinators).
type EventFilter func(DocumentEvent) bool

// And returns a filter matching events that satisfy both f and g.
func (f EventFilter) And(g EventFilter) EventFilter {
	return func(e DocumentEvent) bool { return f(e) && g(e) }
}

// Or returns a filter matching events that satisfy either f or g.
func (f EventFilter) Or(g EventFilter) EventFilter {
	return func(e DocumentEvent) bool { return f(e) || g(e) }
}

// Not returns a filter matching events that do not satisfy f.
func (f EventFilter) Not() EventFilter {
	return func(e DocumentEvent) bool { return !f(e) }
}

// ByKind returns a filter matching any of the given kinds.
func ByKind(kinds ...EventKind) EventFilter {
	set := make(map[EventKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return func(e DocumentEvent) bool { return set[e.Kind] }
}

// ByModification returns a filter matching events whose Modifying field
// equals modifying.
func ByModification(modifying bool) EventFilter {
	return func(e DocumentEvent) bool { return e.Modifying == modifying }
}

// Any matches every event; the default filter for a subscription that
// didn't specify one.
func Any() EventFilter { return func(DocumentEvent) bool { return true } }

// Listener receives DocumentEvents that pass its subscription's filter.
type Listener func(DocumentEvent)

type subscription struct {
	id       string
	filter   EventFilter
	priority int
	seq      int // registration order, for stable tie-break
	listener Listener
}

// Subscribe registers listener to receive events matching filter (nil means
// Any()), at the given priority (higher runs first). It returns a
// subscription ID usable with Unsubscribe.
//
// If called during dispatch, the subscription is queued and takes effect
// only after the current dispatch completes (spec.md §9's "defer
// registrations until current dispatch completes").
func (d *Document) Subscribe(filter EventFilter, priority int, listener Listener) string {
	if filter == nil {
		filter = Any()
	}
	sub := &subscription{id: uuid.NewString(), filter: filter, priority: priority, listener: listener}
	if d.dispatching {
		d.pendingAdd = append(d.pendingAdd, sub)
		return sub.id
	}
	d.addSubscription(sub)
	return sub.id
}

// Unsubscribe removes a listener previously returned by Subscribe. If
// called during dispatch, removal is deferred until dispatch completes.
func (d *Document) Unsubscribe(id string) {
	if d.dispatching {
		d.pendingRemove = append(d.pendingRemove, id)
		return
	}
	d.removeSubscription(id)
}

func (d *Document) addSubscription(sub *subscription) {
	sub.seq = 0
	for _, s := range d.listeners {
		if s.seq >= sub.seq {
			sub.seq = s.seq + 1
		}
	}
	d.listeners = append(d.listeners, sub)
	sortListeners(d.listeners)
}

func (d *Document) removeSubscription(id string) {
	out := d.listeners[:0]
	for _, s := range d.listeners {
		if s.id != id {
			out = append(out, s)
		}
	}
	d.listeners = out
}

func sortListeners(subs []*subscription) {
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].priority != subs[j].priority {
			return subs[i].priority > subs[j].priority // priority desc
		}
		return subs[i].seq < subs[j].seq // registration asc
	})
}

// emit dispatches ev synchronously to every matching listener, in
// priority-desc/registration-asc order (spec.md §4.4), then applies any
// Subscribe/Unsubscribe calls deferred during this dispatch.
func (d *Document) emit(ev DocumentEvent) {
	d.dispatching = true
	for _, sub := range d.listeners {
		if sub.filter(ev) {
			sub.listener(ev)
		}
	}
	d.dispatching = false

	for _, sub := range d.pendingAdd {
		d.addSubscription(sub)
	}
	d.pendingAdd = nil
	for _, id := range d.pendingRemove {
		d.removeSubscription(id)
	}
	d.pendingRemove = nil
}
