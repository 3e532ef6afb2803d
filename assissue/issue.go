/*
Package assissue provides a shared, error-tolerant issue collector used by
the parser, analyzer, editor and renderer.

None of assgo's core components abort on malformed input (see spec.md §7):
instead of returning an error, they return a result plus an accumulated list
of Issues, each carrying a Span, a Severity and a Code. This package is the
common home for that pattern, generalized from the teacher's
ot.errorCollector/FontError/FontWarning split into a single typed list.
*/
package assissue

import "fmt"

// Severity classifies how serious an Issue is.
type Severity int

const (
	// Info records a non-defective observation worth surfacing to a caller.
	Info Severity = iota
	// Warning records a recoverable defect; parsing/analysis/rendering continues.
	Warning
	// Error records a defect serious enough that the affected record was
	// dropped or substituted, but the overall operation still completed.
	Error
)

// String renders a Severity for logs and issue messages.
func (s Severity) String() string {
	switch s {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Code is a stable, machine-checkable issue identifier (spec.md §4.1's
// error taxonomy, plus analysis/render/edit codes).
type Code string

const (
	CodeUnknownSection         Code = "unknown_section"
	CodeMissingFormat          Code = "missing_format"
	CodeColumnCountMismatch    Code = "column_count_mismatch"
	CodeBadEventKind           Code = "bad_event_kind"
	CodeMalformedHeader        Code = "malformed_header"
	CodeEmbeddedBinaryTruncate Code = "embedded_binary_truncated"
	CodeDuplicateKey           Code = "duplicate_key"

	CodeStyleOutOfRange  Code = "style_out_of_range"
	CodeDuplicateName    Code = "duplicate_name"
	CodeBadTiming        Code = "bad_timing"
	CodeFieldDropped     Code = "field_dropped"
	CodeInvalidTag       Code = "invalid_tag"
	CodePerformance      Code = "performance"

	CodeMissingFont  Code = "missing_font"
	CodeUnknownTag   Code = "unknown_tag_render"
	CodeUnsupported3D Code = "unsupported_3d_rotation"
)

// Span is a byte offset range into a source buffer, [Start, End).
//
// Every Span satisfies Start <= End <= len(source) and, when carved from
// UTF-8 text, lies on a rune boundary. Span is the spine of assgo's
// zero-copy model: AST fields store Spans (or strings sliced directly from
// the source) rather than copies.
type Span struct {
	Start, End int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Slice returns the substring of src denoted by s. Callers must pass the
// same buffer the Span was derived from.
func (s Span) Slice(src []byte) []byte {
	if s.Start < 0 || s.End > len(src) || s.Start > s.End {
		return nil
	}
	return src[s.Start:s.End]
}

// Issue is one accumulated parse/analysis/render/edit diagnostic.
type Issue struct {
	Code     Code
	Severity Severity
	Message  string
	Span     Span
}

// Error implements the error interface so an Issue can be wrapped or
// compared against sentinel errors where convenient.
func (i Issue) Error() string {
	return fmt.Sprintf("[%s] %s at [%d,%d): %s", i.Severity, i.Code, i.Span.Start, i.Span.End, i.Message)
}

// Collector accumulates Issues during a single parse/analyze/render pass.
//
// It is not safe for concurrent use; each top-level operation (assparse.Parse,
// assanalysis.Analyze, a single render call) owns its own Collector.
type Collector struct {
	issues []Issue
}

// Add records an issue.
func (c *Collector) Add(code Code, sev Severity, span Span, format string, args ...any) {
	c.issues = append(c.issues, Issue{
		Code:     code,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	})
}

// Issues returns all recorded issues in the order they were added.
func (c *Collector) Issues() []Issue {
	return c.issues
}

// HasErrors reports whether any recorded issue has Error severity.
func (c *Collector) HasErrors() bool {
	for _, iss := range c.issues {
		if iss.Severity == Error {
			return true
		}
	}
	return false
}

// BySeverity returns only the issues at or above the given severity.
func (c *Collector) BySeverity(min Severity) []Issue {
	out := make([]Issue, 0, len(c.issues))
	for _, iss := range c.issues {
		if iss.Severity >= min {
			out = append(out, iss)
		}
	}
	return out
}

// Merge appends another Collector's issues onto this one, used when a
// sub-parse (e.g. override-tag parsing inside an event) needs to report
// into the owning Script's issue list.
func (c *Collector) Merge(other *Collector) {
	if other == nil {
		return
	}
	c.issues = append(c.issues, other.issues...)
}
