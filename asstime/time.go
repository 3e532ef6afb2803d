/*
Package asstime codecs ASS timecodes: `H:MM:SS.CC`, hours unbounded,
minutes and seconds below 60, centiseconds below 100.
*/
package asstime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("assgo.asstime")
}

// ErrInvalidTimecode is returned by Parse for any input that does not match
// H:MM:SS.CC with minutes/seconds < 60 and centiseconds < 100.
var ErrInvalidTimecode = errors.New("asstime: invalid timecode")

// Centiseconds is a duration expressed in hundredths of a second, the
// native granularity of ASS timing.
type Centiseconds int64

// Seconds returns the duration as floating-point seconds.
func (cs Centiseconds) Seconds() float64 {
	return float64(cs) / 100.0
}

// Parse decodes an ASS timecode of the form H:MM:SS.CC into Centiseconds.
//
// Hours may be any non-negative number of digits; minutes and seconds must
// be in [0,60); centiseconds must be in [0,100). Any violation returns
// ErrInvalidTimecode.
func Parse(s string) (Centiseconds, error) {
	s = strings.TrimSpace(s)
	// Split as H : MM : SS . CC
	firstColon := strings.IndexByte(s, ':')
	if firstColon < 0 {
		return 0, fmt.Errorf("%w: %q: missing ':'", ErrInvalidTimecode, s)
	}
	hoursStr := s[:firstColon]
	rest := s[firstColon+1:]
	secondColon := strings.IndexByte(rest, ':')
	if secondColon < 0 {
		return 0, fmt.Errorf("%w: %q: missing second ':'", ErrInvalidTimecode, s)
	}
	minsStr := rest[:secondColon]
	rest2 := rest[secondColon+1:]
	dot := strings.IndexByte(rest2, '.')
	if dot < 0 {
		return 0, fmt.Errorf("%w: %q: missing '.'", ErrInvalidTimecode, s)
	}
	secsStr := rest2[:dot]
	csStr := rest2[dot+1:]

	if hoursStr == "" || minsStr == "" || secsStr == "" || csStr == "" {
		return 0, fmt.Errorf("%w: %q: empty field", ErrInvalidTimecode, s)
	}
	hours, err := strconv.ParseInt(hoursStr, 10, 64)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("%w: %q: bad hours", ErrInvalidTimecode, s)
	}
	mins, err := strconv.ParseInt(minsStr, 10, 64)
	if err != nil || mins < 0 || mins >= 60 {
		return 0, fmt.Errorf("%w: %q: minutes out of range", ErrInvalidTimecode, s)
	}
	secs, err := strconv.ParseInt(secsStr, 10, 64)
	if err != nil || secs < 0 || secs >= 60 {
		return 0, fmt.Errorf("%w: %q: seconds out of range", ErrInvalidTimecode, s)
	}
	if len(csStr) != 2 {
		return 0, fmt.Errorf("%w: %q: centiseconds must be 2 digits", ErrInvalidTimecode, s)
	}
	cs, err := strconv.ParseInt(csStr, 10, 64)
	if err != nil || cs < 0 || cs >= 100 {
		return 0, fmt.Errorf("%w: %q: centiseconds out of range", ErrInvalidTimecode, s)
	}
	total := ((hours*60+mins)*60+secs)*100 + cs
	return Centiseconds(total), nil
}

// Format encodes Centiseconds back into H:MM:SS.CC form.
//
// Negative durations are clamped to zero; the function never fails, so that
// callers can always round-trip a value they previously parsed.
func Format(cs Centiseconds) string {
	if cs < 0 {
		cs = 0
		tracer().Infof("asstime.Format: negative duration clamped to zero")
	}
	total := int64(cs)
	hundredths := total % 100
	total /= 100
	secs := total % 60
	total /= 60
	mins := total % 60
	hours := total / 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, mins, secs, hundredths)
}
