/*
Package assuu implements the uuencoding variant ASS uses to embed font and
graphic binaries as text lines (spec.md §6): the first byte of each encoded
line gives the decoded length as (c - 0x20), and each run of 4 encoded
characters expands to 3 decoded bytes via the standard UU 6-bit mapping.

A payload is terminated by a line "end" or a blank line; assparse is
responsible for locating the payload's line range and handing the interior
lines to Decode. Decoding itself is deferred until a caller actually asks
for the font/graphic bytes (spec.md §4.1).
*/
package assuu

import (
	"errors"
	"fmt"
)

// ErrInvalidLine is returned when a uuencoded line's declared length byte
// or body cannot be decoded.
var ErrInvalidLine = errors.New("assuu: invalid uuencoded line")

const lineTerminator = "`" // some encoders use backtick instead of space for zero bits

// uuChar maps a decoded 6-bit value to its uuencoded ASCII character.
func uuChar(v byte) byte {
	v &= 0x3f
	if v == 0 {
		return '`'
	}
	return v + 0x20
}

// uuValue maps a uuencoded ASCII character back to its 6-bit value.
func uuValue(c byte) (byte, bool) {
	if c == '`' {
		return 0, true
	}
	if c < 0x20 || c > 0x5f {
		return 0, false
	}
	return c - 0x20, true
}

// DecodeLine decodes a single uuencoded line (without its trailing newline)
// into the raw bytes it represents.
func DecodeLine(line string) ([]byte, error) {
	if len(line) == 0 {
		return nil, nil
	}
	lengthByte := line[0]
	if lengthByte < 0x20 || lengthByte > 0x20+45 {
		return nil, fmt.Errorf("%w: bad length byte %q", ErrInvalidLine, lengthByte)
	}
	n := int(lengthByte - 0x20)
	body := line[1:]

	out := make([]byte, 0, n)
	i := 0
	for i+4 <= len(body) && len(out) < n {
		var vals [4]byte
		for j := 0; j < 4; j++ {
			v, ok := uuValue(body[i+j])
			if !ok {
				return nil, fmt.Errorf("%w: bad character %q in group", ErrInvalidLine, body[i+j])
			}
			vals[j] = v
		}
		b0 := vals[0]<<2 | vals[1]>>4
		b1 := vals[1]<<4 | vals[2]>>2
		b2 := vals[2]<<6 | vals[3]
		out = appendClamped(out, n, b0, b1, b2)
		i += 4
	}
	if len(out) < n {
		return nil, fmt.Errorf("%w: truncated body, got %d of %d bytes", ErrInvalidLine, len(out), n)
	}
	return out[:n], nil
}

func appendClamped(out []byte, n int, bs ...byte) []byte {
	for _, b := range bs {
		if len(out) >= n {
			break
		}
		out = append(out, b)
	}
	return out
}

// Decode decodes a sequence of uuencoded lines (as produced by assparse for
// a Fonts/Graphics entry body) into the concatenated payload bytes.
//
// Decode never aborts on a malformed line; instead it stops at the first
// bad line and returns the bytes successfully decoded so far along with an
// error describing the truncation, mirroring the parse layer's
// error-tolerant policy (spec.md §7).
func Decode(lines []string) ([]byte, error) {
	var out []byte
	for idx, line := range lines {
		decoded, err := DecodeLine(line)
		if err != nil {
			return out, fmt.Errorf("assuu: line %d: %w", idx, err)
		}
		out = append(out, decoded...)
	}
	return out, nil
}

// EncodeLine encodes up to 45 bytes of data into a single uuencoded line.
func EncodeLine(data []byte) (string, error) {
	if len(data) > 45 {
		return "", fmt.Errorf("assuu: EncodeLine: data too long (%d > 45 bytes)", len(data))
	}
	out := make([]byte, 0, 1+((len(data)+2)/3)*4)
	out = append(out, byte(len(data))+0x20)
	for i := 0; i < len(data); i += 3 {
		var b0, b1, b2 byte
		b0 = data[i]
		if i+1 < len(data) {
			b1 = data[i+1]
		}
		if i+2 < len(data) {
			b2 = data[i+2]
		}
		out = append(out,
			uuChar(b0>>2),
			uuChar(b0<<4|b1>>4),
			uuChar(b1<<2|b2>>6),
			uuChar(b2),
		)
	}
	return string(out), nil
}

// Encode splits data into 45-byte groups and uuencodes each into its own
// line, terminated by "end" as spec.md §6 requires. This is the dual of
// Decode, used by assedit's embed-font/embed-graphic commands to write
// binary payload back into an ASS document (ass-core's original uuencode
// module, ported from, is symmetric; spec.md only requires the decode
// half, so Encode is a supplemental addition, see SPEC_FULL.md §3).
func Encode(data []byte) ([]string, error) {
	var lines []string
	for i := 0; i < len(data); i += 45 {
		end := i + 45
		if end > len(data) {
			end = len(data)
		}
		line, err := EncodeLine(data[i:end])
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	lines = append(lines, "end")
	return lines, nil
}
