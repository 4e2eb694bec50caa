package field

import (
	"bytes"
)

// BadStartError is returned when the header begins with junk text that does not
// appear to be a header. This text is preserved in the error object.
type BadStartError struct {
	BadStart []byte // the text skipped at the start of header
}

// Error returns the error message.
func (err *BadStartError) Error() string {
	return "header starts with text that does not appear to be a header"
}

// Line is the unparsed content of a complete header field, including any
// folded continuation lines.
type Line []byte

// Lines is zero or more unparsed header field lines.
type Lines []Line

// isContinuation reports whether the given line continues the previous field.
// Lines starting with a space or tab continue, and so do lines with no colon,
// since those cannot start a field.
func isContinuation(line []byte) bool {
	return line[0] == ' ' || line[0] == '\t' || !bytes.ContainsRune(line, ':')
}

// ParseLines splits the given header bytes into field lines using the given
// line break. Input is read up to the first blank line or the end.
//
// This is more liberal than RFC 5322. Any line that starts with a space or
// lacks a colon is glued onto the field before it. If such lines appear
// before the first field, they are skipped and a *BadStartError holding them
// is returned along with the lines that did parse.
func ParseLines(m, lb []byte) (Lines, error) {
	h := make(Lines, 0, len(m)/80+1)
	var err *BadStartError
	for _, line := range bytes.SplitAfter(m, lb) {
		// an empty line or a blank line ends the header
		if len(line) == 0 || bytes.Equal(line, lb) {
			break
		}

		if !isContinuation(line) {
			h = append(h, line)
			continue
		}

		if len(h) == 0 {
			if err == nil {
				err = &BadStartError{}
			}
			err.BadStart = append(err.BadStart, line...)
			continue
		}

		h[len(h)-1] = append(h[len(h)-1], line...)
	}

	if err != nil {
		return h, err
	}
	return h, nil
}

// unfold removes line breaks that are followed by whitespace, leaving the
// whitespace in place.
func unfold(b, lb []byte) []byte {
	if len(lb) == 0 {
		return b
	}

	out := make([]byte, 0, len(b))
	for {
		ix := bytes.Index(b, lb)
		if ix < 0 {
			return append(out, b...)
		}

		out = append(out, b[:ix]...)
		b = b[ix+len(lb):]
	}
}

// Parse builds a field from a single header field line, including any folded
// continuation lines. The trailing line break is dropped, the original bytes
// are kept for output, and the body is unfolded, trimmed, and decoded.
func Parse(line Line, lb []byte) *Field {
	raw := bytes.TrimSuffix(line, lb)

	off := 1
	ix := bytes.IndexByte(raw, ':')
	if ix < 0 {
		ix = len(raw)
		off = 0
	}

	name := string(bytes.TrimSpace(unfold(raw[:ix], lb)))
	body := string(bytes.TrimSpace(unfold(raw[ix+off:], lb)))
	if dec, err := Decode(body); err == nil {
		body = dec
	}

	kept := make([]byte, len(raw))
	copy(kept, raw)

	return &Field{
		name: name,
		body: body,
		raw:  kept,
	}
}
