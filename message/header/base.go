package header

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/zostay/go-mailfix/message/header/field"
)

var (
	// ErrIndexOutOfRange when an attempt is made to access a header field index
	// that is too large or to small.
	ErrIndexOutOfRange = errors.New("header field index is out of range")
)

// Base is the low-level storage for a header: the ordered list of fields, the
// line break used to write them out, and any junk that came before the first
// field.
type Base struct {
	lbr      Break
	preamble []byte
	fields   []*field.Field
}

// initBase initializes the Break and fields values lazily.
func (h *Base) initBase() {
	if h.lbr == "" {
		h.lbr = LF
	}
	if h.fields == nil {
		h.fields = make([]*field.Field, 0, 10)
	}
}

// Clone returns a deep copy of the header fields.
func (h *Base) Clone() *Base {
	fs := make([]*field.Field, len(h.fields))
	for i, f := range h.fields {
		fs[i] = f.Clone()
	}

	var pre []byte
	if h.preamble != nil {
		pre = make([]byte, len(h.preamble))
		copy(pre, h.preamble)
	}

	return &Base{
		lbr:      h.lbr,
		preamble: pre,
		fields:   fs,
	}
}

// Break returns the line break used to separate header fields and terminate the
// header.
func (h *Base) Break() Break {
	if h.lbr == "" {
		h.lbr = LF
	}
	return h.lbr
}

// SetBreak changes the line break to use with this header.
func (h *Base) SetBreak(lbr Break) {
	h.lbr = lbr
}

// Preamble returns the text found ahead of the first field when the header was
// parsed, line breaks included. It is usually nil.
func (h *Base) Preamble() []byte {
	return h.preamble
}

// SetPreamble replaces the text written ahead of the first field.
func (h *Base) SetPreamble(pre []byte) {
	h.preamble = pre
}

// Len returns the number of fields in the header.
func (h *Base) Len() int {
	return len(h.fields)
}

// GetField returns the nth field or nil if there is no such field.
func (h *Base) GetField(n int) *field.Field {
	if n < 0 || n >= len(h.fields) {
		return nil
	}
	return h.fields[n]
}

// GetFieldNamed returns the nth (0-indexed) field with the given name or nil if
// no such field is set. Names are compared case-insensitively.
func (h *Base) GetFieldNamed(name string, n int) *field.Field {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name(), name) {
			if n == 0 {
				return f
			}
			n--
		}
	}
	return nil
}

// GetAllFieldsNamed returns all the fields with the given name.
func (h *Base) GetAllFieldsNamed(name string) []*field.Field {
	fs := make([]*field.Field, 0, 2)
	for _, f := range h.fields {
		if strings.EqualFold(f.Name(), name) {
			fs = append(fs, f)
		}
	}
	return fs
}

// GetIndexesNamed returns the indexes of fields with the given name.
func (h *Base) GetIndexesNamed(name string) []int {
	is := make([]int, 0, 2)
	for i, f := range h.fields {
		if strings.EqualFold(f.Name(), name) {
			is = append(is, i)
		}
	}
	return is
}

// ListFields returns all the fields in the header. The slice is a copy, but
// the fields are not.
func (h *Base) ListFields() []*field.Field {
	fs := make([]*field.Field, len(h.fields))
	copy(fs, h.fields)
	return fs
}

// InsertBeforeField inserts a new field with the given name and body before
// the nth field. The index is clamped to the range 0..Len(), so 0 puts the
// field first and Len() puts it last.
func (h *Base) InsertBeforeField(n int, name, body string) {
	h.initBase()

	if n < 0 {
		n = 0
	}
	if n > len(h.fields) {
		n = len(h.fields)
	}

	h.fields = append(h.fields, nil)
	copy(h.fields[n+1:], h.fields[n:])
	h.fields[n] = field.New(name, body)
}

// ClearFields removes all fields from the header.
func (h *Base) ClearFields() {
	h.initBase()
	h.fields = h.fields[:0]
}

// DeleteField removes the nth field from the header. Fails with an error if the
// given index is out of range.
func (h *Base) DeleteField(n int) error {
	h.initBase()

	if n < 0 || n >= len(h.fields) {
		return ErrIndexOutOfRange
	}

	copy(h.fields[n:], h.fields[n+1:])
	h.fields = h.fields[:len(h.fields)-1]

	return nil
}

// WriteTo writes the preamble, each field followed by a line break, and then
// the blank line that ends the header. A header with no fields writes only its
// preamble.
func (h *Base) WriteTo(w io.Writer) (int64, error) {
	total := int64(0)
	if len(h.preamble) > 0 {
		n, err := w.Write(h.preamble)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	if len(h.fields) == 0 {
		return total, nil
	}

	lbr := h.Break().Bytes()
	for _, f := range h.fields {
		n, err := w.Write(f.Bytes())
		total += int64(n)
		if err != nil {
			return total, err
		}

		n, err = w.Write(lbr)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	n, err := w.Write(lbr)
	total += int64(n)
	return total, err
}

// Bytes returns the header as a slice of bytes.
func (h *Base) Bytes() []byte {
	buf := &bytes.Buffer{}
	_, _ = h.WriteTo(buf)
	return buf.Bytes()
}

// String returns the header as a string.
func (h *Base) String() string {
	return string(h.Bytes())
}
