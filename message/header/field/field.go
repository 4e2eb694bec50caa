// Package field provides the low-level representation of a single email
// header field. Fields remember the bytes they were parsed from, so a field
// that is never modified is written back out exactly as it came in.
package field

import (
	"fmt"
)

// Field is a single header field: a name, a body, and (when the field was
// parsed from a message) the original bytes of the field.
type Field struct {
	name string
	body string
	raw  []byte
}

// New constructs a new field with the given name and body. The field has no
// raw value and will be rendered as "Name: body".
func New(name, body string) *Field {
	return &Field{name: name, body: body}
}

// Name returns the name of the header field.
func (f *Field) Name() string {
	return f.name
}

// SetName updates the name of the header field. This drops the raw value.
func (f *Field) SetName(name string) {
	f.name = name
	f.raw = nil
}

// Body returns the unfolded and decoded body of the header field.
func (f *Field) Body() string {
	return f.body
}

// SetBody updates the body of the header field. This drops the raw value.
func (f *Field) SetBody(body string) {
	f.body = body
	f.raw = nil
}

// Raw returns the original bytes of the field, not including the final line
// break. It returns nil if the field was constructed or has been modified.
func (f *Field) Raw() []byte {
	return f.raw
}

// SetRaw replaces the raw value used when rendering the field. The name and
// body are left as they are.
func (f *Field) SetRaw(raw []byte) {
	f.raw = raw
}

// String returns the complete header field as a string.
func (f *Field) String() string {
	if f.raw != nil {
		return string(f.raw)
	}
	return fmt.Sprintf("%s: %s", f.name, f.body)
}

// Bytes returns the complete header field as a slice of bytes.
func (f *Field) Bytes() []byte {
	if f.raw != nil {
		return f.raw
	}
	return []byte(f.String())
}

// Clone returns a copy of the field.
func (f *Field) Clone() *Field {
	c := &Field{name: f.name, body: f.body}
	if f.raw != nil {
		c.raw = make([]byte, len(f.raw))
		copy(c.raw, f.raw)
	}
	return c
}
