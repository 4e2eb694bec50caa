package message

import (
	"io"

	"github.com/zostay/go-mailfix/message/header"
)

// Opaque is a message as a header plus a body that is never looked into. It
// is very similar to the net/mail message implementation, but the header can
// be modified and written back out.
type Opaque struct {
	// Header holds the header of the message.
	header.Header

	// Reader holds the body content of the message. It is nil when the
	// message has no body.
	io.Reader
}

// GetHeader returns the header for the message.
func (m *Opaque) GetHeader() *header.Header {
	return &m.Header
}

// GetReader returns the reader containing the body of the message.
func (m *Opaque) GetReader() io.Reader {
	return m.Reader
}

// WriteTo writes the header, the blank line ending the header, and then the
// body to the destination io.Writer.
//
// This can only be safely called once as it will consume the io.Reader.
func (m *Opaque) WriteTo(w io.Writer) (int64, error) {
	total, err := m.Header.WriteTo(w)
	if err != nil {
		return total, err
	}

	if m.Reader == nil {
		return total, nil
	}

	// an empty header still needs the blank line in front of the body
	if m.Header.Len() == 0 {
		n, err := w.Write(m.Header.Break().Bytes())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	bn, err := io.Copy(w, m.Reader)
	total += bn
	return total, err
}

// Close closes the body reader, if it can be closed.
func (m *Opaque) Close() error {
	if c, isCloser := m.Reader.(io.Closer); isCloser {
		return c.Close()
	}
	return nil
}
