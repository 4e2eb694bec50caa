package message

import "io"

// remainder replays the body bytes that were read while looking for the end
// of the header and then passes reads on to the rest of the input.
type remainder struct {
	prefix []byte
	r      io.Reader
}

// Read returns bytes from the prefix first. Once those are gone, reads go to
// the underlying io.Reader.
func (r *remainder) Read(p []byte) (n int, err error) {
	if len(r.prefix) > 0 {
		n = copy(p, r.prefix)
		r.prefix = r.prefix[n:]
		return n, nil
	}

	return r.r.Read(p)
}

// Close passes the Close() call through to the underlying io.Reader, if it is
// an io.Closer.
func (r *remainder) Close() error {
	if c, isCloser := r.r.(io.Closer); isCloser {
		return c.Close()
	}
	return nil
}
