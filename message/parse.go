package message

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/zostay/go-mailfix/message/header"
)

// Constants related to Parse() options.
const (
	// DefaultChunkSize the default size of chunks to read from the input while
	// splitting the message into header and body. Defaults to 16K, though this
	// could change at any time.
	DefaultChunkSize = 16_384

	// DefaultMaxHeaderLength is the default maximum byte length to scan before
	// giving up on finding the end of the header.
	DefaultMaxHeaderLength = bufio.MaxScanTokenSize
)

// ErrLargeHeader is returned by Parse when the header is longer than the
// configured WithMaxHeaderLength option (or the default,
// DefaultMaxHeaderLength).
var ErrLargeHeader = errors.New("the header exceeds the maximum parse length")

var splits = [][]byte{
	[]byte("\x0d\x0a\x0d\x0a"), // \r\n\r\n
	[]byte("\x0a\x0d\x0a\x0d"), // \n\r\n\r, extremely unlikely, possibly never
	[]byte("\x0a\x0a"),         // \n\n
	[]byte("\x0d\x0d"),         // \r\r
}

type parser struct {
	maxHeaderLen int
	chunkSize    int
}

var defaultParser = parser{
	maxHeaderLen: DefaultMaxHeaderLength,
	chunkSize:    DefaultChunkSize,
}

// ParseOption refers to options that may be passed to the Parse function to
// modify how the parser works.
type ParseOption func(pr *parser)

// WithMaxHeaderLength is a ParseOption that sets the maximum size the buffer is
// allowed to reach before parsing exits with an ErrLargeHeader error. This
// keeps bad input from exhausting memory. Setting this to a value less than or
// equal to 0 removes the limit. The default value is DefaultMaxHeaderLength.
func WithMaxHeaderLength(n int) ParseOption {
	return func(pr *parser) { pr.maxHeaderLen = n }
}

// WithChunkSize is a ParseOption that controls how many bytes to read at a time
// while parsing an email message. The default chunk size is DefaultChunkSize.
func WithChunkSize(chunkSize int) ParseOption {
	return func(pr *parser) {
		if chunkSize > 0 {
			pr.chunkSize = chunkSize
		}
	}
}

// searchForSplit looks for the first blank line separating header and body. It
// returns -1, nil if none is found. Otherwise, it returns the offset just past
// the blank line and the line break the header uses. When atStart is set, a
// line break at the very front means the header is empty.
func searchForSplit(buf []byte, atStart bool) (pos int, crlf []byte) {
	if atStart {
		for _, s := range splits {
			if bytes.HasPrefix(buf, s[:len(s)/2]) {
				return len(s) / 2, s[:len(s)/2]
			}
		}
	}

	// the earliest blank line wins, whatever break the body goes on to use
	pos = -1
	first := -1
	for _, s := range splits {
		testPos := bytes.Index(buf, s)
		if testPos < 0 {
			continue
		}

		// splits is ordered longest first, so a tie keeps the longer one
		if first < 0 || testPos < first {
			first = testPos
			pos = testPos + len(s)
			crlf = s[:len(s)/2]
		}
	}
	return
}

// tooLong reports whether a header of n bytes is over the limit.
func (pr *parser) tooLong(n int) bool {
	return pr.maxHeaderLen > 0 && n > pr.maxHeaderLen
}

// splitHeadFromBody reads from the input until it finds the end of the header.
// It returns the header bytes (including the blank line), the line break, and
// a reader for the body. The body is not read beyond the last chunk examined.
func (pr *parser) splitHeadFromBody(r io.Reader) ([]byte, header.Break, io.Reader, error) {
	p := make([]byte, pr.chunkSize)
	buf := &bytes.Buffer{}
	searched := 0
	for {
		n, err := r.Read(p)

		isEOF := false
		if errors.Is(err, io.EOF) {
			isEOF = true
		} else if err != nil {
			return nil, "", nil, err
		}

		_, _ = buf.Write(p[:n])

		// one byte is not enough to tell CR from CRLF at the front
		atStart := searched == 0 && (buf.Len() >= 2 || isEOF)
		pos, crlf := searchForSplit(buf.Bytes()[searched:], atStart)
		if pos >= 0 {
			pos += searched
			if pr.tooLong(pos) {
				return nil, "", nil, ErrLargeHeader
			}

			all := buf.Bytes()
			hdr := all[:pos]
			rest := all[pos:]
			return hdr, header.Break(crlf), &remainder{rest, r}, nil
		}

		// everything read so far belongs to the header
		if pr.tooLong(buf.Len()) {
			return nil, "", nil, ErrLargeHeader
		}

		if isEOF {
			break
		}

		// the last 3 bytes might be the prefix to the split point
		searched = buf.Len() - 3
		if searched < 0 {
			searched = 0
		}
	}

	// no split: the whole message is header
	return buf.Bytes(), header.DetectBreak(buf.Bytes()), nil, nil
}

// Parse consumes the header of the message from the reader and returns an
// *Opaque holding the parsed header and the rest of the input as the body.
//
// The input is read a chunk at a time (see WithChunkSize()) until a blank line
// is found. The line break in that blank line determines the line break used
// to split up the header. If no blank line is found before EOF, the whole
// input is treated as header. If the header grows beyond
// WithMaxHeaderLength(), Parse fails with ErrLargeHeader.
//
// Only the last chunk read is held in memory for the body. The remainder of
// the reader is left unread until the body is read or written.
//
// A header that starts with junk still parses. In that case, the message is
// returned along with a *field.BadStartError.
func Parse(r io.Reader, opts ...ParseOption) (*Opaque, error) {
	pr := defaultParser
	for _, opt := range opts {
		opt(&pr)
	}

	hdr, lb, body, err := pr.splitHeadFromBody(r)
	if err != nil {
		return nil, fmt.Errorf("unable to find end of header: %w", err)
	}

	head, err := header.Parse(hdr, lb)
	if head == nil {
		return nil, err
	}

	return &Opaque{Header: *head, Reader: body}, err
}
