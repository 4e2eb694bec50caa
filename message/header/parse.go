package header

import (
	"errors"

	"github.com/zostay/go-mailfix/message/header/field"
)

// Parse will parse the given slice of bytes into an email header using the
// given line break. It will assume the entire input represents the header.
// The trailing blank line, if included, is ignored. With Meh, the break is
// detected from the input.
//
// The parsed fields keep their original bytes, so writing the header back out
// reproduces the input for every field that is not modified.
//
// If the input starts with junk that does not look like a header field, the
// junk is kept as the preamble of the header and a *field.BadStartError is
// returned along with the header.
func Parse(m []byte, lb Break) (*Header, error) {
	if lb == Meh {
		lb = DetectBreak(m)
	}

	lines, err := field.ParseLines(m, lb.Bytes())

	var badStartErr *field.BadStartError // recoverable
	var finalErr error
	if errors.As(err, &badStartErr) {
		finalErr = badStartErr
	} else if err != nil {
		return nil, err
	}

	fields := make([]*field.Field, len(lines))
	for i, line := range lines {
		fields[i] = field.Parse(line, lb.Bytes())
	}

	h := &Header{
		Base: Base{
			lbr:    lb,
			fields: fields,
		},
	}

	if badStartErr != nil {
		h.preamble = make([]byte, len(badStartErr.BadStart))
		copy(h.preamble, badStartErr.BadStart)
	}

	return h, finalErr
}
