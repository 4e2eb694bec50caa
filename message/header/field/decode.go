package field

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// charsetReader looks the charset up in the IANA index, so encoded-words in
// the rarer character sets seen in the wild can still be decoded.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return nil, err
	}

	if e == nil {
		return nil, fmt.Errorf("no encoding found for charset %q", charset)
	}

	return e.NewDecoder().Reader(input), nil
}

// Decode looks for MIME encoded-words in a header field body and decodes them
// to UTF-8.
func Decode(body string) (string, error) {
	if !strings.Contains(body, "=?") {
		return body, nil
	}

	dec := &mime.WordDecoder{CharsetReader: charsetReader}
	return dec.DecodeHeader(body)
}
