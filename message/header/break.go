package header

import "bytes"

// Break represents the line break used by a header.
type Break string

// Constants for use when selecting a line break to use with a new header. If
// you don't know what to pick, choose CRLF, which is what goes over the wire.
const (
	Meh  Break = ""         // Sometimes it doesn't matter
	CRLF Break = "\x0d\x0a" // \r\n - Network linebreak
	LF   Break = "\x0a"     // \n - Unix/Linux/BSD linebreak
	CR   Break = "\x0d"     // \r - Commodores/old Macs linebreak
	LFCR Break = "\x0a\x0d" // \n\r - for weirdos
)

// String returns the break as a string.
func (b Break) String() string {
	return string(b)
}

// Bytes returns the break as a slice of bytes.
func (b Break) Bytes() []byte {
	return []byte(b)
}

// DetectBreak returns the first line break found in the given bytes, trying
// the two byte breaks first. It returns LF when no break is found.
func DetectBreak(b []byte) Break {
	for _, lb := range []Break{CRLF, LFCR, LF, CR} {
		if bytes.Contains(b, lb.Bytes()) {
			return lb
		}
	}
	return LF
}
