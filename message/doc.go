// Package message reads an email message as a header and a body, and writes it
// back out. Parsing is tolerant of input that is not strictly correct, and only
// the header is examined: the body is left as an io.Reader that is not read
// until the message is written.
//
// A typical modification looks like this:
//
//	m, err := message.Parse(in)
//	if err != nil {
//	  panic(err)
//	}
//
//	if !m.HasValue(header.Date) {
//	  m.InsertLeading(header.Date, header.FormatDate(time.Now()))
//	}
//
//	_, err = m.WriteTo(out)
//
// Fields that were not touched are written exactly as they were read.
package message
