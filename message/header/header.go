package header

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Errors returned by various header methods and functions.
var (
	// ErrNoSuchField is returned by Header methods when the operation
	// being performed failed because the header named does not exist.
	ErrNoSuchField = errors.New("no such header field")

	// ErrManyFields is returned by Header methods when the operation
	// being performed failed because the there are multiple fields with the
	// given name.
	ErrManyFields = errors.New("many header fields found")
)

// Names of the header fields this module works with directly.
const (
	Date       = "Date"
	From       = "From"
	MessageID  = "Message-id"
	Received   = "Received"
	ReturnPath = "Return-path"
	Subject    = "Subject"
	To         = "To"
)

// Date layouts.
const (
	// MailDate is RFC 1123 with a numeric zone, which is the RFC 5322
	// date-time. FormatDate always renders it in UTC, so the zone is +0000.
	MailDate = "Mon, 02 Jan 2006 15:04:05 -0700"

	// UnixDateWithEarlyYear is a weird one, eh?
	UnixDateWithEarlyYear = "Mon Jan 02 15:04:05 2006 MST"
)

// Header wraps a Base, which does the actual storage and low-level field
// manipulation, and adds name-based access on top of it.
//
// The getter methods of this object will return ErrNoSuchField if the field
// being fetched has not been set on the header.
type Header struct {
	// Base provides the low-level storage of header fields.
	Base
}

// Clone returns a deep copy of the header object.
func (h *Header) Clone() *Header {
	return &Header{Base: *h.Base.Clone()}
}

// Get retrieves the body of the named field.
//
// If the named field is not set in the header, it will return an empty string
// with ErrNoSuchField. If there are multiple fields with that name, it will
// return the first body found along with ErrManyFields.
func (h *Header) Get(name string) (string, error) {
	ixs := h.GetIndexesNamed(name)
	if len(ixs) == 0 {
		return "", ErrNoSuchField
	}

	b := h.GetField(ixs[0]).Body()
	if len(ixs) > 1 {
		return b, ErrManyFields
	}

	return b, nil
}

// HasValue returns true if at least one field with the given name has a body
// that is not blank. A field that is present but empty does not count.
func (h *Header) HasValue(name string) bool {
	for _, f := range h.GetAllFieldsNamed(name) {
		if strings.TrimSpace(f.Body()) != "" {
			return true
		}
	}
	return false
}

// Set replaces the body of the first field with the given name and deletes any
// others with that name. If there is no such field, a new one is added to the
// end of the header.
func (h *Header) Set(name, body string) {
	ixs := h.GetIndexesNamed(name)
	if len(ixs) == 0 {
		h.InsertBeforeField(h.Len(), name, body)
		return
	}

	for i := len(ixs) - 1; i > 0; i-- {
		// ignore out of range errors, we don't make that mistake here
		_ = h.DeleteField(ixs[i])
	}

	f := h.GetField(ixs[0])
	f.SetName(name)
	f.SetBody(body)
}

// InsertLeading adds a new field ahead of every field already in the header.
// This is where an agent handling the message puts trace fields and any Date
// it has to supply.
func (h *Header) InsertLeading(name, body string) {
	h.InsertBeforeField(0, name, body)
}

// FormatDate renders the time in UTC as an RFC 5322 date, e.g.
// "Tue, 02 Jan 2024 03:04:05 +0000".
func FormatDate(t time.Time) string {
	return t.UTC().Format(MailDate)
}

// ParseTime parses a date the way GetTime() and GetDate() do. It tries RFC
// 5322 first and falls back to parsing many other formats seen in the wild.
//
// It either returns a parsed time or the parse error.
func ParseTime(body string) (time.Time, error) {
	t, err := mail.ParseDate(body)
	if err == nil {
		return t, nil
	}

	t, err = dateparse.ParseAny(body)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(UnixDateWithEarlyYear, body)
	if err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("time string %q cannot be parsed", body)
}

// GetTime parses the named field as a date.
//
// It returns the zero value and ErrNoSuchField if the field does not exist and
// ErrManyFields if it exists more than once. Otherwise, it returns the result
// of ParseTime().
func (h *Header) GetTime(name string) (time.Time, error) {
	body, err := h.Get(name)
	if err != nil {
		return time.Time{}, err
	}

	return ParseTime(body)
}

// GetDate retrieves the Date field as a time.Time value.
func (h *Header) GetDate() (time.Time, error) {
	return h.GetTime(Date)
}

// SetDate sets the Date field to the given time using FormatDate().
func (h *Header) SetDate(d time.Time) {
	h.Set(Date, FormatDate(d))
}
