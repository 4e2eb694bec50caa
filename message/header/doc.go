// Package header provides the ordered collection of fields making up an email
// message header. Lookups by name are case-insensitive, fields can be inserted
// at any position (including ahead of every other field), and a parsed header
// writes back out byte-for-byte except for the fields that were changed.
//
// Use Parse() to read a header from bytes. The zero value of Header is an
// empty header ready to use.
package header
