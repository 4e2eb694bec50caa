// Package mailfix is a small toolkit for repairing the headers of email
// messages as they pass through a processing pipeline.
//
// The message package splits a message into a header and a body, and writes
// it back out unchanged apart from the fields that were modified. Fields are
// kept in message/header and message/header/field.
//
// The pipeline package hosts hooks that run at named phases of message
// processing: data, data_post, and queue. Each message gets a Transaction
// holding its envelope, header, and arrival time.
//
// Plugins live under plugins/. The fixupdate plugin makes sure every message
// carries a Date field, using the time the message arrived when it knows it.
//
// The mailfix command in cmd/mailfix runs message files through the pipeline.
package mailfix
