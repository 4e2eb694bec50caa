// Package fixupdate provides the fixup_date plugin, which makes sure every
// message leaving the pipeline has a Date field.
//
// The plugin hooks two phases. During PhaseData it records when the message
// started to arrive. During PhaseDataPost, if the message has no Date field
// with a value, it adds one at the top of the header using that arrival time,
// or the current time if no usable arrival time was recorded.
//
// The plugin never fails and never rejects a message. All per-message state
// lives on the pipeline.Transaction, so a single Plugin serves any number of
// concurrent connections.
package fixupdate

import (
	"context"
	"time"

	"github.com/zostay/go-mailfix/message/header"
	"github.com/zostay/go-mailfix/pipeline"
)

// Name is the name the plugin registers its hooks under and logs with.
const Name = "fixup_date"

// Plugin is the fixup_date plugin.
type Plugin struct {
	now     func() time.Time
	metrics *Metrics
}

// Option configures a Plugin.
type Option func(p *Plugin)

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(p *Plugin) { p.now = now }
}

// WithMetrics makes the plugin count its outcomes.
func WithMetrics(m *Metrics) Option {
	return func(p *Plugin) { p.metrics = m }
}

// New creates the plugin and registers its hooks with the registrar:
// RecordArrival for PhaseData and EnsureDate for PhaseDataPost.
func New(reg pipeline.Registrar, opts ...Option) *Plugin {
	p := &Plugin{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}

	reg.Register(pipeline.PhaseData, Name, p.RecordArrival)
	reg.Register(pipeline.PhaseDataPost, Name, p.EnsureDate)

	return p
}

// transaction returns the active transaction, if any.
func transaction(conn *pipeline.Connection) *pipeline.Transaction {
	if conn == nil {
		return nil
	}
	return conn.Transaction
}

// usable reports whether t is a real point in time that can be written as a
// four digit year.
func usable(t time.Time) bool {
	if t.IsZero() {
		return false
	}

	y := t.UTC().Year()
	return y >= 1 && y <= 9999
}

// RecordArrival stores the current time as the arrival time of the active
// transaction. If an arrival time was already stored, it is kept. Without a
// transaction this does nothing.
func (p *Plugin) RecordArrival(_ context.Context, conn *pipeline.Connection) pipeline.Result {
	if txn := transaction(conn); txn != nil {
		txn.SetArrivalTime(p.now())
	}
	return pipeline.Continue
}

// referenceTime picks the time for a new Date field and reports where it came
// from.
func (p *Plugin) referenceTime(txn *pipeline.Transaction) (time.Time, string) {
	at, ok := txn.ArrivalTime()
	switch {
	case !ok:
		return p.now(), OutcomeMissing
	case !usable(at):
		return p.now(), OutcomeInvalid
	default:
		return at, OutcomeArrival
	}
}

// EnsureDate adds a Date field to the top of the header of the active
// transaction if there is no Date field with a value. It does nothing without
// a transaction.
func (p *Plugin) EnsureDate(_ context.Context, conn *pipeline.Connection) pipeline.Result {
	txn := transaction(conn)
	if txn == nil {
		p.metrics.observe(OutcomeNoTransaction)
		return pipeline.Continue
	}

	if txn.Header == nil {
		txn.Header = &header.Header{}
	}

	if txn.Header.HasValue(header.Date) {
		p.metrics.observe(OutcomePresent)
		return pipeline.Continue
	}

	at, source := p.referenceTime(txn)
	value := header.FormatDate(at)
	txn.Header.InsertLeading(header.Date, value)
	p.metrics.observe(source)

	conn.Logger.Info().
		Str("plugin", Name).
		Str("txn", txn.ID.String()).
		Str("source", source).
		Msgf("Added missing Date header %q", value)

	return pipeline.Continue
}
