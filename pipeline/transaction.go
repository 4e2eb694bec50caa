package pipeline

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/go-mailfix/message/header"
)

// Transaction is the state of a single message passing through the pipeline,
// from the start of its data to its final disposition. A transaction belongs
// to exactly one connection and is only touched by one flow of control at a
// time, so it has no locking of its own.
type Transaction struct {
	// ID uniquely identifies the transaction in logs.
	ID uuid.UUID

	// MailFrom is the envelope sender. It may be empty (the null sender).
	MailFrom addr.AddressList

	// RcptTo lists the envelope recipients.
	RcptTo addr.AddressList

	// Header is the header of the message. It is empty until the message
	// has been received, which happens before PhaseDataPost.
	Header *header.Header

	// Body is the body of the message, or nil if it has none.
	Body io.Reader

	arrival    time.Time
	hasArrival bool
}

// NewTransaction returns a new transaction with a fresh ID and an empty
// header.
func NewTransaction() *Transaction {
	return &Transaction{
		ID:     uuid.New(),
		Header: &header.Header{},
	}
}

// ArrivalTime returns the time the message data started to arrive and true,
// or the zero time and false if it has not been recorded.
//
// The value is whatever was stored. Callers that need a real point in time
// must check it themselves.
func (t *Transaction) ArrivalTime() (time.Time, bool) {
	return t.arrival, t.hasArrival
}

// SetArrivalTime records the time the message data started to arrive. Only
// the first call for a transaction stores anything. It returns true if the
// value was stored and false if an arrival time was already recorded.
func (t *Transaction) SetArrivalTime(at time.Time) bool {
	if t.hasArrival {
		return false
	}

	t.arrival = at
	t.hasArrival = true
	return true
}

// SetMailFrom parses and sets the envelope sender. An empty string sets the
// null sender.
func (t *Transaction) SetMailFrom(from string) error {
	if from == "" {
		t.MailFrom = nil
		return nil
	}

	al, err := addr.ParseEmailAddressList(from)
	if err != nil {
		return err
	}

	t.MailFrom = al
	return nil
}

// AddRcptTo parses the given address list and adds the addresses to the
// envelope recipients.
func (t *Transaction) AddRcptTo(rcpts string) error {
	al, err := addr.ParseEmailAddressList(rcpts)
	if err != nil {
		return err
	}

	t.RcptTo = append(t.RcptTo, al...)
	return nil
}

// Recipients returns the bare address of each envelope recipient.
func (t *Transaction) Recipients() []string {
	rcpts := make([]string, len(t.RcptTo))
	for i, a := range t.RcptTo {
		rcpts[i] = a.Address()
	}
	return rcpts
}
