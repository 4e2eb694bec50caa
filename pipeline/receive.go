package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/zostay/go-mailfix/message"
	"github.com/zostay/go-mailfix/message/header/field"
)

// RejectedError is returned by Receive when a hook rejects the message.
type RejectedError struct {
	Phase  Phase
	Result Result
}

// Error returns the error message.
func (err *RejectedError) Error() string {
	return fmt.Sprintf("message rejected during %s with %s", err.Phase, err.Result)
}

// runPhase runs a phase and turns rejections into a *RejectedError.
func (p *Pipeline) runPhase(ctx context.Context, phase Phase, conn *Connection) error {
	res, err := p.Run(ctx, phase, conn)
	if err != nil {
		return fmt.Errorf("%s phase failed: %w", phase, err)
	}

	if res.Rejected() {
		return &RejectedError{Phase: phase, Result: res}
	}

	return nil
}

// Receive runs a single message read from r through every phase of the
// pipeline on the given connection. If the connection has no transaction, one
// is started.
//
// PhaseData runs before the message is read. The message is then parsed, its
// header and body are attached to the transaction, and PhaseDataPost and
// PhaseQueue run. The parsed message is returned and reflects any changes the
// hooks made to the header.
//
// If a hook rejects the message, Receive returns a *RejectedError. A header that
// starts with junk is logged, and the junk is written back out ahead of the
// fields.
func (p *Pipeline) Receive(
	ctx context.Context,
	conn *Connection,
	r io.Reader,
	opts ...message.ParseOption,
) (*message.Opaque, error) {
	txn := conn.Transaction
	if txn == nil {
		txn = conn.BeginTransaction()
	}

	logger := conn.Logger.With().Str("txn", txn.ID.String()).Logger()

	if err := p.runPhase(ctx, PhaseData, conn); err != nil {
		return nil, err
	}

	msg, err := message.Parse(r, opts...)
	var badStart *field.BadStartError
	if errors.As(err, &badStart) {
		logger.Warn().
			Int("preamble", len(badStart.BadStart)).
			Msg("message header starts with junk, keeping it ahead of the fields")
	} else if err != nil {
		return nil, fmt.Errorf("unable to parse message: %w", err)
	}

	txn.Header = msg.GetHeader()
	txn.Body = msg.GetReader()

	if err := p.runPhase(ctx, PhaseDataPost, conn); err != nil {
		return msg, err
	}

	if err := p.runPhase(ctx, PhaseQueue, conn); err != nil {
		return msg, err
	}

	logger.Debug().
		Str("mail_from", txn.MailFrom.String()).
		Strs("rcpt_to", txn.Recipients()).
		Int("fields", msg.Len()).
		Msg("message received")

	return msg, nil
}
