package pipeline

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Connection is the state of one client handing messages to the pipeline.
// Messages on a connection are processed one at a time, each in its own
// Transaction.
type Connection struct {
	// ID uniquely identifies the connection in logs.
	ID uuid.UUID

	// RemoteAddr describes where the messages come from.
	RemoteAddr string

	// Logger is scoped to this connection.
	Logger zerolog.Logger

	// Transaction is the message currently being processed or nil if there
	// is none.
	Transaction *Transaction
}

// NewConnection creates a connection with a fresh ID and a logger scoped to
// it.
func NewConnection(remoteAddr string, logger zerolog.Logger) *Connection {
	id := uuid.New()
	return &Connection{
		ID:         id,
		RemoteAddr: remoteAddr,
		Logger: logger.With().
			Str("conn", id.String()).
			Str("remote", remoteAddr).
			Logger(),
	}
}

// BeginTransaction replaces the current transaction with a new one and returns
// it.
func (c *Connection) BeginTransaction() *Transaction {
	c.Transaction = NewTransaction()
	return c.Transaction
}

// ResetTransaction drops the current transaction.
func (c *Connection) ResetTransaction() {
	c.Transaction = nil
}
