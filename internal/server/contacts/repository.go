package contacts

import (
	"context"
	"database/sql"
)

// Repository persists contacts and their message threads. All operations
// are scoped by the owning account id; a contact id belonging to another
// account behaves as not found.
type Repository interface {
	List(ctx context.Context, userID string) ([]*Contact, error)
	Create(ctx context.Context, contact *Contact) (*Contact, error)
	Delete(ctx context.Context, userID, contactID string) error
	ListMessages(ctx context.Context, userID, contactID string) ([]*Message, error)
	AddMessage(ctx context.Context, userID string, msg *Message) (*Message, error)
}

// ConnProvider hands out the live store handle. Satisfied by
// db.ResilientConn.
type ConnProvider interface {
	Acquire(ctx context.Context) (*sql.DB, error)
}
