// Package api implements the HTTP client for the Kontakta backend.
package api

import (
	"context"
	"time"
)

// User is the account profile as returned by the server.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

// Contact is a single address-book entry.
type Contact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// Message is one message in a contact's thread.
type Message struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
	SentBy string    `json:"sentBy"`
}

// AuthResult carries a fresh session token together with the profile it
// belongs to.
type AuthResult struct {
	Token string
	User  *User
}

// Client is the backend surface the session and CLI layers depend on.
// HTTPClient is the production implementation; tests use stubs.
type Client interface {
	SignUp(ctx context.Context, fullname, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Verify(ctx context.Context, token string) (*User, error)
	Me(ctx context.Context, token string) (*User, error)
	DeleteAccount(ctx context.Context, token string) error

	ListContacts(ctx context.Context, token string) ([]Contact, error)
	CreateContact(ctx context.Context, token, name, phoneNumber string) (*Contact, error)
	DeleteContact(ctx context.Context, token, contactID string) error
	ListMessages(ctx context.Context, token, contactID string) ([]Message, error)
	SendMessage(ctx context.Context, token, contactID, text string) (*Message, error)

	Ping(ctx context.Context) error
}
