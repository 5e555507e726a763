package contacts

import "time"

// Contact belongs to exactly one account; deleting the account removes its
// contacts and their message threads.
type Contact struct {
	ID          string
	UserID      string
	Name        string
	PhoneNumber string
	CreatedAt   time.Time
}

// Sender of a message within a thread.
const (
	SentByUser    = "user"
	SentByContact = "contact"
)

// Message is one entry in a per-contact thread.
type Message struct {
	ID        string
	ContactID string
	Body      string
	SentBy    string
	SentAt    time.Time
}
