package users

import "time"

// User is the persisted identity record. It is owned by the credential
// store and mutated only through Service operations.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}
