// Package contacts implements the contact/message collaborator behind the
// auth gate. It carries no trust logic of its own: every operation takes
// the already-authenticated subject id resolved by the identity core.
package contacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/mikaelsv/kontakta/internal/common"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID string) ([]*Contact, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Create(ctx context.Context, userID, name, phoneNumber string) (*Contact, error) {
	name = strings.TrimSpace(name)
	phoneNumber = strings.TrimSpace(phoneNumber)
	if name == "" || phoneNumber == "" {
		return nil, fmt.Errorf("%w: name and phone number are required", common.ErrValidation)
	}

	contact := &Contact{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		PhoneNumber: phoneNumber,
	}
	return s.repo.Create(ctx, contact)
}

func (s *Service) Delete(ctx context.Context, userID, contactID string) error {
	return s.repo.Delete(ctx, userID, contactID)
}

func (s *Service) ListMessages(ctx context.Context, userID, contactID string) ([]*Message, error) {
	return s.repo.ListMessages(ctx, userID, contactID)
}

func (s *Service) Send(ctx context.Context, userID, contactID, body, sentBy string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: message text is required", common.ErrValidation)
	}
	if sentBy != SentByUser && sentBy != SentByContact {
		sentBy = SentByUser
	}

	msg := &Message{
		// ulids sort by creation time, which keeps threads ordered even
		// when sent_at has equal timestamps
		ID:        ulid.Make().String(),
		ContactID: contactID,
		Body:      body,
		SentBy:    sentBy,
	}
	return s.repo.AddMessage(ctx, userID, msg)
}
