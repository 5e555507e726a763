package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mikaelsv/kontakta/internal/common"
	"github.com/mikaelsv/kontakta/internal/server/contacts"
)

type contactDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

type messageDTO struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
	SentBy string    `json:"sentBy"`
}

type createContactRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

type sendMessageRequest struct {
	Text   string `json:"text"`
	SentBy string `json:"sentBy"`
}

func toContactDTO(c *contacts.Contact) *contactDTO {
	return &contactDTO{ID: c.ID, Name: c.Name, PhoneNumber: c.PhoneNumber}
}

func toMessageDTO(m *contacts.Message) *messageDTO {
	return &messageDTO{ID: m.ID, Text: m.Body, SentAt: m.SentAt, SentBy: m.SentBy}
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	user, ok := subject(r.Context())
	if !ok {
		s.writeError(w, r, common.ErrorUnauthorized)
		return
	}

	list, err := s.contacts.List(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]*contactDTO, 0, len(list))
	for _, c := range list {
		out = append(out, toContactDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	user, ok := subject(r.Context())
	if !ok {
		s.writeError(w, r, common.ErrorUnauthorized)
		return
	}

	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed request body", common.ErrValidation))
		return
	}

	c, err := s.contacts.Create(r.Context(), user.ID, req.Name, req.PhoneNumber)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toContactDTO(c))
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	user, ok := subject(r.Context())
	if !ok {
		s.writeError(w, r, common.ErrorUnauthorized)
		return
	}

	if err := s.contacts.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Success: true, Message: "contact deleted"})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := subject(r.Context())
	if !ok {
		s.writeError(w, r, common.ErrorUnauthorized)
		return
	}

	list, err := s.contacts.ListMessages(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]*messageDTO, 0, len(list))
	for _, m := range list {
		out = append(out, toMessageDTO(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := subject(r.Context())
	if !ok {
		s.writeError(w, r, common.ErrorUnauthorized)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed request body", common.ErrValidation))
		return
	}

	m, err := s.contacts.Send(r.Context(), user.ID, r.PathValue("id"), req.Text, req.SentBy)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMessageDTO(m))
}
