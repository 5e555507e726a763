package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mikaelsv/kontakta/internal/common"
	"github.com/mikaelsv/kontakta/internal/server/users"
)

// userDTO is the identity shape exposed over the wire; the credential hash
// never leaves the server.
type userDTO struct {
	ID       string `json:"id"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

func toUserDTO(u *users.User) *userDTO {
	return &userDTO{ID: u.ID, FullName: u.FullName, Email: u.Email}
}

type authResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Token   string   `json:"token,omitempty"`
	User    *userDTO `json:"user,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy to status codes and a safe message.
// Authentication failures share one generic message; a store outage is a
// 500 with a "temporarily unavailable" body, never a 401.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeJSON(w, http.StatusBadRequest, authResponse{Success: false, Message: err.Error()})
	case errors.Is(err, common.ErrDuplicateEmail):
		writeJSON(w, http.StatusBadRequest, authResponse{Success: false, Message: common.ErrDuplicateEmail.Error()})
	case errors.Is(err, common.ErrorUnauthorized):
		writeJSON(w, http.StatusUnauthorized, authResponse{Success: false, Message: common.AuthGenericMessage})
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, authResponse{Success: false, Message: "invalid token"})
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, authResponse{Success: false, Message: "not found"})
	case errors.Is(err, common.ErrStoreUnavailable):
		s.logger.Error(r.Context(), "store unavailable", "path", r.URL.Path, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, authResponse{Success: false, Message: "service temporarily unavailable"})
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, authResponse{Success: false, Message: "internal server error"})
	}
}
