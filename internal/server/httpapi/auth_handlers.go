package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mikaelsv/kontakta/internal/common"
)

type signUpRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed request body", common.ErrValidation))
		return
	}

	res, err := s.users.SignUp(r.Context(), req.FullName, req.Email, req.Password)
	s.metrics.observeAuth("signup", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Success: true,
		Message: "account created",
		Token:   res.Token,
		User:    toUserDTO(res.User),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed request body", common.ErrValidation))
		return
	}

	res, err := s.users.Login(r.Context(), req.Email, req.Password)
	s.metrics.observeAuth("login", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		Message: "login successful",
		Token:   res.Token,
		User:    toUserDTO(res.User),
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		s.writeError(w, r, fmt.Errorf("%w: token is required", common.ErrValidation))
		return
	}

	user, err := s.users.VerifyToken(r.Context(), req.Token)
	s.metrics.observeAuth("verify", err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		User:    toUserDTO(user),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := subject(r.Context())
	if !ok {
		s.writeError(w, r, common.ErrorUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		User *userDTO `json:"user"`
	}{User: toUserDTO(user)})
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := subject(r.Context())
	if !ok {
		s.writeError(w, r, common.ErrorUnauthorized)
		return
	}

	if err := s.users.Delete(r.Context(), user.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Success: true, Message: "account deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	connected := s.store.HealthCheck(r.Context())

	database := "disconnected"
	if connected {
		database = "connected"
	}

	payload := map[string]any{
		"status":    "ok",
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if connected {
		if n, err := s.users.Count(r.Context()); err == nil {
			payload["users"] = n
		}
	}

	// the health endpoint reports, it never fails the process
	writeJSON(w, http.StatusOK, payload)
}
