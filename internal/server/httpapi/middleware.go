package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/mikaelsv/kontakta/internal/common"
	"github.com/mikaelsv/kontakta/internal/server/users"
)

type ctxKey string

const subjectKey ctxKey = "subject"

// requireAuth is the single reusable gate in front of every protected
// route. It resolves the bearer token through the authoritative verify path
// and stashes the subject in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, authResponse{Success: false, Message: "missing token"})
			return
		}

		user, err := s.users.VerifyToken(r.Context(), token)
		s.metrics.observeAuth("verify", err)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(common.AuthHeaderName)
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(header, common.BearerPrefix)
	return token, token != ""
}

// subject returns the identity record resolved by requireAuth.
func subject(ctx context.Context) (*users.User, bool) {
	u, ok := ctx.Value(subjectKey).(*users.User)
	return u, ok
}
