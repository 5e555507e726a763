// Package users contains the server-side identity & session core: account
// creation, credential checks, token issuance, and the authoritative token
// verification path that every protected request goes through.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mikaelsv/kontakta/internal/common"
	"github.com/mikaelsv/kontakta/internal/logging"
	"github.com/mikaelsv/kontakta/internal/server/auth"
	"github.com/mikaelsv/kontakta/internal/server/config"
)

// bcryptCost matches the cost the accounts were originally hashed with.
const bcryptCost = 12

// dummyHash is compared against when the email does not resolve, so unknown
// identifier and wrong credential take comparable time.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// AuthResult is returned by SignUp and Login: a freshly issued session token
// plus the resolved identity record.
type AuthResult struct {
	Token string
	User  *User
}

// Service implements the identity operations:
//   - SignUp: create an account and issue a first token
//   - Login: verify credentials and issue a token
//   - VerifyToken: resolve a presented token to a live identity record
//   - Delete: remove the account (invalidating every outstanding token)
type Service struct {
	repo          Repository
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewService(repo Repository, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		repo:          repo,
		logger:        logger.With("module", "users"),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
	}
}

// NormalizeEmail lowercases and trims the login identifier; lookups and
// uniqueness both operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp validates the request, creates the identity record with a bcrypt
// credential hash, and issues the first session token. The raw credential
// is never stored or logged.
func (s *Service) SignUp(ctx context.Context, fullname, email, password string) (*AuthResult, error) {
	fullname = strings.TrimSpace(fullname)
	email = NormalizeEmail(email)

	if fullname == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields are required", common.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", common.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := s.repo.Create(ctx, &User{
		Email:        email,
		FullName:     fullname,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) || errors.Is(err, common.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return s.issue(ctx, user)
}

// Login looks up the identity by normalized email and verifies the
// credential. Unknown identifier and credential mismatch are deliberately
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrValidation)
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn comparable time before answering
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, common.ErrorUnauthorized
		}
		if errors.Is(err, common.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}

	return s.issue(ctx, user)
}

// VerifyToken is the authoritative check: structural validity (signature,
// expiry) first, then subject resolution against the credential store. A
// token whose subject no longer resolves must not authenticate; a store
// failure is surfaced as such, never as an invalid token.
func (s *Service) VerifyToken(ctx context.Context, token string) (*User, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		if errors.Is(err, common.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// GetByID resolves an identity record by internal id.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes the identity record. Every previously issued token for it
// stops verifying the moment the record is gone.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Count reports the number of identity records, for operational visibility.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) issue(ctx context.Context, user *User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		// the session is already issued; a missed timestamp is not worth
		// failing the login over
		s.logger.Warn(ctx, "failed to update last login timestamp", "error", err.Error())
	}

	return &AuthResult{Token: token, User: user}, nil
}
