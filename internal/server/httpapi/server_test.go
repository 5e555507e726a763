package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikaelsv/kontakta/internal/common"
	"github.com/mikaelsv/kontakta/internal/logging"
	"github.com/mikaelsv/kontakta/internal/server/config"
	"github.com/mikaelsv/kontakta/internal/server/contacts"
	"github.com/mikaelsv/kontakta/internal/server/users"
)

// --- in-memory fakes ---

type memUserRepo struct {
	seq     int
	byEmail map[string]*users.User
	byID    map[string]*users.User

	failWith error // when set, every call fails with this error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]*users.User{}, byID: map[string]*users.User{}}
}

func (m *memUserRepo) Create(ctx context.Context, u *users.User) (*users.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}
	m.seq++
	u.ID = fmt.Sprintf("u%d", m.seq)
	u.CreatedAt = time.Now()
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (m *memUserRepo) TouchLastLogin(ctx context.Context, id string) error { return nil }

func (m *memUserRepo) Delete(ctx context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	u, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(m.byEmail, u.Email)
	delete(m.byID, id)
	return nil
}

func (m *memUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.byID)), nil
}

type memContactRepo struct {
	contacts map[string]*contacts.Contact
	messages []*contacts.Message
}

func newMemContactRepo() *memContactRepo {
	return &memContactRepo{contacts: map[string]*contacts.Contact{}}
}

func (m *memContactRepo) List(ctx context.Context, userID string) ([]*contacts.Contact, error) {
	out := []*contacts.Contact{}
	for _, c := range m.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memContactRepo) Create(ctx context.Context, c *contacts.Contact) (*contacts.Contact, error) {
	c.CreatedAt = time.Now()
	m.contacts[c.ID] = c
	return c, nil
}

func (m *memContactRepo) Delete(ctx context.Context, userID, contactID string) error {
	c, ok := m.contacts[contactID]
	if !ok || c.UserID != userID {
		return common.ErrorNotFound
	}
	delete(m.contacts, contactID)
	return nil
}

func (m *memContactRepo) ListMessages(ctx context.Context, userID, contactID string) ([]*contacts.Message, error) {
	c, ok := m.contacts[contactID]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	out := []*contacts.Message{}
	for _, msg := range m.messages {
		if msg.ContactID == contactID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memContactRepo) AddMessage(ctx context.Context, userID string, msg *contacts.Message) (*contacts.Message, error) {
	c, ok := m.contacts[msg.ContactID]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	msg.SentAt = time.Now()
	m.messages = append(m.messages, msg)
	return msg, nil
}

type fakeHealth struct{ ok bool }

func (f *fakeHealth) HealthCheck(ctx context.Context) bool { return f.ok }

// --- harness ---

type harness struct {
	srv      *httptest.Server
	userRepo *memUserRepo
	health   *fakeHealth
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	cfg := &config.Config{SecretKey: "test-secret", TokenValidityDuration: time.Hour}

	userRepo := newMemUserRepo()
	us := users.NewService(userRepo, cfg, logger)
	cs := contacts.NewService(newMemContactRepo())
	health := &fakeHealth{ok: true}

	s := NewServer(":0", logger, us, cs, health)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return &harness{srv: srv, userRepo: userRepo, health: health}
}

func (h *harness) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, h.srv.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (h *harness) signup(t *testing.T, fullname, email, password string) (token string) {
	t.Helper()
	resp, body := h.do(t, http.MethodPost, "/signup", "", map[string]string{
		"fullname": fullname, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["token"].(string)
}

// --- tests ---

func TestSignUp_Success(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodPost, "/signup", "", map[string]string{
		"fullname": "Alice", "email": "Alice@Example.com", "password": "secret1",
	})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])

	user := body["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", user["email"])
}

func TestSignUp_ValidationFailures(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		req  map[string]string
	}{
		{"missing fields", map[string]string{"email": "a@b.se"}},
		{"short password", map[string]string{"fullname": "A", "email": "a@b.se", "password": "12345"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := h.do(t, http.MethodPost, "/signup", "", tc.req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "Alice", "alice@example.com", "secret1")

	resp, _ := h.do(t, http.MethodPost, "/signup", "", map[string]string{
		"fullname": "Alice Again", "email": "ALICE@example.com", "password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_UnknownAndWrongPasswordLookIdentical(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "Alice", "alice@example.com", "secret1")

	respUnknown, bodyUnknown := h.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": "nobody@example.com", "password": "secret1",
	})
	respWrong, bodyWrong := h.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, respUnknown.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, respWrong.StatusCode)
	assert.Equal(t, bodyUnknown["message"], bodyWrong["message"])
}

func TestLogin_StoreOutageIsNot401(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "Alice", "alice@example.com", "secret1")
	h.userRepo.failWith = common.ErrStoreUnavailable

	resp, body := h.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, body["message"], "password", "outage must not read as an auth failure")
}

func TestVerify_And_Me(t *testing.T) {
	h := newHarness(t)
	token := h.signup(t, "Alice", "alice@example.com", "secret1")

	resp, body := h.do(t, http.MethodPost, "/verify", "", map[string]string{"token": token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, body = h.do(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice@example.com", user["email"])

	resp, _ = h.do(t, http.MethodGet, "/me", "garbage.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestVerify_MissingTokenIs400(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodPost, "/verify", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEndToEnd_SignupLoginVerifyDelete(t *testing.T) {
	h := newHarness(t)

	// signup
	h.signup(t, "Alice", "alice@example.com", "secret1")

	// login with differently-cased identifier
	resp, body := h.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": "ALICE@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)

	// verify resolves alice
	resp, body = h.do(t, http.MethodPost, "/verify", "", map[string]string{"token": token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice@example.com", body["user"].(map[string]any)["email"])

	// delete account
	resp, _ = h.do(t, http.MethodDelete, "/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the surviving token no longer verifies
	resp, _ = h.do(t, http.MethodPost, "/verify", "", map[string]string{"token": token})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestContacts_RequireAuthGate(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodGet, "/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestContacts_CRUDAndMessages(t *testing.T) {
	h := newHarness(t)
	token := h.signup(t, "Alice", "alice@example.com", "secret1")

	// create
	resp, created := h.do(t, http.MethodPost, "/contacts", token, map[string]string{
		"name": "Bob", "phoneNumber": "+46701234567",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	contactID := created["id"].(string)

	// list
	req, err := http.NewRequest(http.MethodGet, h.srv.URL+"/contacts", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := h.srv.Client().Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	var list []map[string]any
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "Bob", list[0]["name"])

	// send + read messages
	resp, msg := h.do(t, http.MethodPost, "/contacts/"+contactID+"/messages", token, map[string]string{
		"text": "hej!", "sentBy": "user",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "hej!", msg["text"])

	// delete contact, messages endpoint now 404s
	resp, _ = h.do(t, http.MethodDelete, "/contacts/"+contactID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, "/contacts/"+contactID+"/messages", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth_NeverFails(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "connected", body["database"])

	h.health.ok = false
	resp, body = h.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "disconnected", body["database"])
}
