package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mikaelsv/kontakta/internal/common"
)

// HTTPClient talks JSON over HTTP to the Kontakta backend.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the backend at baseURL, e.g.
// "http://127.0.0.1:8080". A zero timeout disables the request deadline.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// authResponse mirrors the server's auth envelope.
type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

// statusError maps a non-2xx response to the shared error taxonomy, keeping
// the server's message for display. A 5xx means the server had a problem,
// not that the session did: it maps to ErrServerUnavailable so the guard
// never mistakes a backend outage for a rejected token.
func statusError(status int, message string) error {
	var sentinel error
	switch {
	case status == http.StatusBadRequest:
		sentinel = common.ErrValidation
	case status == http.StatusUnauthorized:
		sentinel = common.ErrorUnauthorized
	case status == http.StatusNotFound:
		sentinel = common.ErrorNotFound
	case status >= http.StatusInternalServerError:
		sentinel = common.ErrServerUnavailable
	default:
		sentinel = common.ErrorInternal
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Errorf("%w: %s", sentinel, message)
}

// do issues one request and decodes the response body into out (when out is
// non-nil). A non-2xx status becomes a taxonomy error; the connection-level
// failure is reported as ErrServerUnavailable so callers can distinguish
// "server said no" from "server not there".
func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope authResponse
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return statusError(resp.StatusCode, envelope.Message)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) SignUp(ctx context.Context, fullname, email, password string) (*AuthResult, error) {
	req := map[string]string{"fullname": fullname, "email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/signup", "", req, &resp); err != nil {
		return nil, err
	}
	return &AuthResult{Token: resp.Token, User: resp.User}, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	req := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &AuthResult{Token: resp.Token, User: resp.User}, nil
}

func (c *HTTPClient) Verify(ctx context.Context, token string) (*User, error) {
	req := map[string]string{"token": token}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/verify", "", req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *HTTPClient) DeleteAccount(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/me", token, nil, nil)
}

func (c *HTTPClient) ListContacts(ctx context.Context, token string) ([]Contact, error) {
	var out []Contact
	if err := c.do(ctx, http.MethodGet, "/contacts", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateContact(ctx context.Context, token, name, phoneNumber string) (*Contact, error) {
	req := map[string]string{"name": name, "phoneNumber": phoneNumber}
	var out Contact
	if err := c.do(ctx, http.MethodPost, "/contacts", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteContact(ctx context.Context, token, contactID string) error {
	return c.do(ctx, http.MethodDelete, "/contacts/"+contactID, token, nil, nil)
}

func (c *HTTPClient) ListMessages(ctx context.Context, token, contactID string) ([]Message, error) {
	var out []Message
	if err := c.do(ctx, http.MethodGet, "/contacts/"+contactID+"/messages", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SendMessage(ctx context.Context, token, contactID, text string) (*Message, error) {
	req := map[string]string{"text": text, "sentBy": "user"}
	var out Message
	if err := c.do(ctx, http.MethodPost, "/contacts/"+contactID+"/messages", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

var _ Client = (*HTTPClient)(nil)
