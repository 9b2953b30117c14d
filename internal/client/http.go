package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNoCredential is returned when a request needs a bearer token and the
// session has none.
var ErrNoCredential = errors.New("no stored credential")

// HTTPError represents a non-2xx response from the API.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// IsStatus reports whether err wraps an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// HTTPClient makes REST calls to the admin API on behalf of a session.
type HTTPClient struct {
	baseURL string
	session *Session
	client  *http.Client
}

// NewHTTPClient creates a client targeting the given base URL
// (e.g. "https://warden.example.com"). The session is read on every call.
func NewHTTPClient(baseURL string, sess *Session, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		session: sess,
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root requests are sent to.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// VerifyAdmin calls /api/auth/verify-admin and returns the session's role.
func (c *HTTPClient) VerifyAdmin(ctx context.Context) (Role, error) {
	var out VerifyResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify-admin", nil, &out); err != nil {
		return "", fmt.Errorf("client.VerifyAdmin: %w", err)
	}
	if !out.User.Role.Valid() {
		return "", fmt.Errorf("client.VerifyAdmin: %w: role %q", ErrMalformedMessage, out.User.Role)
	}
	return out.User.Role, nil
}

// ListUsers fetches the user management table.
func (c *HTTPClient) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, &out); err != nil {
		return nil, fmt.Errorf("client.ListUsers: %w", err)
	}
	return out, nil
}

// UpdateUserRole sends PUT /api/admin/users/{id}/role.
func (c *HTTPClient) UpdateUserRole(ctx context.Context, userID int64, role Role) error {
	path := "/api/admin/users/" + strconv.FormatInt(userID, 10) + "/role"
	if err := c.do(ctx, http.MethodPut, path, RoleUpdate{Role: role}, nil); err != nil {
		return fmt.Errorf("client.UpdateUserRole: %w", err)
	}
	return nil
}

// BulkAction sends POST /api/admin/users/bulk-action.
func (c *HTTPClient) BulkAction(ctx context.Context, action string, userIDs []int64) error {
	body := BulkActionRequest{Action: action, UserIDs: userIDs}
	if err := c.do(ctx, http.MethodPost, "/api/admin/users/bulk-action", body, nil); err != nil {
		return fmt.Errorf("client.BulkAction: %w", err)
	}
	return nil
}

// GetSecurityEvent fetches /api/admin/security-events/{id}.
func (c *HTTPClient) GetSecurityEvent(ctx context.Context, id string) (*EventDetail, error) {
	var out EventDetail
	if err := c.do(ctx, http.MethodGet, "/api/admin/security-events/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("client.GetSecurityEvent: %w", err)
	}
	return &out, nil
}

// AppendAuditLog sends POST /api/admin/audit-logs.
func (c *HTTPClient) AppendAuditLog(ctx context.Context, action string) error {
	if err := c.do(ctx, http.MethodPost, "/api/admin/audit-logs", AuditRequest{Action: action}, nil); err != nil {
		return fmt.Errorf("client.AppendAuditLog: %w", err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	token := c.session.Token()
	if token == "" {
		return ErrNoCredential
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // best-effort read for error message
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := string(respBody)
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &HTTPError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrMalformedMessage, err)
		}
	}
	return nil
}

// Retryable reports whether a push channel should redial after err. Missing
// credentials and 4xx responses are final.
func Retryable(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrNoCredential) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}
	return true
}
