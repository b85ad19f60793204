// Package client is the session-aware API client used by the desk frontends.
// It owns the token lifecycle: stored on login/register, attached as a bearer
// credential to every request, purged on logout or on any 401 from a
// protected endpoint.
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
	"strings"
	"time"

	"github.com/Samsoniteyd/newtailor/internal/models"
)

const defaultTimeout = 10 * time.Second

// Client talks to the tailor-shop API.
type Client struct {
	baseURL        string
	http           *http.Client
	store          TokenStore
	onUnauthorized func()
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTokenStore injects the session state explicitly, e.g. a persistent
// store shared between client instances.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.store = s }
}

// WithUnauthorizedHandler registers the hook fired after the token is purged
// on a 401 from a protected endpoint (the "redirect to login" point).
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a Client for the given base URL, e.g. "http://localhost:5000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		store:   NewMemoryStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the currently stored session token, empty if logged out.
func (c *Client) Token() string { return c.store.Token() }

// Authenticated reports whether a session token is present.
func (c *Client) Authenticated() bool { return c.store.Token() != "" }

// Logout is client-local: it deletes the stored token. No server call.
func (c *Client) Logout() { c.store.Clear() }

// ---------- transport ----------

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
	Data    json.RawMessage   `json:"data"`
}

// isAuthPath reports whether path is a login/register call, whose 401s mean
// "wrong credentials" and must not purge the session.
func isAuthPath(path string) bool {
	return path == "/api/auth/login" || path == "/api/auth/register"
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.store.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// no response at all: connectivity or timeout
		netErr := &NetworkError{Err: err}
		var uerr *url.Error
		if errors.As(err, &uerr) && uerr.Timeout() {
			netErr.Timeout = true
		}
		if errors.Is(err, context.DeadlineExceeded) {
			netErr.Timeout = true
		}
		return netErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	var env envelope
	if len(respBody) > 0 {
		// a non-JSON body (proxy error page) still maps onto the taxonomy
		_ = json.Unmarshal(respBody, &env)
	}

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized && !isAuthPath(path) {
			// global interception: purge the session and hand control to
			// the login redirect
			c.store.Clear()
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
		}
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: msg,
			Fields:  env.Errors,
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// ---------- auth ----------

// RegisterInput is the registration form payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// LoginInput is the login form payload.
type LoginInput struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type authData struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// Register creates an account and stores the returned session token.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	var data authData
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &data); err != nil {
		return nil, err
	}
	c.store.SetToken(data.Token)
	return &data.User, nil
}

// Login authenticates and stores the returned session token.
func (c *Client) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	var data authData
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in, &data); err != nil {
		return nil, err
	}
	c.store.SetToken(data.Token)
	return &data.User, nil
}

type userData struct {
	User models.User `json:"user"`
}

// Profile fetches the current user.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var data userData
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, nil, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// ProfileUpdate carries the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// UpdateProfile edits name/email/phone.
func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*models.User, error) {
	var data userData
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", nil, in, &data); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// ChangePassword rotates the password after verifying the old one.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{
		"old_password": oldPassword,
		"new_password": newPassword,
	}
	return c.do(ctx, http.MethodPut, "/api/auth/password", nil, body, nil)
}

// DeleteProfile removes the account and clears the local session.
func (c *Client) DeleteProfile(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/api/auth/profile", nil, nil, nil); err != nil {
		return err
	}
	c.store.Clear()
	return nil
}

// ---------- requisitions ----------

// RequisitionQuery narrows and pages the order list.
type RequisitionQuery struct {
	Status   string
	Search   string
	DueFrom  string // YYYY-MM-DD
	DueTo    string // YYYY-MM-DD
	Sort     string // created_desc, created_asc, due_desc, due_asc
	Page     int
	PageSize int
}

func (q *RequisitionQuery) values() url.Values {
	v := url.Values{}
	if q == nil {
		return v
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.DueFrom != "" {
		v.Set("due_from", q.DueFrom)
	}
	if q.DueTo != "" {
		v.Set("due_to", q.DueTo)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		v.Set("page", fmt.Sprint(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", fmt.Sprint(q.PageSize))
	}
	return v
}

// RequisitionPage is one page of the order list.
type RequisitionPage struct {
	Requisitions []models.Requisition `json:"requisitions"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	PageSize     int                  `json:"page_size"`
}

// Requisitions lists the caller's orders.
func (c *Client) Requisitions(ctx context.Context, q *RequisitionQuery) (*RequisitionPage, error) {
	var page RequisitionPage
	if err := c.do(ctx, http.MethodGet, "/api/requisitions", q.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

type requisitionData struct {
	Requisition models.Requisition `json:"requisition"`
}

// Requisition fetches one order.
func (c *Client) Requisition(ctx context.Context, id uint) (*models.Requisition, error) {
	var data requisitionData
	path := fmt.Sprintf("/api/requisitions/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &data); err != nil {
		return nil, err
	}
	return &data.Requisition, nil
}

// RequisitionInput is the create/update payload for an order.
type RequisitionInput struct {
	Name         string               `json:"name,omitempty"`
	Description  string               `json:"description,omitempty"`
	Status       string               `json:"status,omitempty"`
	ContactEmail string               `json:"contact_email,omitempty"`
	ContactPhone string               `json:"contact_phone,omitempty"`
	Measurements *models.Measurements `json:"measurements,omitempty"`
	DueDate      string               `json:"due_date,omitempty"`
}

// CreateRequisition records a new order.
func (c *Client) CreateRequisition(ctx context.Context, in RequisitionInput) (*models.Requisition, error) {
	var data requisitionData
	if err := c.do(ctx, http.MethodPost, "/api/requisitions", nil, in, &data); err != nil {
		return nil, err
	}
	return &data.Requisition, nil
}

// UpdateRequisition applies a partial update to an order.
func (c *Client) UpdateRequisition(ctx context.Context, id uint, in RequisitionInput) (*models.Requisition, error) {
	var data requisitionData
	path := fmt.Sprintf("/api/requisitions/%d", id)
	if err := c.do(ctx, http.MethodPut, path, nil, in, &data); err != nil {
		return nil, err
	}
	return &data.Requisition, nil
}

// DeleteRequisition removes an order.
func (c *Client) DeleteRequisition(ctx context.Context, id uint) error {
	path := fmt.Sprintf("/api/requisitions/%d", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// AddNote appends a remark to an order.
func (c *Client) AddNote(ctx context.Context, id uint, text string) (*models.Requisition, error) {
	var data requisitionData
	path := fmt.Sprintf("/api/requisitions/%d/notes", id)
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &data); err != nil {
		return nil, err
	}
	return &data.Requisition, nil
}
