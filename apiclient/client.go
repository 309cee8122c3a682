// Package apiclient talks to the accreditation backend's REST API.
package apiclient

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
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// ErrNotFound matches any *HTTPError with status 404 via errors.Is.
var ErrNotFound = errors.New("apiclient: not found")

// TokenSource supplies the bearer token for outgoing requests. ok is false
// when there is no authenticated session.
type TokenSource interface {
	Token(ctx context.Context) (token string, ok bool)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, bool)

func (f TokenFunc) Token(ctx context.Context) (string, bool) { return f(ctx) }

// HTTPError is returned for any non-2xx backend response.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client issues one HTTP request per call. It does not retry and does not
// refresh tokens; failures are returned to the caller as-is.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets a per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New returns a client for the backend at baseURL. tokens may be nil, in
// which case requests are sent without an Authorization header.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a shallow copy of c that authenticates with tokens.
// Handlers use it to bind the shared client to the request's session.
func (c *Client) WithTokens(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok, ok := c.tokens.Token(ctx); ok && tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &HTTPError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Login posts the credentials and returns the backend's token payload. The
// caller decides where to keep the token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/accounts/login/", body, &raw); err != nil {
		return nil, err
	}
	var resp LoginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("POST /accounts/login/: decode response: %w", err)
	}
	if err := json.Unmarshal(raw, &resp.Raw); err != nil {
		return nil, fmt.Errorf("POST /accounts/login/: decode response: %w", err)
	}
	return &resp, nil
}

func (c *Client) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	var out DashboardSummary
	if err := c.get(ctx, "/dashboard/summary/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Modules(ctx context.Context) ([]Module, error) {
	var out []Module
	if err := c.get(ctx, "/modules/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Module(ctx context.Context, id string) (*Module, error) {
	var out Module
	if err := c.get(ctx, "/modules/"+url.PathEscape(id)+"/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Proformas(ctx context.Context) ([]ProformaTemplate, error) {
	var out []ProformaTemplate
	if err := c.get(ctx, "/proformas/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Proforma(ctx context.Context, id string) (*ProformaTemplate, error) {
	var out ProformaTemplate
	if err := c.get(ctx, "/proformas/"+url.PathEscape(id)+"/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Assignments(ctx context.Context) ([]Assignment, error) {
	var out []Assignment
	if err := c.get(ctx, "/assignments/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Assignment(ctx context.Context, id string) (*Assignment, error) {
	var out Assignment
	if err := c.get(ctx, "/assignments/"+url.PathEscape(id)+"/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Institutions(ctx context.Context) ([]Institution, error) {
	var out []Institution
	if err := c.get(ctx, "/organizations/institutions/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Compliances lists compliance records, optionally filtered by institution
// and item.
func (c *Client) Compliances(ctx context.Context, f ComplianceFilter) ([]Compliance, error) {
	q := url.Values{}
	if f.Institution != "" {
		q.Set("institution", f.Institution)
	}
	if f.Item != "" {
		q.Set("item", f.Item)
	}
	path := "/pg/compliance/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []Compliance
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCompliance(ctx context.Context, in ComplianceCreate) (*Compliance, error) {
	var out Compliance
	if err := c.do(ctx, http.MethodPost, "/pg/compliance/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCompliance(ctx context.Context, id string, patch CompliancePatch) (*Compliance, error) {
	var out Compliance
	if err := c.do(ctx, http.MethodPatch, "/pg/compliance/"+url.PathEscape(id)+"/", patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
