// Package api is the HTTP transport to the tokenization service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jask/tokenshield/internal/customer"
	"github.com/jask/tokenshield/internal/secrets"
)

// AuthHeader carries the session token on every call.
const AuthHeader = "x-auth-token"

const (
	opCreate       = "create customer"
	opSearchID     = "search by id"
	opDetokenize   = "detokenize"
	maxErrorBody   = 512
	defaultTimeout = 15 * time.Second
)

// TokenStore supplies the session credential. secrets.Store satisfies it.
type TokenStore interface {
	Token() (string, error)
	Clear() error
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, zero disables limiting
	Burst      int
	Naming     customer.Naming
	Tokens     TokenStore
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Client calls the customer endpoints of the service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	naming     customer.Naming
	tokens     TokenStore
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", opts.BaseURL)
	}

	c := &Client{
		httpClient: opts.HTTPClient,
		baseURL:    base,
		naming:     opts.Naming,
		tokens:     opts.Tokens,
		logger:     opts.Logger,
	}
	if c.httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	if c.naming == "" {
		c.naming = customer.NamingCustomer
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c, nil
}

// CreateCustomer stores r and returns the id assigned by the service.
func (c *Client) CreateCustomer(ctx context.Context, r customer.Record) (customer.Created, error) {
	body, err := c.do(ctx, opCreate, http.MethodPost, "/cid/customer", c.naming.Encode(r))
	if err != nil {
		return customer.Created{}, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return customer.Created{}, &customer.TransportError{Op: opCreate, Err: fmt.Errorf("decode response: %w", errOrEmpty(err))}
	}
	id, err := customer.Scalar(obj["id"])
	if err != nil || id == "" {
		return customer.Created{}, &customer.TransportError{Op: opCreate, Err: fmt.Errorf("response has no id")}
	}
	rec, found := c.naming.Decode(obj)
	if !found {
		rec = r
	}
	return customer.Created{ID: id, Record: rec}, nil
}

// SearchCustomerByID fetches one record. A nil record means no match.
func (c *Client) SearchCustomerByID(ctx context.Context, id string) (*customer.Record, error) {
	body, err := c.do(ctx, opSearchID, http.MethodGet, "/cid/token/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return c.decodeOptional(opSearchID, body)
}

// SearchCustomerByToken detokenizes a single field value.
func (c *Client) SearchCustomerByToken(ctx context.Context, crit customer.Criterion) (*customer.Record, error) {
	key := c.naming.Key(crit.Field)
	if key == "" {
		return nil, fmt.Errorf("%w: unknown field %q", customer.ErrInvalidInput, crit.Field)
	}
	body, err := c.do(ctx, opDetokenize, http.MethodPost, "/cid/detokenize", map[string]string{key: crit.Query})
	if err != nil {
		return nil, err
	}
	return c.decodeOptional(opDetokenize, body)
}

func (c *Client) decodeOptional(op string, body []byte) (*customer.Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, &customer.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	rec, found := c.naming.Decode(obj)
	if !found {
		return nil, nil
	}
	return &rec, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &customer.TransportError{Op: op, Err: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api call failed", "method", method, "path", path, "err", err)
		return nil, &customer.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &customer.TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.Info("api call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		if err := c.tokens.Clear(); err != nil {
			c.logger.Error("clear session", "err", err)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &customer.TransportError{Op: op, Status: resp.StatusCode, Body: snippet(respBody)}
	}
	return respBody, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.Token()
	switch {
	case errors.Is(err, secrets.ErrNoToken):
		return
	case err != nil:
		c.logger.Warn("read session token", "err", err)
		return
	case token != "":
		req.Header.Set(AuthHeader, token)
	}
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}

func errOrEmpty(err error) error {
	if err != nil {
		return err
	}
	return errors.New("empty body")
}
