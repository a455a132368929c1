package api

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
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/backoffice/internal/client/models"
	"github.com/dmitrijs2005/backoffice/internal/logging"
)

const (
	// AdminPrefix is the namespace every admin resource lives under.
	AdminPrefix = "/api/admin"

	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 8 << 20
)

// Client talks to the admin REST API. It is safe for concurrent use.
type Client struct {
	baseURL        string
	http           *http.Client
	token          func() string
	limiter        *rate.Limiter
	logger         logging.Logger
	metrics        *Metrics
	onUnauthorized func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithTokenSource sets the function read on every request for the bearer
// token. An empty token sends no Authorization header.
func WithTokenSource(fn func() string) Option { return func(c *Client) { c.token = fn } }

// WithRateLimit caps outgoing requests; rps <= 0 disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l logging.Logger) Option { return func(c *Client) { c.logger = l } }

func WithMetrics(m *Metrics) Option { return func(c *Client) { c.metrics = m } }

// WithUnauthorizedHandler registers fn to run whenever the backend rejects
// the token. The shell uses it to drop the session and go to /login.
func WithUnauthorizedHandler(fn func()) Option { return func(c *Client) { c.onUnauthorized = fn } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   func() string { return "" },
		limiter: rate.NewLimiter(rate.Inf, 0),
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the wrapper every backend response uses.
type envelope struct {
	Status  *bool           `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  FieldErrors     `json:"errors"`
}

type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	files  []models.Attachment
	token  string // overrides the token source when set
	anon   bool
}

// do performs r and decodes the envelope's data into out (when non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return transportError(err)
	}

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return &Error{Kind: ErrRequestFailed, Message: DefaultMessage, cause: err}
	}
	rid := req.Header.Get(RequestIDHeader)

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(r.op, r.method, "error", elapsed)
		c.logger.Warn(ctx, "request failed", "op", r.op, "request_id", rid, "error", err)
		return transportError(err)
	}
	defer resp.Body.Close()
	c.metrics.observe(r.op, r.method, strconv.Itoa(resp.StatusCode), elapsed)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.Warn(ctx, "reading response failed", "op", r.op, "request_id", rid, "error", err)
		return transportError(err)
	}

	var (
		env       envelope
		decodeErr error
	)
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if !ok || decodeErr != nil || (env.Status != nil && !*env.Status) {
		var e *Error
		switch {
		case !ok && decodeErr != nil:
			e = responseError(resp.StatusCode, nil)
			e.cause = decodeErr
		case decodeErr != nil:
			e = &Error{Kind: ErrRequestFailed, Status: resp.StatusCode, Message: DefaultMessage, cause: decodeErr}
		default:
			e = responseError(resp.StatusCode, &env)
		}
		c.logger.Warn(ctx, "request rejected",
			"op", r.op, "request_id", rid, "status", resp.StatusCode, "message", e.Message, "duration", elapsed)
		if errors.Is(e, ErrUnauthorized) && c.onUnauthorized != nil && !r.anon {
			c.onUnauthorized()
		}
		return e
	}

	c.logger.Debug(ctx, "request done", "op", r.op, "request_id", rid, "status", resp.StatusCode, "duration", elapsed)

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Kind: ErrRequestFailed, Status: resp.StatusCode, Message: DefaultMessage,
			cause: fmt.Errorf("decode %s data: %w", r.op, err)}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, r request) (*http.Request, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	method := r.method
	var (
		body        io.Reader
		contentType string
	)
	switch {
	case len(r.files) > 0:
		fields, err := formFields(r.body)
		if err != nil {
			return nil, err
		}
		// Multipart updates are tunnelled through POST.
		if method == http.MethodPut || method == http.MethodPatch {
			fields.Set("_method", method)
			method = http.MethodPost
		}
		buf, ct, err := multipartBody(fields, r.files)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case r.body != nil:
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", r.op, err)
		}
		body, contentType = bytes.NewReader(b), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	token := r.token
	if token == "" && !r.anon {
		token = c.token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// LoginResult is the data of a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a token. It never sends a bearer header.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	err := c.do(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   AdminPrefix + "/login",
		body:   map[string]string{"email": email, "password": password},
		anon:   true,
	}, &res)
	if err != nil {
		return LoginResult{}, err
	}
	if res.Token == "" {
		return LoginResult{}, &Error{Kind: ErrRequestFailed, Message: "login response carried no token"}
	}
	return res, nil
}
