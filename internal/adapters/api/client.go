package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single backend call
const DefaultTimeout = 20 * time.Second

// TokenSource supplies the bearer credential. It is consulted on every call
// so a login or logout in another process is picked up immediately.
type TokenSource interface {
	Token() (string, error)
}

// Client talks to the asset-tracking REST backend
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	logger     *logrus.Entry
	metrics    *Metrics
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the request logger
func WithLogger(logger *logrus.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.WithField("component", "gateway")
		}
	}
}

// WithMetrics enables request instrumentation
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a gateway for baseURL, e.g. http://localhost:5000/api
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		logger:     discard.WithField("component", "gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call describes one backend request
type call struct {
	method string
	route  string // path template used for metrics, e.g. /assets/{id}
	path   string
	public bool
	body   any
	out    any
}

// envelope is the {data: ...} wrapper the backend puts around payloads
type envelope[T any] struct {
	Data T `json:"data"`
}

func (c *Client) do(ctx context.Context, cl call) error {
	requestID := uuid.NewString()
	log := c.logger.WithFields(logrus.Fields{
		"method":     cl.method,
		"path":       cl.path,
		"request_id": requestID,
	})

	var token string
	if !cl.public {
		var err error
		token, err = c.token()
		if err != nil {
			c.metrics.observe(cl.method, cl.route, string(KindNoCredentials), 0)
			return &Error{Kind: KindNoCredentials, Message: ErrNoToken.Error(), RequestID: requestID, Err: err}
		}
	}

	var body io.Reader
	if cl.body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(cl.body); err != nil {
			return &Error{Kind: KindDecode, Message: "failed to encode request", RequestID: requestID, Err: err}
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return &Error{Kind: KindTransport, Message: "failed to build request", RequestID: requestID, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(cl.method, cl.route, string(KindTransport), elapsed)
		log.WithError(err).Warn("request failed")
		return &Error{Kind: KindTransport, Message: "request failed", RequestID: requestID, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observe(cl.method, cl.route, string(KindTransport), elapsed)
		return &Error{Kind: KindTransport, Status: resp.StatusCode, Message: "failed to read response", RequestID: requestID, Err: err}
	}

	log = log.WithFields(logrus.Fields{"status": resp.StatusCode, "duration": elapsed})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.observe(cl.method, cl.route, string(KindBackend), elapsed)
		msg := backendMessage(resp.StatusCode, payload)
		log.WithField("error", msg).Warn("backend rejected request")
		return &Error{Kind: KindBackend, Status: resp.StatusCode, Message: msg, RequestID: requestID}
	}

	c.metrics.observe(cl.method, cl.route, "ok", elapsed)
	log.Debug("request completed")

	if cl.out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, cl.out); err != nil {
		return &Error{Kind: KindDecode, Status: resp.StatusCode, Message: "failed to decode response", RequestID: requestID, Err: err}
	}
	return nil
}

func (c *Client) token() (string, error) {
	if c.tokens == nil {
		return "", ErrNoToken
	}
	token, err := c.tokens.Token()
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	if strings.TrimSpace(token) == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// getData performs a GET and unwraps the {data: ...} envelope
func getData[T any](ctx context.Context, c *Client, route, path string) (T, error) {
	var env envelope[T]
	err := c.do(ctx, call{method: http.MethodGet, route: route, path: path, out: &env})
	return env.Data, err
}
