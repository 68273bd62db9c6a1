// Package transport talks to the tasks HTTP endpoint.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"taskboard/internal/config"
	dom "taskboard/internal/domain"
)

// UnmockedCallWarning is logged before every real request so test suites
// can spot network calls that should have been mocked.
const UnmockedCallWarning = "Real API call initiated. Should be mocked in unit tests."

const (
	OpFetch  = "fetch"
	OpCreate = "create"
)

var opMessages = map[string]string{
	OpFetch:  "Failed to fetch tasks",
	OpCreate: "Failed to create task",
}

// TransportError wraps every failure to reach or interpret the endpoint.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	prefix, ok := opMessages[e.Op]
	if !ok {
		prefix = "Failed to " + e.Op + " tasks"
	}
	return fmt.Sprintf("%s: %v", prefix, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is the cause of a TransportError for a non-2xx response.
type StatusError struct {
	Code       int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.StatusText)
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client for cfg.BaseURL. cfg.Timeout bounds every request;
// the retry settings are not used.
func New(cfg config.APIConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout.Duration()},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// FetchAll GETs the base URL and returns the body unchanged. The body must be
// valid JSON; its shape is the caller's concern.
func (c *Client) FetchAll(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, &TransportError{Op: OpFetch, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, &TransportError{Op: OpFetch, Err: err}
	}
	if !json.Valid(body) {
		return nil, &TransportError{Op: OpFetch, Err: parseError(body)}
	}
	return json.RawMessage(body), nil
}

// CreateOne POSTs data as JSON to the base URL and decodes the created record.
func (c *Client) CreateOne(ctx context.Context, data any) (dom.RawRecord, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return dom.RawRecord{}, &TransportError{Op: OpCreate, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return dom.RawRecord{}, &TransportError{Op: OpCreate, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return dom.RawRecord{}, &TransportError{Op: OpCreate, Err: err}
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		if !json.Valid(body) {
			return dom.RawRecord{}, &TransportError{Op: OpCreate, Err: parseError(body)}
		}
		return dom.RawRecord{}, &TransportError{Op: OpCreate, Err: errNotObject}
	}
	var rec dom.RawRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return dom.RawRecord{}, &TransportError{Op: OpCreate, Err: err}
	}
	return rec, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	c.log.WarnContext(req.Context(), UnmockedCallWarning, "method", req.Method, "url", req.URL.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, StatusText: statusText(resp)}
	}
	return io.ReadAll(resp.Body)
}

// statusText returns the reason phrase sent by the server, falling back to
// the standard text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// parseError recovers the decoder's message for an invalid body.
var errNotObject = errors.New("response body is not a JSON object")

func parseError(body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return err
	}
	return fmt.Errorf("invalid JSON body")
}
