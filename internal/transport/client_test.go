package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskboard/internal/config"
	dom "taskboard/internal/domain"
	"taskboard/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quietLogger drops the unmocked-call warning, everything else goes to buf.
func quietLogger(buf *bytes.Buffer) Option {
	return WithLogger(logging.New(config.LogConfig{Level: "debug"}, buf, logging.SuppressMessages(UnmockedCallWarning)))
}

func newClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	var buf bytes.Buffer
	return New(config.APIConfig{BaseURL: srv.URL + "/api/v1/tasks"}, append([]Option{quietLogger(&buf)}, opts...)...)
}

func requireTransportError(t *testing.T, err error, want string) *TransportError {
	t.Helper()
	var te *TransportError
	require.True(t, errors.As(err, &te), "want TransportError, got %v", err)
	assert.Equal(t, want, err.Error())
	return te
}

func TestFetchAllReturnsBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/tasks", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":1,"name":"a","completed":true}]`)
	})

	body, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"a","completed":true}]`, string(body))
}

func TestFetchAllPassesNonArrayJSONThrough(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	})
	body, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "null", string(body))
}

func TestFetchAllStatusError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.FetchAll(context.Background())
	te := requireTransportError(t, err, "Failed to fetch tasks: HTTP 500: Internal Server Error")
	assert.Equal(t, OpFetch, te.Op)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestFetchAllNotFound(t *testing.T) {
	c := newClient(t, http.NotFound)
	_, err := c.FetchAll(context.Background())
	requireTransportError(t, err, "Failed to fetch tasks: HTTP 404: Not Found")
}

func TestFetchAllParseError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>not json</html>`)
	})
	_, err := c.FetchAll(context.Background())
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Contains(t, err.Error(), "Failed to fetch tasks: invalid character")

	var syn *json.SyntaxError
	assert.True(t, errors.As(err, &syn))
}

func TestFetchAllEmptyBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.FetchAll(context.Background())
	requireTransportError(t, err, "Failed to fetch tasks: unexpected end of JSON input")
}

func TestFetchAllNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var buf bytes.Buffer
	c := New(config.APIConfig{BaseURL: url}, quietLogger(&buf))
	_, err := c.FetchAll(context.Background())
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Contains(t, err.Error(), "Failed to fetch tasks: ")
}

func TestCreateOne(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, map[string]any{"name": "New task", "completed": false}, in)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":3,"uuid":"ignored","name":"New task","completed":false}`)
	})

	rec, err := c.CreateOne(context.Background(), map[string]any{"name": "New task", "completed": false})
	require.NoError(t, err)
	assert.Equal(t, dom.RawRecord{ID: 3, Name: "New task"}, rec)
}

func TestCreateOneFailures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		_, err := c.CreateOne(context.Background(), map[string]string{"name": ""})
		te := requireTransportError(t, err, "Failed to create task: HTTP 400: Bad Request")
		assert.Equal(t, OpCreate, te.Op)
	})
	t.Run("parse", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"id":`)
		})
		_, err := c.CreateOne(context.Background(), map[string]string{"name": "x"})
		requireTransportError(t, err, "Failed to create task: unexpected end of JSON input")
	})
	for name, body := range map[string]string{"null": "null", "array": `[{"id":1}]`, "number": "7"} {
		t.Run("non-object "+name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = io.WriteString(w, body)
			})
			rec, err := c.CreateOne(context.Background(), map[string]string{"name": "x"})
			requireTransportError(t, err, "Failed to create task: response body is not a JSON object")
			assert.Zero(t, rec)
		})
	}
	t.Run("empty body", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
		_, err := c.CreateOne(context.Background(), map[string]string{"name": "x"})
		requireTransportError(t, err, "Failed to create task: unexpected end of JSON input")
	})
	t.Run("unencodable payload", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("request must not be sent")
		})
		_, err := c.CreateOne(context.Background(), make(chan int))
		var te *TransportError
		assert.True(t, errors.As(err, &te))
	})
}

func TestWarningEmittedBeforeEveryCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	c := New(config.APIConfig{BaseURL: srv.URL}, WithLogger(logging.New(config.LogConfig{}, &buf, nil)))
	_, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	_, err = c.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(UnmockedCallWarning)))
}

func TestWarningSuppressedByFilter(t *testing.T) {
	var buf bytes.Buffer
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}, quietLogger(&buf))
	_, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestCustomHTTPClient(t *testing.T) {
	called := false
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(bytes.NewBufferString(`[]`)),
			Header:     make(http.Header),
		}, nil
	})
	var buf bytes.Buffer
	c := New(config.APIConfig{BaseURL: "http://tasks.invalid/"}, quietLogger(&buf), WithHTTPClient(&http.Client{Transport: rt}))
	_, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	assert.True(t, called)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
