package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StubDoer answers every request with the same canned response. It lets tests
// return header values that a real HTTP/1.1 connection could not carry.
type StubDoer struct {
	Status int
	Header http.Header
	Body   string
	Err    error

	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

func (d *StubDoer) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}

	d.mu.Lock()
	d.requests = append(d.requests, req)
	d.bodies = append(d.bodies, body)
	d.mu.Unlock()

	if d.Err != nil {
		return nil, d.Err
	}

	return &http.Response{ //nolint:exhaustruct
		StatusCode: d.Status,
		Header:     d.Header.Clone(),
		Body:       io.NopCloser(strings.NewReader(d.Body)),
		Request:    req,
	}, nil
}

func (d *StubDoer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.requests)
}

func (d *StubDoer) LastRequest(t *testing.T) *http.Request {
	t.Helper()

	d.mu.Lock()
	defer d.mu.Unlock()

	require.NotEmpty(t, d.requests, "StubDoer received no request")

	return d.requests[len(d.requests)-1]
}

func (d *StubDoer) LastBody(t *testing.T) []byte {
	t.Helper()

	d.mu.Lock()
	defer d.mu.Unlock()

	require.NotEmpty(t, d.bodies, "StubDoer received no request")

	return d.bodies[len(d.bodies)-1]
}

// NewJSONServer starts a server that answers every request with status and
// body encoded as JSON. It is closed when the test ends.
func NewJSONServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)

	return server
}

// NewRawServer starts a server that answers every request with status and
// the literal body.
func NewRawServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	return server
}

func AssertRequestHeader(t *testing.T, req *http.Request, header, expectedValue string) {
	t.Helper()
	assert.Equal(t, expectedValue, req.Header.Get(header), "Header %s mismatch", header)
}

func AssertNoRequestHeader(t *testing.T, req *http.Request, header string) {
	t.Helper()
	assert.Empty(t, req.Header.Values(header), "Header %s should not be set", header)
}
