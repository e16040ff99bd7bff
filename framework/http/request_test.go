package http_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gohttp "github.com/km-arc/go-neatbox/framework/http"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newJSONRequest(t *testing.T, body string) *gohttp.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return gohttp.NewRequest(req)
}

func newFormRequest(t *testing.T, values url.Values) *gohttp.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return gohttp.NewRequest(req)
}

// ── Routing accessors ────────────────────────────────────────────────────────

func TestRequest_RoutingAccessors(t *testing.T) {
	raw := httptest.NewRequest("get", "/blog/42?page=2", nil)
	req := gohttp.NewRequest(raw)

	assert.Equal(t, "GET", req.Method())
	assert.Equal(t, "http", req.Protocol())
	assert.Equal(t, "/blog/42", req.Path())
	assert.Equal(t, "/blog/42?page=2", req.URI())
	assert.Nil(t, req.Session())
}

func TestRequest_Protocol(t *testing.T) {
	tlsReq := httptest.NewRequest(http.MethodGet, "/", nil)
	tlsReq.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https", gohttp.NewRequest(tlsReq).Protocol())

	spoofed := httptest.NewRequest(http.MethodGet, "/", nil)
	spoofed.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "http", gohttp.NewRequest(spoofed).Protocol())

	rewritten := httptest.NewRequest(http.MethodGet, "/", nil)
	rewritten.URL.Scheme = "HTTPS"
	assert.Equal(t, "https", gohttp.NewRequest(rewritten).Protocol())
}

func TestRequest_SessionAndID(t *testing.T) {
	req := gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	s := gohttp.NewArraySession()
	req.SetSession(s)
	req.SetID("req-1")

	s.Set("user", 7)
	v, ok := req.Session().Get("user")
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, "req-1", req.ID())

	req.Session().Delete("user")
	_, ok = req.Session().Get("user")
	assert.False(t, ok)
	assert.NotEmpty(t, s.ID())
}

// ── Bind ─────────────────────────────────────────────────────────────────────

func TestRequest_BindJSON(t *testing.T) {
	var u struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	req := newJSONRequest(t, `{"name":"Alice","email":"alice@example.com"}`)

	require.NoError(t, req.Bind(&u))
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestRequest_BindJSON_Errors(t *testing.T) {
	var v map[string]any
	assert.Error(t, newJSONRequest(t, "").Bind(&v), "empty body")
	assert.Error(t, newJSONRequest(t, "{bad json}").Bind(&v), "invalid json")
}

func TestRequest_BindForm(t *testing.T) {
	var u struct {
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	req := newFormRequest(t, url.Values{"name": {"Bob"}, "tags": {"a", "b"}})

	require.NoError(t, req.Bind(&u))
	assert.Equal(t, "Bob", u.Name)
	assert.Equal(t, []string{"a", "b"}, u.Tags)
}

// ── Input helpers ────────────────────────────────────────────────────────────

func TestRequest_InputAndQuery(t *testing.T) {
	req := gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/?page=2&q=go", nil))

	assert.Equal(t, "2", req.Query("page"))
	assert.Equal(t, "1", req.Query("missing", "1"))
	assert.Equal(t, "go", req.Input("q"))
	assert.Equal(t, "x", req.Input("missing", "x"))
	assert.True(t, req.Has("q"))
	assert.False(t, req.Has("missing"))
}

func TestRequest_Headers(t *testing.T) {
	raw := httptest.NewRequest(http.MethodGet, "/", nil)
	raw.Header.Set("Authorization", "Bearer secret")
	raw.Header.Set("Accept", "application/json")
	req := gohttp.NewRequest(raw)

	assert.Equal(t, "secret", req.BearerToken())
	assert.True(t, req.IsJSON())
	assert.Equal(t, "application/json", req.Header("Accept"))
}
