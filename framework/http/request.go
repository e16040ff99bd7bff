package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request wraps *http.Request with the accessors the dispatch pipeline needs
// plus input helpers.
type Request struct {
	raw     *http.Request
	id      string
	session Session
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// Context returns the request context.
func (req *Request) Context() context.Context { return req.raw.Context() }

// ── Routing accessors ────────────────────────────────────────────────────────

// Method returns the upper-case HTTP method.
func (req *Request) Method() string { return strings.ToUpper(req.raw.Method) }

// Protocol returns "https" for TLS requests, the URL scheme when one is set,
// "http" otherwise. Forwarding headers are ignored here; the server copies
// X-Forwarded-Proto into the URL scheme only for trusted proxies.
func (req *Request) Protocol() string {
	if req.raw.TLS != nil {
		return "https"
	}
	if req.raw.URL != nil && req.raw.URL.Scheme != "" {
		return strings.ToLower(req.raw.URL.Scheme)
	}
	return "http"
}

// Path returns the decoded URL path.
func (req *Request) Path() string { return req.raw.URL.Path }

// URI returns the path and query string as sent by the client.
func (req *Request) URI() string {
	if req.raw.RequestURI != "" {
		return req.raw.RequestURI
	}
	return req.raw.URL.RequestURI()
}

// Host returns the request host.
func (req *Request) Host() string { return req.raw.Host }

// ID returns the request ID assigned by the transport, if any.
func (req *Request) ID() string { return req.id }

// SetID sets the request ID.
func (req *Request) SetID(id string) { req.id = id }

// Session returns the attached session, or nil.
func (req *Request) Session() Session { return req.session }

// SetSession attaches a session.
func (req *Request) SetSession(s Session) { req.session = s }

// ── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes the request body into v: JSON bodies by `json` tags, form
// bodies through the same tags after flattening single values.
func (req *Request) Bind(v any) error {
	if strings.Contains(req.ContentType(), "application/json") {
		return req.bindJSON(v)
	}
	if err := req.raw.ParseForm(); err != nil {
		return err
	}
	return bindForm(req.raw.PostForm, v)
}

func (req *Request) bindJSON(v any) error {
	defer req.raw.Body.Close()
	body, err := io.ReadAll(req.raw.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("empty request body")
	}
	return json.Unmarshal(body, v)
}

func bindForm(values map[string][]string, v any) error {
	m := make(map[string]any, len(values))
	for k, vals := range values {
		if len(vals) == 1 {
			m[k] = vals[0]
		} else {
			m[k] = vals
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// ── Input helpers ────────────────────────────────────────────────────────────

// Input returns a single input value (query string or post body).
func (req *Request) Input(key string, fallback ...string) string {
	_ = req.raw.ParseForm()
	v := req.raw.FormValue(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// Has returns true if the key is present and non-empty.
func (req *Request) Has(key string) bool {
	return req.Input(key) != ""
}

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// BearerToken extracts the token from Authorization: Bearer <token>.
func (req *Request) BearerToken() string {
	auth := req.raw.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// IP returns the client address (respects the RealIP middleware).
func (req *Request) IP() string { return req.raw.RemoteAddr }

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}

// IsJSON returns true when the request sends or expects JSON.
func (req *Request) IsJSON() bool {
	return strings.Contains(req.raw.Header.Get("Accept"), "application/json") ||
		strings.Contains(req.ContentType(), "application/json")
}
