package http

import (
	"net/http"
	"strconv"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response is the value a handler returns. Nothing is written to the client
// until WriteTo, so listeners can still change it during post-processing.
type Response struct {
	Status      int
	Body        []byte
	ContentType string
	Header      http.Header

	redirectRoute string
	redirectArgs  map[string]any
}

// NewResponse creates a text/html response.
func NewResponse(body string, status int) *Response {
	return &Response{
		Status:      status,
		Body:        []byte(body),
		ContentType: "text/html; charset=utf-8",
		Header:      make(http.Header),
	}
}

// SetBody replaces the body.
func (res *Response) SetBody(body string) { res.Body = []byte(body) }

// BodyString returns the body as a string.
func (res *Response) BodyString() string { return string(res.Body) }

// ── JSON responses ────────────────────────────────────────────────────────────

// JSON creates a JSON response.
//
//	res, err := gohttp.JSON(http.StatusOK, map[string]any{"message": "ok"})
func JSON(status int, data any) (*Response, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	res := NewResponse("", status)
	res.Body = b
	res.ContentType = "application/json"
	return res, nil
}

// Success creates 200 JSON: {"data": v}
func Success(v any) (*Response, error) {
	return JSON(http.StatusOK, envelope{"data": v})
}

// Created creates 201 JSON: {"data": v}
func Created(v any) (*Response, error) {
	return JSON(http.StatusCreated, envelope{"data": v})
}

// NoContent creates 204 with no body.
func NoContent() *Response {
	res := NewResponse("", http.StatusNoContent)
	res.ContentType = ""
	return res
}

// Error creates a JSON error response: {"message": message}
func Error(status int, message string) *Response {
	res, err := JSON(status, envelope{"message": message})
	if err != nil {
		// a string map always marshals
		panic(err)
	}
	return res
}

// Unauthorized creates 401.
func Unauthorized(message ...string) *Response {
	return Error(http.StatusUnauthorized, first(message, "Unauthenticated."))
}

// Forbidden creates 403.
func Forbidden(message ...string) *Response {
	return Error(http.StatusForbidden, first(message, "This action is unauthorized."))
}

// NotFound creates 404.
func NotFound(message ...string) *Response {
	return Error(http.StatusNotFound, first(message, "Not found."))
}

// ServerError creates 500.
func ServerError(message ...string) *Response {
	return Error(http.StatusInternalServerError, first(message, "Server Error."))
}

// ── Redirects ────────────────────────────────────────────────────────────────

// Redirect creates a redirect response, 302 unless a status is given.
func Redirect(url string, status ...int) *Response {
	code := http.StatusFound
	if len(status) > 0 {
		code = status[0]
	}
	res := NewResponse("", code)
	res.RedirectTo(url)
	return res
}

// RedirectTo turns the response into a redirect to url. A non-3xx status is
// replaced by 302.
func (res *Response) RedirectTo(url string) {
	if res.Status < 300 || res.Status > 399 {
		res.Status = http.StatusFound
	}
	res.header().Set("Location", url)
	res.redirectRoute = ""
	res.redirectArgs = nil
}

// RedirectToRoute redirects to a named route. The URL is generated from the
// route table when the response is post-processed.
func (res *Response) RedirectToRoute(name string, args map[string]any) {
	if res.Status < 300 || res.Status > 399 {
		res.Status = http.StatusFound
	}
	res.redirectRoute = name
	res.redirectArgs = args
}

// PendingRedirect returns the route redirect still waiting for a URL.
func (res *Response) PendingRedirect() (name string, args map[string]any, ok bool) {
	return res.redirectRoute, res.redirectArgs, res.redirectRoute != ""
}

// Location returns the redirect target, if any.
func (res *Response) Location() string { return res.header().Get("Location") }

// ── Output ───────────────────────────────────────────────────────────────────

// WriteTo writes headers, status and body to w.
func (res *Response) WriteTo(w http.ResponseWriter) error {
	h := w.Header()
	for k, vs := range res.Header {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	if res.ContentType != "" {
		h.Set("Content-Type", res.ContentType)
	}
	if len(res.Body) > 0 {
		h.Set("Content-Length", strconv.Itoa(len(res.Body)))
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := w.Write(res.Body)
	return err
}

func (res *Response) header() http.Header {
	if res.Header == nil {
		res.Header = make(http.Header)
	}
	return res.Header
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
