package cache

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/routing"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// OutputCache stores whole responses for routes that ask for it.
type OutputCache interface {
	// Get returns the cached response for the policy's key. A miss is
	// (nil, false, nil).
	Get(ctx context.Context, p *routing.CachePolicy) (*gohttp.Response, bool, error)
	// Put stores res for p.Duration.
	Put(ctx context.Context, p *routing.CachePolicy, res *gohttp.Response) error
}

// entry is the stored form of a response. Pending route redirects are
// resolved before caching, so only the plain fields are kept.
type entry struct {
	Status      int         `json:"status"`
	Body        []byte      `json:"body"`
	ContentType string      `json:"content_type"`
	Header      http.Header `json:"header,omitempty"`
}

func newEntry(res *gohttp.Response) entry {
	return entry{
		Status:      res.Status,
		Body:        append([]byte(nil), res.Body...),
		ContentType: res.ContentType,
		Header:      res.Header.Clone(),
	}
}

func (e entry) response() *gohttp.Response {
	res := gohttp.NewResponse("", e.Status)
	res.Body = append([]byte(nil), e.Body...)
	res.ContentType = e.ContentType
	if e.Header != nil {
		res.Header = e.Header.Clone()
	}
	return res
}

func encode(res *gohttp.Response) ([]byte, error) {
	return json.Marshal(newEntry(res))
}

func decode(b []byte) (*gohttp.Response, error) {
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return e.response(), nil
}

// ── Null ──────────────────────────────────────────────────────────────────────

// Null never stores anything. It is the default output cache.
type Null struct{}

func (Null) Get(context.Context, *routing.CachePolicy) (*gohttp.Response, bool, error) {
	return nil, false, nil
}

func (Null) Put(context.Context, *routing.CachePolicy, *gohttp.Response) error { return nil }
