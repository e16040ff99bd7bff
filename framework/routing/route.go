package routing

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMethod is the method set of a route that declares none.
	DefaultMethod = "GET|POST|PUT|DELETE|HEAD"
	// DefaultProtocol is the protocol set of a route that declares none.
	DefaultProtocol = "http|https"

	// MinCacheDuration is the shortest time a response is kept in the output cache.
	MinCacheDuration = 60 * time.Second

	optionalMarker = "::"
)

var (
	// ErrInvalidPattern is returned for URL patterns that cannot be compiled.
	ErrInvalidPattern = errors.New("routing: invalid url pattern")
	// ErrInvalidHandlerSpec is returned for controller specs that are not "ns:Name:action".
	ErrInvalidHandlerSpec = errors.New("routing: invalid handler spec")

	placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)
	leadingInt         = regexp.MustCompile(`^\s*[+-]?[0-9]+`)
)

// Request is what a route needs to know about an incoming request.
// *framework/http.Request satisfies it.
type Request interface {
	Method() string
	Protocol() string
	Path() string
	URI() string
}

// ── Route ─────────────────────────────────────────────────────────────────────

// Route maps a URL pattern plus method/protocol constraints to a handler.
//
// Pattern syntax:
//   - {name} captures a segment; Placeholders[name] picks the sub-pattern
//     (int, slug, alphanum, alpha, text, or an inline regex)
//   - "::" marks the rest of the pattern as optional
//
//	&routing.Route{
//	    Name:         "blog_show",
//	    URL:          "/blog/{id}::/{slug}",
//	    Controller:   "blog:PostController:show",
//	    Placeholders: map[string]string{"id": "int", "slug": "slug"},
//	}
//
// Fields must not change once the route has been matched or generated: the
// compiled pattern is cached.
type Route struct {
	Name         string
	URL          string
	Controller   string
	Method       string // pipe-separated, case-insensitive; empty means DefaultMethod
	Protocol     string // pipe-separated, case-insensitive; empty means DefaultProtocol
	Placeholders map[string]string
	Defaults     map[string]string
	CacheFor     *int // seconds; nil disables output caching
	Options      map[string]any

	compileOnce sync.Once
	regex       *regexp.Regexp
	vars        []string
	compileErr  error

	handlerOnce sync.Once
	handler     HandlerSpec
	handlerErr  error
}

// Methods returns the accepted method set.
func (r *Route) Methods() string {
	if r.Method == "" {
		return DefaultMethod
	}
	return r.Method
}

// Protocols returns the accepted protocol set.
func (r *Route) Protocols() string {
	if r.Protocol == "" {
		return DefaultProtocol
	}
	return r.Protocol
}

// Option returns a free-form route option, or def.
func (r *Route) Option(name string, def any) any {
	if v, ok := r.Options[name]; ok {
		return v
	}
	return def
}

// Compile builds the matcher. It runs once; later calls return the first
// result.
func (r *Route) Compile() error {
	r.compileOnce.Do(func() {
		r.regex, r.vars, r.compileErr = compilePattern(r.URL, r.Placeholders)
	})
	return r.compileErr
}

// Regex returns the compiled matcher, compiling it if needed.
func (r *Route) Regex() (*regexp.Regexp, error) {
	if err := r.Compile(); err != nil {
		return nil, err
	}
	return r.regex, nil
}

// Vars returns the placeholder names in pattern order.
func (r *Route) Vars() []string {
	return placeholderNames(r.URL)
}

func compilePattern(pattern string, types map[string]string) (*regexp.Regexp, []string, error) {
	switch strings.Count(pattern, optionalMarker) {
	case 0:
	case 1:
		pattern = strings.Replace(pattern, optionalMarker, "(?:", 1) + ")?"
	default:
		return nil, nil, fmt.Errorf("%w: %q has more than one %q marker", ErrInvalidPattern, pattern, optionalMarker)
	}

	// Every placeholder becomes a named group so that capture groups inside
	// inline regex types do not shift the positions of later placeholders.
	var vars []string
	expr := placeholderPattern.ReplaceAllStringFunc(pattern, func(token string) string {
		name := token[1 : len(token)-1]
		group := "p" + strconv.Itoa(len(vars))
		vars = append(vars, name)
		return "(?P<" + group + ">" + typePattern(types[name]) + ")"
	})

	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	return re, vars, nil
}

// typePattern converts a placeholder type to a regex. Unknown types are
// assumed to be regexes already.
func typePattern(typ string) string {
	switch typ {
	case "int":
		return `[0-9]+`
	case "slug":
		return `[a-zA-Z0-9-]+`
	case "alphanum":
		return `[a-zA-Z0-9]+`
	case "alpha":
		return `[a-zA-Z]+`
	case "text", "":
		return `[^/]+`
	default:
		return typ
	}
}

func placeholderNames(pattern string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(pattern, -1) {
		names = append(names, m[1])
	}
	return names
}

func (r *Route) placeholderType(name string) string {
	if typ, ok := r.Placeholders[name]; ok {
		return typ
	}
	return "text"
}

// ── Matching ──────────────────────────────────────────────────────────────────

// Arguments are the placeholder values extracted by a match.
type Arguments map[string]string

// Get returns the named argument, or "".
func (a Arguments) Get(name string) string { return a[name] }

// Int returns the named argument as an int.
func (a Arguments) Int(name string) (int, error) {
	return strconv.Atoi(a[name])
}

// Match is the result of a successful match. Routes are never modified by
// matching; every request gets its own Match.
type Match struct {
	Route     *Route
	Arguments Arguments
	URI       string
}

// Match tests path and the request's method and protocol against the route.
// Arguments start from the route defaults of every placeholder; captured
// values override them.
func (r *Route) Match(path string, req Request) (*Match, bool, error) {
	re, err := r.Regex()
	if err != nil {
		return nil, false, err
	}

	loc := re.FindStringSubmatchIndex(path)
	if loc == nil {
		return nil, false, nil
	}
	if !inSet(r.Methods(), req.Method(), strings.ToUpper) {
		return nil, false, nil
	}
	if !inSet(r.Protocols(), req.Protocol(), strings.ToLower) {
		return nil, false, nil
	}

	args := make(Arguments, len(r.vars))
	for i, name := range r.vars {
		if def, ok := r.Defaults[name]; ok {
			args[name] = def
		}
		g := 2 * re.SubexpIndex("p"+strconv.Itoa(i))
		if loc[g] >= 0 {
			args[name] = path[loc[g]:loc[g+1]]
		}
	}

	return &Match{Route: r, Arguments: args, URI: req.URI()}, true, nil
}

// DefaultMatch returns a match carrying only the route defaults, used when
// a route is selected by name rather than by pattern.
func (r *Route) DefaultMatch(uri string) *Match {
	args := make(Arguments, len(r.Defaults))
	for _, name := range r.Vars() {
		if def, ok := r.Defaults[name]; ok {
			args[name] = def
		}
	}
	return &Match{Route: r, Arguments: args, URI: uri}
}

func inSet(set, value string, norm func(string) string) bool {
	value = norm(value)
	for _, item := range strings.Split(set, "|") {
		if norm(strings.TrimSpace(item)) == value {
			return true
		}
	}
	return false
}

// ── Generation ────────────────────────────────────────────────────────────────

// Generate builds a URL for the route. Each placeholder takes the caller's
// value, else the route default, else a dummy (0 for int, "none" otherwise).
// Arguments that are not placeholders are appended as a query string.
func (r *Route) Generate(args map[string]any) string {
	path := strings.ReplaceAll(r.URL, optionalMarker, "")

	used := make(map[string]bool)
	for _, name := range r.Vars() {
		used[name] = true
		typ := r.placeholderType(name)

		var value string
		if v, ok := args[name]; ok {
			value = formatArgument(v, typ)
		} else if def, ok := r.Defaults[name]; ok {
			value = formatArgument(def, typ)
		} else {
			value = dummyValue(typ)
		}
		path = strings.ReplaceAll(path, "{"+name+"}", value)
	}

	var extra []string
	for name := range args {
		if !used[name] {
			extra = append(extra, name)
		}
	}
	if len(extra) == 0 {
		return path
	}

	sort.Strings(extra)
	qs := make([]string, len(extra))
	for i, name := range extra {
		qs[i] = name + "=" + url.QueryEscape(fmt.Sprint(args[name]))
	}
	return path + "?" + strings.Join(qs, "&")
}

// URL generates the route's URL. A nil args reuses the matched arguments.
func (m *Match) URL(args map[string]any) string {
	if args == nil {
		args = make(map[string]any, len(m.Arguments))
		for k, v := range m.Arguments {
			args[k] = v
		}
	}
	return m.Route.Generate(args)
}

func dummyValue(typ string) string {
	if typ == "int" {
		return "0"
	}
	return "none"
}

// formatArgument coerces v for its placeholder type: int placeholders get an
// integer (leading digits of a string, 0 when there are none), every other
// type gets the string form.
func formatArgument(v any, typ string) string {
	if typ != "int" {
		return fmt.Sprint(v)
	}
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(n)
	case float32:
		return strconv.FormatInt(int64(math.Trunc(float64(n))), 10)
	case float64:
		return strconv.FormatInt(int64(math.Trunc(n)), 10)
	case bool:
		if n {
			return "1"
		}
		return "0"
	case string:
		digits := strings.TrimSpace(leadingInt.FindString(n))
		if i, err := strconv.Atoi(digits); err == nil {
			return strconv.Itoa(i)
		}
		return "0"
	default:
		return "0"
	}
}

// ── Output caching ────────────────────────────────────────────────────────────

// CachePolicy tells the output cache where and how long to keep a response.
type CachePolicy struct {
	Route    string
	Key      string
	Duration time.Duration
}

// Cacheable reports whether the route asks for output caching.
func (r *Route) Cacheable() bool { return r.CacheFor != nil }

// CacheKey returns the output cache key for uri, or "" when the route is not
// cached.
func (r *Route) CacheKey(uri string) string {
	if !r.Cacheable() {
		return ""
	}
	return "outputcache" + uri
}

// CacheDuration returns how long responses are cached, never less than
// MinCacheDuration.
func (r *Route) CacheDuration() time.Duration {
	d := MinCacheDuration
	if r.CacheFor != nil {
		if secs := time.Duration(*r.CacheFor) * time.Second; secs > d {
			d = secs
		}
	}
	return d
}

// CachePolicy returns the output cache policy for this match.
func (m *Match) CachePolicy() (*CachePolicy, bool) {
	if !m.Route.Cacheable() {
		return nil, false
	}
	return &CachePolicy{
		Route:    m.Route.Name,
		Key:      m.Route.CacheKey(m.URI),
		Duration: m.Route.CacheDuration(),
	}, true
}

// CacheFor is a helper for the Route.CacheFor field.
func CacheFor(seconds int) *int { return &seconds }
