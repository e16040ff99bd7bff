package app

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/km-arc/go-neatbox/framework/cache"
	"github.com/km-arc/go-neatbox/framework/events"
	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/routing"
)

// dispatch is the state of one Handle call.
type dispatch struct {
	app        *Application
	ctx        context.Context
	req        *gohttp.Request
	dispatcher *events.Dispatcher
	routes     *routing.Table
	match      *routing.Match
	recovered  *gohttp.Response
	outcome    string
}

// Handle turns one request into one response.
//
// Stages: boot, kernel.request, route lookup (falling back to the "404"
// route), kernel.route, output cache check, handler invocation and
// kernel.response. A response from a kernel.request or kernel.route listener
// skips straight to kernel.response; a cache hit is returned as stored.
//
// Any failure goes to kernel.exception. When no listener answers it, the
// original error is returned unchanged.
func (a *Application) Handle(req *gohttp.Request) (*gohttp.Response, error) {
	start := time.Now()
	ctx, span := a.tracer.Start(req.Context(), "neatbox.dispatch",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", req.Method()),
			attribute.String("neatbox.uri", req.URI()),
		),
	)
	defer span.End()

	d := &dispatch{app: a, ctx: ctx, req: req, outcome: outcomeOK}
	res, err := d.run()
	if err != nil {
		err = d.exception(err)
		if err == nil {
			res = d.recovered
		}
	}

	route := ""
	if d.match != nil {
		route = d.match.Route.Name
		span.SetAttributes(attribute.String("neatbox.route", route))
	}
	if err != nil {
		d.outcome = outcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	a.metrics.observe(route, d.outcome, time.Since(start).Seconds())

	a.logger.Debug("request dispatched",
		zap.String("request_id", req.ID()),
		zap.String("method", req.Method()),
		zap.String("uri", req.URI()),
		zap.String("route", route),
		zap.String("outcome", d.outcome),
		zap.Duration("took", time.Since(start)),
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (d *dispatch) run() (*gohttp.Response, error) {
	a := d.app
	if err := a.Boot(); err != nil {
		return nil, err
	}

	var err error
	if d.dispatcher, err = service[*events.Dispatcher](a.Container, "event-dispatcher"); err != nil {
		return nil, err
	}
	if d.routes, err = service[*routing.Table](a.Container, "routes"); err != nil {
		return nil, err
	}
	if err := d.attachSession(); err != nil {
		return nil, err
	}

	// kernel.request
	result, err := d.dispatcher.Dispatch(d.ctx, &events.RequestEvent{Request: d.req})
	if err != nil {
		return nil, err
	}
	if result.Kind == events.KindRespond {
		d.outcome = outcomeEarly
		return d.postProcess(result.Response)
	}

	// route lookup
	m, err := d.routes.FindMatching(d.req)
	if err != nil {
		return nil, err
	}
	if m == nil {
		notFound := d.routes.Find(routing.NotFoundRoute)
		if notFound == nil {
			return nil, &NotFoundError{Path: d.req.Path()}
		}
		m = notFound.DefaultMatch(d.req.URI())
	}
	d.match = m

	// kernel.route
	result, err = d.dispatcher.Dispatch(d.ctx, &events.RouteEvent{Request: d.req, Match: m, Routes: d.routes})
	if err != nil {
		return nil, err
	}
	switch result.Kind {
	case events.KindRespond:
		d.outcome = outcomeEarly
		return d.postProcess(result.Response)
	case events.KindReplace:
		d.match = result.Match
	}

	// output cache
	policy, cacheable := d.match.CachePolicy()
	var oc cache.OutputCache
	if cacheable {
		if oc, err = service[cache.OutputCache](a.Container, "output.cache"); err != nil {
			return nil, err
		}
		cached, hit, err := oc.Get(d.ctx, policy)
		switch {
		case err != nil:
			a.metrics.cacheLookup("error")
			a.logger.Warn("output cache read failed", zap.String("key", policy.Key), zap.Error(err))
		case hit:
			a.metrics.cacheLookup("hit")
			d.outcome = outcomeCacheHit
			return cached, nil
		default:
			a.metrics.cacheLookup("miss")
		}
	}

	res, err := d.invoke()
	if err != nil {
		return nil, err
	}
	if res, err = d.postProcess(res); err != nil {
		return nil, err
	}

	if cacheable {
		if err := oc.Put(d.ctx, policy, res); err != nil {
			a.logger.Warn("output cache write failed", zap.String("key", policy.Key), zap.Error(err))
		}
	}
	return res, nil
}

func (d *dispatch) attachSession() error {
	if d.req.Session() != nil || !d.app.Has("session") {
		return nil
	}
	s, err := service[gohttp.Session](d.app.Container, "session")
	if err != nil {
		return err
	}
	d.req.SetSession(s)
	return nil
}

// ── Invoke ────────────────────────────────────────────────────────────────────

func (d *dispatch) invoke() (*gohttp.Response, error) {
	spec, err := d.match.Route.Handler()
	if err != nil {
		return nil, err
	}

	factory, ok := d.app.Handlers.Lookup(spec.Class)
	if !ok {
		return nil, &NotFoundError{Path: d.req.Path(), Reason: "no handler registered for " + spec.Class}
	}
	h := factory()
	if aware, ok := h.(ContainerAware); ok {
		aware.SetContainer(d.app.Container)
	}

	c := &Context{ctx: d.ctx, Request: d.req, Match: d.match, Spec: spec, app: d.app}

	callAction := true
	if initializer, ok := h.(Initializer); ok {
		if callAction, err = d.safeInit(initializer, c); err != nil {
			return nil, err
		}
	}

	var value any
	if callAction {
		action, ok := h.Actions()[spec.Method]
		if !ok || action == nil {
			return nil, &NotFoundError{
				Path:   d.req.Path(),
				Reason: "no valid action found in handler (" + spec.Class + " -> " + spec.Method + ")",
			}
		}
		if value, err = d.safeCall(action, c); err != nil {
			return nil, err
		}
	}

	if res, ok := value.(*gohttp.Response); ok && res != nil {
		return res, nil
	}

	// kernel.missingresponse
	result, err := d.dispatcher.Dispatch(d.ctx, &events.MissingResponseEvent{Request: d.req, Match: d.match, Value: value})
	if err != nil {
		return nil, err
	}
	if result.Kind == events.KindRespond {
		return result.Response, nil
	}
	return nil, &HandlerContractError{Handler: spec.Class, Action: spec.Method, Value: value}
}

func (d *dispatch) safeInit(initializer Initializer, c *Context) (ok bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Handler: c.Spec.Class, Action: "Init", Value: v}
		}
	}()
	return initializer.Init(c)
}

func (d *dispatch) safeCall(action Action, c *Context) (value any, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Handler: c.Spec.Class, Action: c.Spec.Method, Value: v}
		}
	}()
	return action(c)
}

// ── Post-process ──────────────────────────────────────────────────────────────

// postProcess resolves route redirects and sends kernel.response.
func (d *dispatch) postProcess(res *gohttp.Response) (*gohttp.Response, error) {
	if name, args, ok := res.PendingRedirect(); ok {
		url, err := d.routes.Generate(name, args)
		if err != nil {
			return nil, err
		}
		res.RedirectTo(url)
	}

	result, err := d.dispatcher.Dispatch(d.ctx, &events.ResponseEvent{Request: d.req, Match: d.match, Response: res})
	if err != nil {
		return nil, err
	}
	if result.Kind == events.KindRespond {
		return result.Response, nil
	}
	return res, nil
}

// ── Exception ─────────────────────────────────────────────────────────────────

// exception offers orig to kernel.exception listeners. It returns nil when a
// listener answered (the response is in d.recovered) and orig otherwise. A
// failure while handling orig is logged and orig is still returned.
func (d *dispatch) exception(orig error) error {
	res, err := d.handleException(orig)
	if err == nil {
		d.recovered = res
		d.outcome = outcomeRecovered
		return nil
	}
	if !errors.Is(err, errUnhandled) {
		d.app.logger.Error("error while handling a request error; returning the original",
			zap.NamedError("original", orig),
			zap.Error(err),
		)
	}
	return orig
}

var errUnhandled = errors.New("app: unhandled")

func (d *dispatch) handleException(orig error) (*gohttp.Response, error) {
	if d.dispatcher == nil {
		dispatcher, err := service[*events.Dispatcher](d.app.Container, "event-dispatcher")
		if err != nil {
			return nil, err
		}
		d.dispatcher = dispatcher
	}

	result, err := d.dispatcher.Dispatch(d.ctx, &events.ExceptionEvent{Request: d.req, Match: d.match, Err: orig})
	if err != nil {
		return nil, err
	}
	if result.Kind != events.KindRespond {
		return nil, errUnhandled
	}

	if d.routes == nil {
		routes, err := service[*routing.Table](d.app.Container, "routes")
		if err != nil {
			return nil, err
		}
		d.routes = routes
	}
	return d.postProcess(result.Response)
}
