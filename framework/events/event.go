package events

import (
	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/routing"
)

// Pipeline event names.
const (
	KernelRequest         = "kernel.request"
	KernelRoute           = "kernel.route"
	KernelMissingResponse = "kernel.missingresponse"
	KernelResponse        = "kernel.response"
	KernelException       = "kernel.exception"
)

// Event is anything that can be dispatched.
type Event interface {
	EventName() string
}

// RequestEvent is sent before routing. A firewall listens here.
type RequestEvent struct {
	Request *gohttp.Request
}

func (*RequestEvent) EventName() string { return KernelRequest }

// RouteEvent is sent once a route is selected. Listeners may answer the
// request or send it to another route from Routes.
type RouteEvent struct {
	Request *gohttp.Request
	Match   *routing.Match
	Routes  *routing.Table
}

func (*RouteEvent) EventName() string { return KernelRoute }

// MissingResponseEvent is sent when a handler returns no response. Value is
// whatever the handler returned instead.
type MissingResponseEvent struct {
	Request *gohttp.Request
	Match   *routing.Match
	Value   any
}

func (*MissingResponseEvent) EventName() string { return KernelMissingResponse }

// ResponseEvent is sent for every outgoing response. Listeners may modify
// Response in place or replace it with RespondWith.
type ResponseEvent struct {
	Request  *gohttp.Request
	Match    *routing.Match // nil when no route was selected
	Response *gohttp.Response
}

func (*ResponseEvent) EventName() string { return KernelResponse }

// ExceptionEvent is sent when any stage fails. A listener that responds
// turns the failure into a normal response.
type ExceptionEvent struct {
	Request *gohttp.Request
	Match   *routing.Match // nil when the failure happened before routing
	Err     error
}

func (*ExceptionEvent) EventName() string { return KernelException }
