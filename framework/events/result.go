package events

import (
	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/routing"
)

// Kind says what a listener wants the pipeline to do next.
type Kind int

const (
	// KindContinue passes the event on to the next listener.
	KindContinue Kind = iota
	// KindRespond short-circuits with a response.
	KindRespond
	// KindReplace swaps the selected route (route events only).
	KindReplace
	// KindStop ends dispatch without changing anything.
	KindStop
)

func (k Kind) String() string {
	switch k {
	case KindContinue:
		return "continue"
	case KindRespond:
		return "respond"
	case KindReplace:
		return "replace"
	case KindStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Result is the outcome of a listener, and of a whole dispatch. Any kind
// other than KindContinue stops the remaining listeners.
type Result struct {
	Kind     Kind
	Response *gohttp.Response
	Match    *routing.Match
}

// Continue lets the next listener run.
func Continue() Result { return Result{Kind: KindContinue} }

// RespondWith answers the request with res.
func RespondWith(res *gohttp.Response) Result {
	return Result{Kind: KindRespond, Response: res}
}

// ReplaceWith routes the request to m instead.
func ReplaceWith(m *routing.Match) Result {
	return Result{Kind: KindReplace, Match: m}
}

// StopPropagation ends dispatch.
func StopPropagation() Result { return Result{Kind: KindStop} }

// Handled reports whether dispatch stopped early.
func (r Result) Handled() bool { return r.Kind != KindContinue }
