package app

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every NotFoundError.
	ErrNotFound = errors.New("app: not found")
	// ErrHandlerContract matches every HandlerContractError.
	ErrHandlerContract = errors.New("app: handler returned no response")
)

// NotFoundError is returned when nothing can serve the request: no route
// matched and there is no "404" route, or the route's handler or action is
// not registered.
type NotFoundError struct {
	Path   string
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("app: no route for %s", e.Path)
	}
	return fmt.Sprintf("app: %s: %s", e.Path, e.Reason)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// HandlerContractError is returned when an action produced something other
// than a response and no kernel.missingresponse listener supplied one.
type HandlerContractError struct {
	Handler string
	Action  string
	Value   any
}

func (e *HandlerContractError) Error() string {
	return fmt.Sprintf("app: handler (%s -> %s) failed to return a response, got %T", e.Handler, e.Action, e.Value)
}

func (e *HandlerContractError) Is(target error) bool { return target == ErrHandlerContract }

// PanicError carries a panic recovered from an action.
type PanicError struct {
	Handler string
	Action  string
	Value   any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("app: handler (%s -> %s) panicked: %v", e.Handler, e.Action, e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
