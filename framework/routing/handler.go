package routing

import (
	"fmt"
	"strings"
)

// HandlerSpec is a parsed "ns:Name:action" controller spec.
//
//	blog:PostController:show → Class "blog/controllers/PostController",
//	                           Method "showAction",
//	                           ControllerName "Post", ActionName "show"
type HandlerSpec struct {
	Namespace string
	Name      string
	Action    string

	Class          string // key in the handler registry
	Method         string // action method on the handler
	ControllerName string // Name without the "Controller" suffix
	ActionName     string // Action without the "Action" suffix
}

// ParseHandlerSpec splits spec into its three parts.
func ParseHandlerSpec(spec string) (HandlerSpec, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return HandlerSpec{}, fmt.Errorf("%w: %q", ErrInvalidHandlerSpec, spec)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return HandlerSpec{}, fmt.Errorf("%w: %q", ErrInvalidHandlerSpec, spec)
		}
	}

	ns, name, action := parts[0], parts[1], parts[2]
	return HandlerSpec{
		Namespace:      ns,
		Name:           name,
		Action:         action,
		Class:          ns + "/controllers/" + name,
		Method:         action + "Action",
		ControllerName: trimSuffixFold(name, "Controller"),
		ActionName:     trimSuffixFold(action, "Action"),
	}, nil
}

// Handler returns the route's parsed controller spec. It is parsed once.
func (r *Route) Handler() (HandlerSpec, error) {
	r.handlerOnce.Do(func() {
		r.handler, r.handlerErr = ParseHandlerSpec(r.Controller)
	})
	return r.handler, r.handlerErr
}

func trimSuffixFold(s, suffix string) string {
	if len(s) > len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s[:len(s)-len(suffix)]
	}
	return s
}
