package app

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/km-arc/go-neatbox/framework/container"
	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/routing"
)

var relativeURL = regexp.MustCompile(`^/[^/]`)

// Controller is an embeddable base for handlers. It is ContainerAware and
// offers the usual response helpers.
//
//	type PostController struct{ app.Controller }
//
//	func (p *PostController) Actions() app.Actions {
//	    return app.Actions{"showAction": p.show}
//	}
//
//	func (p *PostController) show(c *app.Context) (any, error) {
//	    return p.RenderResponse("post", map[string]any{"id": c.Arg("id")})
//	}
type Controller struct {
	container *container.Container
}

func (ctl *Controller) SetContainer(c *container.Container) { ctl.container = c }

// Container returns the attached container.
func (ctl *Controller) Container() *container.Container { return ctl.container }

// Get resolves a service.
func (ctl *Controller) Get(name string) (any, error) {
	if ctl.container == nil {
		return nil, fmt.Errorf("app: controller has no container")
	}
	return ctl.container.Get(name)
}

// Render renders a template through the "view" service.
func (ctl *Controller) Render(name string, data any) (string, error) {
	view, err := service[*gohttp.ViewEngine](ctl.container, "view")
	if err != nil {
		return "", err
	}
	return view.Render(name, data)
}

// RenderResponse renders a template into a 200 response.
func (ctl *Controller) RenderResponse(name string, data any) (*gohttp.Response, error) {
	html, err := ctl.Render(name, data)
	if err != nil {
		return nil, err
	}
	return gohttp.NewResponse(html, 200), nil
}

// JSONResponse encodes data into a 200 JSON response.
func (ctl *Controller) JSONResponse(data any) (*gohttp.Response, error) {
	return gohttp.JSON(200, data)
}

// RedirectResponse redirects to a named route. The URL is generated when the
// response is post-processed.
func (ctl *Controller) RedirectResponse(route string, args map[string]any) *gohttp.Response {
	res := gohttp.NewResponse("", 302)
	res.RedirectToRoute(route, args)
	return res
}

// RedirectURLResponse redirects to url. Site-relative URLs ("/login") are
// made absolute with the request's protocol and host.
func (ctl *Controller) RedirectURLResponse(c *Context, url string) *gohttp.Response {
	if c != nil && c.Request != nil && relativeURL.MatchString(url) {
		url = c.Request.Protocol() + "://" + c.Request.Host() + url
	}
	return gohttp.Redirect(url)
}

// URLFor generates the URL of a named route.
func (ctl *Controller) URLFor(name string, args map[string]any) (string, error) {
	routes, err := ctl.Routes()
	if err != nil {
		return "", err
	}
	return routes.Generate(name, args)
}

// Routes returns the route table.
func (ctl *Controller) Routes() (*routing.Table, error) {
	return service[*routing.Table](ctl.container, "routes")
}

// Logger returns the "logger" service, or a no-op logger.
func (ctl *Controller) Logger() *zap.Logger {
	if l, err := service[*zap.Logger](ctl.container, "logger"); err == nil {
		return l
	}
	return zap.NewNop()
}

// service resolves name as a T, failing when it is absent or of another type.
func service[T any](c *container.Container, name string) (T, error) {
	var zero T
	if c == nil {
		return zero, fmt.Errorf("app: no container to resolve [%s]", name)
	}
	instance, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, fmt.Errorf("app: service [%s] is not registered", name)
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("app: service [%s] is %T, want %T", name, instance, zero)
	}
	return typed, nil
}
