package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/km-arc/go-neatbox/framework/app"
	"github.com/km-arc/go-neatbox/framework/events"
	gohttp "github.com/km-arc/go-neatbox/framework/http"
	"github.com/km-arc/go-neatbox/framework/http/validation"
)

// ── Welcome ──────────────────────────────────────────────────────────────────

type WelcomeController struct {
	app.Controller
}

func (w *WelcomeController) Actions() app.Actions {
	return app.Actions{
		"indexAction":   w.index,
		"missingAction": w.missing,
	}
}

func (w *WelcomeController) index(c *app.Context) (any, error) {
	profile, err := c.URLFor("user_show", map[string]any{"id": 1}, false)
	if err != nil {
		return nil, err
	}
	return w.RenderResponse("welcome", map[string]any{
		"name":    c.App().Config().App.Name,
		"profile": profile,
	})
}

func (w *WelcomeController) missing(c *app.Context) (any, error) {
	return gohttp.NotFound("Nothing at " + c.Request.Path()), nil
}

// ── Users ────────────────────────────────────────────────────────────────────

type UserController struct {
	app.Controller
}

func (u *UserController) Actions() app.Actions {
	return app.Actions{
		"showAction":    u.show,
		"storeAction":   u.store,
		"profileAction": u.profile,
	}
}

func (u *UserController) show(c *app.Context) (any, error) {
	id, err := c.Args().Int("id")
	if err != nil {
		return nil, err
	}
	return gohttp.Success(map[string]any{"id": id})
}

func (u *UserController) store(c *app.Context) (any, error) {
	var body struct {
		Name string `json:"name"`
		Age  string `json:"age"`
	}
	if err := c.Request.Bind(&body); err != nil {
		return gohttp.Error(http.StatusBadRequest, err.Error()), nil
	}

	err := validation.Validate(map[string]string{"name": body.Name, "age": body.Age}, validation.Rules{
		"name": "required|alpha_dash|max:100",
		"age":  "required|integer|gte:18",
	})
	var verr *validation.Errors
	if errors.As(err, &verr) {
		return gohttp.JSON(http.StatusUnprocessableEntity, verr)
	}
	if err != nil {
		return nil, err
	}

	location, err := c.URLFor("user_show", map[string]any{"id": 1}, true)
	if err != nil {
		return nil, err
	}
	res, err := gohttp.Created(map[string]any{"name": body.Name, "age": body.Age})
	if err != nil {
		return nil, err
	}
	res.Header.Set("Location", location)
	return res, nil
}

func (u *UserController) profile(c *app.Context) (any, error) {
	return gohttp.Success(map[string]any{"user": "authenticated"})
}

// requireToken answers routes with option auth: true with 401 unless the
// request carries a bearer token.
func requireToken(ctx context.Context, e *events.RouteEvent) (events.Result, error) {
	if auth, _ := e.Match.Route.Option("auth", false).(bool); auth && e.Request.BearerToken() == "" {
		return events.RespondWith(gohttp.Unauthorized()), nil
	}
	return events.Continue(), nil
}
