// Package app is the kernel of a NeatBox application.
//
// An Application owns the service container and the handler registry and
// serves requests through Handle:
//
//	application := app.New(config.Load())
//	application.Handlers.Register(app.Class("blog", "PostController"), func() app.Handler {
//	    return &PostController{}
//	})
//	res, err := application.Handle(gohttp.NewRequest(r))
//
// Handle boots the providers, sends kernel.request, matches the route table
// (falling back to the route named "404"), sends kernel.route, consults the
// output cache, invokes the handler action and sends kernel.response.
// Listeners steer the flow with the events.Result they return. Errors go to
// kernel.exception; a listener may answer them with a response.
package app
