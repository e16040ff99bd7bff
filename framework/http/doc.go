// Package http provides the request and response values that flow through
// the dispatch pipeline.
//
// # Request
//
// Request wraps *http.Request with the accessors routing needs and a small
// input API.
//
//	req := gohttp.NewRequest(r)
//
//	req.Method()      // "GET", "POST", ...
//	req.Protocol()    // "http" | "https"
//	req.Path()        // "/blog/42"
//	req.URI()         // "/blog/42?page=2"
//	req.Session()     // Session or nil
//
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
//	name  := req.Input("name", "default")
//	page  := req.Query("page", "1")
//	token := req.BearerToken()
//
// # Response
//
// A Response is a plain value; the pipeline hands it to listeners before it
// is written with WriteTo.
//
//	gohttp.NewResponse("<h1>Hi</h1>", 200)
//	gohttp.JSON(200, data)          // raw JSON with status
//	gohttp.Success(data)            // 200 {"data": ...}
//	gohttp.Created(data)            // 201 {"data": ...}
//	gohttp.NoContent()              // 204
//	gohttp.Error(400, "bad input")  // {"message": "bad input"}
//	gohttp.NotFound()               // 404 {"message": "Not found."}
//	gohttp.Redirect("/dashboard")   // 302
//
//	res.RedirectToRoute("blog_show", map[string]any{"id": 7})
//
// # ViewEngine
//
//	engine := gohttp.NewViewEngine("./views", ".html")
//	html, err := engine.Render("home", map[string]any{"title": "Home"})
package http
