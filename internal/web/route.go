package web

import (
	"net/http"
	"net/url"
	"strconv"
)

// Request parameter names understood by the dispatcher
const (
	ParamHandler = "action"
	ParamCommand = "command"
	ParamToken   = "_token"
	ParamPage    = "page"
)

// DefaultCommand is used when the request names no command.
const DefaultCommand = "index"

// EntryPath is the single dispatch endpoint.
const EntryPath = "/"

// Route is the (handler, command) pair extracted from a request.
type Route struct {
	Handler string
	Command string
}

// RouteFrom reads the route from query or form parameters. GET and POST
// are treated identically.
func RouteFrom(r *http.Request) Route {
	route := Route{
		Handler: r.FormValue(ParamHandler),
		Command: r.FormValue(ParamCommand),
	}
	if route.Command == "" {
		route.Command = DefaultCommand
	}
	return route
}

// URL returns the location that dispatches to the route
func (rt Route) URL() string {
	v := url.Values{}
	v.Set(ParamHandler, rt.Handler)
	v.Set(ParamCommand, rt.Command)
	return EntryPath + "?" + v.Encode()
}

// ParsePage converts a page parameter into a page number. Missing,
// non-numeric and non-positive values yield 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
