package daemon

import (
	"net/http"
)

// Middleware wraps a handler with one cross cutting concern, for example
// request ID injection or session authentication.
type Middleware func(http.Handler) http.Handler

// ServeMux wraps http.ServeMux so routes can be registered in groups that
// share a middleware chain. The API surface has four such groups with
// different guards in front of the same controller.
type ServeMux struct {
	httpServeMux http.ServeMux
}

func NewServeMux() *ServeMux {
	return &ServeMux{
		httpServeMux: http.ServeMux{},
	}
}

func (m *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.httpServeMux.ServeHTTP(w, r)
}

// Group returns a registrar that wraps every handler in the given chain.
//
// Middlewares run in a FILO. Last middleware on the slice is the first one ran
// First middleware to run should be the InjectRequestID
func (m *ServeMux) Group(middlewares ...Middleware) *Group {
	return &Group{
		mux:         m,
		middlewares: middlewares,
	}
}

type Group struct {
	mux         *ServeMux
	middlewares []Middleware
}

func (g *Group) HandleFunc(
	pattern string,
	handler func(http.ResponseWriter, *http.Request),
) {
	var wrapped http.Handler = http.HandlerFunc(handler)
	for _, mw := range g.middlewares {
		wrapped = mw(wrapped)
	}

	g.mux.httpServeMux.Handle(pattern, wrapped)
}
