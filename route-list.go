package vgspa

// RouteHandler implementations are called in response to a route matching (being navigated to).
type RouteHandler interface {
	RouteHandle(rm *RouteMatch)
}

// RouteHandlerFunc implements RouteHandler as a function.
type RouteHandlerFunc func(rm *RouteMatch)

// RouteHandle implements the RouteHandler interface.
func (f RouteHandlerFunc) RouteHandle(rm *RouteMatch) { f(rm) }

// PageRoute returns a RouteHandler that opens a page with the given attributes
// plus the route's parameters.  This covers the common case of a handler that
// does nothing but call Go.
func PageRoute(attrs Attrs, opts ...GoOpt) RouteHandler {
	return RouteHandlerFunc(func(rm *RouteMatch) {
		a := attrs.clone()
		for _, p := range rm.PathParams {
			if _, ok := a[p.Key]; !ok {
				a[p.Key] = p.Value
			}
		}
		rm.Go(a, opts...)
	})
}

// Route pairs a route pattern with its handler.
// Patterns consist of literal segments and named parameters, e.g. "!/parameter/:p".
type Route struct {
	Pattern string
	Handler RouteHandler
}

// RouteList is an ordered route table.  When more than one route matches a
// location exactly, the one earlier in the list wins.
type RouteList []Route

// Add appends a route.
func (rl *RouteList) Add(pattern string, h RouteHandler) *RouteList {
	*rl = append(*rl, Route{Pattern: pattern, Handler: h})
	return rl
}

// AddFunc appends a route with a function handler.
func (rl *RouteList) AddFunc(pattern string, f func(rm *RouteMatch)) *RouteList {
	return rl.Add(pattern, RouteHandlerFunc(f))
}
