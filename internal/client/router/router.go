// Package router implements the client-side route table: named paths with
// parameter segments, a navigation history, and a root fallback for paths
// nothing matches.
package router

import (
	"fmt"
	"strings"
	"sync"
)

// Params holds the values captured by :name segments of the matched route.
type Params map[string]string

// Handler runs when its route becomes current.
type Handler func(params Params)

type route struct {
	pattern  string
	segments []string
	handler  Handler
}

// literal reports whether the route has no parameter segments.
func (r *route) literal() bool {
	for _, s := range r.segments {
		if strings.HasPrefix(s, ":") {
			return false
		}
	}
	return true
}

// match tries the route against path segments, returning captured params.
func (r *route) match(segs []string) (Params, bool) {
	if len(segs) != len(r.segments) {
		return nil, false
	}
	params := Params{}
	for i, want := range r.segments {
		if name, ok := strings.CutPrefix(want, ":"); ok {
			params[name] = segs[i]
			continue
		}
		if want != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// Router dispatches paths to handlers. Routes with only literal segments
// win over parameterized ones; a path nothing matches falls back to the
// root route.
type Router struct {
	mu          sync.Mutex
	routes      []route
	current     string
	history     []string
	initialized bool
}

func New() *Router {
	return &Router{}
}

// AddRoute registers a handler for pattern. Segments starting with ':' are
// parameters, e.g. "/messages/:contactID/:contactName". Registering the
// same pattern twice or an invalid pattern is an error.
func (r *Router) AddRoute(pattern string, h Handler) error {
	if !strings.HasPrefix(pattern, "/") {
		return fmt.Errorf("route pattern must start with '/': %q", pattern)
	}
	if h == nil {
		return fmt.Errorf("route %q has no handler", pattern)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.routes {
		if existing.pattern == pattern {
			return fmt.Errorf("route %q already registered", pattern)
		}
	}

	r.routes = append(r.routes, route{
		pattern:  pattern,
		segments: splitPath(pattern),
		handler:  h,
	})
	return nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// resolve finds the best route for path. Literal matches beat
// parameterized ones regardless of registration order.
func (r *Router) resolve(path string) (*route, Params, bool) {
	segs := splitPath(path)

	var paramRoute *route
	var paramValues Params
	for i := range r.routes {
		rt := &r.routes[i]
		params, ok := rt.match(segs)
		if !ok {
			continue
		}
		if rt.literal() {
			return rt, params, true
		}
		if paramRoute == nil {
			paramRoute = rt
			paramValues = params
		}
	}
	if paramRoute != nil {
		return paramRoute, paramValues, true
	}
	return nil, nil, false
}

// Navigate makes path the current route and runs its handler exactly once.
// Navigating to the path that is already current is a no-op. A path no
// route matches lands on the root route instead.
func (r *Router) Navigate(path string) {
	r.mu.Lock()

	if r.initialized && path == r.current {
		r.mu.Unlock()
		return
	}

	rt, params, ok := r.resolve(path)
	if !ok {
		path = "/"
		if r.initialized && path == r.current {
			r.mu.Unlock()
			return
		}
		rt, params, ok = r.resolve(path)
		if !ok {
			// no root route registered either; nothing to do
			r.mu.Unlock()
			return
		}
	}

	if r.initialized && r.current != "" {
		r.history = append(r.history, r.current)
	}
	r.current = path
	r.initialized = true
	handler := rt.handler
	r.mu.Unlock()

	// outside the lock so handlers can navigate again
	handler(params)
}

// Init performs the initial navigation to the root route. Calling it again
// after the router has navigated is a no-op.
func (r *Router) Init() {
	r.mu.Lock()
	if r.initialized {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	r.Navigate("/")
}

// CurrentRoute returns the path of the current route.
func (r *Router) CurrentRoute() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Back re-navigates to the previous route, or the root route when the
// history is empty.
func (r *Router) Back() {
	r.mu.Lock()
	target := "/"
	if n := len(r.history); n > 0 {
		target = r.history[n-1]
		r.history = r.history[:n-1]
	}
	// the target becomes current again rather than being re-pushed
	r.current = ""
	r.mu.Unlock()

	r.Navigate(target)
}
