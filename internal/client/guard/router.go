package guard

import (
	"errors"
	"strings"
	"sync"
)

var ErrRedirectLoop = errors.New("redirect loop")

// Route is one named screen. Pattern segments starting with ':' capture a
// parameter, as in "/quotations/:id".
type Route struct {
	Pattern  string
	Require  Requirement
	Resource string
}

type Params map[string]string

// View is what the router shows. While the guard is still checking the
// session, Placeholder is set and the protected screen must not be drawn.
type View struct {
	Path        string
	Route       Route
	Params      Params
	Placeholder bool
}

// Router keeps a history stack of paths. Every visible path has passed the
// guard; denied paths are replaced by their redirect so Back never returns
// to them. Unknown paths land on the fallback route.
type Router struct {
	sess     Session
	routes   []Route
	fallback string

	mu        sync.Mutex
	history   []string
	current   View
	observers []func(View)
}

type RouterOption func(*Router)

// WithFallback sets the landing path for unknown routes.
func WithFallback(path string) RouterOption { return func(r *Router) { r.fallback = path } }

func NewRouter(sess Session, routes []Route, opts ...RouterOption) *Router {
	r := &Router{sess: sess, routes: routes, fallback: DashboardPath}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) OnChange(fn func(View)) {
	r.mu.Lock()
	r.observers = append(r.observers, fn)
	r.mu.Unlock()
}

// Navigate pushes path onto the history.
func (r *Router) Navigate(path string) (View, error) {
	return r.visit(path, true)
}

// Replace swaps the top of the history for path.
func (r *Router) Replace(path string) (View, error) {
	return r.visit(path, false)
}

// Back pops the history. It reports false when there is nowhere to go.
// The previous path is checked again since the session may have changed.
func (r *Router) Back() (View, bool, error) {
	r.mu.Lock()
	if len(r.history) < 2 {
		v := r.current
		r.mu.Unlock()
		return v, false, nil
	}
	r.history = r.history[:len(r.history)-1]
	prev := r.history[len(r.history)-1]
	r.mu.Unlock()

	v, err := r.visit(prev, false)
	return v, true, err
}

// Recheck evaluates the current path again; call it when the session changes.
func (r *Router) Recheck() (View, error) {
	r.mu.Lock()
	if len(r.history) == 0 {
		r.mu.Unlock()
		return View{}, nil
	}
	cur := r.history[len(r.history)-1]
	r.mu.Unlock()
	return r.visit(cur, false)
}

func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns a copy of the path stack, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

const maxRedirects = 4

func (r *Router) visit(path string, push bool) (View, error) {
	r.mu.Lock()
	var (
		v   View
		err error
	)
	for hop := 0; ; hop++ {
		if hop > maxRedirects {
			err = ErrRedirectLoop
			v = r.current
			break
		}

		route, params, ok := r.match(path)
		if !ok {
			path = r.fallback
			if route, params, ok = r.match(path); !ok {
				err = errors.New("fallback route " + r.fallback + " is not registered")
				v = r.current
				break
			}
		}
		if push {
			r.history = append(r.history, path)
			push = false
		} else if len(r.history) == 0 {
			r.history = []string{path}
		} else {
			r.history[len(r.history)-1] = path
		}

		d := Evaluate(r.sess, route.Require)
		if d.State == Denied {
			path = d.Redirect
			continue
		}
		v = View{Path: path, Route: route, Params: params, Placeholder: d.State == Checking}
		break
	}
	r.current = v
	obs := append([]func(View){}, r.observers...)
	r.mu.Unlock()

	if err == nil {
		for _, fn := range obs {
			fn(v)
		}
	}
	return v, err
}

func (r *Router) match(path string) (Route, Params, bool) {
	segs := split(path)
	for _, rt := range r.routes {
		pat := split(rt.Pattern)
		if len(pat) != len(segs) {
			continue
		}
		params := Params{}
		ok := true
		for i, p := range pat {
			switch {
			case strings.HasPrefix(p, ":"):
				if segs[i] == "" {
					ok = false
				}
				params[p[1:]] = segs[i]
			case p != segs[i]:
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok {
			return rt, params, true
		}
	}
	return Route{}, nil, false
}

func split(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return []string{}
	}
	return strings.Split(path, "/")
}
