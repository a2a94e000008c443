package vgspa

import (
	"errors"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// EventEnv is our view of a Vugu EventEnv.  When set, location changes coming
// from the browser are processed while holding its lock, and a render is
// requested afterwards.
type EventEnv interface {
	Lock()         // acquire write lock
	UnlockOnly()   // release write lock
	UnlockRender() // release write lock and request re-render
}

// Options configure a Router.  The zero value is usable in a browser: hash
// mode, pages appended to <body>, listening starts immediately.
type Options struct {
	// Container receives one element per page, in the order pages are first seen.
	// Defaults to the document body in a browser.
	Container Container
	// Document receives the title of the page being shown.  Defaults to the browser document.
	Document Document
	// Location provides the current URL.  Defaults to a BrowserLocation.
	Location Location
	// Template renders page content.  Pages render empty if nil.
	Template Template

	// NoStart means New does not start listening for location changes; call Start later.
	NoStart bool
	// PushState selects path mode, where the route is the URL path below Root.
	// Otherwise the route is the URL fragment (hash mode).
	PushState bool
	// Root is the path prefix in path mode.  Defaults to "/".
	Root string

	// Pages are added to the collection before anything else happens.
	Pages []Attrs

	Logger   *zap.Logger
	EventEnv EventEnv
}

// Router maps location changes to pages.  Route handlers call Go (usually via
// RouteMatch.Go) to open the page for the current location.
type Router struct {
	pushState bool
	root      string

	location  Location
	container Container
	tmpl      Template
	eventEnv  EventEnv
	logger    *zap.Logger

	pages *Collection

	mu              sync.Mutex
	rlist           []routeEntry
	notFoundHandler RouteHandler
	views           map[string]*View
	listening       bool

	processing bool     // a goroutine is inside process
	queue      []string // fragments waiting for it
}

type routeEntry struct {
	pattern string
	mpath   mpath
	rh      RouteHandler
}

var errNoLocation = errors.New("no location available")

// New returns a new Router.  Unless opts.NoStart is set, it starts listening for
// location changes right away.  Outside a browser, any of Location, Container
// and Document left unset leave the router without that capability; this is
// logged rather than returned as an error.
func New(opts Options) *Router {

	r := &Router{
		pushState: opts.PushState,
		root:      normalizeRoot(opts.Root),
		location:  opts.Location,
		container: opts.Container,
		tmpl:      opts.Template,
		eventEnv:  opts.EventEnv,
		logger:    opts.Logger,
		pages:     NewCollection(),
		views:     make(map[string]*View),
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	inBrowser := InBrowser()

	if r.location == nil && inBrowser {
		r.location = NewBrowserLocation(!r.pushState)
	}
	if r.location == nil {
		r.logger.Error("router has no location, it will not respond to navigation", zap.Error(errNotBrowser))
	}

	if r.container == nil && inBrowser {
		c, err := NewBrowserContainer("body")
		if err != nil {
			r.logger.Error("no page container", zap.Error(err))
		} else {
			r.container = c
		}
	}

	doc := opts.Document
	if doc == nil && inBrowser {
		doc = BrowserDocument{}
	}
	if doc != nil {
		r.pages.SetDocument(doc)
	}

	r.pages.OnAdd(r.addView)

	for _, attrs := range opts.Pages {
		r.pages.Add(attrs)
	}

	if !opts.NoStart && r.location != nil {
		if err := r.Start(); err != nil {
			r.logger.Error("router start failed", zap.Error(err))
		}
	}

	return r
}

func normalizeRoot(root string) string {
	root = "/" + strings.Trim(root, "/") + "/"
	if root == "//" {
		return "/"
	}
	return root
}

// addView creates the view for a page that was just added.
func (r *Router) addView(p *Page) {
	var el Element = nopElement{}
	if r.container != nil {
		el = r.container.NewElement()
	}
	v := NewView(p, r.tmpl, el, r.logger)
	if r.container != nil {
		r.container.AppendElement(el)
	}

	r.mu.Lock()
	r.views[p.URI()] = v
	r.mu.Unlock()

	v.Render()
}

// Pages returns the page collection.
func (r *Router) Pages() *Collection { return r.pages }

// View returns the view of the page with the given uri, or nil.
func (r *Router) View(uri string) *View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views[uri]
}

// Start begins listening for location changes and processes the current location.
func (r *Router) Start() error {

	if r.location == nil {
		return errNoLocation
	}

	r.mu.Lock()
	if r.listening {
		r.mu.Unlock()
		return errors.New("router already started")
	}
	r.listening = true
	r.mu.Unlock()

	if err := r.location.Listen(r.locationChanged); err != nil {
		r.mu.Lock()
		r.listening = false
		r.mu.Unlock()
		return err
	}

	return r.Pull()
}

// Stop stops listening for location changes.  Pages and views are kept.
func (r *Router) Stop() error {

	r.mu.Lock()
	if !r.listening {
		r.mu.Unlock()
		return errors.New("router not started")
	}
	r.listening = false
	r.mu.Unlock()

	return r.location.Unlisten()
}

func (r *Router) locationChanged() {
	if r.eventEnv != nil {
		r.eventEnv.Lock()
	}
	err := r.Pull()
	if err != nil {
		r.logger.Error("reading location failed", zap.Error(err))
	}
	if r.eventEnv == nil {
		return
	}
	// nothing changed if the location could not be read
	if err != nil {
		r.eventEnv.UnlockOnly()
		return
	}
	r.eventEnv.UnlockRender()
}

// Pull will read the current location and run the matching route.  Start calls it
// once, after that it is called for each location change.
func (r *Router) Pull() error {

	frag, err := r.fragment()
	if err != nil {
		return err
	}

	r.process(frag)

	return nil
}

// fragment returns the route part of the current location: everything after
// "#" in hash mode, the path below root plus query in path mode.
func (r *Router) fragment() (string, error) {

	if r.location == nil {
		return "", errNoLocation
	}

	u, err := r.location.Current()
	if err != nil {
		return "", err
	}

	// escaped forms, match does the one decode of parameter values
	if !r.pushState {
		return u.EscapedFragment(), nil
	}

	p := u.EscapedPath()
	switch {
	case strings.HasPrefix(p, r.root):
		p = p[len(r.root):]
	case p+"/" == r.root:
		p = ""
	}
	p = strings.TrimPrefix(p, "/")
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p, nil
}

// MustNavigate is like Navigate but panics upon error.
func (r *Router) MustNavigate(path string, query url.Values, opts ...NavigatorOpt) {
	err := r.Navigate(path, query, opts...)
	if err != nil {
		panic(err)
	}
}

// Navigate will go the specified path and query.  The path is in route form,
// i.e. "!/first" in hash mode or "first" below Root in path mode.
// The location is updated and the matching route run.
func (r *Router) Navigate(path string, query url.Values, opts ...NavigatorOpt) error {

	if r.location == nil {
		return errNoLocation
	}

	pq := path
	q := query.Encode()
	if len(q) > 0 {
		pq = pq + "?" + q
	}

	var ref string
	if r.pushState {
		ref = r.root + strings.TrimPrefix(pq, "/")
	} else {
		ref = "#" + pq
	}

	var err error
	if navOpts(opts).has(NavReplace) {
		err = r.location.Replace(ref)
	} else {
		err = r.location.Push(ref)
	}
	if err != nil {
		return err
	}

	return r.Pull()
}

// NavigateRoute is like Navigate but builds the path from a route pattern
// previously added with AddRoute and the values for its parameters.
// Values that are not route parameters end up in the query.
func (r *Router) NavigateRoute(pattern string, params url.Values, opts ...NavigatorOpt) error {
	p, q, err := r.Reverse(pattern, params)
	if err != nil {
		return err
	}
	return r.Navigate(p, q, opts...)
}

// Reverse returns the path for a route pattern with its parameters filled in
// from params, plus whatever params were not used.
func (r *Router) Reverse(pattern string, params url.Values) (path string, rest url.Values, err error) {
	mp, err := parseMpath(pattern)
	if err != nil {
		return "", nil, err
	}
	path, rest, err = mp.merge(params)
	if !strings.HasPrefix(pattern, "/") {
		path = strings.TrimPrefix(path, "/")
	}
	return path, rest, err
}

// Go opens the page described by attrs.  If attrs has no "uri" it is taken
// from the current location.  A page with that uri is added to the collection
// if it is not there yet; an existing page is reused as-is, attrs do not
// overwrite it.  Go is safe to call from any goroutine, the collection makes
// sure only the last opened page stays active.
func (r *Router) Go(attrs Attrs, opts ...GoOpt) *Page {

	a := attrs.clone()
	if a.str("uri") == "" {
		frag, err := r.fragment()
		if err != nil {
			r.logger.Warn("cannot derive page uri from location", zap.Error(err))
		}
		a["uri"] = frag
	}

	force := goOpts(opts).has(GoForce)
	p, added := r.pages.add(a, func(p *Page) {
		p.alwaysRerender = force
	})
	if force && !added {
		p.SetAlwaysRerender(true)
	}

	r.logger.Debug("opening page", zap.String("uri", p.URI()), zap.Bool("new", added))

	r.pages.Open(p.URI())

	return p
}

// MustAddRoute is like AddRoute but panics upon error.
func (r *Router) MustAddRoute(path string, rh RouteHandler) {
	err := r.AddRoute(path, rh)
	if err != nil {
		panic(err)
	}
}

// AddRoute adds a route to the list.
func (r *Router) AddRoute(path string, rh RouteHandler) error {

	mp, err := parseMpath(path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.rlist = append(r.rlist, routeEntry{
		pattern: path,
		mpath:   mp,
		rh:      rh,
	})
	r.mu.Unlock()

	r.logger.Debug("route added", zap.String("route", path), zap.Strings("params", mp.paramNames()))

	return nil
}

// AddRouteList adds all routes of rl, in order.
func (r *Router) AddRouteList(rl RouteList) error {
	for _, rt := range rl {
		if err := r.AddRoute(rt.Pattern, rt.Handler); err != nil {
			return err
		}
	}
	return nil
}

// SetNotFound assigns the handler for the case of no exact match route.
func (r *Router) SetNotFound(rh RouteHandler) {
	r.mu.Lock()
	r.notFoundHandler = rh
	r.mu.Unlock()
}

// process runs the route for a fragment.  Calls are serialized: while one
// goroutine is processing, other calls (including ones made from a route
// handler, e.g. a redirect) queue their fragment and return, and the
// processing goroutine runs them in order before it returns.
func (r *Router) process(fragment string) {

	r.mu.Lock()
	if r.processing {
		r.queue = append(r.queue, fragment)
		r.mu.Unlock()
		return
	}
	r.processing = true
	r.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			// a panicking handler must not leave the router stuck
			r.mu.Lock()
			r.processing = false
			r.queue = nil
			r.mu.Unlock()
			panic(rec)
		}
	}()

	for {
		r.runRoute(fragment)

		r.mu.Lock()
		if len(r.queue) == 0 {
			r.processing = false
			r.mu.Unlock()
			return
		}
		fragment = r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
	}
}

// runRoute finds the route for a fragment and calls its handler.
// The first route matching exactly wins.
func (r *Router) runRoute(fragment string) {

	path, rawQuery := fragment, ""
	if i := strings.IndexByte(fragment, '?'); i >= 0 {
		path, rawQuery = fragment[:i], fragment[i+1:]
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		r.logger.Debug("ignoring malformed query", zap.String("fragment", fragment), zap.Error(err))
	}

	r.mu.Lock()
	rlist := r.rlist
	notFound := r.notFoundHandler
	r.mu.Unlock()

	for _, re := range rlist {

		pp, exact, ok := re.mpath.match(path)
		if !ok || !exact {
			continue
		}

		pvals := pp.values()
		// merge any other values from query into pvals
		for k, v := range query {
			if pvals[k] == nil {
				pvals[k] = v
			}
		}

		r.logger.Debug("route matched", zap.String("fragment", fragment), zap.String("route", re.pattern))

		re.rh.RouteHandle(&RouteMatch{
			router:     r,
			fragment:   fragment,
			Path:       path,
			RoutePath:  re.pattern,
			Params:     pvals,
			PathParams: pp,
		})
		return
	}

	r.logger.Debug("no route matched", zap.String("fragment", fragment))

	if notFound != nil {
		notFound.RouteHandle(&RouteMatch{
			router:   r,
			fragment: fragment,
			Path:     path,
			Params:   query,
		})
	}
}

// RouteMatch describes a request to navigate to a route.
type RouteMatch struct {
	Path       string        // path input (with any params interpolated)
	RoutePath  string        // route path pattern with params as :param
	Params     url.Values    // parameters (combined query and route params)
	PathParams PathParamList // route params only, in order

	router   *Router
	fragment string
}

// Args returns the route parameter values positionally.
func (rm *RouteMatch) Args() []string { return rm.PathParams.Args() }

// Router returns the router that matched.
func (rm *RouteMatch) Router() *Router { return rm.router }

// Go calls Go on the router that matched.  A missing uri is the fragment
// that was matched, which may differ from the location by the time a queued
// fragment is processed.
func (rm *RouteMatch) Go(attrs Attrs, opts ...GoOpt) *Page {
	if attrs.str("uri") == "" {
		attrs = attrs.clone()
		attrs["uri"] = rm.fragment
	}
	return rm.router.Go(attrs, opts...)
}

// nopElement is used for pages when the router has no container.
type nopElement struct{}

func (nopElement) SetInnerHTML(string)         {}
func (nopElement) SetDisplay(string)           {}
func (nopElement) SetAttribute(string, string) {}
