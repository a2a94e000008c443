package vgspa

import "fmt"

// Page source formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// PageSource describes a page whose template is known up front, as produced by
// the rgen package from a directory of page files.
type PageSource struct {
	Name   string   // template name, unique among the sources
	Title  string   // page title
	URI    string   // fixed uri, derived from the location if empty
	Routes []string // route patterns that open this page
	Format string   // FormatHTML or FormatMarkdown
	Source string   // template source
	Force  bool     // re-render each time the page is shown
}

// Template parses the source.
func (ps PageSource) Template() (Template, error) {
	switch ps.Format {
	case FormatHTML, "":
		t, err := ParseHTML(ps.Name, ps.Source)
		if err != nil {
			return nil, err
		}
		return t, nil
	case FormatMarkdown:
		t, err := ParseMarkdown(ps.Name, ps.Source)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("page %q: unknown format %q", ps.Name, ps.Format)
}

// Attrs returns the attributes the page is opened with.
func (ps PageSource) Attrs() Attrs {
	a := Attrs{"name": ps.Name, "title": ps.Title}
	if ps.URI != "" {
		a["uri"] = ps.URI
	}
	return a
}

// PageSources is a list of page sources.
type PageSources []PageSource

// Templates returns a TemplateSet with each page's template under its name.
func (pss PageSources) Templates() (*TemplateSet, error) {
	ts := &TemplateSet{}
	for _, ps := range pss {
		if _, dup := ts.ByName[ps.Name]; dup {
			return nil, fmt.Errorf("duplicate page name %q", ps.Name)
		}
		t, err := ps.Template()
		if err != nil {
			return nil, err
		}
		ts.Set(ps.Name, t)
	}
	return ts, nil
}

// Routes returns a route for each pattern of each page, in order.
func (pss PageSources) Routes() RouteList {
	var rl RouteList
	for _, ps := range pss {
		var opts []GoOpt
		if ps.Force {
			opts = append(opts, GoForce)
		}
		h := PageRoute(ps.Attrs(), opts...)
		for _, pattern := range ps.Routes {
			rl.Add(pattern, h)
		}
	}
	return rl
}

// Register adds the routes of all pages to r.
func (pss PageSources) Register(r *Router) error {
	return r.AddRouteList(pss.Routes())
}
