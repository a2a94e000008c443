package vgspa

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
)

// Template produces the HTML content of a page from its attributes.
type Template interface {
	Execute(attrs Attrs) (string, error)
}

// TemplateFunc implements Template as a function.
type TemplateFunc func(attrs Attrs) (string, error)

// Execute implements Template.
func (f TemplateFunc) Execute(attrs Attrs) (string, error) { return f(attrs) }

// HTMLTemplate adapts an html/template.  The attributes are the template's data.
type HTMLTemplate struct {
	T *template.Template
}

// ParseHTML returns an HTMLTemplate for src.
func ParseHTML(name, src string) (*HTMLTemplate, error) {
	t, err := template.New(name).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing html template %q: %w", name, err)
	}
	return &HTMLTemplate{T: t}, nil
}

// MustParseHTML is like ParseHTML but panics upon error.
func MustParseHTML(name, src string) *HTMLTemplate {
	t, err := ParseHTML(name, src)
	if err != nil {
		panic(err)
	}
	return t
}

// Execute implements Template.
func (t *HTMLTemplate) Execute(attrs Attrs) (string, error) {
	var buf bytes.Buffer
	if err := t.T.Execute(&buf, map[string]interface{}(attrs)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var markdown = goldmark.New()

// MarkdownTemplate is page content written in Markdown.  The source is first run
// through text/template with the page attributes and then converted to HTML.
// Raw HTML in the source is not passed through.
type MarkdownTemplate struct {
	T *texttemplate.Template
}

// ParseMarkdown returns a MarkdownTemplate for src.
func ParseMarkdown(name, src string) (*MarkdownTemplate, error) {
	t, err := texttemplate.New(name).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing markdown template %q: %w", name, err)
	}
	return &MarkdownTemplate{T: t}, nil
}

// Execute implements Template.
func (t *MarkdownTemplate) Execute(attrs Attrs) (string, error) {
	var src bytes.Buffer
	if err := t.T.Execute(&src, map[string]interface{}(attrs)); err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := markdown.Convert(src.Bytes(), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

// TemplateSet picks a template by the page's "name" attribute, so several
// routes can share one template.  Pages without a matching entry use Default,
// or render empty if that is nil too.
type TemplateSet struct {
	ByName  map[string]Template
	Default Template
}

// Set assigns the template for name.
func (ts *TemplateSet) Set(name string, t Template) {
	if ts.ByName == nil {
		ts.ByName = make(map[string]Template)
	}
	ts.ByName[name] = t
}

// Execute implements Template.
func (ts *TemplateSet) Execute(attrs Attrs) (string, error) {
	if t, ok := ts.ByName[attrs.str("name")]; ok {
		return t.Execute(attrs)
	}
	if ts.Default != nil {
		return ts.Default.Execute(attrs)
	}
	return "", nil
}
