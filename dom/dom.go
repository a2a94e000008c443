// Package dom is a small in-memory document for running pages outside a browser,
// e.g. for server-side rendering or tests.  It is built on golang.org/x/net/html
// and implements the vgspa Document, Container and Element interfaces.
//
// Selectors are limited to a single simple selector: "tag", ".class", "#id"
// or "tag.class".  A Document is not safe for concurrent use.
package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vugu/vgspa"
)

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
}

// Parse parses a full HTML document.
func Parse(src string) (*Document, error) {
	n, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	return &Document{root: n}, nil
}

// MustParse is like Parse but panics upon error.
func MustParse(src string) *Document {
	d, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return d
}

// SetTitle sets the text of the <title> element, creating it in <head> if needed.
func (d *Document) SetTitle(title string) {
	t := findFirst(d.root, "title")
	if t == nil {
		head := findFirst(d.root, "head")
		if head == nil {
			return
		}
		t = &html.Node{Type: html.ElementNode, DataAtom: atom.Title, Data: "title"}
		head.AppendChild(t)
	}
	removeChildren(t)
	t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
}

// Title returns the text of the <title> element.
func (d *Document) Title() string {
	t := findFirst(d.root, "title")
	if t == nil {
		return ""
	}
	return textOf(t)
}

// Container returns a Container on the first element matching selector.
// New elements made by it get className as their class attribute, if not empty.
func (d *Document) Container(selector, className string) (*Container, error) {
	n := findFirst(d.root, selector)
	if n == nil {
		return nil, fmt.Errorf("no element matches %q", selector)
	}
	return &Container{n: n, className: className}, nil
}

// Find returns the first element matching selector, or nil.
func (d *Document) Find(selector string) *Element {
	if n := findFirst(d.root, selector); n != nil {
		return &Element{n: n}
	}
	return nil
}

// Render writes out the whole document.
func (d *Document) Render() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Container holds page elements.
type Container struct {
	n         *html.Node
	className string
}

var (
	_ vgspa.Document  = (*Document)(nil)
	_ vgspa.Container = (*Container)(nil)
	_ vgspa.Element   = (*Element)(nil)
)

// NewElement returns a detached <div>, an *Element.
func (c *Container) NewElement() vgspa.Element {
	return c.newElement()
}

func (c *Container) newElement() *Element {
	n := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	e := &Element{n: n}
	if c.className != "" {
		e.SetAttribute("class", c.className)
	}
	return e
}

// AppendElement adds el (which must come from NewElement) as the last child.
func (c *Container) AppendElement(el vgspa.Element) {
	e, ok := el.(*Element)
	if !ok || e.n.Parent != nil {
		return
	}
	c.n.AppendChild(e.n)
}

// Elements returns the element children.
func (c *Container) Elements() []*Element {
	var ret []*Element
	for ch := c.n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode {
			ret = append(ret, &Element{n: ch})
		}
	}
	return ret
}

// Visible returns the element children whose display style is not "none".
func (c *Container) Visible() []*Element {
	var ret []*Element
	for _, e := range c.Elements() {
		if e.Visible() {
			ret = append(ret, e)
		}
	}
	return ret
}

// Element is a single element of a Document.
type Element struct {
	n *html.Node
}

// SetInnerHTML replaces the element's children with the parsed fragment.
func (e *Element) SetInnerHTML(src string) {
	removeChildren(e.n)
	nodes, err := html.ParseFragment(strings.NewReader(src), e.n)
	if err != nil {
		// the html5 parser recovers from anything a reader of a string can give it
		e.n.AppendChild(&html.Node{Type: html.TextNode, Data: src})
		return
	}
	for _, c := range nodes {
		e.n.AppendChild(c)
	}
}

// InnerHTML renders the element's children.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// Text returns the concatenated text content.
func (e *Element) Text() string { return textOf(e.n) }

// SetDisplay sets the display property of the style attribute.
func (e *Element) SetDisplay(display string) {
	e.SetAttribute("style", "display: "+display+";")
}

// Display returns the display property set with SetDisplay, or "".
func (e *Element) Display() string {
	s := strings.TrimSpace(e.Attr("style"))
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(k) == "display" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Visible is true unless the display is "none".
func (e *Element) Visible() bool { return e.Display() != "none" }

// SetAttribute sets or replaces an attribute.
func (e *Element) SetAttribute(name, value string) {
	for i := range e.n.Attr {
		if e.n.Attr[i].Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

// Attr returns an attribute value or "".
func (e *Element) Attr(name string) string {
	for _, a := range e.n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// Find returns the first descendant matching selector, or nil.
func (e *Element) Find(selector string) *Element {
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if n := findFirst(c, selector); n != nil {
			return &Element{n: n}
		}
	}
	return nil
}

func findFirst(n *html.Node, selector string) *html.Node {
	if matches(n, selector) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := findFirst(c, selector); f != nil {
			return f
		}
	}
	return nil
}

func matches(n *html.Node, selector string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	tag, rest := selector, ""
	if i := strings.IndexAny(selector, ".#"); i >= 0 {
		tag, rest = selector[:i], selector[i:]
	}
	if tag != "" && n.Data != tag {
		return false
	}
	if rest == "" {
		return tag != ""
	}
	e := Element{n: n}
	switch rest[0] {
	case '.':
		for _, c := range strings.Fields(e.Attr("class")) {
			if c == rest[1:] {
				return true
			}
		}
		return false
	case '#':
		return e.Attr("id") == rest[1:]
	}
	return false
}

func removeChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textOf(c))
	}
	return sb.String()
}
