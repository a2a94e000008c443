package vgspa

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// Attrs is the set of attributes a Page is created from.  Well-known keys are
// "uri", "title" and "active", anything else is passed through to the Template.
type Attrs map[string]interface{}

func (a Attrs) str(k string) string {
	v, ok := a[k]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (a Attrs) clone() Attrs {
	ret := make(Attrs, len(a)+3)
	for k, v := range a {
		ret[k] = v
	}
	return ret
}

// RenderState tells if a page's content has been computed yet.
type RenderState int

const (
	RenderPending RenderState = iota // content not computed yet
	Rendered                         // content computed, only visibility changes from here on
)

func (s RenderState) String() string {
	if s == Rendered {
		return "rendered"
	}
	return "pending"
}

// EventType identifies a PageEvent.
type EventType int

const (
	EventChange EventType = iota + 1 // active flag changed
	EventShown                       // page became active
	EventHidden                      // page became inactive
)

func (t EventType) String() string {
	switch t {
	case EventChange:
		return "change"
	case EventShown:
		return "shown"
	case EventHidden:
		return "hidden"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// PageEvent is delivered to page listeners.
type PageEvent struct {
	Type      EventType
	Page      *Page
	Activated bool // for EventChange, true if this change made the page active
}

// PageListener receives page events.
type PageListener func(ev PageEvent)

// Document is where the active page's title goes.
type Document interface {
	SetTitle(title string)
}

// Page is a single addressable unit of content, identified by its uri.
// Create pages with NewPage or through Collection.Add.
type Page struct {
	mu             sync.Mutex
	cid            string
	uri            string
	title          string
	active         bool
	renderState    RenderState
	alwaysRerender bool
	attrs          Attrs
	doc            Document

	nextListenerID int
	listeners      []pageListenerEntry
}

type pageListenerEntry struct {
	id int
	fn PageListener
}

// NewPage returns a page for the given attributes.  The "uri", "title" and "active"
// attributes are pulled out into the page's state, everything else is kept as-is.
func NewPage(attrs Attrs) *Page {
	p := &Page{
		cid:   uuid.NewString(),
		uri:   attrs.str("uri"),
		title: attrs.str("title"),
		attrs: make(Attrs, len(attrs)),
	}
	for k, v := range attrs {
		switch k {
		case "uri", "title":
		case "active":
			p.active, _ = v.(bool)
		default:
			p.attrs[k] = v
		}
	}
	return p
}

// CID returns the client id assigned to the page when it was created.
func (p *Page) CID() string { return p.cid }

// URI returns the page's uri.
func (p *Page) URI() string { return p.uri }

// Title returns the page's title as given, with any HTML entities still encoded.
func (p *Page) Title() string { return p.title }

// Active returns true if the page is currently shown.
func (p *Page) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Get returns a single attribute.
func (p *Page) Get(key string) interface{} {
	switch key {
	case "uri":
		return p.uri
	case "title":
		return p.title
	case "active":
		return p.Active()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attrs[key]
}

// Attrs returns a copy of all attributes including uri, title and active.
func (p *Page) Attrs() Attrs {
	p.mu.Lock()
	defer p.mu.Unlock()
	ret := p.attrs.clone()
	ret["uri"] = p.uri
	ret["title"] = p.title
	ret["active"] = p.active
	return ret
}

// RenderState returns whether the page content has been computed.
func (p *Page) RenderState() RenderState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renderState
}

func (p *Page) setRenderState(s RenderState) {
	p.mu.Lock()
	p.renderState = s
	p.mu.Unlock()
}

// AlwaysRerender returns true if the page content is recomputed each time the page is shown.
func (p *Page) AlwaysRerender() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alwaysRerender
}

// SetAlwaysRerender sets the flag returned by AlwaysRerender.
func (p *Page) SetAlwaysRerender(v bool) {
	p.mu.Lock()
	p.alwaysRerender = v
	p.mu.Unlock()
}

func (p *Page) setDocument(d Document) {
	p.mu.Lock()
	p.doc = d
	p.mu.Unlock()
}

// Subscribe adds a listener for this page's events.  The returned func removes it again.
func (p *Page) Subscribe(fn PageListener) (unsubscribe func()) {
	p.mu.Lock()
	p.nextListenerID++
	id := p.nextListenerID
	p.listeners = append(p.listeners, pageListenerEntry{id: id, fn: fn})
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i := range p.listeners {
				if p.listeners[i].id == id {
					p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Show makes the page active.  If it was not already active, listeners are told about the
// change, the title is written to the document and EventShown is emitted.
func (p *Page) Show() {
	doc, ls, changed := p.setActive(true)
	if !changed {
		return
	}
	p.emit(ls, PageEvent{Type: EventChange, Page: p, Activated: true})
	if doc != nil {
		doc.SetTitle(html.UnescapeString(p.title))
	}
	p.emit(ls, PageEvent{Type: EventShown, Page: p})
}

// Hide makes the page inactive, emitting EventHidden if it was active.
func (p *Page) Hide() {
	_, ls, changed := p.setActive(false)
	if !changed {
		return
	}
	p.emit(ls, PageEvent{Type: EventChange, Page: p})
	p.emit(ls, PageEvent{Type: EventHidden, Page: p})
}

// setActive updates the flag and returns a snapshot of what is needed to notify outside the lock.
func (p *Page) setActive(v bool) (Document, []pageListenerEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == v {
		return nil, nil, false
	}
	p.active = v
	ls := make([]pageListenerEntry, len(p.listeners))
	copy(ls, p.listeners)
	return p.doc, ls, true
}

func (p *Page) emit(ls []pageListenerEntry, ev PageEvent) {
	for _, l := range ls {
		l.fn(ev)
	}
}
