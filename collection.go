package vgspa

import "sync"

// Collection is the ordered set of known pages, keyed by uri.  Pages are only
// ever added, never removed.
type Collection struct {
	openMu sync.Mutex // held for a whole Open traversal

	mu    sync.Mutex
	pages []*Page
	byURI map[string]*Page
	doc   Document

	nextListenerID int
	addListeners   []addListenerEntry
}

type addListenerEntry struct {
	id int
	fn func(*Page)
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection {
	return &Collection{byURI: make(map[string]*Page)}
}

// SetDocument sets the Document that pages in this collection write their title to.
func (c *Collection) SetDocument(d Document) {
	c.mu.Lock()
	c.doc = d
	pages := c.snapshot()
	c.mu.Unlock()
	for _, p := range pages {
		p.setDocument(d)
	}
}

// OnAdd registers fn to be called for each page added from now on.
func (c *Collection) OnAdd(fn func(p *Page)) (unsubscribe func()) {
	c.mu.Lock()
	c.nextListenerID++
	id := c.nextListenerID
	c.addListeners = append(c.addListeners, addListenerEntry{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i := range c.addListeners {
			if c.addListeners[i].id == id {
				c.addListeners = append(c.addListeners[:i], c.addListeners[i+1:]...)
				return
			}
		}
	}
}

// Add creates a page from attrs unless one with the same uri exists already,
// in which case the existing page is returned untouched and added is false.
func (c *Collection) Add(attrs Attrs) (p *Page, added bool) {
	return c.add(attrs, nil)
}

// add is Add with init run on a new page before it is published.
func (c *Collection) add(attrs Attrs, init func(p *Page)) (p *Page, added bool) {
	uri := attrs.str("uri")

	c.mu.Lock()
	if c.byURI == nil {
		c.byURI = make(map[string]*Page)
	}
	if existing, ok := c.byURI[uri]; ok {
		c.mu.Unlock()
		return existing, false
	}
	p = NewPage(attrs)
	p.doc = c.doc
	if init != nil {
		init(p)
	}
	c.pages = append(c.pages, p)
	c.byURI[uri] = p
	ls := make([]addListenerEntry, len(c.addListeners))
	copy(ls, c.addListeners)
	c.mu.Unlock()

	for _, l := range ls {
		l.fn(p)
	}
	return p, true
}

// Open shows the page with the given uri and hides all others.  If no page
// matches, all pages end up hidden.  Concurrent calls are serialized, so at
// most one page is active once they return.  Page listeners must not call
// Open themselves.
func (c *Collection) Open(uri string) {
	c.openMu.Lock()
	defer c.openMu.Unlock()

	c.mu.Lock()
	pages := c.snapshot()
	c.mu.Unlock()

	for _, p := range pages {
		if p.URI() == uri {
			p.Show()
		} else {
			p.Hide()
		}
	}
}

// Get returns the page for uri or nil.
func (c *Collection) Get(uri string) *Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byURI[uri]
}

// Len returns the number of pages.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}

// Pages returns the pages in the order they were added.
func (c *Collection) Pages() []*Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Active returns the active page or nil if none is.
func (c *Collection) Active() *Page {
	for _, p := range c.Pages() {
		if p.Active() {
			return p
		}
	}
	return nil
}

func (c *Collection) snapshot() []*Page {
	ret := make([]*Page, len(c.pages))
	copy(ret, c.pages)
	return ret
}
