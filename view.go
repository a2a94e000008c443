package vgspa

import (
	"sync"

	"go.uber.org/zap"
)

// Element is the container a View renders a page into.
type Element interface {
	SetInnerHTML(html string)
	SetDisplay(display string) // CSS display value, "block" or "none"
	SetAttribute(name, value string)
}

// Container is where page elements are added, in the order pages are first seen.
type Container interface {
	NewElement() Element
	AppendElement(el Element)
}

const (
	displayBlock = "block"
	displayNone  = "none"
)

// View renders a Page into an Element.  Content is computed once, after that only
// the display style follows the page's active flag.  Pages flagged AlwaysRerender
// have their content recomputed each time they are shown.
type View struct {
	page   *Page
	tmpl   Template
	el     Element
	logger *zap.Logger

	mu          sync.Mutex
	forceRender bool
	shown       bool // current content has been displayed
	unsubscribe func()
}

// NewView returns a View for page which re-renders whenever the page changes.
// A nil logger is allowed.
func NewView(page *Page, tmpl Template, el Element, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &View{
		page:   page,
		tmpl:   tmpl,
		el:     el,
		logger: logger,
	}
	el.SetAttribute("data-page-cid", page.CID())
	v.unsubscribe = page.Subscribe(v.handlePageEvent)
	return v
}

// Page returns the page this view renders.
func (v *View) Page() *Page { return v.page }

// Element returns the element this view renders into.
func (v *View) Element() Element { return v.el }

func (v *View) handlePageEvent(ev PageEvent) {
	if ev.Type != EventChange {
		return
	}
	if ev.Activated && v.page.AlwaysRerender() {
		v.mu.Lock()
		// content computed while hidden is still fresh
		v.forceRender = v.shown
		v.mu.Unlock()
	}
	v.Render()
}

// Render computes the content if it was not done yet and sets the element's
// display style from the page's active flag.
func (v *View) Render() *View {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.forceRender || v.page.RenderState() == RenderPending {
		if v.renderContent() {
			v.forceRender = false
			v.shown = false
		}
	}

	if v.page.Active() {
		v.el.SetDisplay(displayBlock)
		v.shown = true
	} else {
		v.el.SetDisplay(displayNone)
	}

	return v
}

func (v *View) renderContent() bool {
	if v.tmpl == nil {
		v.logger.Debug("no template for page", zap.String("uri", v.page.URI()))
		v.el.SetInnerHTML("")
		v.page.setRenderState(Rendered)
		return true
	}
	out, err := v.tmpl.Execute(v.page.Attrs())
	if err != nil {
		// leave it pending, next render will try again
		v.logger.Error("page template failed", zap.String("uri", v.page.URI()), zap.Error(err))
		return false
	}
	v.el.SetInnerHTML(out)
	v.page.setRenderState(Rendered)
	return true
}

// Dispose stops the view from following its page.
func (v *View) Dispose() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}
