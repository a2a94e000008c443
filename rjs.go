package vgspa

import (
	"errors"
	"net/url"

	"github.com/vugu/vugu/js"
)

var errNotBrowser = errors.New("not in browser (js) environment")

// InBrowser returns true when running in a browser (js) environment.
func InBrowser() bool {
	return js.Global().Truthy()
}

// BrowserLocation implements Location with window.location and window.history.
// In hash mode changes are detected with the "hashchange" event, otherwise with "popstate".
type BrowserLocation struct {
	hashMode bool

	listenFunc js.Func
	listening  bool
}

// NewBrowserLocation returns a BrowserLocation.  If hashMode is true the location
// change notification is taken from "hashchange" instead of "popstate".
func NewBrowserLocation(hashMode bool) *BrowserLocation {
	return &BrowserLocation{hashMode: hashMode}
}

func (l *BrowserLocation) eventName() string {
	if l.hashMode {
		return "hashchange"
	}
	return "popstate"
}

// Current implements Location.
func (l *BrowserLocation) Current() (*url.URL, error) {

	g := js.Global()
	if !g.Truthy() {
		return nil, errNotBrowser
	}

	return url.Parse(g.Get("window").Get("location").Get("href").String())
}

// Push implements Location.
func (l *BrowserLocation) Push(ref string) error {

	g := js.Global()
	if !g.Truthy() {
		return errNotBrowser
	}

	g.Get("window").Get("history").Call("pushState", nil, "", ref)

	return nil
}

// Replace implements Location.
func (l *BrowserLocation) Replace(ref string) error {

	g := js.Global()
	if !g.Truthy() {
		return errNotBrowser
	}

	g.Get("window").Get("history").Call("replaceState", nil, "", ref)

	return nil
}

// Listen implements Location.
func (l *BrowserLocation) Listen(f func()) error {

	g := js.Global()
	if !g.Truthy() {
		return errNotBrowser
	}

	if l.listening {
		return errListenerSet
	}

	jf := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		f()
		return nil
	})

	g.Get("window").Call("addEventListener", l.eventName(), jf)

	l.listenFunc = jf
	l.listening = true

	return nil
}

// Unlisten implements Location.
func (l *BrowserLocation) Unlisten() error {

	g := js.Global()
	if !g.Truthy() {
		return errNotBrowser
	}

	if !l.listening {
		return errListenerNotSet
	}

	g.Get("window").Call("removeEventListener", l.eventName(), l.listenFunc)

	l.listenFunc.Release()
	l.listenFunc = js.Func{}
	l.listening = false

	return nil
}

// BrowserDocument implements Document by setting document.title.
type BrowserDocument struct{}

// SetTitle implements Document.
func (BrowserDocument) SetTitle(title string) {
	g := js.Global()
	if !g.Truthy() {
		return
	}
	g.Get("document").Set("title", title)
}

// BrowserContainer implements Container on a DOM element.
type BrowserContainer struct {
	el js.Value
}

// NewBrowserContainer returns the container for the first element matching
// the CSS selector, e.g. "body" or "#app".
func NewBrowserContainer(selector string) (*BrowserContainer, error) {

	g := js.Global()
	if !g.Truthy() {
		return nil, errNotBrowser
	}

	el := g.Get("document").Call("querySelector", selector)
	if !el.Truthy() {
		return nil, errors.New("no element matches " + selector)
	}

	return &BrowserContainer{el: el}, nil
}

// NewElement implements Container.
func (c *BrowserContainer) NewElement() Element {
	return &BrowserElement{v: js.Global().Get("document").Call("createElement", "div")}
}

// AppendElement implements Container.
func (c *BrowserContainer) AppendElement(el Element) {
	if be, ok := el.(*BrowserElement); ok {
		c.el.Call("appendChild", be.v)
	}
}

// BrowserElement implements Element on a DOM element.
type BrowserElement struct {
	v js.Value
}

// SetInnerHTML implements Element.
func (e *BrowserElement) SetInnerHTML(html string) { e.v.Set("innerHTML", html) }

// SetDisplay implements Element.
func (e *BrowserElement) SetDisplay(display string) { e.v.Get("style").Set("display", display) }

// SetAttribute implements Element.
func (e *BrowserElement) SetAttribute(name, value string) { e.v.Call("setAttribute", name, value) }
