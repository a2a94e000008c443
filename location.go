package vgspa

import (
	"errors"
	"net/url"
	"strings"
	"sync"
)

// Location is the source of the current URL and of change notifications.
// BrowserLocation is the implementation for use in a web browser, MemoryLocation
// keeps the history in memory.
type Location interface {
	// Current returns the current URL.
	Current() (*url.URL, error)
	// Push adds a new history entry. Relative references resolve against the current URL.
	// Listeners are not notified.
	Push(ref string) error
	// Replace is like Push but replaces the current entry.
	Replace(ref string) error
	// Listen registers f to be called whenever the location changes by other means than Push or Replace.
	Listen(f func()) error
	// Unlisten removes the listener set with Listen.
	Unlisten() error
}

var (
	errListenerSet    = errors.New("location listener already set")
	errListenerNotSet = errors.New("location listener not set")
)

// MemoryLocation is a Location with an in-memory history stack.
type MemoryLocation struct {
	mu       sync.Mutex
	entries  []*url.URL
	idx      int
	listener func()
}

// NewMemoryLocation returns a MemoryLocation whose single history entry is start.
func NewMemoryLocation(start string) (*MemoryLocation, error) {
	u, err := url.Parse(start)
	if err != nil {
		return nil, err
	}
	return &MemoryLocation{entries: []*url.URL{u}}, nil
}

// MustNewMemoryLocation is like NewMemoryLocation but panics upon error.
func MustNewMemoryLocation(start string) *MemoryLocation {
	l, err := NewMemoryLocation(start)
	if err != nil {
		panic(err)
	}
	return l
}

// Current implements Location.
func (l *MemoryLocation) Current() (*url.URL, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u := *l.entries[l.idx]
	return &u, nil
}

func (l *MemoryLocation) resolve(ref string) (*url.URL, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(ref, "#") {
		// ResolveReference keeps the current fragment when the new one is empty
		u := *l.entries[l.idx]
		u.Fragment, u.RawFragment = r.Fragment, r.RawFragment
		return &u, nil
	}
	return l.entries[l.idx].ResolveReference(r), nil
}

// Push implements Location.
func (l *MemoryLocation) Push(ref string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.resolve(ref)
	if err != nil {
		return err
	}
	l.entries = append(l.entries[:l.idx+1], u)
	l.idx++
	return nil
}

// Replace implements Location.
func (l *MemoryLocation) Replace(ref string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.resolve(ref)
	if err != nil {
		return err
	}
	l.entries[l.idx] = u
	return nil
}

// SetHref is the equivalent of assigning location.href in a browser: a new
// entry is pushed and, if the URL actually changed, the listener is called.
func (l *MemoryLocation) SetHref(ref string) error {
	l.mu.Lock()
	prev := l.entries[l.idx].String()
	u, err := l.resolve(ref)
	if err != nil {
		l.mu.Unlock()
		return err
	}
	if u.String() == prev {
		l.mu.Unlock()
		return nil
	}
	l.entries = append(l.entries[:l.idx+1], u)
	l.idx++
	f := l.listener
	l.mu.Unlock()

	if f != nil {
		f()
	}
	return nil
}

// Back moves one entry back in the history and notifies the listener.
// It returns false if already at the first entry.
func (l *MemoryLocation) Back() bool { return l.Go(-1) }

// Forward moves one entry forward in the history and notifies the listener.
// It returns false if already at the last entry.
func (l *MemoryLocation) Forward() bool { return l.Go(1) }

// Go moves delta entries through the history and notifies the listener.
func (l *MemoryLocation) Go(delta int) bool {
	l.mu.Lock()
	n := l.idx + delta
	if delta == 0 || n < 0 || n >= len(l.entries) {
		l.mu.Unlock()
		return false
	}
	l.idx = n
	f := l.listener
	l.mu.Unlock()

	if f != nil {
		f()
	}
	return true
}

// Len returns the number of history entries.
func (l *MemoryLocation) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Listen implements Location.
func (l *MemoryLocation) Listen(f func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener != nil {
		return errListenerSet
	}
	l.listener = f
	return nil
}

// Unlisten implements Location.
func (l *MemoryLocation) Unlisten() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener == nil {
		return errListenerNotSet
	}
	l.listener = nil
	return nil
}
