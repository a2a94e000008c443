package vgspa

import "net/url"

// NavigatorOpt is a marker interface to ensure that options to Navigator are passed intentionally.
type NavigatorOpt interface {
	IsNavigatorOpt()
}

type intNavigatorOpt int

// IsNavigatorOpt implements NavigatorOpt.
func (i intNavigatorOpt) IsNavigatorOpt() {}

var (
	// NavReplace will cause this navigation to replace the
	// current history entry rather than pushing to the stack.
	// Implemented using window.history.replaceState()
	NavReplace NavigatorOpt = intNavigatorOpt(1)
)

type navOpts []NavigatorOpt

func (no navOpts) has(o NavigatorOpt) bool {
	for _, o2 := range no {
		if o == o2 {
			return true
		}
	}
	return false
}

// Navigator is implemented by Router.  Page code that only needs to move to
// another location should depend on this rather than the whole Router.
type Navigator interface {
	Navigate(path string, query url.Values, opts ...NavigatorOpt) error
}

// GoOpt is an option to Router.Go.
type GoOpt interface {
	IsGoOpt()
}

type intGoOpt int

// IsGoOpt implements GoOpt.
func (i intGoOpt) IsGoOpt() {}

var (
	// GoForce flags the page to have its content recomputed every time it is shown,
	// instead of only the first time.
	GoForce GoOpt = intGoOpt(1)
)

type goOpts []GoOpt

func (o goOpts) has(x GoOpt) bool {
	for _, o2 := range o {
		if x == o2 {
			return true
		}
	}
	return false
}
