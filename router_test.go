package vgspa

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {

	type appRouter struct {
		*Router
		out map[string]RouteMatch
	}

	type tcase struct {
		path  string   // the path to request
		rp    []string // route paths for which we AddRoute
		check func(ar *appRouter) bool
	}

	tclist := []tcase{

		{
			"/",
			[]string{"/"},
			func(ar *appRouter) bool { return ar.out["/"].Path == "/" },
		},

		{
			"",
			[]string{"", "!/"},
			func(ar *appRouter) bool { return ar.out[""].Path == "" && len(ar.out) == 1 },
		},

		{
			"/nothing",
			[]string{"/"},
			func(ar *appRouter) bool { return ar.out["_not_found"].Path == "/nothing" && len(ar.out) == 1 },
		},

		{
			"/a",
			[]string{"/", "/a"},
			func(ar *appRouter) bool { return ar.out["/a"].Path == "/a" && len(ar.out) == 1 },
		},

		{
			"/a/v1",
			[]string{"/", "/a", "/a/:id"},
			func(ar *appRouter) bool {
				return len(ar.out) == 1 &&
					ar.out["/a/:id"].Path == "/a/v1" &&
					ar.out["/a/:id"].Params.Get("id") == "v1"
			},
		},

		{
			"!/parameter/100?x=1&p=ignored",
			[]string{"!/parameter/:p"},
			func(ar *appRouter) bool {
				rm := ar.out["!/parameter/:p"]
				return rm.Path == "!/parameter/100" &&
					rm.Params.Get("p") == "100" &&
					rm.Params.Get("x") == "1" &&
					fmt.Sprint(rm.Args()) == "[100]"
			},
		},

		{
			"/dup",
			[]string{"/:any", "/dup"},
			func(ar *appRouter) bool { _, ok := ar.out["/:any"]; return ok && len(ar.out) == 1 },
		},
	}

	for i, tc := range tclist {
		t.Run(fmt.Sprint(i), func(t *testing.T) {

			ar := appRouter{Router: New(Options{NoStart: true}), out: make(map[string]RouteMatch)}
			for _, p := range tc.rp {
				p := p
				ar.MustAddRoute(p, RouteHandlerFunc(func(rm *RouteMatch) {
					ar.out[p] = *rm
				}))
			}
			ar.SetNotFound(RouteHandlerFunc(func(rm *RouteMatch) {
				ar.out["_not_found"] = *rm
			}))

			ar.process(tc.path)

			if !tc.check(&ar) {
				t.Errorf("unexpected matches: %#v", ar.out)
			}

		})
	}

}

func TestRouterAddRouteInvalid(t *testing.T) {
	r := New(Options{NoStart: true})
	assert.Error(t, r.AddRoute("/x/:", RouteHandlerFunc(func(*RouteMatch) {})))
	assert.Panics(t, func() { r.MustAddRoute("/x/:", RouteHandlerFunc(func(*RouteMatch) {})) })
}

func TestRouterHashMode(t *testing.T) {

	assert := assert.New(t)

	loc := MustNewMemoryLocation("http://localhost/index.html")
	doc := &titleDoc{}
	r := New(Options{Location: loc, Document: doc})

	var rl RouteList
	rl.Add("", PageRoute(Attrs{"uri": "/", "title": "Home"})).
		Add("!/", PageRoute(Attrs{"uri": "/", "title": "Home"})).
		Add("!/first", PageRoute(Attrs{"title": "First"})).
		Add("!/parameter/:p", PageRoute(Attrs{"name": "parameter", "title": "Param"}))
	require.NoError(t, r.AddRouteList(rl))

	// routes were added after New started listening, so nothing is open yet
	assert.Equal(0, r.Pages().Len())
	require.NoError(t, r.Pull())
	assert.Equal("/", r.Pages().Active().URI())

	require.NoError(t, loc.SetHref("#!/first"))
	assert.Equal("!/first", r.Pages().Active().URI())
	assert.Equal([]string{"Home", "First"}, doc.titles)

	require.NoError(t, loc.SetHref("#!/parameter/100"))
	p := r.Pages().Active()
	assert.Equal("!/parameter/100", p.URI())
	assert.Equal("100", p.Get("p"))
	assert.Equal(3, r.Pages().Len())

	assert.True(loc.Back())
	assert.Equal("!/first", r.Pages().Active().URI())

	require.NoError(t, r.Stop())
	assert.True(loc.Back())
	assert.Equal("!/first", r.Pages().Active().URI(), "stopped router ignores changes")
	assert.Error(r.Stop())
}

func TestRouterPushStateMode(t *testing.T) {

	assert := assert.New(t)

	loc := MustNewMemoryLocation("http://localhost/app/")
	r := New(Options{Location: loc, PushState: true, Root: "app", NoStart: true})
	r.MustAddRoute("", PageRoute(Attrs{"title": "Home"}))
	r.MustAddRoute("items/:id", PageRoute(Attrs{"title": "Item"}))

	require.NoError(t, r.Start())
	assert.Error(r.Start())
	assert.Equal("", r.Pages().Active().URI())

	require.NoError(t, r.Navigate("items/7", url.Values{"tab": {"a"}}))
	cur, _ := loc.Current()
	assert.Equal("/app/items/7", cur.Path)
	assert.Equal("items/7?tab=a", r.Pages().Active().URI())
	assert.Equal("7", r.Pages().Active().Get("id"))

	require.NoError(t, r.NavigateRoute("items/:id", url.Values{"id": {"8"}}, NavReplace))
	assert.Equal("items/8", r.Pages().Active().URI())
	assert.Equal(2, loc.Len())
}

func TestRouterGo(t *testing.T) {

	assert := assert.New(t)

	loc := MustNewMemoryLocation("http://localhost/#!/here")
	r := New(Options{Location: loc, NoStart: true})

	p := r.Go(Attrs{"title": "Here"})
	assert.Equal("!/here", p.URI())
	assert.True(p.Active())

	p2 := r.Go(Attrs{"uri": "explicit"}, GoForce)
	assert.True(p2.AlwaysRerender())
	assert.False(p.Active())

	// existing page is reused, attributes are not merged in
	p3 := r.Go(Attrs{"title": "Changed"})
	assert.Same(p, p3)
	assert.Equal("Here", p3.Title())
	assert.NotNil(r.View("!/here"))
}

func TestRouterPreseededPages(t *testing.T) {
	r := New(Options{
		NoStart: true,
		Pages:   []Attrs{{"uri": "!/first"}, {"uri": "!/dynamic"}},
	})
	assert.Equal(t, 2, r.Pages().Len())
	assert.NotNil(t, r.View("!/dynamic"))
	assert.Nil(t, r.Pages().Active())
}

func TestRouterNoLocation(t *testing.T) {
	r := New(Options{})
	assert.Error(t, r.Start())
	assert.Error(t, r.Pull())
	assert.Error(t, r.Navigate("!/x", nil))
	p := r.Go(Attrs{"uri": "x"})
	assert.True(t, p.Active())
}

func TestRouterReverse(t *testing.T) {

	r := New(Options{NoStart: true})

	p, rest, err := r.Reverse("!/parameter/:p", url.Values{"p": {"a b"}, "x": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, "!/parameter/a%20b", p)
	assert.Equal(t, "1", rest.Get("x"))

	p, _, err = r.Reverse("/abs/:id", url.Values{"id": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, "/abs/1", p)
}

type fakeEnv struct{ locks, unlocks, renders int }

func (e *fakeEnv) Lock()         { e.locks++ }
func (e *fakeEnv) UnlockOnly()   { e.unlocks++ }
func (e *fakeEnv) UnlockRender() { e.renders++ }

// brokenLocation fails to report the current URL once broken is set.
type brokenLocation struct {
	*MemoryLocation
	broken bool
}

func (l *brokenLocation) Current() (*url.URL, error) {
	if l.broken {
		return nil, errors.New("location unavailable")
	}
	return l.MemoryLocation.Current()
}

func TestRouterEventEnv(t *testing.T) {
	env := &fakeEnv{}
	loc := MustNewMemoryLocation("http://localhost/")
	r := New(Options{Location: loc, EventEnv: env})
	r.MustAddRoute("!/a", PageRoute(nil))

	require.NoError(t, loc.SetHref("#!/a"))
	assert.Equal(t, 1, env.locks)
	assert.Equal(t, 1, env.renders)
	assert.Equal(t, "!/a", r.Pages().Active().URI())
}

func TestRouterEventEnvUnreadableLocation(t *testing.T) {

	env := &fakeEnv{}
	loc := &brokenLocation{MemoryLocation: MustNewMemoryLocation("http://localhost/")}
	r := New(Options{Location: loc, EventEnv: env})
	r.MustAddRoute("!/a", PageRoute(nil))

	loc.broken = true
	require.NoError(t, loc.SetHref("#!/a"))
	assert.Equal(t, 1, env.locks)
	assert.Equal(t, 1, env.unlocks)
	assert.Equal(t, 0, env.renders)
	assert.Nil(t, r.Pages().Active())
}

func TestRouterParamRoundTrip(t *testing.T) {

	for _, mode := range []struct {
		name      string
		start     string
		pushState bool
	}{
		{"hash", "http://localhost/", false},
		{"pushState", "http://localhost/app/", true},
	} {
		t.Run(mode.name, func(t *testing.T) {

			loc := MustNewMemoryLocation(mode.start)
			r := New(Options{Location: loc, PushState: mode.pushState, Root: "/app", NoStart: true})

			var got string
			r.MustAddRoute("!/parameter/:p", RouteHandlerFunc(func(rm *RouteMatch) {
				got = rm.PathParams.ByName("p")
				rm.Go(nil)
			}))

			for _, v := range []string{"100%41", "a/b", "x y", "50%", "q?r#s"} {
				require.NoError(t, r.NavigateRoute("!/parameter/:p", url.Values{"p": {v}}))
				assert.Equal(t, v, got)
			}
			assert.Equal(t, 5, r.Pages().Len())
		})
	}
}

func TestRouterRedirectFromHandler(t *testing.T) {

	assert := assert.New(t)

	loc := MustNewMemoryLocation("http://localhost/")
	r := New(Options{Location: loc, NoStart: true})

	var order []string
	r.MustAddRoute("!/old", RouteHandlerFunc(func(rm *RouteMatch) {
		order = append(order, "old")
		require.NoError(t, rm.Router().Navigate("!/new", nil, NavReplace))
		order = append(order, "old done")
	}))
	r.MustAddRoute("!/new", RouteHandlerFunc(func(rm *RouteMatch) {
		order = append(order, "new")
		rm.Go(Attrs{"name": "new"})
	}))
	require.NoError(t, r.Start())

	require.NoError(t, loc.SetHref("#!/old"))
	assert.Equal([]string{"old", "old done", "new"}, order)
	assert.Equal("!/new", r.Pages().Active().URI())
	assert.Equal(1, r.Pages().Len())
}

func TestRouterConcurrentGo(t *testing.T) {

	r := New(Options{NoStart: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Go(Attrs{"uri": fmt.Sprintf("p%d", (i+j)%5)})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, r.Pages().Len())
	assert.Equal(t, 1, activeCount(r.Pages()))
}

func TestRouterGoForceRendersOnceOnFirstVisit(t *testing.T) {

	assert := assert.New(t)

	tmpl := &countingTemplate{}
	r := New(Options{Template: tmpl, NoStart: true})

	p := r.Go(Attrs{"uri": "!/dynamic", "name": "dynamic"}, GoForce)
	assert.True(p.AlwaysRerender())
	assert.Equal(1, tmpl.calls)

	r.Go(Attrs{"uri": "/"})
	assert.Equal(2, tmpl.calls)

	r.Go(Attrs{"uri": "!/dynamic"}, GoForce)
	assert.Equal(3, tmpl.calls, "shown again, so rendered again")
}
