package vgspa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type titleDoc struct {
	titles []string
}

func (d *titleDoc) SetTitle(title string) { d.titles = append(d.titles, title) }

type eventCounter map[EventType]int

func (c eventCounter) listen(ev PageEvent) { c[ev.Type]++ }

func TestNewPage(t *testing.T) {

	assert := assert.New(t)

	p := NewPage(Attrs{"uri": "!/first", "title": "First", "name": "first", "n": 1})
	assert.Equal("!/first", p.URI())
	assert.Equal("First", p.Title())
	assert.False(p.Active())
	assert.Equal(RenderPending, p.RenderState())
	assert.False(p.AlwaysRerender())
	assert.NotEmpty(p.CID())
	assert.Equal("first", p.Get("name"))
	assert.Equal(1, p.Get("n"))

	a := p.Attrs()
	assert.Equal(Attrs{"uri": "!/first", "title": "First", "active": false, "name": "first", "n": 1}, a)

	// the copy is detached from the page
	a["name"] = "changed"
	assert.Equal("first", p.Get("name"))

	assert.NotEqual(p.CID(), NewPage(Attrs{"uri": "!/first"}).CID())
}

func TestPageShowHide(t *testing.T) {

	assert := assert.New(t)

	doc := &titleDoc{}
	p := NewPage(Attrs{"uri": "/", "title": "Home &ndash; Testing"})
	p.setDocument(doc)

	cnt := eventCounter{}
	p.Subscribe(cnt.listen)

	p.Hide() // already hidden
	assert.Empty(cnt)

	p.Show()
	assert.True(p.Active())
	assert.Equal(1, cnt[EventShown])
	assert.Equal(1, cnt[EventChange])
	assert.Equal([]string{"Home – Testing"}, doc.titles)

	p.Show() // redundant
	assert.Equal(1, cnt[EventShown])
	assert.Len(doc.titles, 1)

	p.Hide()
	assert.False(p.Active())
	assert.Equal(1, cnt[EventHidden])
	assert.Equal(2, cnt[EventChange])

	p.Hide()
	assert.Equal(1, cnt[EventHidden])

	p.Show()
	assert.Equal(2, cnt[EventShown])
}

func TestPageEventOrder(t *testing.T) {

	var got []string
	p := NewPage(Attrs{"uri": "x"})
	p.Subscribe(func(ev PageEvent) {
		s := ev.Type.String()
		if ev.Activated {
			s += "+"
		}
		got = append(got, s)
	})

	p.Show()
	p.Hide()

	assert.Equal(t, []string{"change+", "shown", "change", "hidden"}, got)
}

func TestPageUnsubscribe(t *testing.T) {

	assert := assert.New(t)

	p := NewPage(Attrs{"uri": "x"})
	a, b := eventCounter{}, eventCounter{}
	unsubA := p.Subscribe(a.listen)
	p.Subscribe(b.listen)

	p.Show()
	unsubA()
	unsubA() // second call is a no-op
	p.Hide()

	assert.Equal(0, a[EventHidden])
	assert.Equal(1, b[EventHidden])
	assert.Equal(1, a[EventShown])
}

func TestPageUnsubscribeDuringEvent(t *testing.T) {

	p := NewPage(Attrs{"uri": "x"})
	n := 0
	var unsub func()
	unsub = p.Subscribe(func(ev PageEvent) {
		n++
		unsub()
	})

	p.Show()
	p.Hide()

	// both events of Show were delivered from the snapshot, nothing after that
	assert.Equal(t, 2, n)
}
