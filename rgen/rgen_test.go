package rgen

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFull(t *testing.T) {

	tmpDir := t.TempDir()

	must(os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte(`---
title: Home &ndash; Testing
---
<span class="page-name">{{.name}}</span>`), 0644))
	must(os.WriteFile(filepath.Join(tmpDir, "first.html"), []byte(`<span class="page-name">first</span>`), 0644))
	must(os.WriteFile(filepath.Join(tmpDir, "about.md"), []byte("---\nroute: [\"!/about\", \"!/info\"]\nforce: true\n---\n# About\n"), 0644))
	must(os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("not a page"), 0644))
	must(os.MkdirAll(filepath.Join(tmpDir, "section1"), 0755))
	must(os.WriteFile(filepath.Join(tmpDir, "section1", "index.html"), []byte("<div></div>"), 0644))
	must(os.WriteFile(filepath.Join(tmpDir, "section1", "page-a.html"), []byte("---\ntitle: A\nname: a\n---\n<div>a</div>"), 0644))

	err := New().
		SetDir(tmpDir).
		SetRecursive(true).
		SetPackageName("pages").
		SetLogger(zaptest.NewLogger(t)).
		Generate()
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(tmpDir, OutputFileName))
	require.NoError(t, err)
	out := string(b)
	t.Logf("OUTPUT:\n%s", out)

	f, err := parser.ParseFile(token.NewFileSet(), OutputFileName, b, 0)
	require.NoError(t, err, "generated code must parse")
	assert.Equal(t, "pages", f.Name.Name)

	for _, want := range []string{
		`import "github.com/vugu/vgspa"`,
		`func MakePages() vgspa.PageSources {`,
		`Name:   "about",`,
		`Routes: []string{"!/about", "!/info"},`,
		`Format: vgspa.FormatMarkdown,`,
		`Force:  true,`,
		`Routes: []string{"!/first"},`,
		`Title:  "Home &ndash; Testing",`,
		`URI:    "/",`,
		`Routes: []string{"", "!/"},`,
		`Source: "<span class=\"page-name\">{{.name}}</span>",`,
		`Name:   "section1/index",`,
		`Routes: []string{"!/section1"},`,
		`Name:   "a",`,
		`Routes: []string{"!/section1/page-a"},`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "not a page")

	// files in name order, then sub-directories
	order := []string{`"about"`, `"first"`, `"index"`, `"section1/index"`, `"a"`}
	last := -1
	for _, name := range order {
		i := strings.Index(out, "Name:   "+name)
		require.True(t, i > last, "page %s out of order", name)
		last = i
	}
}

func TestNotRecursive(t *testing.T) {

	tmpDir := t.TempDir()
	must(os.WriteFile(filepath.Join(tmpDir, "index.html"), []byte("<p></p>"), 0644))
	must(os.MkdirAll(filepath.Join(tmpDir, "sub"), 0755))
	must(os.WriteFile(filepath.Join(tmpDir, "sub", "x.html"), []byte("<p></p>"), 0644))

	require.NoError(t, New().SetDir(tmpDir).Generate())

	b, err := os.ReadFile(filepath.Join(tmpDir, OutputFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "sub/x")
	assert.Contains(t, string(b), "package "+defaultPackageName(filepath.Base(tmpDir)))
}

func TestBadFrontMatter(t *testing.T) {
	tmpDir := t.TempDir()
	must(os.WriteFile(filepath.Join(tmpDir, "bad.html"), []byte("---\ntitle: [unclosed\n---\n"), 0644))
	assert.Error(t, New().SetDir(tmpDir).SetPackageName("x").Generate())
}

func TestSplitFrontMatter(t *testing.T) {

	var tlist = []struct {
		in     string
		header string
		body   string
	}{
		{"no header", "", "no header"},
		{"---\ntitle: x\n---\nbody", "title: x\n", "body"},
		{"---\r\ntitle: x\r\n---\r\nbody", "title: x\r\n", "body"},
		{"---\ntitle: x\n---", "title: x\n", ""},
		{"---\nunterminated", "", "---\nunterminated"},
		{"\xef\xbb\xbf---\na: b\n---\n", "a: b\n", ""},
	}

	for _, ti := range tlist {
		t.Run(ti.in, func(t *testing.T) {
			h, b := splitFrontMatter([]byte(ti.in))
			assert.Equal(t, ti.header, string(h))
			assert.Equal(t, ti.body, string(b))
		})
	}
}

func TestDefaultRouteFunc(t *testing.T) {

	var tlist = []struct {
		dir, file string
		out       []string
	}{
		{"", "index.html", []string{"", "!/"}},
		{"", "first.md", []string{"!/first"}},
		{"a/b", "index.html", []string{"!/a/b"}},
		{"a", "page-x.html", []string{"!/a/page-x"}},
	}

	for _, ti := range tlist {
		if got := DefaultRouteFunc(ti.dir, ti.file); !reflect.DeepEqual(got, ti.out) {
			t.Errorf("DefaultRouteFunc(%q, %q) = %#v, expected %#v", ti.dir, ti.file, got, ti.out)
		}
	}
}

func TestDefaultPackageName(t *testing.T) {
	assert.Equal(t, "pages", defaultPackageName("pages"))
	assert.Equal(t, "mypages", defaultPackageName("my-pages"))
	assert.Equal(t, "pages001", defaultPackageName("001"))
	assert.Equal(t, "pages", defaultPackageName("---"))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
