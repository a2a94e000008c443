// Package rgen generates a vgspa page list from a directory of page files.
//
// Each .html or .md file becomes one page.  A file may start with YAML front
// matter between "---" lines to set the title, route(s), uri or name:
//
//	---
//	title: First page
//	route: "!/first"
//	---
//	<span class="page-name">{{.name}}</span>
//
// The generated file, 0_pages_vgen.go, declares MakePages() returning a
// vgspa.PageSources.
package rgen

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// OutputFileName is the name of the generated file.
const OutputFileName = "0_pages_vgen.go"

// New returns a new Generator instance.
func New() *Generator {
	return &Generator{}
}

// Generator performs page generation on a given directory (and optionally sub-directories)
type Generator struct {
	dir         string                                 // starting directory
	recursive   bool                                   // if true we will descend into directories
	packageName string                                 // package clause of the generated file
	routeFunc   func(relDir, fileName string) []string // function to derive routes from a file name
	includeFunc func(path, fileName string) bool       // function to determine if a file should be included
	logger      *zap.Logger
}

// SetDir assigns the directory to start generating in.
func (g *Generator) SetDir(dir string) *Generator {
	g.dir = dir
	return g
}

// SetRecursive if passed true will enable the generator recursing
// into sub-directories.  Pages in sub-directories get routes prefixed
// with the directory path and are written to the single output file in dir.
func (g *Generator) SetRecursive(recursive bool) *Generator {
	g.recursive = recursive
	return g
}

// SetPackageName sets the package name used in the generated file.
// If not set the base name of the directory is used.
func (g *Generator) SetPackageName(packageName string) *Generator {
	g.packageName = packageName
	return g
}

// SetRouteFunc sets the function which derives the route patterns for a page without
// a route in its front matter.  If not set, DefaultRouteFunc will be used.
func (g *Generator) SetRouteFunc(f func(relDir, fileName string) []string) *Generator {
	g.routeFunc = f
	return g
}

// SetIncludeFunc sets the function which determines which files are included.
// The include function will be passed the path relative to the dir set by SetDir (and will be empty
// for files in that directory) and fileName will contain the base file name.  E.g. given SetDir("/a")
// "/a/b.html" will result in a call with ("", "b.html"), and "/a/b/c.html" will result in a call
// with ("b", "c.html"), "/a/b/c/d.html" with ("b/c", "d.html") and so on.
func (g *Generator) SetIncludeFunc(f func(path, fileName string) bool) *Generator {
	g.includeFunc = f
	return g
}

// SetLogger sets the logger progress is reported to.
func (g *Generator) SetLogger(l *zap.Logger) *Generator {
	g.logger = l
	return g
}

// DefaultRouteFunc returns hash-bang routes.  "index.html" at the top is the
// home page and gets both "" and "!/", "index.html" in a sub-directory gets the
// directory route, anything else "!/<dir>/<name>" with the extension removed.
func DefaultRouteFunc(relDir, fileName string) []string {
	base := strings.TrimSuffix(fileName, path.Ext(fileName))
	if base == "index" {
		if relDir == "" {
			return []string{"", "!/"}
		}
		return []string{"!/" + relDir}
	}
	return []string{"!/" + path.Join(relDir, base)}
}

// DefaultIncludeFunc will return true for any file which ends with .html or .md.
func DefaultIncludeFunc(path, fileName string) bool {
	return strings.HasSuffix(fileName, ".html") || strings.HasSuffix(fileName, ".md")
}

// Generate does the page generation.
func (g *Generator) Generate() error {

	if g.logger == nil {
		g.logger = zap.NewNop()
	}

	// to keep our sanity we need to guarantee that g.dir is absolute
	dir, err := filepath.Abs(g.dir)
	if err != nil {
		return err
	}
	g.dir = dir

	if g.packageName == "" {
		g.packageName = defaultPackageName(filepath.Base(dir))
	}

	df, err := g.readDirf(g.dir)
	if err != nil {
		return err
	}

	var pages []page
	if err := g.collect(df, &pages); err != nil {
		return err
	}

	return g.writePages(pages)
}

// defaultPackageName turns a directory name into a usable package name.
func defaultPackageName(base string) string {
	var sb strings.Builder
	for _, c := range strings.ToLower(base) {
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			sb.WriteRune(c)
		}
	}
	ret := sb.String()
	if ret == "" || (ret[0] >= '0' && ret[0] <= '9') {
		ret = "pages" + ret
	}
	return ret
}

func (g *Generator) readDirf(dirPath string) (*dirf, error) {

	includeFunc := g.includeFunc
	if includeFunc == nil {
		includeFunc = DefaultIncludeFunc
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(g.dir, dirPath)
	if err != nil {
		return nil, fmt.Errorf("relative path conversion failed: %w", err)
	}
	rel = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/")

	ret := &dirf{
		path: rel,
	}

	for _, fi := range entries {

		if fi.IsDir() {
			if !g.recursive {
				continue
			}
			subdirf, err := g.readDirf(filepath.Join(dirPath, fi.Name()))
			if err != nil {
				return nil, err
			}
			if ret.subdirs == nil {
				ret.subdirs = make(map[string]*dirf)
			}
			ret.subdirs[fi.Name()] = subdirf
			continue
		}

		if includeFunc(rel, fi.Name()) {
			ret.fileNames = append(ret.fileNames, fi.Name())
		}
	}

	return ret, nil

}

type dirf struct {
	path      string           // path relative to g.dir
	fileNames []string         // list of included files
	subdirs   map[string]*dirf // children
}

// page is one entry of the generated list.
type page struct {
	Name   string
	Title  string
	URI    string
	Routes []string
	Format string
	Source string
	Force  bool
}

// frontMatter is the optional YAML header of a page file.
type frontMatter struct {
	Title string      `yaml:"title"`
	Name  string      `yaml:"name"`
	URI   string      `yaml:"uri"`
	Route stringOrSeq `yaml:"route"`
	Force bool        `yaml:"force"`
}

// stringOrSeq accepts either a single string or a list of strings.
type stringOrSeq []string

func (s *stringOrSeq) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*s = stringOrSeq{n.Value}
		return nil
	}
	var l []string
	if err := n.Decode(&l); err != nil {
		return err
	}
	*s = l
	return nil
}

// splitFrontMatter returns the YAML header (without the delimiters) and the rest.
func splitFrontMatter(b []byte) (header, body []byte) {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf")) // BOM
	if !bytes.HasPrefix(b, []byte("---\n")) && !bytes.HasPrefix(b, []byte("---\r\n")) {
		return nil, b
	}
	start := bytes.IndexByte(b, '\n') + 1
	rest := b[start:]
	for off := 0; off < len(rest); {
		end := bytes.IndexByte(rest[off:], '\n')
		var line []byte
		if end < 0 {
			line = rest[off:]
			end = len(rest) - off
		} else {
			line = rest[off : off+end]
			end++
		}
		if string(bytes.TrimRight(line, "\r")) == "---" {
			return rest[:off], rest[off+end:]
		}
		off += end
	}
	// no closing delimiter, treat it all as body
	return nil, b
}

func (g *Generator) readPage(df *dirf, fileName string) (page, error) {

	full := filepath.Join(g.dir, filepath.FromSlash(df.path), fileName)
	b, err := os.ReadFile(full)
	if err != nil {
		return page{}, err
	}

	header, body := splitFrontMatter(b)
	var fm frontMatter
	if len(header) > 0 {
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return page{}, fmt.Errorf("front matter of %q: %w", full, err)
		}
	}

	base := strings.TrimSuffix(fileName, path.Ext(fileName))
	p := page{
		Name:   fm.Name,
		Title:  fm.Title,
		URI:    fm.URI,
		Routes: fm.Route,
		Format: "html",
		Source: string(body),
		Force:  fm.Force,
	}
	if path.Ext(fileName) == ".md" {
		p.Format = "markdown"
	}
	if p.Name == "" {
		p.Name = path.Join(df.path, base)
	}
	if len(p.Routes) == 0 {
		routeFunc := g.routeFunc
		if routeFunc == nil {
			routeFunc = DefaultRouteFunc
		}
		p.Routes = routeFunc(df.path, fileName)
		if p.URI == "" && df.path == "" && base == "index" {
			p.URI = "/"
		}
	}

	return p, nil
}

// collect reads the pages of df and (recursively) its subdirs, files before
// subdirectories, both in name order.
func (g *Generator) collect(df *dirf, out *[]page) error {

	names := append([]string(nil), df.fileNames...)
	sort.Strings(names)
	for _, fn := range names {
		p, err := g.readPage(df, fn)
		if err != nil {
			return err
		}
		g.logger.Info("page", zap.String("file", path.Join(df.path, fn)), zap.String("name", p.Name), zap.Strings("routes", p.Routes))
		*out = append(*out, p)
	}

	subs := make([]string, 0, len(df.subdirs))
	for k := range df.subdirs {
		subs = append(subs, k)
	}
	sort.Strings(subs)
	for _, k := range subs {
		if err := g.collect(df.subdirs[k], out); err != nil {
			return fmt.Errorf("error in collect for %q: %w", df.subdirs[k].path, err)
		}
	}

	return nil
}

var outputTemplate = template.Must(template.New(OutputFileName).Funcs(template.FuncMap{
	"Quote": strconv.Quote,
	"Format": func(s string) string {
		if s == "markdown" {
			return "vgspa.FormatMarkdown"
		}
		return "vgspa.FormatHTML"
	},
}).Parse(`package {{.PackageName}}

// WARNING: This file was generated by vgspa/rgen. Do not modify.

import "github.com/vugu/vgspa"

// MakePages returns the pages generated from this directory.
func MakePages() vgspa.PageSources {
	return vgspa.PageSources{
{{range .Pages}}		{
			Name:   {{Quote .Name}},
			Title:  {{Quote .Title}},
{{if .URI}}			URI:    {{Quote .URI}},
{{end}}			Routes: []string{ {{range $i, $r := .Routes}}{{if $i}}, {{end}}{{Quote $r}}{{end}} },
			Format: {{Format .Format}},
			Source: {{Quote .Source}},
{{if .Force}}			Force:  true,
{{end}}		},
{{end}}	}
}
`))

func (g *Generator) writePages(pages []page) error {

	var buf bytes.Buffer
	err := outputTemplate.Execute(&buf, map[string]interface{}{
		"PackageName": g.packageName,
		"Pages":       pages,
	})
	if err != nil {
		return err
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("error formatting generated code: %w; full output:\n%s", err, buf.Bytes())
	}

	outPath := filepath.Join(g.dir, OutputFileName)

	if err := os.WriteFile(outPath, src, 0644); err != nil {
		return err
	}

	g.logger.Info("wrote pages", zap.String("file", outPath), zap.Int("count", len(pages)))

	return nil
}
