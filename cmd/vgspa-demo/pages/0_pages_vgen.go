package pages

// WARNING: This file was generated by vgspa/rgen. Do not modify.

import "github.com/vugu/vgspa"

// MakePages returns the pages generated from this directory.
func MakePages() vgspa.PageSources {
	return vgspa.PageSources{
		{
			Name:   "about",
			Title:  "About &ndash; vgspa demo",
			Routes: []string{"!/about"},
			Format: vgspa.FormatMarkdown,
			Source: "# About\n\nThis page is written in Markdown and rendered each time it is shown.\n\n[Home](#!/)\n",
			Force:  true,
		},
		{
			Name:   "first",
			Title:  "First page &ndash; vgspa demo",
			Routes: []string{"!/first"},
			Format: vgspa.FormatHTML,
			Source: "<h1>First page</h1>\n<p>Rendered once. Edit this text in the inspector, go back and come here again: the edit stays.</p>\n<a href=\"#!/\">Home</a>\n",
		},
		{
			Name:   "index",
			Title:  "Home &ndash; vgspa demo",
			URI:    "/",
			Routes: []string{"", "!/"},
			Format: vgspa.FormatHTML,
			Source: "<h1>Home</h1>\n<p class=\"page-name\">{{.name}}</p>\n<ul>\n\t<li><a href=\"#!/first\">First page</a></li>\n\t<li><a href=\"#!/parameter/100\">Page with parameter</a></li>\n\t<li><a href=\"#!/about\">About</a></li>\n</ul>\n",
		},
		{
			Name:   "parameter",
			Title:  "Page with parameter &ndash; vgspa demo",
			Routes: []string{"!/parameter/:parameter"},
			Format: vgspa.FormatHTML,
			Source: "<h1>Parameter</h1>\n<p class=\"page-parameter\">{{.parameter}}</p>\n<a href=\"#!/\">Home</a>\n",
		},
	}
}
