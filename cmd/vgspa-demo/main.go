//go:build js && wasm

// Command vgspa-demo is a small single page application running in the browser.
// Build it with GOOS=js GOARCH=wasm and serve it next to wasm_exec.js and an
// index.html that has a <main id="app"> element.
package main

//go:generate go run github.com/vugu/vgspa/cmd/vgspagen ./pages

import (
	"log"

	"go.uber.org/zap"

	"github.com/vugu/vgspa"
	"github.com/vugu/vgspa/cmd/vgspa-demo/pages"
)

func main() {

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}

	ps := pages.MakePages()
	ts, err := ps.Templates()
	if err != nil {
		logger.Fatal("parsing page templates", zap.Error(err))
	}

	app, err := vgspa.NewBrowserContainer("#app")
	if err != nil {
		logger.Fatal("no app container", zap.Error(err))
	}

	r := vgspa.New(vgspa.Options{
		Container: app,
		Template:  ts,
		NoStart:   true,
		Logger:    logger,
	})

	if err := ps.Register(r); err != nil {
		logger.Fatal("adding routes", zap.Error(err))
	}
	r.SetNotFound(vgspa.RouteHandlerFunc(func(rm *vgspa.RouteMatch) {
		logger.Warn("no page here", zap.String("path", rm.Path))
	}))

	if err := r.Start(); err != nil {
		logger.Fatal("starting router", zap.Error(err))
	}

	select {}
}
