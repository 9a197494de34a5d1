// Package web embeds the HTML templates, static assets and Markdown copy
// served by the dashboard.
//
// Usage in the API server:
//
//	import "github.com/seenimoa/investdash/web"
//	static := web.StaticFS() // io/fs.FS rooted at static/
package web

import (
	"embed"
	"io/fs"
	"log"
)

//go:embed templates static content
var assets embed.FS

// FS returns the embedded tree with templates/, static/ and content/ at its root.
func FS() fs.FS {
	return assets
}

// StaticFS returns a filesystem rooted at the embedded static/ directory.
// This is ready to use with http.FileServerFS or http.FS.
func StaticFS() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		log.Fatalf("web.StaticFS: %v", err)
	}
	return sub
}
