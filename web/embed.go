// Package web provides the embedded static assets (CSS, JS) served at
// /static/. HTMX and the icon set load from unpkg, which the content
// security policy allows alongside 'self'.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS
