// Package ui provides the embedded page template for the web front end.
package ui

import (
	_ "embed"
)

// IndexTemplate is the html/template source for the search page.
// It renders every session mode: idle, loading, error and ready.
//
//go:embed index.html
var IndexTemplate string
