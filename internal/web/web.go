// Package web holds the embedded single-page UI.
package web

import _ "embed"

//go:embed index.html
var indexHTML []byte

// IndexHTML returns the UI page
func IndexHTML() []byte {
	return indexHTML
}
