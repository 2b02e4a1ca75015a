// Package frontend serves the embedded single-page dashboard.
package frontend

import (
	"embed"
	"io/fs"
)

//go:embed dist
var distFS embed.FS

// DistFS returns the embedded dashboard files rooted at dist/
func DistFS() (fs.FS, error) {
	return fs.Sub(distFS, "dist")
}
