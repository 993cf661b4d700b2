// Package assets embeds the word catalog shipped with the server.
package assets

import (
	"embed"
	"io"
)

//go:embed catalog.json
var FS embed.FS

// CatalogName is the embedded catalog file.
const CatalogName = "catalog.json"

// Catalog opens the embedded catalog. Callers close it.
func Catalog() (io.ReadCloser, error) {
	return FS.Open(CatalogName)
}
