// Package schemas holds the JSON Schemas for documents accepted from files.
package schemas

import "embed"

// FS contains every *.schema.json in this directory.
//
//go:embed *.schema.json
var FS embed.FS
