// Package schemas holds the JSON Schemas for ingestion payloads and match output.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory
//
//go:embed *.schema.json
var FS embed.FS
