// Package assets holds content compiled into the binary.
package assets

import _ "embed"

//go:embed index.json
var indexJSON []byte

// Seed provides the index.json written into directories created at startup.
type Seed struct{}

// IndexJSON returns a fresh copy of the embedded default index document.
func (Seed) IndexJSON() []byte {
	return append([]byte(nil), indexJSON...)
}
