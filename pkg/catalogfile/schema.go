// pkg/catalogfile/schema.go
package catalogfile

import "encoding/json"

// CatalogFile is the on-disk format the catalog loader consumes. Profiles
// are kept as raw documents so they can be validated and stored verbatim.
type CatalogFile struct {
	Version     string            `json:"version"`
	LastUpdated string            `json:"lastUpdated"`
	Source      string            `json:"source"`
	Profiles    []json.RawMessage `json:"profiles"`
}
