// pkg/catalogfile/catalogfile.go
package catalogfile

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a catalog file from disk.
func Load(path string) (*CatalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file CatalogFile
	err = json.Unmarshal(data, &file)
	return &file, err
}

// ProfileID extracts the lender id from a raw profile document.
func ProfileID(doc json.RawMessage) (string, error) {
	var envelope struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(doc, &envelope); err != nil {
		return "", fmt.Errorf("unreadable profile document: %w", err)
	}
	if envelope.ID == "" {
		return "", fmt.Errorf("profile document has no id")
	}
	return envelope.ID, nil
}
