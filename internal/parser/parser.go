// Package parser loads parsed submission documents from their JSON
// interchange format.
package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

// Load reads one parsed submission document.
func Load(r io.Reader) (*domain.Document, error) {
	var doc domain.Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode document: %v", domain.ErrInvalidInput, err)
	}
	if err := validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadFile reads one parsed submission document from disk. A missing
// tech id is derived from the file name stem, matching how submission
// exports are usually named.
func LoadFile(path string) (*domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var doc domain.Document
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidInput, path, err)
	}

	base := filepath.Base(path)
	if doc.TechID == "" {
		doc.TechID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if doc.FileName == "" {
		doc.FileName = base
	}

	if err := validate(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &doc, nil
}

// validate enforces the minimal document contract: an identifier and at
// least one page.
func validate(doc *domain.Document) error {
	if doc.TechID == "" {
		return fmt.Errorf("%w: document without tech_id", domain.ErrInvalidInput)
	}
	if len(doc.Pages) == 0 {
		return fmt.Errorf("%w: document %s has no pages", domain.ErrInvalidInput, doc.TechID)
	}
	for i, p := range doc.Pages {
		if p.Number <= 0 {
			return fmt.Errorf("%w: page %d of %s has invalid page_number %d",
				domain.ErrInvalidInput, i, doc.TechID, p.Number)
		}
	}
	return nil
}
