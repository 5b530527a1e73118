package errors

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// catalogDocument is the on-disk catalog format:
//
//	errors:
//	  USR-1:
//	    type: UserError
//	    message: "User {{username}} not found."
//	    httpStatusCode: 404
type catalogDocument struct {
	Errors map[string]Entry `json:"errors"`
}

// ParseCatalog decodes a YAML or JSON catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse error catalog: %w", err)
	}
	if doc.Errors == nil {
		return nil, fmt.Errorf("parse error catalog: missing errors mapping")
	}
	for code, e := range doc.Errors {
		if e.Message == "" {
			return nil, fmt.Errorf("parse error catalog: %s has no message", code)
		}
	}
	return NewCatalog(doc.Errors), nil
}

// LoadCatalog reads and parses a catalog document from path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read error catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// LoadResolver reads a service catalog from path and layers it over the base catalog.
func LoadResolver(path string) (*Resolver, error) {
	c, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return NewResolver(c, nil), nil
}
