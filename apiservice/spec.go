package apiservice

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"
)

// Operation is a single entry of a service's operation index.
type Operation struct {
	ID     string
	Path   string
	Method string
}

// OperationIndex maps operationId to its path and method for one service.
type OperationIndex struct {
	BaseURL    string
	Operations map[string]Operation
}

// Lookup returns the operation registered under id.
func (idx *OperationIndex) Lookup(id string) (Operation, bool) {
	op, ok := idx.Operations[id]
	return op, ok
}

// IDs returns the sorted operation ids.
func (idx *OperationIndex) IDs() []string {
	ids := make([]string, 0, len(idx.Operations))
	for id := range idx.Operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var pathItemMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"options": true, "head": true, "patch": true, "trace": true,
}

type document struct {
	Servers []struct {
		URL string `json:"url"`
	} `json:"servers"`
	Paths map[string]map[string]json.RawMessage `json:"paths"`
}

type operationObject struct {
	OperationID string `json:"operationId"`
}

// ParseSpec indexes an API description (JSON or YAML). Every operation path is
// prefixed with servers[0].url. Operations without an operationId are skipped.
func ParseSpec(baseURL string, raw []byte) (*OperationIndex, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if len(doc.Servers) == 0 || doc.Servers[0].URL == "" {
		return nil, fmt.Errorf("%w: servers[0].url is required", ErrInvalidSpec)
	}
	prefix := doc.Servers[0].URL

	idx := &OperationIndex{BaseURL: baseURL, Operations: make(map[string]Operation)}

	templates := make([]string, 0, len(doc.Paths))
	for tmpl := range doc.Paths {
		templates = append(templates, tmpl)
	}
	sort.Strings(templates)

	for _, tmpl := range templates {
		item := doc.Paths[tmpl]
		for key, value := range item {
			method := strings.ToLower(key)
			if !pathItemMethods[method] {
				continue
			}
			var op operationObject
			if err := json.Unmarshal(value, &op); err != nil {
				return nil, fmt.Errorf("%w: %s %s: %v", ErrInvalidSpec, key, tmpl, err)
			}
			if op.OperationID == "" {
				continue
			}
			if prev, dup := idx.Operations[op.OperationID]; dup {
				return nil, fmt.Errorf("%w: duplicate operationId %s (%s %s, %s %s)",
					ErrInvalidSpec, op.OperationID, prev.Method, prev.Path, strings.ToUpper(method), prefix+tmpl)
			}
			idx.Operations[op.OperationID] = Operation{
				ID:     op.OperationID,
				Path:   prefix + tmpl,
				Method: strings.ToUpper(method),
			}
		}
	}
	return idx, nil
}
