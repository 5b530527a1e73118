package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"sigs.k8s.io/yaml"

	opkiterrors "github.com/kbukum/opkit/errors"
	"github.com/kbukum/opkit/httpclient"
)

// Docs endpoint paths.
const (
	DocsPath    = "/api-docs"
	RawDocsPath = "/api/swagger"
)

// ErrInvalidDocs is returned for an API description that is not an object.
var ErrInvalidDocs = errors.New("invalid api description")

// Docs serves a service's API description. The enriched form lists the error
// catalog under components.schemas.Errors and declares the apiKey and
// bearerAuth security schemes.
type Docs struct {
	raw      []byte
	enriched []byte
}

// LoadDocs reads the API description at path. See NewDocs.
func LoadDocs(path string, catalog map[string]opkiterrors.Entry) (*Docs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read api description: %w", err)
	}
	return NewDocs(raw, catalog)
}

// NewDocs builds the docs from a JSON or YAML description and the error
// entries to publish.
func NewDocs(raw []byte, catalog map[string]opkiterrors.Entry) (*Docs, error) {
	rawJSON, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocs, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(rawJSON, &doc); err != nil || doc == nil {
		return nil, fmt.Errorf("%w: expected an object", ErrInvalidDocs)
	}

	components := childObject(doc, "components")
	schemas := childObject(components, "schemas")
	schemas["Errors"] = map[string]any{"properties": catalog}
	components["securitySchemes"] = map[string]any{
		"apiKey": map[string]any{
			"type":        "apiKey",
			"in":          "header",
			"name":        httpclient.APIKeyHeader,
			"description": "Api Key for API Access",
		},
		"bearerAuth": map[string]any{
			"type":         "http",
			"scheme":       "bearer",
			"bearerFormat": "bearer",
			"description":  "User Authentication",
		},
	}

	enriched, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode api description: %w", err)
	}
	return &Docs{raw: rawJSON, enriched: enriched}, nil
}

// Document returns the enriched description as JSON.
func (d *Docs) Document() []byte { return d.enriched }

// Handler serves the enriched description.
func (d *Docs) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", d.enriched)
	}
}

// Raw serves the description as it was loaded.
func (d *Docs) Raw() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", d.raw)
	}
}

// childObject returns m[key] as an object, replacing any non-object value.
func childObject(m map[string]any, key string) map[string]any {
	if child, ok := m[key].(map[string]any); ok {
		return child
	}
	child := map[string]any{}
	m[key] = child
	return child
}
