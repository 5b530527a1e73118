package endpoint

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/opkit/component"
	opkiterrors "github.com/kbukum/opkit/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := gin.New()
	r.GET("/", h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON body, got %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	rec, body := get(t, Health("auth-service", "1.4.0"))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if body["status"] != "Ok" || body["name"] != "auth-service" || body["version"] != "1.4.0" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		health     []component.Health
		wantStatus int
		want       string
	}{
		{"all healthy", []component.Health{component.Healthy("redis")}, http.StatusOK, "ready"},
		{"no components", nil, http.StatusOK, "ready"},
		{"one unhealthy", []component.Health{component.Healthy("http-server"), component.Unhealthy("redis", "ping failed")}, http.StatusServiceUnavailable, "not_ready"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			checker := func(context.Context) []component.Health { return tc.health }
			rec, body := get(t, Readiness(checker))
			if rec.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
			if body["status"] != tc.want {
				t.Errorf("expected %q, got %v", tc.want, body["status"])
			}
		})
	}
}

const description = `
openapi: 3.0.0
servers:
  - url: /api/v1
paths:
  /users/login:
    post:
      operationId: Login
components:
  schemas:
    User:
      type: object
`

func TestDocs(t *testing.T) {
	catalog := map[string]opkiterrors.Entry{
		"COR-4": {Type: "NotFoundError", Message: "User {{username}} not found.", HTTPStatusCode: 404},
	}
	docs, err := NewDocs([]byte(description), catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, body := get(t, docs.Handler())
	components := body["components"].(map[string]any)
	schemas := components["schemas"].(map[string]any)
	if _, ok := schemas["User"]; !ok {
		t.Error("expected existing schemas to be kept")
	}
	errs := schemas["Errors"].(map[string]any)["properties"].(map[string]any)
	cor4 := errs["COR-4"].(map[string]any)
	if cor4["message"] != "User {{username}} not found." || cor4["httpStatusCode"] != float64(404) {
		t.Errorf("unexpected catalog entry %v", cor4)
	}

	schemes := components["securitySchemes"].(map[string]any)
	apiKey := schemes["apiKey"].(map[string]any)
	if apiKey["name"] != "Api-Key" || apiKey["in"] != "header" {
		t.Errorf("unexpected apiKey scheme %v", apiKey)
	}
	if schemes["bearerAuth"].(map[string]any)["scheme"] != "bearer" {
		t.Errorf("unexpected bearerAuth scheme %v", schemes["bearerAuth"])
	}

	_, raw := get(t, docs.Raw())
	if _, ok := raw["components"].(map[string]any)["securitySchemes"]; ok {
		t.Error("expected raw description to be left unenriched")
	}
}

func TestDocs_WithoutComponents(t *testing.T) {
	docs, err := NewDocs([]byte(`{"openapi":"3.0.0","components":"bogus"}`), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(docs.Document(), &doc); err != nil {
		t.Fatalf("invalid document: %v", err)
	}
	if _, ok := doc["components"].(map[string]any)["schemas"].(map[string]any)["Errors"]; !ok {
		t.Error("expected Errors schema to be created")
	}
}

func TestDocs_Invalid(t *testing.T) {
	for _, raw := range []string{"- a\n- b\n", "key: [unclosed", "null"} {
		if _, err := NewDocs([]byte(raw), nil); !errors.Is(err, ErrInvalidDocs) {
			t.Errorf("%q: expected ErrInvalidDocs, got %v", raw, err)
		}
	}
	if _, err := LoadDocs("/nonexistent/openapi.yaml", nil); err == nil {
		t.Error("expected error for missing file")
	}
}
