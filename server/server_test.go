package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/opkit/apikey"
	"github.com/kbukum/opkit/component"
	opkiterrors "github.com/kbukum/opkit/errors"
	"github.com/kbukum/opkit/logger"
	"github.com/kbukum/opkit/server/middleware"
)

func newTestServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	if mutate != nil {
		mutate(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid config: %v", err)
	}
	s := New(cfg, logger.Nop())
	gin.SetMode(gin.TestMode)
	s.ApplyMiddleware(Stack{
		ServiceName: "auth-service",
		APIKeys:     apikey.NewMemoryStore("good-key"),
	})
	s.RegisterDefaultEndpoints("auth-service", "1.0.0", nil)
	return s
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Port != 8080 || cfg.ReadTimeout != 15*time.Second || cfg.IdleTimeout != time.Minute {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.MaxBodySize != "10MB" {
		t.Errorf("expected 10MB body limit, got %q", cfg.MaxBodySize)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("expected wildcard origin, got %v", cfg.CORS.AllowedOrigins)
	}
	if len(cfg.AllowedMethods) != len(middleware.DefaultAllowedMethods) {
		t.Errorf("expected default methods, got %v", cfg.AllowedMethods)
	}
	if cfg.Redaction.Mask != middleware.DefaultMask || len(cfg.Redaction.Fields) != 3 {
		t.Errorf("expected default redaction, got %+v", cfg.Redaction)
	}
	if !cfg.APIKey.IsPublic("/health") {
		t.Error("expected health to be public by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero", Config{}, false},
		{"bad port", Config{Port: 70000}, true},
		{"negative timeout", Config{ReadTimeout: -time.Second}, true},
		{"relative public path", Config{APIKey: middleware.APIKeyConfig{Enabled: true, PublicPaths: []string{"health"}}}, true},
		{"relative path ignored when disabled", Config{APIKey: middleware.APIKeyConfig{PublicPaths: []string{"health"}}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestMiddlewareStack(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.APIKey.Enabled = true })
	s.Engine().POST("/users", func(c *gin.Context) {
		middleware.Fail(c, opkiterrors.NewValidationError(map[string]opkiterrors.FieldViolation{
			"email": {Message: "is required"},
		}))
	})

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"email":"","name":"ada"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", "good-key")
	rec := do(s, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["code"] != "COM-3" || body["serviceName"] != "auth-service" {
		t.Errorf("unexpected body %v", body)
	}
	if rec.Header().Get("X-Frame-Options") != "SAMEORIGIN" {
		t.Error("expected security headers on error responses")
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected request id header")
	}

	req = httptest.NewRequest(http.MethodPost, "/users", nil)
	if rec := do(s, req); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected missing key to be rejected, got %d", rec.Code)
	}
}

type signUpRequest struct {
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age"`
}

func TestBindJSONReachesNormalizer(t *testing.T) {
	s := newTestServer(t, nil)
	s.Engine().POST("/signup", func(c *gin.Context) {
		var req signUpRequest
		if err := middleware.BindJSON(c, &req); err != nil {
			middleware.Fail(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"valid", `{"email":"ada@example.com","age":36}`, http.StatusCreated, ""},
		{"rule violation", `{"email":"nope"}`, http.StatusBadRequest, "COM-3"},
		{"type mismatch", `{"email":"ada@example.com","age":"old"}`, http.StatusBadRequest, "COM-5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := do(s, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.code == "" {
				return
			}
			var body map[string]any
			_ = json.Unmarshal(rec.Body.Bytes(), &body)
			if body["code"] != tc.code {
				t.Errorf("expected %s, got %v", tc.code, body["code"])
			}
			if tc.code == "COM-3" {
				fields, _ := body["fields"].(map[string]any)
				if _, ok := fields["email"]; !ok {
					t.Errorf("expected email field violation, got %v", body["fields"])
				}
			}
		})
	}
}

func TestHealthAndNotFound(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.APIKey.Enabled = true })

	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"Ok"`) {
		t.Errorf("expected public health endpoint, got %d %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	req.Header.Set("Api-Key", "good-key")
	rec = do(s, req)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"code":"404"`) {
		t.Errorf("expected structured 404, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestReadyEndpoint(t *testing.T) {
	s := New(Config{}, logger.Nop())
	s.RegisterDefaultEndpoints("auth-service", "1.0.0", func(context.Context) []component.Health {
		return []component.Health{component.Unhealthy("redis", "down")}
	})
	if rec := do(s, httptest.NewRequest(http.MethodGet, "/ready", nil)); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestStartStop(t *testing.T) {
	s := newTestServer(t, func(c *Config) { c.Port = 0 })
	sc := NewComponent(s)

	if sc.Health(context.Background()).Status != component.StatusUnhealthy {
		t.Error("expected unhealthy before start")
	}
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if sc.Health(context.Background()).Status != component.StatusHealthy {
		t.Error("expected healthy after start")
	}

	resp, err := http.Get("http://" + s.Addr() + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(sc.Describe().Details, s.Addr()) {
		t.Errorf("expected address in description, got %q", sc.Describe().Details)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := sc.Stop(ctx); err != nil {
		t.Errorf("stop failed: %v", err)
	}
}

func TestStart_BindError(t *testing.T) {
	first := newTestServer(t, func(c *Config) { c.Port = 0 })
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer first.Stop(context.Background())

	_, port, _ := strings.Cut(first.Addr(), ":")
	second := New(Config{Host: "127.0.0.1"}, logger.Nop())
	second.httpServer.Addr = "127.0.0.1:" + port
	if err := second.Start(context.Background()); err == nil {
		t.Error("expected bind error for a used port")
	}
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	s.Engine().GET("/users/:id", func(c *gin.Context) {})
	s.Engine().POST("/users/login", func(c *gin.Context) {})
	s.Engine().DELETE("/users/:id", func(c *gin.Context) {})

	routes := s.Routes()
	if len(routes) != 4 {
		t.Fatalf("expected 4 routes, got %+v", routes)
	}
	want := []string{"GET /users/:id", "DELETE /users/:id", "POST /users/login", "GET /health"}
	for i, r := range routes {
		if got := r.Method + " " + r.Path; got != want[i] {
			t.Errorf("route %d: expected %q, got %q", i, want[i], got)
		}
	}
	if !routes[3].System || routes[0].System {
		t.Error("expected only /health to be a system route")
	}
}

func TestHandlerName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"github.com/org/svc/internal/api.(*UserPort).List-fm", "UserPort.List"},
		{"github.com/kbukum/opkit/server/endpoint.Health.func1", "Health"},
		{"main.main.func2", "main"},
		{"plain", "plain"},
	}
	for _, tc := range tests {
		if got := handlerName(tc.in); got != tc.want {
			t.Errorf("handlerName(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
