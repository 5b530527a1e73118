package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_Do_POST_JSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/login" {
			t.Errorf("expected /v1/login, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"user": body["username"]})
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL + "/v1/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/login",
		Body:   map[string]string{"username": "yigitcan"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}

	var out map[string]string
	if err := resp.DecodeJSON(&out); err != nil || out["user"] != "yigitcan" {
		t.Errorf("unexpected body %s (%v)", resp.Body, err)
	}
	if resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("expected flattened content type, got %v", resp.Headers)
	}
}

func TestClient_Do_ErrorStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"COR-4"}`))
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/users/1"})
	if err != nil {
		t.Fatalf("expected response, got error %v", err)
	}
	if resp.StatusCode != http.StatusNotFound || resp.IsSuccess() {
		t.Errorf("expected 404 response, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"code":"COR-4"}` {
		t.Errorf("expected raw body, got %s", resp.Body)
	}
}

func TestClient_Do_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	_, _ = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if calls.Load() != 1 {
		t.Errorf("expected exactly one attempt, got %d", calls.Load())
	}
}

func TestClient_Do_HeadersAndAuth(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c, _ := New(Config{
		BaseURL: srv.URL,
		Headers: map[string]string{"Accept": "application/json", "X-Env": "test"},
		Auth:    APIKeyAuth("default-key"),
	})

	_, err := c.Do(context.Background(), Request{
		Method:  http.MethodGet,
		Path:    "/",
		Headers: map[string]string{"X-Env": "override"},
		Query:   map[string]string{"page": "2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Get("Accept") != "application/json" || got.Get("X-Env") != "override" {
		t.Errorf("unexpected headers %v", got)
	}
	if got.Get(APIKeyHeader) != "default-key" {
		t.Errorf("expected client-level key, got %q", got.Get(APIKeyHeader))
	}
	if got.Get("Content-Type") != "" {
		t.Error("expected no content type without a body")
	}

	_, _ = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/", Auth: AuthorizationHeader("Bearer abc")})
	if got.Get("Authorization") != "Bearer abc" {
		t.Errorf("expected forwarded authorization, got %q", got.Get("Authorization"))
	}
	if got.Get(APIKeyHeader) != "" {
		t.Error("expected request auth to replace client auth")
	}
}

func TestAuthConfig_Apply(t *testing.T) {
	tests := []struct {
		name   string
		auth   *AuthConfig
		header string
		want   string
	}{
		{"api key", APIKeyAuth("k1"), "Api-Key", "k1"},
		{"custom header", APIKeyAuthHeader("k2", "X-Key"), "X-Key", "k2"},
		{"bearer", BearerAuth("tok"), "Authorization", "Bearer tok"},
		{"verbatim", AuthorizationHeader("Basic xyz"), "Authorization", "Basic xyz"},
		{"empty value skipped", APIKeyAuth(""), "Api-Key", ""},
		{"nil", nil, "Authorization", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
			tc.auth.apply(req)
			if got := req.Header.Get(tc.header); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestClient_Do_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsTimeout(err) {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := New(Config{BaseURL: srv.URL})
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/"})
	if !IsTimeout(err) {
		t.Errorf("expected canceled call to be classified as timeout, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestClient_Do_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, _ := New(Config{BaseURL: url})
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsConnection(err) {
		t.Errorf("expected connection error, got %v", err)
	}
}

func TestClient_Do_EncodeError(t *testing.T) {
	c, _ := New(Config{BaseURL: "http://localhost"})
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/", Body: make(chan int)})

	var e *Error
	if !errors.As(err, &e) || e.Code != ErrCodeRequest {
		t.Errorf("expected request error, got %v", err)
	}
	if !strings.Contains(err.Error(), "encode body") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestClient_Do_RawBodyAndAbsoluteURL(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: "http://unused.invalid"})
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPut,
		Path:   srv.URL + "/raw",
		Body:   json.RawMessage(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != `{"a":1}` {
		t.Errorf("expected raw body, got %q", body)
	}
}

func TestConfig_Defaults(t *testing.T) {
	c, err := New(Config{Tracing: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Config().Timeout != 30*time.Second {
		t.Errorf("expected 30s default, got %v", c.Config().Timeout)
	}
	if ErrorCode(42).String() != "unknown" {
		t.Error("expected unknown for undefined code")
	}
}
