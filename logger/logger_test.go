package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cfg := &Config{Level: level, Format: FormatJSON}
	return NewWithWriter(cfg, "auth-service", buf), buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got nothing")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", line, err)
	}
	return m
}

func TestNewWithWriter_JSON(t *testing.T) {
	l, buf := newBufferLogger(t, "debug")
	l.Info("started", Fields("port", 8080))

	m := decodeLine(t, buf)
	if m["message"] != "started" {
		t.Errorf("expected message 'started', got %v", m["message"])
	}
	if m[FieldService] != "auth-service" {
		t.Errorf("expected service field, got %v", m[FieldService])
	}
	if m["port"] != float64(8080) {
		t.Errorf("expected port 8080, got %v", m["port"])
	}
	if m["level"] != "info" {
		t.Errorf("expected level info, got %v", m["level"])
	}
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")
	l.Info("hidden")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected warn message to be written")
	}
}

func TestNewWithWriter_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, buf := newBufferLogger(t, "verbose")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected info level, got %q", buf.String())
	}
}

func TestConsoleFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewWithWriter(&Config{Level: "info", Format: FormatConsole, NoColor: true}, "auth-service", buf)
	l.Error("boom")

	out := buf.String()
	if !strings.Contains(out, "[AUT][ERR]") {
		t.Errorf("expected service and level tag, got %q", out)
	}
	if strings.Contains(out, "service:") {
		t.Errorf("expected service field to be excluded, got %q", out)
	}
}

func TestWithComponentAndFields(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.WithComponent("apiservice").WithFields(map[string]any{"operation": "auth.Login"}).Info("call")

	m := decodeLine(t, buf)
	if m[FieldComponent] != "apiservice" {
		t.Errorf("expected component field, got %v", m[FieldComponent])
	}
	if m[FieldOperation] != "auth.Login" {
		t.Errorf("expected operation field, got %v", m[FieldOperation])
	}
}

func TestWithError(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.WithError(errors.New("connection refused")).Error("failed")

	m := decodeLine(t, buf)
	if m[FieldError] != "connection refused" {
		t.Errorf("expected error field, got %v", m[FieldError])
	}
}

func TestWithContext(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = ContextWithRequestID(ctx, "req-1")
	l.WithContext(ctx).Info("handled")

	m := decodeLine(t, buf)
	if m[FieldRequestID] != "req-1" {
		t.Errorf("expected request id, got %v", m[FieldRequestID])
	}
	if m[FieldTraceID] != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("expected trace id, got %v", m[FieldTraceID])
	}
	if m[FieldSpanID] != "00f067aa0ba902b7" {
		t.Errorf("expected span id, got %v", m[FieldSpanID])
	}
}

func TestWithContext_Empty(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.WithContext(context.Background()).Info("handled")

	m := decodeLine(t, buf)
	if _, ok := m[FieldRequestID]; ok {
		t.Error("expected no request id")
	}
	if _, ok := m[FieldTraceID]; ok {
		t.Error("expected no trace id")
	}
}

func TestIntoAndFromContext(t *testing.T) {
	l, _ := newBufferLogger(t, "info")
	ctx := IntoContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("expected the context logger")
	}
	if FromContext(context.Background()) != GetGlobalLogger() {
		t.Error("expected the global logger as fallback")
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Error("expected empty request id")
	}
}

func TestGlobalLogger(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	l, buf := newBufferLogger(t, "info")
	SetGlobalLogger(l)
	Warn("global warning")

	if !strings.Contains(buf.String(), "global warning") {
		t.Error("expected package-level function to use the global logger")
	}
}

func TestInit(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	Init(Config{Level: "debug", Format: FormatJSON}, "billing")
	if GetGlobalLogger().Service() != "billing" {
		t.Errorf("expected global service 'billing', got %q", GetGlobalLogger().Service())
	}
}

func TestNop(t *testing.T) {
	Nop().Error("discarded", Fields("k", "v"))
}

func TestRegistry(t *testing.T) {
	defer Reset()

	l, _ := newBufferLogger(t, "info")
	Register("dispatcher", l)
	if Get("dispatcher") != l {
		t.Error("expected registered logger")
	}
	if Get("unknown") == nil {
		t.Error("expected fallback logger for unregistered name")
	}
	Reset()
	if Get("dispatcher") == l {
		t.Error("expected registry to be cleared")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != FormatJSON || cfg.Output != "stdout" || !cfg.Timestamp {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"console", Config{Level: "debug", Format: "console", Output: "stderr"}, false},
		{"bad level", Config{Level: "loud", Format: "json", Output: "stdout"}, true},
		{"bad format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"bad output", Config{Level: "info", Format: "json", Output: "file"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(m) != 2 || m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields %v", m)
	}

	ef := ErrorFields("dispatch", errors.New("boom"))
	if ef[FieldOperation] != "dispatch" || ef[FieldError] != "boom" {
		t.Errorf("unexpected error fields %v", ef)
	}

	df := DurationFields("dispatch", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", df[FieldDuration])
	}
}
