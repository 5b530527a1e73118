package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	opkiterrors "github.com/kbukum/opkit/errors"
	"github.com/kbukum/opkit/logger"
)

func newNormalizer(production bool) *Normalizer {
	return NewNormalizer(NormalizerConfig{ServiceName: "auth-service", Production: production})
}

func TestNormalize_GenericError(t *testing.T) {
	n := newNormalizer(false)
	obj, status := n.Normalize(errors.New("connection reset"), RequestInfo{URL: "/api/v1/users?x=1"}, logger.Nop())

	if status != http.StatusInternalServerError || obj.HTTPStatusCode != 500 {
		t.Errorf("expected 500, got %d", status)
	}
	if obj.Code != "COM-0" {
		t.Errorf("expected COM-0, got %s", obj.Code)
	}
	if obj.Message != "connection reset" {
		t.Errorf("expected error message, got %q", obj.Message)
	}
	if obj.ServiceName != "auth-service" || obj.EndpointURL != "/api/v1/users?x=1" {
		t.Errorf("unexpected request fields %+v", obj)
	}
	if obj.HTTPStatus != "Internal Server Error" {
		t.Errorf("unexpected status text %q", obj.HTTPStatus)
	}
	info, ok := obj.OriginalError.(opkiterrors.OriginalErrorInfo)
	if !ok || info.Message != "connection reset" {
		t.Errorf("expected reduced original error, got %#v", obj.OriginalError)
	}
	if len(obj.Context) != 0 {
		t.Errorf("expected empty context, got %v", obj.Context)
	}
	if params, ok := obj.InputParams.(map[string]any); !ok || len(params) != 0 {
		t.Errorf("expected empty input params, got %v", obj.InputParams)
	}
}

func TestNormalize_OperationError(t *testing.T) {
	n := newNormalizer(false)
	oe := opkiterrors.DocumentNotFound(map[string]any{"id": "42"})

	obj, status := n.Normalize(oe, RequestInfo{URL: "/docs/42"}, logger.Nop())
	if status != http.StatusNotFound || obj.Code != "COM-2" {
		t.Errorf("expected COM-2/404, got %s/%d", obj.Code, status)
	}
	if obj.Message != "Requested document not found." || obj.Context["id"] != "42" {
		t.Errorf("unexpected object %+v", obj)
	}
	if obj.Stack != "" {
		t.Error("expected no stack below 500")
	}
	if orig, ok := obj.OriginalError.(map[string]any); !ok || len(orig) != 0 {
		t.Errorf("expected empty original error, got %#v", obj.OriginalError)
	}
}

func TestNormalize_InternalErrorStackAndProduction(t *testing.T) {
	cause := errors.New("db down")

	obj, _ := newNormalizer(false).Normalize(opkiterrors.Unhandled(cause), RequestInfo{}, logger.Nop())
	if obj.Stack == "" {
		t.Error("expected stack for 500")
	}
	if obj.OriginalError == nil {
		t.Error("expected original error")
	}

	prod, _ := newNormalizer(true).Normalize(opkiterrors.Unhandled(cause), RequestInfo{}, logger.Nop())
	if prod.Stack != "" || prod.OriginalError != nil {
		t.Errorf("expected production mode to drop stack and original, got %+v", prod)
	}

	generic, _ := newNormalizer(true).Normalize(cause, RequestInfo{}, logger.Nop())
	if generic.Message != "There was an unhandled operation error." {
		t.Errorf("expected generic message in production, got %q", generic.Message)
	}
}

func TestNormalize_ValidationOverride(t *testing.T) {
	n := newNormalizer(false)
	verr := opkiterrors.NewValidationError(map[string]opkiterrors.FieldViolation{
		"email": {Message: "must be a valid email address", Value: "nope"},
	})

	obj, status := n.Normalize(verr, RequestInfo{Body: map[string]any{"email": "nope"}}, logger.Nop())
	if status != http.StatusBadRequest || obj.Code != "COM-3" {
		t.Errorf("expected COM-3/400, got %s/%d", obj.Code, status)
	}
	if obj.Message != "Invalid operation parameters." || obj.Type != "InvalidParametersError" {
		t.Errorf("unexpected message/type %q/%q", obj.Message, obj.Type)
	}
	if orig, ok := obj.OriginalError.(map[string]any); !ok || len(orig) != 0 {
		t.Errorf("expected cleared original error, got %#v", obj.OriginalError)
	}
	if _, ok := obj.Fields["email"]; !ok {
		t.Errorf("expected fields to be kept, got %v", obj.Fields)
	}
	if obj.InputParams.(map[string]any)["email"] != DefaultMask {
		t.Errorf("expected email redacted, got %v", obj.InputParams)
	}
}

func TestNormalize_BodyParseOverride(t *testing.T) {
	n := newNormalizer(false)

	obj, status := n.Normalize(&opkiterrors.BodyParseError{Status: 413, Msg: "too large"}, RequestInfo{}, logger.Nop())
	if status != 413 || obj.Code != "COM-5" || obj.Message != "too large" {
		t.Errorf("expected own status and message, got %s/%d/%q", obj.Code, status, obj.Message)
	}

	obj, status = n.Normalize(&opkiterrors.BodyParseError{}, RequestInfo{}, logger.Nop())
	if status != http.StatusBadRequest || obj.Message != "Request body is not a valid JSON." {
		t.Errorf("expected catalog defaults, got %d/%q", status, obj.Message)
	}
	if obj.HTTPStatus != "Bad Request" {
		t.Errorf("expected status text to follow the override, got %q", obj.HTTPStatus)
	}
}

func TestNormalize_OverridesOnlyApplyToRequestFailures(t *testing.T) {
	service := opkiterrors.NewCatalog(map[string]opkiterrors.Entry{
		"USR-9": {Type: "InvalidUserError", Message: "User {{id}} is invalid.", HTTPStatusCode: 422},
	})
	resolver := opkiterrors.NewResolver(service, nil)
	n := NewNormalizer(NormalizerConfig{Resolver: resolver})

	verr := opkiterrors.NewValidationError(map[string]opkiterrors.FieldViolation{"id": {Message: "is required"}})
	tests := []struct {
		name     string
		original error
	}{
		{"validation original", verr},
		{"body parse original", opkiterrors.NewBodyParseError(errors.New("unexpected EOF"))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			oe := resolver.MustNew("USR-9", map[string]any{"id": "7"}, tc.original)
			obj, status := n.Normalize(fmt.Errorf("update user: %w", oe), RequestInfo{}, logger.Nop())
			if status != 422 || obj.Code != "USR-9" {
				t.Errorf("expected USR-9/422, got %s/%d", obj.Code, status)
			}
			if obj.Message != "User 7 is invalid." || obj.Type != "InvalidUserError" {
				t.Errorf("expected own message and type, got %q/%q", obj.Message, obj.Type)
			}
			if obj.Fields != nil {
				t.Errorf("expected no fields, got %v", obj.Fields)
			}
		})
	}

	wrapped := fmt.Errorf("bind: %w", verr)
	obj, status := n.Normalize(wrapped, RequestInfo{}, logger.Nop())
	if status != http.StatusBadRequest || obj.Code != "COM-3" {
		t.Errorf("expected plain wrappers to keep the override, got %s/%d", obj.Code, status)
	}
}

func TestNormalize_ServiceCatalogOverride(t *testing.T) {
	service := opkiterrors.NewCatalog(map[string]opkiterrors.Entry{
		"COM-3": {Type: "InvalidParametersError", Message: "Parametreler geçersiz.", HTTPStatusCode: 400},
	})
	n := NewNormalizer(NormalizerConfig{Resolver: opkiterrors.NewResolver(service, nil)})

	obj, _ := n.Normalize(opkiterrors.NewValidationError(nil), RequestInfo{}, logger.Nop())
	if obj.Message != "Parametreler geçersiz." {
		t.Errorf("expected service message, got %q", obj.Message)
	}
}

func TestNormalize_RemoteAndStatusErrors(t *testing.T) {
	n := newNormalizer(false)

	remote := opkiterrors.NewAPIOperationError("COR-4", map[string]any{"username": "yigitcan"}, 404, "User not found.")
	obj, status := n.Normalize(remote, RequestInfo{}, logger.Nop())
	if status != 404 || obj.Code != "COR-4" || obj.Type != opkiterrors.APIOperationErrorType {
		t.Errorf("unexpected remote object %+v", obj)
	}
	data, _ := json.Marshal(obj)
	if !strings.Contains(string(data), `"originalError":{"type":"ApiOperationError","code":"COR-4"`) {
		t.Errorf("expected remote error passed through, got %s", data)
	}

	obj, status = n.Normalize(opkiterrors.MethodNotAllowed(), RequestInfo{}, logger.Nop())
	if status != http.StatusMethodNotAllowed || obj.Code != "405" || obj.Message != "Method Not Allowed" {
		t.Errorf("unexpected status object %+v", obj)
	}
}

func TestNormalize_NilErrorAndLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: logger.FormatJSON}, "auth-service", buf)

	obj, status := newNormalizer(false).Normalize(nil, RequestInfo{URL: "/x"}, log)
	if status != 500 || obj.Code != "COM-0" || obj.Message != "There was an unhandled operation error." {
		t.Errorf("unexpected object for nil error %+v", obj)
	}
	if !strings.Contains(buf.String(), `"error_object"`) || !strings.Contains(buf.String(), `"code":"COM-0"`) {
		t.Errorf("expected error object to be logged, got %s", buf.String())
	}
}

func TestRedact(t *testing.T) {
	n := NewNormalizer(NormalizerConfig{Redaction: RedactionConfig{Fields: []string{"token"}, Mask: "[hidden]"}})

	body := map[string]any{"token": "abc", "password": "kept", "nested": map[string]any{"token": "deep"}}
	out := n.Redact(body).(map[string]any)
	if out["token"] != "[hidden]" || out["password"] != "kept" {
		t.Errorf("unexpected redaction %v", out)
	}
	if out["nested"].(map[string]any)["token"] != "deep" {
		t.Error("expected only top-level keys to be redacted")
	}
	if body["token"] != "abc" {
		t.Error("expected the input map to be left alone")
	}

	if arr, ok := n.Redact([]any{1}).([]any); !ok || len(arr) != 1 {
		t.Errorf("expected non-object bodies unchanged, got %v", n.Redact([]any{1}))
	}

	empty := NewNormalizer(NormalizerConfig{Redaction: RedactionConfig{Fields: []string{}}})
	if empty.Redact(map[string]any{"password": "p"}).(map[string]any)["password"] != "p" {
		t.Error("expected an explicit empty list to disable redaction")
	}
}
