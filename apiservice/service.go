package apiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	opkiterrors "github.com/kbukum/opkit/errors"
	"github.com/kbukum/opkit/httpclient"
	"github.com/kbukum/opkit/logger"
	"github.com/kbukum/opkit/observability"
)

const contentTypeJSON = "application/json"

// SpecSource is the registration input for one service.
type SpecSource struct {
	// URL is the service origin, e.g. "https://wallet.example.com".
	URL string
	// RawSpec is the API description document (JSON or YAML).
	RawSpec []byte
}

// Options configures a single Execute call.
type Options struct {
	// URL bypasses operation resolution when set.
	URL string
	// Method is only used together with URL. Defaults to GET.
	Method string
	// Headers are sent with the call. Accept, Content-Type and the auth
	// headers take precedence over them.
	Headers map[string]string
	// Params is JSON-encoded as the request body when non-nil.
	Params any
	// APIKey is sent as the Api-Key header when non-empty.
	APIKey string
	// Authorization is forwarded verbatim when non-empty.
	Authorization string
}

// Result is a successful call outcome.
type Result struct {
	Body   any
	Status int
	raw    []byte
}

// Decode unmarshals the response body into v.
func (r *Result) Decode(v any) error {
	if len(r.raw) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(r.raw, v)
}

// Service resolves "service.operation" names against registered API
// descriptions and executes them over HTTP.
type Service struct {
	mu      sync.RWMutex
	specs   map[string]*OperationIndex
	client  *httpclient.Client
	log     *logger.Logger
	metrics *observability.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used when no request logger is in the context.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics sets the dispatch instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a dispatcher on top of client.
func New(client *httpclient.Client, opts ...Option) *Service {
	s := &Service{
		specs:  make(map[string]*OperationIndex),
		client: client,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observability.DefaultMetrics()
	}
	return s
}

// RegisterSpecs parses and indexes every source. Nothing is registered when any
// source fails to parse.
func (s *Service) RegisterSpecs(sources map[string]SpecSource) error {
	parsed := make(map[string]*OperationIndex, len(sources))
	for name, src := range sources {
		idx, err := ParseSpec(src.URL, src.RawSpec)
		if err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
		parsed[name] = idx
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, idx := range parsed {
		s.specs[name] = idx
	}
	return nil
}

// Index returns the operation index of a registered service.
func (s *Service) Index(service string) (*OperationIndex, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.specs[service]
	return idx, ok
}

// Services returns the registered service names in sorted order.
func (s *Service) Services() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.specs))
	for name := range s.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the absolute URL and method of "service.operation".
func (s *Service) Resolve(name string) (url, method string, err error) {
	service, operation := splitName(name)
	idx, ok := s.Index(service)
	if !ok {
		return "", "", unknownOperation(service, operation)
	}
	op, ok := idx.Lookup(operation)
	if !ok {
		return "", "", unknownOperation(service, operation)
	}
	return idx.BaseURL + op.Path, op.Method, nil
}

// splitName splits "service.operation". Segments after a second dot are
// ignored.
func splitName(name string) (service, operation string) {
	parts := strings.SplitN(name, ".", 3)
	if len(parts) > 1 {
		operation = parts[1]
	}
	return parts[0], operation
}

// Execute performs the operation and maps the response. A failed response
// with a "code" field becomes an *errors.APIOperationError; any other failed
// response becomes an *UnknownResponseError.
func (s *Service) Execute(ctx context.Context, name string, opts Options) (*Result, error) {
	url, method := opts.URL, opts.Method
	if url == "" {
		var err error
		if url, method, err = s.Resolve(name); err != nil {
			return nil, err
		}
	}
	if method == "" {
		method = http.MethodGet
	}

	service, operation := splitName(name)
	ctx, span := observability.StartSpan(ctx, observability.SpanExecute,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrService, service),
			attribute.String(observability.AttrOperation, operation),
			attribute.String(observability.AttrMethod, method),
			attribute.String(observability.AttrURL, url),
		))
	defer span.End()

	log := s.logger(ctx).WithFields(map[string]any{
		logger.FieldOperation: name,
		logger.FieldMethod:    method,
		logger.FieldURL:       url,
	})

	start := time.Now()
	result, status, err := s.do(ctx, method, url, opts)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		code := opkiterrors.CodeOf(err)
		observability.SpanError(span, err, code)
		log.WithError(err).Debug("operation failed", logger.Fields(
			logger.FieldStatus, status,
			logger.FieldCode, code,
			logger.FieldDuration, elapsed.Milliseconds(),
		))
	} else {
		log.Debug("operation executed", logger.Fields(
			logger.FieldStatus, status,
			logger.FieldDuration, elapsed.Milliseconds(),
		))
	}
	if status != 0 {
		span.SetAttributes(attribute.Int(observability.AttrHTTPStatus, status))
	}
	s.metrics.RecordDispatch(ctx, service, operation, outcome, status, elapsed)

	return result, err
}

func (s *Service) do(ctx context.Context, method, url string, opts Options) (*Result, int, error) {
	headers := make(map[string]string, len(opts.Headers)+3)
	for k, v := range opts.Headers {
		headers[k] = v
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))
	headers["Accept"] = contentTypeJSON
	headers["Content-Type"] = contentTypeJSON
	if opts.APIKey != "" {
		headers[httpclient.APIKeyHeader] = opts.APIKey
	}

	req := httpclient.Request{
		Method:  method,
		Path:    url,
		Headers: headers,
		Body:    opts.Params,
	}
	if opts.Authorization != "" {
		req.Auth = httpclient.AuthorizationHeader(opts.Authorization)
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	res, err := mapResponse(resp)
	return res, resp.StatusCode, err
}


func mapResponse(resp *httpclient.Response) (*Result, error) {
	status := resp.StatusCode
	if status == http.StatusNoContent {
		return &Result{Body: map[string]any{}, Status: status}, nil
	}

	if resp.IsSuccess() {
		if len(resp.Body) == 0 {
			return &Result{Body: map[string]any{}, Status: status}, nil
		}
		var body any
		if err := json.Unmarshal(resp.Body, &body); err != nil {
			return nil, fmt.Errorf("decode %d response: %w", status, err)
		}
		return &Result{Body: body, Status: status, raw: resp.Body}, nil
	}

	if code, ctx, msg, ok := decodeEnvelope(resp.Body); ok {
		return nil, opkiterrors.NewAPIOperationError(code, ctx, status, msg)
	}
	return nil, &UnknownResponseError{Status: status, Body: compactJSON(resp.Body)}
}

// decodeEnvelope reads the error body sent by services built on this toolkit.
// A numeric code is formatted as a string; a context that is not an object
// becomes empty.
func decodeEnvelope(body []byte) (code string, ctx map[string]any, message string, ok bool) {
	var env map[string]any
	if err := json.Unmarshal(body, &env); err != nil || env == nil {
		return "", nil, "", false
	}

	switch c := env["code"].(type) {
	case string:
		code = c
	case float64:
		code = strconv.FormatFloat(c, 'f', -1, 64)
	}
	if code == "" {
		return "", nil, "", false
	}

	ctx, _ = env["context"].(map[string]any)
	if ctx == nil {
		ctx = map[string]any{}
	}
	message, _ = env["message"].(string)
	return code, ctx, message, true
}

// compactJSON strips insignificant whitespace from a JSON body. Non-JSON
// bodies are returned unchanged.
func compactJSON(body []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return body
	}
	return buf.Bytes()
}

func (s *Service) logger(ctx context.Context) *logger.Logger {
	l := logger.FromContext(ctx)
	if s.log != nil && l == logger.GetGlobalLogger() {
		l = s.log.WithContext(ctx)
	}
	return l.WithComponent("apiservice")
}
