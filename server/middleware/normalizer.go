package middleware

import (
	stderrors "errors"
	"net/http"

	opkiterrors "github.com/kbukum/opkit/errors"
	"github.com/kbukum/opkit/logger"
)

// DefaultMask replaces redacted input values.
const DefaultMask = "*****"

// DefaultRedactedFields are the input keys masked when no list is configured.
var DefaultRedactedFields = []string{"username", "email", "password"}

// RedactionConfig selects the top-level input fields masked in error
// responses.
type RedactionConfig struct {
	Fields []string `yaml:"fields" mapstructure:"fields"`
	Mask   string   `yaml:"mask" mapstructure:"mask"`
}

// ApplyDefaults fills the default field list and mask.
func (c *RedactionConfig) ApplyDefaults() {
	if c.Fields == nil {
		c.Fields = append([]string(nil), DefaultRedactedFields...)
	}
	if c.Mask == "" {
		c.Mask = DefaultMask
	}
}

// RequestInfo is the part of the failed request echoed in the error response.
type RequestInfo struct {
	URL  string
	Body any
}

// NormalizerConfig configures a Normalizer.
type NormalizerConfig struct {
	ServiceName string
	// Resolver supplies the messages of the override codes. Nil uses the base
	// catalog.
	Resolver *opkiterrors.Resolver
	// Production drops stacks and original errors, and hides the message of
	// unstructured errors.
	Production bool
	Redaction  RedactionConfig
}

// Normalizer turns any error into the canonical ErrorObject.
type Normalizer struct {
	service    string
	resolver   *opkiterrors.Resolver
	production bool
	redacted   map[string]bool
	mask       string
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	cfg.Redaction.ApplyDefaults()
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = opkiterrors.NewResolver(nil, nil)
	}
	redacted := make(map[string]bool, len(cfg.Redaction.Fields))
	for _, f := range cfg.Redaction.Fields {
		redacted[f] = true
	}
	return &Normalizer{
		service:    cfg.ServiceName,
		resolver:   resolver,
		production: cfg.Production,
		redacted:   redacted,
		mask:       cfg.Redaction.Mask,
	}
}

// Normalize builds the response body and status for err and logs the result
// through log. A nil log uses the global logger.
func (n *Normalizer) Normalize(err error, req RequestInfo, log *logger.Logger) (opkiterrors.ErrorObject, int) {
	obj := n.defaults(err)
	obj.ServiceName = n.service
	obj.EndpointURL = req.URL
	obj.InputParams = n.Redact(req.Body)

	verr, perr := requestFailure(err)
	switch {
	case verr != nil:
		entry := n.entry(opkiterrors.CodeInvalidParameters)
		obj.Type = entry.Type
		obj.Code = opkiterrors.CodeInvalidParameters
		obj.Message = entry.Message
		obj.HTTPStatusCode = http.StatusBadRequest
		obj.OriginalError = map[string]any{}
		obj.Fields = verr.FieldsObject()
		obj.Stack = ""
	case perr != nil:
		entry := n.entry(opkiterrors.CodeMalformedJSON)
		obj.Type = entry.Type
		obj.Code = opkiterrors.CodeMalformedJSON
		obj.HTTPStatusCode = perr.Status
		if obj.HTTPStatusCode == 0 {
			obj.HTTPStatusCode = http.StatusBadRequest
		}
		obj.Message = perr.Msg
		if obj.Message == "" {
			obj.Message = entry.Message
		}
		obj.Stack = ""
	}
	obj.HTTPStatus = http.StatusText(obj.HTTPStatusCode)

	if n.production {
		obj.Stack = ""
		obj.OriginalError = nil
	}

	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log.Error(obj.Message, logger.Fields(
		logger.FieldCode, obj.Code,
		logger.FieldStatus, obj.HTTPStatusCode,
		logger.FieldErrorObject, obj,
	))
	return obj, obj.HTTPStatusCode
}

// requestFailure finds a ValidationError or BodyParseError through plain
// wrappers. The search stops at the first structured error, so a catalog error
// keeping one of them as its original keeps its own code.
func requestFailure(err error) (*opkiterrors.ValidationError, *opkiterrors.BodyParseError) {
	for err != nil {
		switch e := err.(type) {
		case *opkiterrors.ValidationError:
			return e, nil
		case *opkiterrors.BodyParseError:
			return nil, e
		case opkiterrors.StructuredError:
			return nil, nil
		}
		err = stderrors.Unwrap(err)
	}
	return nil, nil
}

func (n *Normalizer) defaults(err error) opkiterrors.ErrorObject {
	unhandled := n.entry(opkiterrors.CodeUnhandled)

	if oe, ok := opkiterrors.AsOperationError(err); ok {
		obj := oe.Serialize()
		if obj.HTTPStatusCode == 0 {
			obj.HTTPStatusCode = http.StatusInternalServerError
		}
		return obj
	}

	if se, ok := opkiterrors.AsStructured(err); ok {
		obj := opkiterrors.ErrorObject{
			Type:           opkiterrors.DefaultType,
			Code:           se.Code(),
			Message:        se.Message(),
			Context:        se.Context(),
			HTTPStatusCode: se.HTTPStatusCode(),
			OriginalError:  opkiterrors.DescribeOriginal(se),
		}
		if _, ok := opkiterrors.AsAPIOperationError(err); ok {
			obj.Type = opkiterrors.APIOperationErrorType
		}
		if obj.Code == "" {
			obj.Code = opkiterrors.CodeUnhandled
		}
		if obj.Message == "" {
			obj.Message = unhandled.Message
		}
		if obj.Context == nil {
			obj.Context = map[string]any{}
		}
		if obj.HTTPStatusCode == 0 {
			obj.HTTPStatusCode = http.StatusInternalServerError
		}
		return obj
	}

	obj := opkiterrors.ErrorObject{
		Type:           unhandled.Type,
		Code:           opkiterrors.CodeUnhandled,
		Message:        unhandled.Message,
		Context:        map[string]any{},
		HTTPStatusCode: http.StatusInternalServerError,
		OriginalError:  opkiterrors.DescribeOriginal(err),
	}
	if err != nil && err.Error() != "" && !n.production {
		obj.Message = err.Error()
	}
	return obj
}

func (n *Normalizer) entry(code string) opkiterrors.Entry {
	if res, err := n.resolver.Resolve(code); err == nil {
		return res.Entry
	}
	e, _ := opkiterrors.Base().Lookup(code)
	return e
}

// Redact returns a copy of a JSON object body with the configured top-level
// fields masked. Nil bodies become an empty object; other JSON values are
// returned unchanged.
func (n *Normalizer) Redact(body any) any {
	switch v := body.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			if n.redacted[k] {
				out[k] = n.mask
				continue
			}
			out[k] = val
		}
		return out
	default:
		return v
	}
}
