package validation

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	opkiterrors "github.com/kbukum/opkit/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// Engine returns the shared validator instance. Field names in violations
// come from json tags.
func Engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
	})
	return validate
}

// Validate checks s against its `validate` struct tags and returns a
// *errors.ValidationError listing every rejected field.
func Validate(s any) error {
	return FromBindError(Engine().Struct(s))
}

// FromBindError converts decoding and validation failures into the error
// kinds the error middleware understands: validator failures become a
// *errors.ValidationError and JSON syntax or type failures become a
// *errors.BodyParseError. Other errors are returned unchanged.
func FromBindError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make(map[string]opkiterrors.FieldViolation, len(verrs))
		for _, e := range verrs {
			name := fieldPath(e)
			if _, exists := fields[name]; exists {
				continue
			}
			fields[name] = opkiterrors.FieldViolation{Message: formatValidationError(e), Value: e.Value()}
		}
		return opkiterrors.NewValidationError(fields)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr) ||
		stderrors.Is(err, io.ErrUnexpectedEOF) || stderrors.Is(err, io.EOF) {
		return opkiterrors.NewBodyParseError(err)
	}
	return err
}

// Binding adapts the shared validator to gin's binding.StructValidator so
// ShouldBindJSON reports the same field names as Validate. Failures are
// returned as *errors.ValidationError.
func Binding() binding.StructValidator {
	return ginValidator{}
}

type ginValidator struct{}

func (ginValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return FromBindError(Engine().Struct(obj))
}

func (ginValidator) Engine() any { return Engine() }

// fieldPath drops the top-level struct name from the namespace so nested
// fields read "address.city".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "failed the " + e.Tag() + " rule"
	}
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				result.WriteRune('_')
			}
			r += 'a' - 'A'
		}
		result.WriteRune(r)
	}
	return result.String()
}
