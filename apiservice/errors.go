package apiservice

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOperation is returned when "service.operation" does not name a
	// registered operation.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrUnknownResponse is wrapped by UnknownResponseError.
	ErrUnknownResponse = errors.New("unknown response")

	// ErrInvalidSpec is returned when an API description cannot be indexed.
	ErrInvalidSpec = errors.New("invalid api description")
)

func unknownOperation(service, operation string) error {
	return fmt.Errorf("%w %s for %s service", ErrUnknownOperation, operation, service)
}

// UnknownResponseError is returned for a failed response whose body carries no
// error code.
type UnknownResponseError struct {
	Status int
	Body   []byte
}

func (e *UnknownResponseError) Error() string {
	return "unknown response: " + string(e.Body)
}

func (e *UnknownResponseError) Unwrap() error { return ErrUnknownResponse }
