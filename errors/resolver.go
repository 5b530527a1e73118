package errors

import (
	"fmt"
)

// Origin tells which catalog a code was resolved from.
type Origin int

const (
	// OriginBase marks entries taken from the shared base catalog.
	OriginBase Origin = iota
	// OriginService marks entries taken from the service catalog.
	OriginService
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginService:
		return "service"
	case OriginBase:
		return "base"
	default:
		return "unknown"
	}
}

// Resolution is the result of a layered lookup.
type Resolution struct {
	Entry  Entry
	Origin Origin
}

// Resolver layers a service catalog over a base catalog. Codes declared by the
// service win; everything else falls back to the base catalog.
type Resolver struct {
	service *Catalog
	base    *Catalog
}

// NewResolver creates a resolver. A nil base uses the shared base catalog.
func NewResolver(service, base *Catalog) *Resolver {
	if base == nil {
		base = baseCatalog
	}
	if service == nil {
		service = NewCatalog(nil)
	}
	return &Resolver{service: service, base: base}
}

// Resolve looks code up in the service catalog, then in the base catalog.
func (r *Resolver) Resolve(code string) (Resolution, error) {
	if e, ok := r.service.Lookup(code); ok {
		return Resolution{Entry: e, Origin: OriginService}, nil
	}
	if e, ok := r.base.Lookup(code); ok {
		return Resolution{Entry: e, Origin: OriginBase}, nil
	}
	return Resolution{}, fmt.Errorf("%w: %s", ErrUnknownCode, code)
}

// New builds an OperationError for code using the layered lookup.
func (r *Resolver) New(code string, ctx map[string]any, original any) (*OperationError, error) {
	res, err := r.Resolve(code)
	if err != nil {
		return nil, err
	}
	return newOperationError(res.Entry, ctx, original, 2), nil
}

// MustNew is like New but panics on an unknown code.
func (r *Resolver) MustNew(code string, ctx map[string]any, original any) *OperationError {
	res, err := r.Resolve(code)
	if err != nil {
		panic(err)
	}
	return newOperationError(res.Entry, ctx, original, 2)
}

// Service returns the service catalog.
func (r *Resolver) Service() *Catalog { return r.service }

// Base returns the base catalog.
func (r *Resolver) Base() *Catalog { return r.base }

// Entries returns every resolvable entry, service entries overriding base ones.
func (r *Resolver) Entries() map[string]Entry {
	out := r.base.Entries()
	for code, e := range r.service.Entries() {
		out[code] = e
	}
	return out
}
