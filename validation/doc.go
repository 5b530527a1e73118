// Package validation turns input validation failures into
// *errors.ValidationError values, which the error middleware renders as
// invalid-parameters responses carrying the per-field details.
//
// # Struct Tag Validation
//
//	type SignUpRequest struct {
//	    Email    string `json:"email" validate:"required,email"`
//	    Password string `json:"password" validate:"required,min=6"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	err := validation.New().
//	    Required("username", req.Username).
//	    MinLength("password", req.Password, 6).
//	    Validate()
package validation
