package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/opkit/validation"
)

// BindJSON decodes and validates the request body into obj. Decode failures
// come back as *errors.BodyParseError and rule violations as
// *errors.ValidationError, ready for Fail.
//
//	var req LoginRequest
//	if err := middleware.BindJSON(c, &req); err != nil {
//	    middleware.Fail(c, err)
//	    return
//	}
func BindJSON(c *gin.Context, obj any) error {
	return validation.FromBindError(c.ShouldBindJSON(obj))
}
