package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	opkiterrors "github.com/kbukum/opkit/errors"
	"github.com/kbukum/opkit/logger"
)

// Recovery turns a panic in a later handler into an unhandled (COM-0) error
// for ErrorHandler.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", r)
			}
			logger.FromContext(c.Request.Context()).Error("Panic recovered", logger.Fields(
				logger.FieldError, err.Error(),
				logger.FieldPath, c.Request.URL.Path,
				logger.FieldMethod, c.Request.Method,
				"stack", string(debug.Stack()),
			))
			Fail(c, opkiterrors.Unhandled(err))
		}()
		c.Next()
	}
}
