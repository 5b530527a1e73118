package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	opkiterrors "github.com/kbukum/opkit/errors"
)

// DefaultAllowedMethods are the methods accepted when none are configured.
var DefaultAllowedMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodOptions,
	http.MethodPut, http.MethodPatch, http.MethodDelete,
}

// BlockMethods fails requests whose method is not in allowed with a 405
// structured error. An empty list uses DefaultAllowedMethods.
func BlockMethods(allowed []string) gin.HandlerFunc {
	if len(allowed) == 0 {
		allowed = DefaultAllowedMethods
	}
	set := make(map[string]bool, len(allowed))
	for _, m := range allowed {
		set[strings.ToUpper(m)] = true
	}
	return func(c *gin.Context) {
		if !set[c.Request.Method] {
			Fail(c, opkiterrors.MethodNotAllowed())
			return
		}
		c.Next()
	}
}
