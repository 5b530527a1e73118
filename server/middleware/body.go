package middleware

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	opkiterrors "github.com/kbukum/opkit/errors"
)

// BodyCapture buffers JSON request bodies, stores the decoded value for error
// reports and restores the body for the handler. An unreadable body fails
// with COM-4, an oversized one with 413 and malformed JSON with a
// BodyParseError.
func BodyCapture() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody || !isJSON(c.ContentType()) {
			c.Next()
			return
		}

		raw, err := io.ReadAll(c.Request.Body)
		_ = c.Request.Body.Close()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				Fail(c, opkiterrors.NewStatusError(http.StatusRequestEntityTooLarge, ""))
				return
			}
			Fail(c, opkiterrors.MustNew(opkiterrors.CodeUnreadableBody, nil, err))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))

		if len(bytes.TrimSpace(raw)) == 0 {
			c.Next()
			return
		}

		var body any
		if err := json.Unmarshal(raw, &body); err != nil {
			Fail(c, opkiterrors.NewBodyParseError(err))
			return
		}
		c.Set(KeyInputBody, body)
		c.Next()
	}
}

// InputBody returns the body captured by BodyCapture.
func InputBody(c *gin.Context) (any, bool) {
	return c.Get(KeyInputBody)
}

// isJSON expects the media type without parameters, as returned by c.ContentType.
func isJSON(mediaType string) bool {
	mt := strings.ToLower(mediaType)
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
