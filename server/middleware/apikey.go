package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/opkit/apikey"
	opkiterrors "github.com/kbukum/opkit/errors"
	"github.com/kbukum/opkit/httpclient"
	"github.com/kbukum/opkit/logger"
	"github.com/kbukum/opkit/util"
)

// APIKeyConfig configures the Api-Key check.
type APIKeyConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// PublicPaths bypass the check. An entry ending in "/" matches the whole
	// subtree; other entries match exactly.
	PublicPaths []string `yaml:"public_paths" mapstructure:"public_paths"`
	// Keys seed the in-memory store when Redis is not used.
	Keys []string `yaml:"keys" mapstructure:"keys"`
}

// IsPublic reports whether path bypasses the check.
func (c APIKeyConfig) IsPublic(path string) bool {
	for _, p := range c.PublicPaths {
		if p == path || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}

// APIKey requires a known Api-Key header on non-public paths. A missing header
// fails with COM-6, an unknown key with COM-7 and a store failure with COM-1.
// Preflight requests pass.
func APIKey(cfg APIKeyConfig, store apikey.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || c.Request.Method == http.MethodOptions || cfg.IsPublic(c.Request.URL.Path) {
			c.Next()
			return
		}

		key := c.GetHeader(httpclient.APIKeyHeader)
		if key == "" {
			Fail(c, opkiterrors.MustNew(opkiterrors.CodeAPIKeyMissing, nil, nil))
			return
		}

		found, err := store.Lookup(c.Request.Context(), key)
		if err != nil {
			Fail(c, opkiterrors.InternalRequestFailed(nil, err))
			return
		}
		if found == nil {
			logger.FromContext(c.Request.Context()).Warn("Unknown API key", logger.Fields(
				"api_key", util.MaskSecret(key, 6),
				logger.FieldPath, c.Request.URL.Path,
			))
			Fail(c, opkiterrors.MustNew(opkiterrors.CodeAPIKeyNotFound, nil, nil))
			return
		}

		c.Set(KeyAPIKey, *found)
		c.Next()
	}
}
