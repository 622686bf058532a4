package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsHeaders = "Content-Type, Authorization"
)

// corsMiddleware echoes the request origin when it is allowed. An empty list or "*" allows any origin.
// Export downloads need Content-Disposition exposed to scripts.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(allowed))
	wildcard := len(allowed) == 0
	for _, o := range allowed {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		if o == "*" {
			wildcard = true
			continue
		}
		if o != "" {
			origins[o] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		headers := c.Writer.Header()
		origin := c.GetHeader("Origin")
		_, ok := origins[strings.ToLower(origin)]
		switch {
		case wildcard:
			headers.Set("Access-Control-Allow-Origin", "*")
		case ok:
			headers.Set("Access-Control-Allow-Origin", origin)
		}
		headers.Add("Vary", "Origin")
		headers.Set("Access-Control-Allow-Methods", corsMethods)
		headers.Set("Access-Control-Allow-Headers", corsHeaders)
		headers.Set("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
