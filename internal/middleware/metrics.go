package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dequr01/fair-ticket/internal/metrics"
)

// Metrics returns a Gin middleware that records request duration per
// route. The matched route template keeps the label cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		operation := fmt.Sprintf("%s %s", c.Request.Method, route)
		metrics.RecordRequestDuration(c.Request.Context(), operation, time.Since(start).Seconds())
	}
}
