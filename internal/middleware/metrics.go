package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verba-edu/scholarship-api/internal/service"
)

// Metrics returns middleware that captures request metrics using the provided service.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTP(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), duration)
	}
}
