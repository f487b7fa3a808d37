package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"carebridge/internal/observability"
)

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		labels := []string{c.Request.Method, routeOf(c), strconv.Itoa(c.Writer.Status())}
		observability.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		observability.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	}
}
