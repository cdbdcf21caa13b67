package middleware

import (
	"strconv"
	"time"

	"lavanderia/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metricas records request count and latency per route template.
func Metricas() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequisicoesHTTP.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.DuracaoHTTP.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
