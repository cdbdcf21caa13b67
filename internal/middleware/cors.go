package middleware

import (
	"github.com/gin-gonic/gin"
)

// CORS allows every origin when origem is empty (development) and only
// origem otherwise.
func CORS(origem string) gin.HandlerFunc {
	if origem == "" {
		origem = "*"
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origem)
		if origem != "*" {
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, Content-Disposition")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
