package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// ErrorHandler middleware recovers from any panics and handles errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// Log the error and stack trace
				log.Printf("[%s] Panic recovered on %s %s: %v\nStack trace:\n%s",
					c.GetString(RequestIDKey), c.Request.Method, c.Request.URL.Path, err, debug.Stack())

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "An unexpected error occurred",
				})
			}
		}()

		c.Next()

		// Errors attached by handlers that already wrote a response
		for _, e := range c.Errors {
			log.Printf("[%s] %s %s: %v", c.GetString(RequestIDKey), c.Request.Method, c.Request.URL.Path, e.Err)
		}
	}
}
