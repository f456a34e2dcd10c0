package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/tagscope/logging"
)

// AnalyzedURLKey is set by the analyze handler to the page URL it analyzed.
const AnalyzedURLKey = "analyzedURL"

// saveEvery controls how often statistics are flushed, in analysis requests.
const saveEvery = 100

// Stats tracks visitors on every request and analysis outcomes on requests
// whose handler set AnalyzedURLKey.
func Stats(stats *logging.Statistics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Track unique visitor
		stats.TrackVisitor(c.ClientIP())

		c.Next()

		pageURL := c.GetString(AnalyzedURLKey)
		if pageURL == "" {
			return
		}

		loadTime := float64(time.Since(start).Milliseconds())
		stats.TrackAnalysis(pageURL, loadTime, c.Writer.Status() >= 400)

		// Periodically save statistics
		if stats.TotalRequests()%saveEvery == 0 {
			go func() {
				if err := stats.Save(); err != nil {
					log.Printf("Failed to save request statistics: %v", err)
				}
			}()
		}
	}
}
