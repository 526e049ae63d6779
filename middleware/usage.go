package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// UsageRecorder receives one audit record per request. The postgres
// APIUsageRepository satisfies it.
type UsageRecorder interface {
	Record(ctx context.Context, endpoint, wallet string, status int, latency time.Duration)
}

// TrackAPIUsage writes the audit record off the request goroutine so a
// slow audit insert never delays the response.
func TrackAPIUsage(recorder UsageRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}
		wallet := c.Query("address")
		if wallet == "" {
			wallet = c.Param("address")
		}
		status := c.Writer.Status()
		latency := time.Since(start)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			recorder.Record(ctx, endpoint, wallet, status, latency)
		}()
	}
}
