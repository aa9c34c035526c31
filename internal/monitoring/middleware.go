package monitoring

import (
    "strconv"
    "time"

    "github.com/gin-gonic/gin"
)

// Middleware records request count and latency per route.
func Middleware(metrics *Metrics) gin.HandlerFunc {
    return func(c *gin.Context) {
        start := time.Now()
        c.Next()
        path := c.FullPath()
        if path == "" { path = "unmatched" }
        metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
    }
}
