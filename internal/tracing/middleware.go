package tracing

import (
    "strconv"

    "github.com/gin-gonic/gin"
)

const HeaderTraceID = "X-Trace-ID"

// HTTPMiddleware opens one span per request and echoes the trace ID back to the caller.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
    return func(c *gin.Context) {
        ctx := c.Request.Context()
        if id := c.GetHeader(HeaderTraceID); id != "" {
            ctx = WithTraceID(ctx, TraceID(id))
        }
        span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+c.FullPath())
        c.Request = c.Request.WithContext(ctx)
        c.Header(HeaderTraceID, string(span.TraceID))

        c.Next()

        span.SetTag("http.status", strconv.Itoa(c.Writer.Status()))
        if len(c.Errors) > 0 { span.SetError(c.Errors.Last().Err) }
        span.End()
    }
}
