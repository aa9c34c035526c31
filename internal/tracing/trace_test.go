package tracing

import (
    "context"
    "errors"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
    "go.uber.org/zap/zaptest/observer"

    "github.com/example/news-summarizer/internal/logging"
)

func observed() (*Tracer, *observer.ObservedLogs) {
    core, logs := observer.New(zap.DebugLevel)
    return New("news-summarizer", &logging.Logger{Logger: zap.New(core)}), logs
}

func TestSpanNestingAndLogging(t *testing.T) {
    tracer, logs := observed()
    ctx := WithTraceID(context.Background(), "trace-1")

    parent, ctx := tracer.StartSpan(ctx, "POST /summarize")
    child, _ := tracer.StartSpan(ctx, "summarize_news")
    assert.Equal(t, TraceID("trace-1"), child.TraceID)
    assert.Equal(t, parent.SpanID, child.ParentID)

    child.SetTag("url", "https://example.com/article")
    child.SetError(errors.New("timed out"))
    child.End()
    child.End()
    parent.End()

    entries := logs.All()
    require.Len(t, entries, 2)
    assert.Equal(t, "span completed with error", entries[0].Message)
    assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
    fields := entries[0].ContextMap()
    assert.Equal(t, "summarize_news", fields["operation"])
    assert.Equal(t, "https://example.com/article", fields["tag.url"])
    assert.Equal(t, string(parent.SpanID), fields["parent_id"])
    assert.Equal(t, "span completed", entries[1].Message)
}

func TestStartSpanNewTrace(t *testing.T) {
    tracer, _ := observed()
    span, ctx := tracer.StartSpan(context.Background(), "op")
    assert.NotEmpty(t, span.TraceID)
    assert.Equal(t, span.TraceID, TraceIDFrom(ctx))
    assert.Equal(t, span.SpanID, SpanIDFrom(ctx))
    assert.Empty(t, span.ParentID)
}
