// Package tracing records spans around request-scoped work and reports them
// through the service logger. Spans are a diagnostic side channel: nothing
// reads them back, and a failure to record one never fails the caller.
package tracing

import (
    "context"
    "sync"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/example/news-summarizer/internal/logging"
)

type TraceID string

type SpanID string

// Span represents a single operation in a trace.
type Span struct {
    TraceID   TraceID
    SpanID    SpanID
    ParentID  SpanID
    Name      string
    StartTime time.Time
    Duration  time.Duration
    Err       error

    mu     sync.Mutex
    tags   map[string]string
    tracer *Tracer
    ended  bool
}

// Tracer hands out spans for one service.
type Tracer struct {
    service string
    logger  *logging.Logger
}

func New(service string, logger *logging.Logger) *Tracer {
    return &Tracer{service: service, logger: logger}
}

type contextKey string

const (
    traceIDKey contextKey = "trace_id"
    spanIDKey  contextKey = "span_id"
)

// StartSpan opens a span as a child of whatever span ctx already carries.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
    traceID := TraceIDFrom(ctx)
    if traceID == "" { traceID = NewTraceID() }
    span := &Span{
        TraceID:   traceID,
        SpanID:    SpanID(uuid.NewString()),
        ParentID:  SpanIDFrom(ctx),
        Name:      name,
        StartTime: time.Now(),
        tags:      map[string]string{},
        tracer:    t,
    }
    ctx = context.WithValue(ctx, traceIDKey, traceID)
    ctx = context.WithValue(ctx, spanIDKey, span.SpanID)
    return span, ctx
}

func (s *Span) SetTag(key, value string) {
    s.mu.Lock()
    s.tags[key] = value
    s.mu.Unlock()
}

func (s *Span) SetError(err error) {
    s.mu.Lock()
    s.Err = err
    s.mu.Unlock()
}

// End closes the span and logs it. Calling End twice logs once.
func (s *Span) End() {
    s.mu.Lock()
    if s.ended { s.mu.Unlock(); return }
    s.ended = true
    s.Duration = time.Since(s.StartTime)
    fields := []zap.Field{
        zap.String("trace_id", string(s.TraceID)),
        zap.String("span_id", string(s.SpanID)),
        zap.String("operation", s.Name),
        zap.Duration("duration", s.Duration),
        zap.String("service", s.tracer.service),
    }
    if s.ParentID != "" { fields = append(fields, zap.String("parent_id", string(s.ParentID))) }
    for k, v := range s.tags { fields = append(fields, zap.String("tag."+k, v)) }
    err := s.Err
    s.mu.Unlock()

    if err != nil {
        s.tracer.logger.Warn("span completed with error", append(fields, zap.Error(err))...)
        return
    }
    s.tracer.logger.Info("span completed", fields...)
}

// Tags returns a copy of the span tags.
func (s *Span) Tags() map[string]string {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make(map[string]string, len(s.tags))
    for k, v := range s.tags { out[k] = v }
    return out
}

func NewTraceID() TraceID { return TraceID(uuid.NewString()) }

// WithTraceID seeds ctx with an inbound trace ID, e.g. from a request header.
func WithTraceID(ctx context.Context, id TraceID) context.Context {
    return context.WithValue(ctx, traceIDKey, id)
}

func TraceIDFrom(ctx context.Context) TraceID {
    id, _ := ctx.Value(traceIDKey).(TraceID)
    return id
}

func SpanIDFrom(ctx context.Context) SpanID {
    id, _ := ctx.Value(spanIDKey).(SpanID)
    return id
}
