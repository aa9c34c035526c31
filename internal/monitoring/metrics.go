package monitoring

import (
    "net/http"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
    "github.com/prometheus/client_golang/prometheus/promauto"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. All methods are safe on a nil *Metrics.
type Metrics struct {
    registry *prometheus.Registry

    RequestsTotal   *prometheus.CounterVec
    RequestDuration *prometheus.HistogramVec

    SummariesTotal   *prometheus.CounterVec
    SummaryDuration  prometheus.Histogram
    SummariesActive  prometheus.Gauge
    ToolServerStarts *prometheus.CounterVec
    AgentTurns       prometheus.Histogram
    ToolCalls        *prometheus.CounterVec
}

// NewMetrics creates collectors on a private registry so tests can build many.
func NewMetrics() *Metrics {
    reg := prometheus.NewRegistry()
    reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    f := promauto.With(reg)
    return &Metrics{
        registry: reg,
        RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
            Name: "news_summary_http_requests_total",
            Help: "Total number of HTTP requests",
        }, []string{"method", "path", "status"}),
        RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
            Name:    "news_summary_http_request_duration_seconds",
            Help:    "HTTP request duration in seconds",
            Buckets: []float64{.005, .01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120},
        }, []string{"method", "path"}),
        SummariesTotal: f.NewCounterVec(prometheus.CounterOpts{
            Name: "news_summary_summaries_total",
            Help: "Summarize calls by outcome code",
        }, []string{"outcome"}),
        SummaryDuration: f.NewHistogram(prometheus.HistogramOpts{
            Name:    "news_summary_summary_duration_seconds",
            Help:    "Wall time of one summarize call including tool-server startup",
            Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
        }),
        SummariesActive: f.NewGauge(prometheus.GaugeOpts{
            Name: "news_summary_summaries_in_flight",
            Help: "Summarize calls currently running",
        }),
        ToolServerStarts: f.NewCounterVec(prometheus.CounterOpts{
            Name: "news_summary_tool_server_starts_total",
            Help: "Tool-server launches by server and result",
        }, []string{"server", "result"}),
        AgentTurns: f.NewHistogram(prometheus.HistogramOpts{
            Name:    "news_summary_agent_turns",
            Help:    "Model turns used per agent run",
            Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10, 15, 20},
        }),
        ToolCalls: f.NewCounterVec(prometheus.CounterOpts{
            Name: "news_summary_tool_calls_total",
            Help: "Tool calls issued by the agent",
        }, []string{"tool", "result"}),
    }
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
    return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, d time.Duration) {
    if m == nil { return }
    m.RequestsTotal.WithLabelValues(method, path, status).Inc()
    m.RequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// SummaryStarted marks a summarize call in flight; call the returned func with the outcome code.
func (m *Metrics) SummaryStarted() func(outcome string) {
    if m == nil { return func(string) {} }
    start := time.Now()
    m.SummariesActive.Inc()
    return func(outcome string) {
        m.SummariesActive.Dec()
        m.SummariesTotal.WithLabelValues(outcome).Inc()
        m.SummaryDuration.Observe(time.Since(start).Seconds())
    }
}

func (m *Metrics) RecordToolServerStart(server string, err error) {
    if m == nil { return }
    m.ToolServerStarts.WithLabelValues(server, result(err)).Inc()
}

func (m *Metrics) RecordAgentTurns(n int) {
    if m == nil { return }
    m.AgentTurns.Observe(float64(n))
}

func (m *Metrics) RecordToolCall(tool string, err error) {
    if m == nil { return }
    m.ToolCalls.WithLabelValues(tool, result(err)).Inc()
}

func result(err error) string {
    if err != nil { return "error" }
    return "ok"
}
