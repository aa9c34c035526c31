package orchestrator

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
    "go.uber.org/zap/zaptest/observer"

    "github.com/example/news-summarizer/internal/config"
    "github.com/example/news-summarizer/internal/logging"
    "github.com/example/news-summarizer/internal/models"
    "github.com/example/news-summarizer/internal/monitoring"
    "github.com/example/news-summarizer/internal/providers/llm"
    "github.com/example/news-summarizer/internal/toolserver"
    "github.com/example/news-summarizer/internal/toolserver/toolservertest"
    "github.com/example/news-summarizer/internal/tracing"
)

type fixture struct {
    launcher *toolservertest.Launcher

    mu       sync.Mutex
    requests []*llm.Request
}

func newFixture() *fixture {
    return &fixture{launcher: &toolservertest.Launcher{Servers: map[string]*toolservertest.Server{
        "fetch": {
            ServerName: "fetch",
            Tools:      []toolserver.Tool{{Name: "fetch", InputSchema: toolservertest.Schema("url")}},
            Handlers:   map[string]toolservertest.Handler{"fetch": toolservertest.Text("Article body.")},
        },
        "browser": {
            ServerName: "browser",
            Tools:      []toolserver.Tool{{Name: "browser_navigate", InputSchema: toolservertest.Schema("url")}},
        },
    }}}
}

func (f *fixture) orchestrator(t *testing.T, model llm.Client, timeout time.Duration) *Orchestrator {
    t.Helper()
    o, err := New(Options{
        Launcher: f.launcher,
        Servers:  ServerParams(config.Default().Tools),
        Model: llm.ClientFunc(func(ctx context.Context, req *llm.Request) (*llm.Reply, error) {
            f.mu.Lock()
            f.requests = append(f.requests, req)
            f.mu.Unlock()
            return model.Complete(ctx, req)
        }),
        MaxTurns: 5,
        Timeout:  timeout,
        Logger:   logging.NewNop(),
        Metrics:  monitoring.NewMetrics(),
    })
    require.NoError(t, err)
    return o
}

func (f *fixture) assertReleased(t *testing.T) {
    t.Helper()
    assert.True(t, f.launcher.Servers["fetch"].Closed(), "fetch server not released")
    assert.True(t, f.launcher.Servers["browser"].Closed(), "browser server not released")
}

func lang(s string) *string { return &s }

// fetchThenSummarize calls the fetch tool once, then answers text.
func fetchThenSummarize(text string) llm.Client {
    return llm.ClientFunc(func(ctx context.Context, req *llm.Request) (*llm.Reply, error) {
        if len(req.Messages) == 1 {
            return &llm.Reply{ToolCalls: []llm.ToolCall{{ID: "c1", Name: "fetch", Arguments: `{"url":"https://example.com/article"}`}}}, nil
        }
        return &llm.Reply{Content: text}, nil
    })
}

func TestSummarizeSuccess(t *testing.T) {
    f := newFixture()
    o := f.orchestrator(t, fetchThenSummarize("  Short summary.\n"), 0)

    resp, err := o.Summarize(context.Background(), &models.SummaryRequest{URL: "https://example.com/article", Language: lang("english")})
    require.NoError(t, err)
    assert.Equal(t, &models.SummaryResponse{URL: "https://example.com/article", Summary: "Short summary.", Status: "success"}, resp)

    f.assertReleased(t)
    assert.Equal(t, []string{"launch fetch", "launch browser", "close browser", "close fetch"}, f.launcher.Log.Events())
    assert.Equal(t, []string{"fetch"}, f.launcher.Servers["fetch"].Calls())

    require.NotEmpty(t, f.requests)
    first := f.requests[0]
    assert.Contains(t, first.Instructions, "summary in english")
    assert.Equal(t, "Summarize the news content from this URL: https://example.com/article", first.Messages[0].Content)
    assert.Len(t, first.Tools, 2)
}

func TestSummarizeDefaultLanguage(t *testing.T) {
    f := newFixture()
    o := f.orchestrator(t, &llm.MockClient{Text: "Tóm tắt."}, 0)

    _, err := o.Summarize(context.Background(), &models.SummaryRequest{URL: "https://example.com/article"})
    require.NoError(t, err)
    require.Len(t, f.requests, 1)
    assert.Contains(t, f.requests[0].Instructions, "summary in vietnamese")
}

func TestSummarizeInvalidURLStartsNothing(t *testing.T) {
    for _, raw := range []string{"not-a-url", "ftp://example.com/a", "https://", ""} {
        f := newFixture()
        o := f.orchestrator(t, &llm.MockClient{}, 0)
        _, err := o.Summarize(context.Background(), &models.SummaryRequest{URL: raw})
        assert.ErrorIs(t, err, ErrInvalidRequest, raw)
        assert.Empty(t, f.launcher.Log.Events(), raw)
        assert.Empty(t, f.requests, raw)
    }
}

func TestSummarizeBrowserFailsToStart(t *testing.T) {
    f := newFixture()
    f.launcher.Fail = map[string]error{"browser": errors.New("npx: executable file not found")}
    o := f.orchestrator(t, &llm.MockClient{}, 0)

    _, err := o.Summarize(context.Background(), &models.SummaryRequest{URL: "https://example.com/article"})
    assert.ErrorIs(t, err, toolserver.ErrStart)
    assert.Equal(t, OutcomeToolUnavailable, Outcome(err))
    assert.True(t, f.launcher.Servers["fetch"].Closed())
    assert.Empty(t, f.requests)
}

func TestSummarizeModelFailure(t *testing.T) {
    f := newFixture()
    o := f.orchestrator(t, llm.ClientFunc(func(context.Context, *llm.Request) (*llm.Reply, error) {
        return nil, errors.New("upstream 500")
    }), 0)

    _, err := o.Summarize(context.Background(), &models.SummaryRequest{URL: "https://example.com/article"})
    require.Error(t, err)
    assert.Equal(t, OutcomeAgentFailed, Outcome(err))
    f.assertReleased(t)
}

func TestSummarizeEmptyOutput(t *testing.T) {
    f := newFixture()
    o := f.orchestrator(t, fetchThenSummarize(" \n "), 0)

    _, err := o.Summarize(context.Background(), &models.SummaryRequest{URL: "https://example.com/article"})
    assert.ErrorIs(t, err, ErrEmptySummary)
    f.assertReleased(t)
}

func TestSummarizeTimeout(t *testing.T) {
    f := newFixture()
    o := f.orchestrator(t, llm.ClientFunc(func(ctx context.Context, _ *llm.Request) (*llm.Reply, error) {
        <-ctx.Done()
        return nil, ctx.Err()
    }), 50*time.Millisecond)

    _, err := o.Summarize(context.Background(), &models.SummaryRequest{URL: "https://example.com/article"})
    assert.ErrorIs(t, err, context.DeadlineExceeded)
    assert.Equal(t, OutcomeTimeout, Outcome(err))
    f.assertReleased(t)
}

func TestSummarizeCallerCancels(t *testing.T) {
    f := newFixture()
    ctx, cancel := context.WithCancel(context.Background())
    o := f.orchestrator(t, llm.ClientFunc(func(ctx context.Context, _ *llm.Request) (*llm.Reply, error) {
        cancel()
        <-ctx.Done()
        return nil, ctx.Err()
    }), 0)

    _, err := o.Summarize(ctx, &models.SummaryRequest{URL: "https://example.com/article"})
    assert.ErrorIs(t, err, context.Canceled)
    assert.Equal(t, OutcomeCanceled, Outcome(err))
    f.assertReleased(t)
}

func TestSummarizePanicReleasesServers(t *testing.T) {
    f := newFixture()
    o := f.orchestrator(t, llm.ClientFunc(func(context.Context, *llm.Request) (*llm.Reply, error) {
        panic("provider bug")
    }), 0)

    assert.Panics(t, func() {
        _, _ = o.Summarize(context.Background(), &models.SummaryRequest{URL: "https://example.com/article"})
    })
    f.assertReleased(t)
}

func TestNewRequiresLauncherAndModel(t *testing.T) {
    _, err := New(Options{Model: &llm.MockClient{}})
    assert.Error(t, err)
    _, err = New(Options{Launcher: &toolservertest.Launcher{}})
    assert.Error(t, err)
}

func TestServerParams(t *testing.T) {
    cfg := config.Default().Tools
    cfg.Env = []string{"HTTP_PROXY=http://proxy:3128"}
    params := ServerParams(cfg)
    require.Len(t, params, 2)
    assert.Equal(t, toolserver.Params{Name: "fetch", Command: "uvx", Args: []string{"mcp-server-fetch"}, Env: cfg.Env, SessionTimeout: 60 * time.Second, CloseGrace: 2 * time.Second}, params[0])
    assert.Equal(t, toolserver.Params{Name: "browser", Command: "npx", Args: []string{"@playwright/mcp@latest"}, Env: cfg.Env, SessionTimeout: 60 * time.Second, CloseGrace: 2 * time.Second}, params[1])
}

func TestSummarizeLogsSpanAndStates(t *testing.T) {
    core, logs := observer.New(zap.InfoLevel)
    logger := &logging.Logger{Logger: zap.New(core)}
    f := newFixture()
    o, err := New(Options{
        Launcher: f.launcher,
        Servers:  ServerParams(config.Default().Tools),
        Model:    &llm.MockClient{Text: "Short summary."},
        Logger:   logger,
        Tracer:   tracing.New("news-summarizer", logger),
    })
    require.NoError(t, err)

    _, err = o.Summarize(context.Background(), &models.SummaryRequest{URL: "https://example.com/article"})
    require.NoError(t, err)

    var states []string
    for _, e := range logs.FilterMessage("summary state").All() {
        states = append(states, e.ContextMap()["to"].(string))
    }
    assert.Equal(t, []string{"received", "validating", "tools_starting", "agent_running", "completed"}, states)

    spans := logs.FilterMessage("span completed").All()
    require.Len(t, spans, 1)
    assert.Equal(t, SpanSummarize, spans[0].ContextMap()["operation"])
}
