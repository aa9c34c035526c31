package orchestrator

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "go.uber.org/zap"

    "github.com/example/news-summarizer/internal/agents"
    "github.com/example/news-summarizer/internal/config"
    "github.com/example/news-summarizer/internal/logging"
    "github.com/example/news-summarizer/internal/models"
    "github.com/example/news-summarizer/internal/monitoring"
    "github.com/example/news-summarizer/internal/providers/llm"
    "github.com/example/news-summarizer/internal/toolserver"
    "github.com/example/news-summarizer/internal/tracing"
)

const SpanSummarize = "summarize_news"

var (
    // ErrInvalidRequest marks input rejected before any tool server starts.
    ErrInvalidRequest = errors.New("invalid request")
    // ErrEmptySummary is returned when the agent finishes without any text.
    ErrEmptySummary = errors.New("agent returned no summary")
)

// Options wires an Orchestrator. Zero-valued optional fields fall back to defaults.
type Options struct {
    Launcher     toolserver.Launcher
    Servers      []toolserver.Params
    Model        llm.Client
    Instructions *agents.Instructions
    AgentName    string
    MaxTurns     int
    Timeout      time.Duration
    Language     string
    Logger       *logging.Logger
    Metrics      *monitoring.Metrics
    Tracer       *tracing.Tracer
}

// Orchestrator runs one summarize call end to end. It holds no per-call state
// and is safe for concurrent use.
type Orchestrator struct {
    tools        *toolserver.Set
    servers      []toolserver.Params
    runner       *agents.Runner
    model        llm.Client
    instructions *agents.Instructions
    agentName    string
    timeout      time.Duration
    language     string
    logger       *logging.Logger
    metrics      *monitoring.Metrics
    tracer       *tracing.Tracer
}

func New(opts Options) (*Orchestrator, error) {
    if opts.Launcher == nil { return nil, errors.New("orchestrator: launcher is required") }
    if opts.Model == nil { return nil, errors.New("orchestrator: model is required") }
    if opts.Logger == nil { opts.Logger = logging.NewNop() }
    if opts.Instructions == nil {
        ins, err := agents.LoadInstructions("")
        if err != nil { return nil, err }
        opts.Instructions = ins
    }
    if opts.AgentName == "" { opts.AgentName = "news_summarizer" }
    if opts.Language == "" { opts.Language = models.DefaultLanguage }
    if opts.Tracer == nil { opts.Tracer = tracing.New("news-summarizer", opts.Logger) }
    log := opts.Logger.Named("orchestrator")
    return &Orchestrator{
        tools:        &toolserver.Set{Launcher: opts.Launcher, Logger: log, Metrics: opts.Metrics},
        servers:      opts.Servers,
        runner:       agents.NewRunner(opts.MaxTurns, log, opts.Metrics),
        model:        opts.Model,
        instructions: opts.Instructions,
        agentName:    opts.AgentName,
        timeout:      opts.Timeout,
        language:     opts.Language,
        logger:       log,
        metrics:      opts.Metrics,
        tracer:       opts.Tracer,
    }, nil
}

// ServerParams builds the fetch and browser launch parameters, in launch order.
func ServerParams(cfg config.ToolsConfig) []toolserver.Params {
    return []toolserver.Params{
        {Name: "fetch", Command: cfg.FetchCommand, Args: cfg.FetchArgs, Env: cfg.Env, SessionTimeout: cfg.SessionTimeout, CloseGrace: cfg.CloseGrace},
        {Name: "browser", Command: cfg.BrowserCommand, Args: cfg.BrowserArgs, Env: cfg.Env, SessionTimeout: cfg.SessionTimeout, CloseGrace: cfg.CloseGrace},
    }
}

// Summarize validates req, starts the tool servers, runs the agent and
// releases the servers before returning.
func (o *Orchestrator) Summarize(ctx context.Context, req *models.SummaryRequest) (*models.SummaryResponse, error) {
    r := &run{logger: o.logger.With(zap.String("url", req.URL))}
    r.transition(models.StatusReceived)
    done := o.metrics.SummaryStarted()
    outcome := OutcomePanic
    defer func() { done(outcome) }()

    resp, err := o.summarize(ctx, r, req)
    outcome = Outcome(err)
    if err != nil {
        r.fail(err)
        return nil, err
    }
    r.transition(models.StatusCompleted)
    return resp, nil
}

func (o *Orchestrator) summarize(ctx context.Context, r *run, req *models.SummaryRequest) (*models.SummaryResponse, error) {
    r.transition(models.StatusValidating)
    u, err := req.NormalizedURL()
    if err != nil { return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err) }
    s := models.Summary{URL: u, Language: req.LanguageOr(o.language)}
    instructions, err := o.instructions.Render(s.Language)
    if err != nil { return nil, err }

    if o.timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, o.timeout)
        defer cancel()
    }
    span, ctx := o.tracer.StartSpan(ctx, SpanSummarize)
    span.SetTag("url", s.URL.String())
    span.SetTag("language", s.Language)
    defer span.End()

    var output string
    r.transition(models.StatusToolsStarting)
    err = o.tools.Run(ctx, o.servers, func(ctx context.Context, servers []toolserver.Server) error {
        r.transition(models.StatusAgentRunning)
        a := &agents.Agent{Name: o.agentName, Instructions: instructions, Model: o.model, Servers: servers}
        var err error
        output, err = o.runner.Run(ctx, a, agents.Task(s.URL.String()))
        return err
    })
    if err == nil && strings.TrimSpace(output) == "" { err = ErrEmptySummary }
    if err != nil {
        span.SetError(err)
        return nil, err
    }
    return models.NewSummaryResponse(s.URL, strings.TrimSpace(output)), nil
}

// run tracks the state of one call for logging.
type run struct {
    logger *logging.Logger
    status models.Status
}

func (r *run) transition(to models.Status) {
    r.logger.Info("summary state", zap.String("from", string(r.status)), zap.String("to", string(to)))
    r.status = to
}

func (r *run) fail(err error) {
    r.logger.Error("summary state", zap.String("from", string(r.status)), zap.String("to", string(models.StatusFailed)), zap.Error(err))
    r.status = models.StatusFailed
}
