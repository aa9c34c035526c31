package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/gin-gonic/gin"
    "github.com/joho/godotenv"
    "go.uber.org/zap"

    "github.com/example/news-summarizer/internal/agents"
    "github.com/example/news-summarizer/internal/api"
    "github.com/example/news-summarizer/internal/config"
    "github.com/example/news-summarizer/internal/logging"
    "github.com/example/news-summarizer/internal/monitoring"
    "github.com/example/news-summarizer/internal/orchestrator"
    "github.com/example/news-summarizer/internal/providers/llm"
    "github.com/example/news-summarizer/internal/toolserver"
    "github.com/example/news-summarizer/internal/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
    // Load .env if present (ignored if missing)
    _ = godotenv.Load()

    cfg, err := config.Load()
    if err != nil { log.Fatalf("config: %v", err) }

    logger, err := logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
    if err != nil { log.Fatalf("logger: %v", err) }
    defer func() { _ = logger.Sync() }()

    if err := run(cfg, logger); err != nil {
        logger.Error("server stopped", zap.Error(err))
        os.Exit(1)
    }
}

func run(cfg *config.Config, logger *logging.Logger) error {
    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    model, err := llm.NewFromConfig(ctx, cfg.LLM)
    if err != nil { return err }
    defer func() {
        if err := llm.Close(model); err != nil { logger.Warn("close model client", zap.Error(err)) }
    }()
    if model.Model() == "mock" {
        logger.Warn("no language model configured, summaries will be placeholders")
    }
    instructions, err := agents.LoadInstructions(cfg.Agent.InstructionsFile)
    if err != nil { return err }

    metrics := monitoring.NewMetrics()
    tracer := tracing.New("news-summarizer", logger.Named("trace"))
    orch, err := orchestrator.New(orchestrator.Options{
        Launcher:     toolserver.StdioLauncher{Logger: logger.Named("toolserver")},
        Servers:      orchestrator.ServerParams(cfg.Tools),
        Model:        model,
        Instructions: instructions,
        AgentName:    cfg.Agent.Name,
        MaxTurns:     cfg.Agent.MaxTurns,
        Timeout:      cfg.Summary.Timeout,
        Language:     cfg.Summary.DefaultLanguage,
        Logger:       logger,
        Metrics:      metrics,
        Tracer:       tracer,
    })
    if err != nil { return err }

    if !cfg.Logging.Development { gin.SetMode(gin.ReleaseMode) }
    srv := api.NewServer(api.Options{
        Summarizer:     orch,
        Logger:         logger,
        Metrics:        metrics,
        Tracer:         tracer,
        MetricsEnabled: cfg.Server.MetricsEnabled,
    })
    httpSrv := &http.Server{Addr: cfg.Addr(), Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}

    errCh := make(chan error, 1)
    go func() {
        logger.Info("server listening", zap.String("addr", cfg.Addr()), zap.String("model", model.Model()))
        if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) { errCh <- err }
        close(errCh)
    }()

    select {
    case err := <-errCh:
        return err
    case <-ctx.Done():
    }
    logger.Info("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
    defer cancel()
    return httpSrv.Shutdown(shutdownCtx)
}
