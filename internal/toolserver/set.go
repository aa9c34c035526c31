package toolserver

import (
    "context"

    "go.uber.org/zap"

    "github.com/example/news-summarizer/internal/logging"
    "github.com/example/news-summarizer/internal/monitoring"
)

// Set launches a group of tool servers for the lifetime of one call.
type Set struct {
    Launcher Launcher
    Logger   *logging.Logger
    Metrics  *monitoring.Metrics
}

// Run starts every server in params order, hands the live servers to fn and
// closes them in reverse order when fn returns. If a launch fails, the servers
// already started are closed and fn is not called. Close errors are logged,
// never returned.
func (s *Set) Run(ctx context.Context, params []Params, fn func(ctx context.Context, servers []Server) error) error {
    servers := make([]Server, 0, len(params))
    defer func() {
        for i := len(servers) - 1; i >= 0; i-- {
            if err := servers[i].Close(); err != nil {
                s.Logger.Warn("tool server close failed", zap.String("server", servers[i].Name()), zap.Error(err))
                continue
            }
            s.Logger.Debug("tool server released", zap.String("server", servers[i].Name()))
        }
    }()

    for _, p := range params {
        if err := ctx.Err(); err != nil { return err }
        srv, err := s.Launcher.Launch(ctx, p)
        s.Metrics.RecordToolServerStart(p.Name, err)
        if err != nil {
            s.Logger.Warn("tool server launch failed", zap.String("server", p.Name), zap.String("command", p.Command), zap.Error(err))
            return err
        }
        s.Logger.Debug("tool server started", zap.String("server", p.Name), zap.String("command", p.Command))
        servers = append(servers, srv)
    }
    return fn(ctx, servers)
}
