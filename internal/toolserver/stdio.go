package toolserver

import (
    "bufio"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "strings"
    "sync"
    "time"

    "github.com/mark3labs/mcp-go/client"
    "github.com/mark3labs/mcp-go/client/transport"
    "github.com/mark3labs/mcp-go/mcp"
    "go.uber.org/zap"

    "github.com/example/news-summarizer/internal/logging"
)

const (
    clientName    = "news-summarizer"
    clientVersion = "1.0.0"

    defaultSessionTimeout = 60 * time.Second
    defaultCloseGrace     = 2 * time.Second

    maxStderrLine = 1 << 20
)

// StdioLauncher spawns MCP servers as subprocesses and speaks to them over stdio.
// Each child runs under its own context; Close cancels it, killing the child,
// when the server has not exited within the close grace after stdin closes.
type StdioLauncher struct {
    Logger *logging.Logger
}

func (l StdioLauncher) Launch(ctx context.Context, p Params) (Server, error) {
    if strings.TrimSpace(p.Command) == "" {
        return nil, fmt.Errorf("%w: %s: empty command", ErrStart, p.Name)
    }
    if p.SessionTimeout <= 0 { p.SessionTimeout = defaultSessionTimeout }
    if p.CloseGrace <= 0 { p.CloseGrace = defaultCloseGrace }
    logger := l.Logger
    if logger == nil { logger = logging.NewNop() }

    procCtx, kill := context.WithCancel(context.Background())
    tr := transport.NewStdio(p.Command, p.Env, p.Args...)
    if err := tr.Start(procCtx); err != nil {
        kill()
        return nil, fmt.Errorf("%w: %s: %w", ErrStart, p.Name, err)
    }
    c := client.NewClient(tr)
    s := &stdioServer{name: p.Name, timeout: p.SessionTimeout, grace: p.CloseGrace, client: c, kill: kill}
    if stderr, ok := client.GetStderr(c); ok {
        go drainStderr(stderr, logger.With(zap.String("server", p.Name)))
    }

    initCtx, cancel := s.session(ctx)
    defer cancel()
    req := mcp.InitializeRequest{}
    req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
    req.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: clientVersion}
    if _, err := c.Initialize(initCtx, req); err != nil {
        _ = s.Close()
        return nil, fmt.Errorf("%w: %s: initialize: %w", ErrStart, p.Name, err)
    }
    return s, nil
}

// drainStderr logs the child's stderr line by line until the pipe closes.
// Lines too long to scan are discarded so the child never blocks on the pipe.
func drainStderr(r io.Reader, logger *logging.Logger) {
    sc := bufio.NewScanner(r)
    sc.Buffer(make([]byte, 0, 64*1024), maxStderrLine)
    for sc.Scan() {
        logger.Debug("tool server stderr", zap.String("line", sc.Text()))
    }
    _, _ = io.Copy(io.Discard, r)
}

type stdioServer struct {
    name    string
    timeout time.Duration
    grace   time.Duration
    client  *client.Client
    kill    context.CancelFunc

    mu     sync.Mutex
    closed bool
}

func (s *stdioServer) Name() string { return s.name }

// session bounds one request to the server by the session timeout.
func (s *stdioServer) session(ctx context.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(ctx, s.timeout)
}

func (s *stdioServer) isClosed() bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.closed
}

func (s *stdioServer) ListTools(ctx context.Context) ([]Tool, error) {
    if s.isClosed() { return nil, ErrClosed }
    ctx, cancel := s.session(ctx)
    defer cancel()
    res, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
    if err != nil { return nil, fmt.Errorf("%s: list tools: %w", s.name, err) }
    out := make([]Tool, 0, len(res.Tools))
    for _, t := range res.Tools {
        out = append(out, Tool{Name: t.Name, Description: t.Description, InputSchema: inputSchema(t)})
    }
    return out, nil
}

func (s *stdioServer) CallTool(ctx context.Context, name string, args map[string]any) (*Result, error) {
    if s.isClosed() { return nil, ErrClosed }
    ctx, cancel := s.session(ctx)
    defer cancel()
    req := mcp.CallToolRequest{}
    req.Params.Name = name
    req.Params.Arguments = args
    res, err := s.client.CallTool(ctx, req)
    if err != nil { return nil, fmt.Errorf("%s: call %s: %w", s.name, name, err) }
    return &Result{Text: flattenContent(res.Content), IsError: res.IsError}, nil
}

// Close closes the child's stdin and waits up to the close grace for it to
// exit, then kills it. It returns once the child has been reaped or a second
// grace has passed after the kill.
func (s *stdioServer) Close() error {
    s.mu.Lock()
    if s.closed { s.mu.Unlock(); return nil }
    s.closed = true
    s.mu.Unlock()
    defer s.kill()

    done := make(chan error, 1)
    go func() { done <- s.client.Close() }()
    grace := time.NewTimer(s.grace)
    defer grace.Stop()
    select {
    case err := <-done:
        return err
    case <-grace.C:
    }

    s.kill()
    grace.Reset(s.grace)
    select {
    case <-done:
    case <-grace.C:
        return fmt.Errorf("%s: %w: child still running after kill", s.name, ErrKilled)
    }
    return fmt.Errorf("%s: %w after %s", s.name, ErrKilled, s.grace)
}

// inputSchema goes through the wire form so raw and structured schemas come out the same.
func inputSchema(t mcp.Tool) map[string]any {
    b, err := json.Marshal(t)
    if err != nil { return emptySchema() }
    var wire struct {
        InputSchema map[string]any `json:"inputSchema"`
    }
    if err := json.Unmarshal(b, &wire); err != nil || wire.InputSchema == nil { return emptySchema() }
    if _, ok := wire.InputSchema["type"]; !ok { wire.InputSchema["type"] = "object" }
    if _, ok := wire.InputSchema["properties"]; !ok { wire.InputSchema["properties"] = map[string]any{} }
    return wire.InputSchema
}

func emptySchema() map[string]any {
    return map[string]any{"type": "object", "properties": map[string]any{}}
}

func flattenContent(contents []mcp.Content) string {
    parts := make([]string, 0, len(contents))
    for _, c := range contents {
        switch v := c.(type) {
        case mcp.TextContent:
            parts = append(parts, v.Text)
        case *mcp.TextContent:
            parts = append(parts, v.Text)
        case mcp.ImageContent:
            parts = append(parts, fmt.Sprintf("[image %s]", v.MIMEType))
        default:
            b, err := json.Marshal(v)
            if err == nil { parts = append(parts, string(b)) }
        }
    }
    return strings.Join(parts, "\n")
}
