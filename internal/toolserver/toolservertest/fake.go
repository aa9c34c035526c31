// Package toolservertest provides in-memory tool servers for tests.
package toolservertest

import (
    "context"
    "fmt"
    "sync"

    "github.com/example/news-summarizer/internal/toolserver"
)

// Handler answers one tool call.
type Handler func(ctx context.Context, args map[string]any) (*toolserver.Result, error)

// Server is a fake toolserver.Server with fixed tools.
type Server struct {
    ServerName string
    Tools      []toolserver.Tool
    Handlers   map[string]Handler
    CloseErr   error

    mu     sync.Mutex
    calls  []string
    closed bool
    log    *Log
}

func (s *Server) Name() string { return s.ServerName }

func (s *Server) ListTools(ctx context.Context) ([]toolserver.Tool, error) {
    if s.Closed() { return nil, toolserver.ErrClosed }
    return s.Tools, nil
}

func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*toolserver.Result, error) {
    if s.Closed() { return nil, toolserver.ErrClosed }
    s.mu.Lock()
    s.calls = append(s.calls, name)
    s.mu.Unlock()
    h, ok := s.Handlers[name]
    if !ok { return &toolserver.Result{Text: "ok"}, nil }
    return h(ctx, args)
}

func (s *Server) Close() error {
    s.mu.Lock()
    s.closed = true
    s.mu.Unlock()
    s.log.add("close " + s.ServerName)
    return s.CloseErr
}

func (s *Server) Closed() bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.closed
}

// Calls lists the tool names called, in order.
func (s *Server) Calls() []string {
    s.mu.Lock()
    defer s.mu.Unlock()
    return append([]string(nil), s.calls...)
}

// Launcher hands out the Servers keyed by Params.Name. Names in Fail fail to start.
type Launcher struct {
    Servers map[string]*Server
    Fail    map[string]error
    Log     Log
}

func (l *Launcher) Launch(ctx context.Context, p toolserver.Params) (toolserver.Server, error) {
    l.Log.add("launch " + p.Name)
    if err, ok := l.Fail[p.Name]; ok { return nil, fmt.Errorf("%w: %s: %w", toolserver.ErrStart, p.Name, err) }
    srv, ok := l.Servers[p.Name]
    if !ok { return nil, fmt.Errorf("%w: %s: no such server", toolserver.ErrStart, p.Name) }
    srv.log = &l.Log
    return srv, nil
}

// Log records launch and close events in order.
type Log struct {
    mu     sync.Mutex
    events []string
}

func (l *Log) add(e string) {
    if l == nil { return }
    l.mu.Lock()
    l.events = append(l.events, e)
    l.mu.Unlock()
}

func (l *Log) Events() []string {
    l.mu.Lock()
    defer l.mu.Unlock()
    return append([]string(nil), l.events...)
}

// Text returns a handler that always answers text.
func Text(text string) Handler {
    return func(context.Context, map[string]any) (*toolserver.Result, error) {
        return &toolserver.Result{Text: text}, nil
    }
}

// Schema builds an object schema with the given string properties.
func Schema(props ...string) map[string]any {
    p := map[string]any{}
    for _, name := range props { p[name] = map[string]any{"type": "string"} }
    return map[string]any{"type": "object", "properties": p}
}
