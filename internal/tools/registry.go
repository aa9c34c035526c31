package tools

import (
    "context"
    "errors"
    "fmt"

    "github.com/example/news-summarizer/internal/toolserver"
)

var (
    ErrDuplicateTool = errors.New("duplicate tool name")
    ErrUnknownTool   = errors.New("unknown tool")
)

// Tool is a capability advertised by a live tool server.
type Tool struct {
    Spec   toolserver.Tool
    Server toolserver.Server
}

func (t *Tool) Name() string { return t.Spec.Name }

func (t *Tool) Execute(ctx context.Context, inputs map[string]any) (*toolserver.Result, error) {
    if inputs == nil { inputs = map[string]any{} }
    return t.Server.CallTool(ctx, t.Spec.Name, inputs)
}

// Registry maps tool names to the server that owns them. Order is registration order.
type Registry struct {
    tools map[string]*Tool
    order []string
}

func NewRegistry() *Registry {
    return &Registry{tools: map[string]*Tool{}}
}

func (r *Registry) Register(t *Tool) error {
    if prev, ok := r.tools[t.Name()]; ok {
        return fmt.Errorf("%w: %q offered by both %s and %s", ErrDuplicateTool, t.Name(), prev.Server.Name(), t.Server.Name())
    }
    r.tools[t.Name()] = t
    r.order = append(r.order, t.Name())
    return nil
}

func (r *Registry) Get(name string) (*Tool, bool) {
    t, ok := r.tools[name]
    return t, ok
}

func (r *Registry) Len() int { return len(r.order) }

// Specs lists every registered tool in registration order.
func (r *Registry) Specs() []toolserver.Tool {
    out := make([]toolserver.Tool, 0, len(r.order))
    for _, name := range r.order { out = append(out, r.tools[name].Spec) }
    return out
}

func (r *Registry) Call(ctx context.Context, name string, inputs map[string]any) (*toolserver.Result, error) {
    t, ok := r.Get(name)
    if !ok { return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name) }
    return t.Execute(ctx, inputs)
}

// FromServers lists the tools of each server, in order, into one registry.
func FromServers(ctx context.Context, servers []toolserver.Server) (*Registry, error) {
    reg := NewRegistry()
    for _, srv := range servers {
        specs, err := srv.ListTools(ctx)
        if err != nil { return nil, err }
        for _, spec := range specs {
            if err := reg.Register(&Tool{Spec: spec, Server: srv}); err != nil { return nil, err }
        }
    }
    return reg, nil
}
