package agents

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "strings"

    "go.uber.org/zap"

    "github.com/example/news-summarizer/internal/logging"
    "github.com/example/news-summarizer/internal/monitoring"
    "github.com/example/news-summarizer/internal/providers/llm"
    "github.com/example/news-summarizer/internal/tools"
)

const DefaultMaxTurns = 10

// ErrMaxTurns is returned when the model keeps calling tools past the turn budget.
var ErrMaxTurns = errors.New("agent exceeded max turns")

// ErrModel wraps any failure returned by the model provider.
var ErrModel = errors.New("model call failed")

// Runner drives an Agent's tool-calling loop to a final answer.
type Runner struct {
    MaxTurns int
    Logger   *logging.Logger
    Metrics  *monitoring.Metrics
}

func NewRunner(maxTurns int, logger *logging.Logger, metrics *monitoring.Metrics) *Runner {
    if maxTurns <= 0 { maxTurns = DefaultMaxTurns }
    if logger == nil { logger = logging.NewNop() }
    return &Runner{MaxTurns: maxTurns, Logger: logger, Metrics: metrics}
}

// Run sends task to the agent's model and executes tool calls until the model
// answers without any. The returned text is the model's final output, untrimmed.
func (r *Runner) Run(ctx context.Context, a *Agent, task string) (string, error) {
    reg, err := tools.FromServers(ctx, a.Servers)
    if err != nil { return "", fmt.Errorf("agent %s: tools: %w", a.Name, err) }

    specs := make([]llm.ToolSpec, 0, reg.Len())
    for _, t := range reg.Specs() {
        specs = append(specs, llm.ToolSpec{Name: t.Name, Description: t.Description, Parameters: t.InputSchema})
    }
    log := r.Logger.With(zap.String("agent", a.Name), zap.String("model", a.Model.Model()))
    log.Debug("agent started", zap.Int("tools", len(specs)))

    req := &llm.Request{
        Instructions: a.Instructions,
        Messages:     []llm.Message{{Role: llm.RoleUser, Content: task}},
        Tools:        specs,
    }
    for turn := 1; turn <= r.MaxTurns; turn++ {
        if err := ctx.Err(); err != nil { return "", err }
        reply, err := a.Model.Complete(ctx, req)
        if err != nil {
            r.Metrics.RecordAgentTurns(turn)
            return "", fmt.Errorf("%w: turn %d: %w", ErrModel, turn, err)
        }
        if len(reply.ToolCalls) == 0 {
            r.Metrics.RecordAgentTurns(turn)
            log.Debug("agent finished", zap.Int("turns", turn))
            return reply.Content, nil
        }
        req.Messages = append(req.Messages, llm.Message{Role: llm.RoleAssistant, Content: reply.Content, ToolCalls: reply.ToolCalls})
        for _, call := range reply.ToolCalls {
            msg, err := r.callTool(ctx, reg, call)
            if err != nil { r.Metrics.RecordAgentTurns(turn); return "", err }
            log.Debug("tool called", zap.Int("turn", turn), zap.String("tool", call.Name), zap.Bool("is_error", msg.IsError))
            req.Messages = append(req.Messages, msg)
        }
    }
    r.Metrics.RecordAgentTurns(r.MaxTurns)
    return "", fmt.Errorf("%w (%d)", ErrMaxTurns, r.MaxTurns)
}

// callTool runs one call. Bad arguments and server-reported failures go back
// to the model as error results; unknown tools and transport failures end the run.
func (r *Runner) callTool(ctx context.Context, reg *tools.Registry, call llm.ToolCall) (llm.Message, error) {
    msg := llm.Message{Role: llm.RoleTool, ToolCallID: call.ID, ToolName: call.Name}
    args, err := decodeArguments(call.Arguments)
    if err != nil {
        msg.Content, msg.IsError = "invalid tool arguments: "+err.Error(), true
        return msg, nil
    }
    res, err := reg.Call(ctx, call.Name, args)
    r.Metrics.RecordToolCall(call.Name, err)
    if err != nil { return msg, fmt.Errorf("tool %s: %w", call.Name, err) }
    msg.Content, msg.IsError = res.Text, res.IsError
    return msg, nil
}

func decodeArguments(raw string) (map[string]any, error) {
    raw = strings.TrimSpace(raw)
    if raw == "" { return map[string]any{}, nil }
    var args map[string]any
    if err := json.Unmarshal([]byte(raw), &args); err != nil { return nil, err }
    if args == nil { args = map[string]any{} }
    return args, nil
}
