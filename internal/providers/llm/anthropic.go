package llm

import (
    "context"
    "encoding/json"
    "fmt"
    "strings"

    "github.com/anthropics/anthropic-sdk-go"
    "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient drives the Messages API with tool use.
type AnthropicClient struct {
    client    anthropic.Client
    model     string
    maxTokens int64
}

// NewAnthropicClient builds a client with SDK retries off. Extra opts are applied last.
func NewAnthropicClient(apiKey, model string, maxTokens int64, opts ...option.RequestOption) *AnthropicClient {
    if maxTokens <= 0 { maxTokens = 4096 }
    opts = append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
    return &AnthropicClient{
        client:    anthropic.NewClient(opts...),
        model:     model,
        maxTokens: maxTokens,
    }
}

func (c *AnthropicClient) Model() string { return c.model }

func (c *AnthropicClient) Complete(ctx context.Context, req *Request) (*Reply, error) {
    params := anthropic.MessageNewParams{
        Model:     anthropic.Model(c.model),
        MaxTokens: c.maxTokens,
        Messages:  toAnthropicMessages(req.Messages),
    }
    if req.Instructions != "" { params.System = []anthropic.TextBlockParam{{Text: req.Instructions}} }
    if len(req.Tools) > 0 { params.Tools = toAnthropicTools(req.Tools) }

    msg, err := c.client.Messages.New(ctx, params)
    if err != nil { return nil, fmt.Errorf("anthropic: %w", err) }
    var text strings.Builder
    reply := &Reply{}
    for _, block := range msg.Content {
        switch v := block.AsAny().(type) {
        case anthropic.TextBlock:
            text.WriteString(v.Text)
        case anthropic.ToolUseBlock:
            reply.ToolCalls = append(reply.ToolCalls, ToolCall{ID: v.ID, Name: v.Name, Arguments: string(v.Input)})
        }
    }
    reply.Content = text.String()
    return reply, nil
}

// toAnthropicMessages folds consecutive tool results into one user turn, as the API requires.
func toAnthropicMessages(msgs []Message) []anthropic.MessageParam {
    out := make([]anthropic.MessageParam, 0, len(msgs))
    var results []anthropic.ContentBlockParamUnion
    flush := func() {
        if len(results) == 0 { return }
        out = append(out, anthropic.NewUserMessage(results...))
        results = nil
    }
    for _, m := range msgs {
        switch m.Role {
        case RoleTool:
            results = append(results, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, m.IsError))
        case RoleAssistant:
            flush()
            var blocks []anthropic.ContentBlockParamUnion
            if m.Content != "" { blocks = append(blocks, anthropic.NewTextBlock(m.Content)) }
            for _, tc := range m.ToolCalls {
                blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, json.RawMessage(argsOrEmpty(tc.Arguments)), tc.Name))
            }
            out = append(out, anthropic.NewAssistantMessage(blocks...))
        default:
            flush()
            out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
        }
    }
    flush()
    return out
}

func toAnthropicTools(specs []ToolSpec) []anthropic.ToolUnionParam {
    out := make([]anthropic.ToolUnionParam, 0, len(specs))
    for _, s := range specs {
        tool := &anthropic.ToolParam{
            Name:        s.Name,
            InputSchema: anthropic.ToolInputSchemaParam{Properties: s.Parameters["properties"], Required: requiredFields(s.Parameters)},
        }
        if s.Description != "" { tool.Description = anthropic.String(s.Description) }
        out = append(out, anthropic.ToolUnionParam{OfTool: tool})
    }
    return out
}

// requiredFields reads the "required" list of a JSON schema decoded either from JSON or built in Go.
func requiredFields(schema map[string]any) []string {
    switch v := schema["required"].(type) {
    case []string:
        return v
    case []any:
        out := make([]string, 0, len(v))
        for _, x := range v { if s, ok := x.(string); ok { out = append(out, s) } }
        return out
    }
    return nil
}
