package llm

import (
    "context"
    "errors"
    "fmt"

    "github.com/openai/openai-go"
    "github.com/openai/openai-go/option"
)

// OpenAIClient drives Chat Completions with function tools.
type OpenAIClient struct {
    client    openai.Client
    model     string
    maxTokens int64
}

// NewOpenAIClient builds a client. SDK-level retries are off: a failed turn fails the run.
func NewOpenAIClient(apiKey, baseURL, model string, maxTokens int64) *OpenAIClient {
    opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
    if baseURL != "" { opts = append(opts, option.WithBaseURL(baseURL)) }
    return &OpenAIClient{client: openai.NewClient(opts...), model: model, maxTokens: maxTokens}
}

func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Complete(ctx context.Context, req *Request) (*Reply, error) {
    params := openai.ChatCompletionNewParams{
        Model:    openai.ChatModel(c.model),
        Messages: toOpenAIMessages(req),
    }
    if c.maxTokens > 0 { params.MaxCompletionTokens = openai.Int(c.maxTokens) }
    if len(req.Tools) > 0 { params.Tools = toOpenAITools(req.Tools) }

    resp, err := c.client.Chat.Completions.New(ctx, params)
    if err != nil { return nil, fmt.Errorf("openai: %w", err) }
    if len(resp.Choices) == 0 { return nil, errors.New("openai: no choices") }
    msg := resp.Choices[0].Message
    reply := &Reply{Content: msg.Content}
    for _, tc := range msg.ToolCalls {
        reply.ToolCalls = append(reply.ToolCalls, ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
    }
    return reply, nil
}

func toOpenAIMessages(req *Request) []openai.ChatCompletionMessageParamUnion {
    out := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
    if req.Instructions != "" { out = append(out, openai.SystemMessage(req.Instructions)) }
    for _, m := range req.Messages {
        switch m.Role {
        case RoleAssistant:
            if len(m.ToolCalls) == 0 { out = append(out, openai.AssistantMessage(m.Content)); continue }
            asst := openai.ChatCompletionAssistantMessageParam{}
            if m.Content != "" {
                asst.Content = openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(m.Content)}
            }
            for _, tc := range m.ToolCalls {
                asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
                    ID:       tc.ID,
                    Function: openai.ChatCompletionMessageToolCallFunctionParam{Name: tc.Name, Arguments: argsOrEmpty(tc.Arguments)},
                })
            }
            out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
        case RoleTool:
            out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
        default:
            out = append(out, openai.UserMessage(m.Content))
        }
    }
    return out
}

func toOpenAITools(specs []ToolSpec) []openai.ChatCompletionToolParam {
    out := make([]openai.ChatCompletionToolParam, 0, len(specs))
    for _, s := range specs {
        fn := openai.FunctionDefinitionParam{Name: s.Name, Parameters: openai.FunctionParameters(s.Parameters)}
        if s.Description != "" { fn.Description = openai.String(s.Description) }
        out = append(out, openai.ChatCompletionToolParam{Function: fn})
    }
    return out
}

func argsOrEmpty(args string) string {
    if args == "" { return "{}" }
    return args
}
