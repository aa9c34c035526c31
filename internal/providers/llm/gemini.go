package llm

import (
    "context"
    "encoding/json"
    "fmt"
    "strings"

    genai "github.com/google/generative-ai-go/genai"
    "google.golang.org/api/option"
)

// GeminiClient drives generative-ai-go chat sessions with function declarations.
// Gemini does not assign call IDs, so they are synthesized per reply.
type GeminiClient struct {
    client    *genai.Client
    model     string
    maxTokens int64
}

func NewGeminiClient(ctx context.Context, apiKey, model string, maxTokens int64) (*GeminiClient, error) {
    c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
    if err != nil { return nil, fmt.Errorf("gemini: %w", err) }
    return &GeminiClient{client: c, model: model, maxTokens: maxTokens}, nil
}

func (g *GeminiClient) Model() string { return g.model }

func (g *GeminiClient) Close() error { return g.client.Close() }

func (g *GeminiClient) Complete(ctx context.Context, req *Request) (*Reply, error) {
    m := g.client.GenerativeModel(g.model)
    if req.Instructions != "" {
        m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.Instructions)}}
    }
    if g.maxTokens > 0 { m.SetMaxOutputTokens(int32(g.maxTokens)) }
    if len(req.Tools) > 0 { m.Tools = []*genai.Tool{{FunctionDeclarations: toGeminiFunctions(req.Tools)}} }

    contents := toGeminiContents(req.Messages)
    if len(contents) == 0 { return nil, fmt.Errorf("gemini: empty conversation") }
    cs := m.StartChat()
    cs.History = contents[:len(contents)-1]
    resp, err := cs.SendMessage(ctx, contents[len(contents)-1].Parts...)
    if err != nil { return nil, fmt.Errorf("gemini: %w", err) }
    return geminiReply(resp)
}

func geminiReply(resp *genai.GenerateContentResponse) (*Reply, error) {
    if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
        return nil, fmt.Errorf("gemini: no candidates")
    }
    reply := &Reply{}
    var text strings.Builder
    for i, part := range resp.Candidates[0].Content.Parts {
        switch p := part.(type) {
        case genai.Text:
            text.WriteString(string(p))
        case genai.FunctionCall:
            args, err := json.Marshal(p.Args)
            if err != nil { return nil, fmt.Errorf("gemini: encode args: %w", err) }
            reply.ToolCalls = append(reply.ToolCalls, ToolCall{ID: fmt.Sprintf("call_%d", i), Name: p.Name, Arguments: string(args)})
        }
    }
    reply.Content = text.String()
    return reply, nil
}

func toGeminiContents(msgs []Message) []*genai.Content {
    var out []*genai.Content
    appendPart := func(role string, part genai.Part) {
        if n := len(out); n > 0 && out[n-1].Role == role {
            out[n-1].Parts = append(out[n-1].Parts, part)
            return
        }
        out = append(out, &genai.Content{Role: role, Parts: []genai.Part{part}})
    }
    for _, m := range msgs {
        switch m.Role {
        case RoleAssistant:
            if m.Content != "" { appendPart("model", genai.Text(m.Content)) }
            for _, tc := range m.ToolCalls {
                args := map[string]any{}
                _ = json.Unmarshal([]byte(argsOrEmpty(tc.Arguments)), &args)
                appendPart("model", genai.FunctionCall{Name: tc.Name, Args: args})
            }
        case RoleTool:
            key := "output"
            if m.IsError { key = "error" }
            appendPart("user", genai.FunctionResponse{Name: m.ToolName, Response: map[string]any{key: m.Content}})
        default:
            appendPart("user", genai.Text(m.Content))
        }
    }
    return out
}

func toGeminiFunctions(specs []ToolSpec) []*genai.FunctionDeclaration {
    out := make([]*genai.FunctionDeclaration, 0, len(specs))
    for _, s := range specs {
        fd := &genai.FunctionDeclaration{Name: s.Name, Description: s.Description}
        if props, _ := s.Parameters["properties"].(map[string]any); len(props) > 0 {
            fd.Parameters = toGeminiSchema(s.Parameters)
        }
        out = append(out, fd)
    }
    return out
}

// toGeminiSchema converts the JSON Schema subset MCP servers publish.
func toGeminiSchema(js map[string]any) *genai.Schema {
    s := &genai.Schema{}
    if d, ok := js["description"].(string); ok { s.Description = d }
    switch js["type"] {
    case "string":
        s.Type = genai.TypeString
        s.Enum = stringList(js["enum"])
    case "number":
        s.Type = genai.TypeNumber
    case "integer":
        s.Type = genai.TypeInteger
    case "boolean":
        s.Type = genai.TypeBoolean
    case "array":
        s.Type = genai.TypeArray
        if items, ok := js["items"].(map[string]any); ok { s.Items = toGeminiSchema(items) }
    default:
        s.Type = genai.TypeObject
        if props, ok := js["properties"].(map[string]any); ok {
            s.Properties = make(map[string]*genai.Schema, len(props))
            for name, raw := range props {
                if p, ok := raw.(map[string]any); ok { s.Properties[name] = toGeminiSchema(p) }
            }
        }
        s.Required = requiredFields(js)
    }
    return s
}

func stringList(v any) []string {
    switch vv := v.(type) {
    case []string:
        return vv
    case []any:
        out := make([]string, 0, len(vv))
        for _, x := range vv { if s, ok := x.(string); ok { out = append(out, s) } }
        return out
    }
    return nil
}
