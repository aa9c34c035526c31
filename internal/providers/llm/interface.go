package llm

import (
    "context"
)

type Role string

const (
    RoleUser      Role = "user"
    RoleAssistant Role = "assistant"
    RoleTool      Role = "tool"
)

// ToolCall is a model request to run one tool. Arguments is raw JSON.
type ToolCall struct {
    ID        string
    Name      string
    Arguments string
}

// Message is one entry of the provider-neutral conversation.
// Tool messages carry the result of the call named by ToolCallID.
type Message struct {
    Role       Role
    Content    string
    ToolCalls  []ToolCall
    ToolCallID string
    ToolName   string
    IsError    bool
}

// ToolSpec advertises a callable tool to the model. Parameters is a JSON schema object.
type ToolSpec struct {
    Name        string
    Description string
    Parameters  map[string]any
}

type Request struct {
    Instructions string
    Messages     []Message
    Tools        []ToolSpec
}

// Reply is one model turn: final text when ToolCalls is empty.
type Reply struct {
    Content   string
    ToolCalls []ToolCall
}

// Client is the interface the agent runner drives.
// Any provider implementation should satisfy this.
type Client interface {
    Complete(ctx context.Context, req *Request) (*Reply, error)
    Model() string
}
