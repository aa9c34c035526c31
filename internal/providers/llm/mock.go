package llm

import (
    "context"
)

const mockSummary = "No language model is configured; this is a placeholder summary."

// MockClient is used when no real provider is configured. It never calls tools.
type MockClient struct{ Text string }

func (m *MockClient) Complete(ctx context.Context, req *Request) (*Reply, error) {
    if err := ctx.Err(); err != nil { return nil, err }
    text := m.Text
    if text == "" { text = mockSummary }
    return &Reply{Content: text}, nil
}

func (m *MockClient) Model() string { return "mock" }

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, req *Request) (*Reply, error)

func (f ClientFunc) Complete(ctx context.Context, req *Request) (*Reply, error) { return f(ctx, req) }

func (f ClientFunc) Model() string { return "func" }
