// Package toolserver starts and talks to the tool servers an agent uses.
//
// A tool server is a subprocess speaking the Model Context Protocol over its
// stdin/stdout. Servers are request-scoped: Set.Run launches a fresh group for
// one call and releases every member before it returns, on success, error,
// panic or cancellation alike. Nothing is pooled.
package toolserver

import (
    "context"
    "errors"
    "time"
)

// ErrStart marks any failure to spawn or initialize a tool server.
var ErrStart = errors.New("tool server failed to start")

// ErrKilled is returned by Close when the server ignored stdin closing and was killed.
var ErrKilled = errors.New("tool server killed")

// ErrClosed is returned by calls on a server that has been released.
var ErrClosed = errors.New("tool server closed")

// Params describes how to start one tool server.
type Params struct {
    Name           string
    Command        string
    Args           []string
    Env            []string
    SessionTimeout time.Duration
    // CloseGrace is how long Close waits for a clean exit before killing the child.
    CloseGrace     time.Duration
}

// Tool is one capability advertised by a server. InputSchema is a JSON schema object.
type Tool struct {
    Name        string
    Description string
    InputSchema map[string]any
}

// Result is the flattened text of a tool call. IsError is set when the
// server reports the call itself failed, as opposed to the transport failing.
type Result struct {
    Text    string
    IsError bool
}

// Server is a live connection to a started tool server.
type Server interface {
    Name() string
    ListTools(ctx context.Context) ([]Tool, error)
    CallTool(ctx context.Context, name string, args map[string]any) (*Result, error)
    Close() error
}

// Launcher starts tool servers.
type Launcher interface {
    Launch(ctx context.Context, p Params) (Server, error)
}
