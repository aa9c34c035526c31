package toolserver

import (
    "context"
    "fmt"
    "os"
    "strconv"
    "strings"
    "testing"
    "time"

    "github.com/mark3labs/mcp-go/mcp"
    "github.com/mark3labs/mcp-go/server"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"
    "go.uber.org/zap/zaptest/observer"

    "github.com/example/news-summarizer/internal/logging"
)

const (
    helperEnv    = "NEWS_SUMMARIZER_TOOLSERVER_HELPER"
    helperPIDEnv = "NEWS_SUMMARIZER_TOOLSERVER_PIDFILE"
)

// TestMain doubles as a stdio MCP server when re-executed by the launcher tests.
// Modes: "1" serves and exits on EOF, "chatty" floods stderr first,
// "stubborn" keeps running after stdin closes.
func TestMain(m *testing.M) {
    switch os.Getenv(helperEnv) {
    case "":
        os.Exit(m.Run())
    case "chatty":
        for i := 0; i < 2000; i++ {
            fmt.Fprintf(os.Stderr, "installing package %04d %s\n", i, strings.Repeat(".", 70))
        }
    case "stubborn":
        if path := os.Getenv(helperPIDEnv); path != "" {
            _ = os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
        }
        serveHelper()
        time.Sleep(time.Minute)
        os.Exit(0)
    }
    serveHelper()
    os.Exit(0)
}

func serveHelper() {
    s := server.NewMCPServer("helper", "1.0.0")
    s.AddTool(mcp.NewTool("echo",
        mcp.WithDescription("Echo the text back"),
        mcp.WithString("text", mcp.Required(), mcp.Description("text to echo")),
    ), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
        text, _ := req.GetArguments()["text"].(string)
        return mcp.NewToolResultText(text), nil
    })
    s.AddTool(mcp.NewTool("fail", mcp.WithDescription("Always reports an error")),
        func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
            return mcp.NewToolResultError("page blocked"), nil
        })
    s.AddTool(mcp.NewTool("sleep", mcp.WithDescription("Takes a long time")),
        func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
            select {
            case <-time.After(5 * time.Second):
            case <-ctx.Done():
            }
            return mcp.NewToolResultText("done"), nil
        })
    _ = server.ServeStdio(s)
}

func launchHelper(t *testing.T, timeout time.Duration) Server {
    t.Helper()
    return launchHelperWith(t, StdioLauncher{}, Params{Name: "helper", SessionTimeout: timeout}, "1")
}

func launchHelperWith(t *testing.T, l StdioLauncher, p Params, mode string, env ...string) Server {
    t.Helper()
    exe, err := os.Executable()
    require.NoError(t, err)
    p.Command = exe
    p.Env = append([]string{helperEnv + "=" + mode}, env...)
    srv, err := l.Launch(context.Background(), p)
    require.NoError(t, err)
    t.Cleanup(func() { _ = srv.Close() })
    return srv
}

func TestStdioLauncherListAndCall(t *testing.T) {
    srv := launchHelper(t, 10*time.Second)
    ctx := context.Background()

    tools, err := srv.ListTools(ctx)
    require.NoError(t, err)
    byName := map[string]Tool{}
    for _, tl := range tools { byName[tl.Name] = tl }
    require.Contains(t, byName, "echo")
    assert.Equal(t, "Echo the text back", byName["echo"].Description)
    assert.Equal(t, "object", byName["echo"].InputSchema["type"])
    props, _ := byName["echo"].InputSchema["properties"].(map[string]any)
    assert.Contains(t, props, "text")

    res, err := srv.CallTool(ctx, "echo", map[string]any{"text": "hello"})
    require.NoError(t, err)
    assert.Equal(t, "hello", res.Text)
    assert.False(t, res.IsError)

    res, err = srv.CallTool(ctx, "fail", map[string]any{})
    require.NoError(t, err)
    assert.True(t, res.IsError)
    assert.Equal(t, "page blocked", res.Text)
}

func TestStdioServerSessionTimeout(t *testing.T) {
    srv := launchHelper(t, 300*time.Millisecond)
    start := time.Now()
    _, err := srv.CallTool(context.Background(), "sleep", map[string]any{})
    require.Error(t, err)
    assert.Less(t, time.Since(start), 4*time.Second)
}

func TestStdioServerClosed(t *testing.T) {
    srv := launchHelper(t, 10*time.Second)
    require.NoError(t, srv.Close())
    assert.NoError(t, srv.Close())
    _, err := srv.CallTool(context.Background(), "echo", map[string]any{"text": "x"})
    assert.ErrorIs(t, err, ErrClosed)
    _, err = srv.ListTools(context.Background())
    assert.ErrorIs(t, err, ErrClosed)
}

func TestStdioLauncherStartFailure(t *testing.T) {
    _, err := StdioLauncher{}.Launch(context.Background(), Params{Name: "fetch", Command: "/nonexistent/mcp-server-fetch"})
    assert.ErrorIs(t, err, ErrStart)

    _, err = StdioLauncher{}.Launch(context.Background(), Params{Name: "fetch", Command: "  "})
    assert.ErrorIs(t, err, ErrStart)
}

func TestStdioServerDrainsStderr(t *testing.T) {
    core, logs := observer.New(zap.DebugLevel)
    l := StdioLauncher{Logger: &logging.Logger{Logger: zap.New(core)}}
    srv := launchHelperWith(t, l, Params{Name: "chatty", SessionTimeout: 5 * time.Second}, "chatty")

    tools, err := srv.ListTools(context.Background())
    require.NoError(t, err)
    assert.NotEmpty(t, tools)

    assert.Eventually(t, func() bool {
        lines := logs.FilterMessage("tool server stderr").FilterField(zap.String("server", "chatty")).All()
        return len(lines) > 0 && strings.HasPrefix(lines[0].ContextMap()["line"].(string), "installing package 0000")
    }, 2*time.Second, 20*time.Millisecond)
}

func TestStdioServerCloseKillsStubbornChild(t *testing.T) {
    srv := launchHelperWith(t, StdioLauncher{}, Params{Name: "stubborn", SessionTimeout: 5 * time.Second, CloseGrace: 200 * time.Millisecond}, "stubborn")
    _, err := srv.ListTools(context.Background())
    require.NoError(t, err)

    start := time.Now()
    err = srv.Close()
    assert.ErrorIs(t, err, ErrKilled)
    assert.Less(t, time.Since(start), 2*time.Second)
}
