package agents

import (
    "github.com/example/news-summarizer/internal/providers/llm"
    "github.com/example/news-summarizer/internal/toolserver"
)

// Agent is one configured run: who it is, what it is told, which model
// answers and which live tool servers it may call.
type Agent struct {
    Name         string
    Instructions string
    Model        llm.Client
    Servers      []toolserver.Server
}
