package orchestrator

import (
    "context"
    "errors"

    "github.com/example/news-summarizer/internal/agents"
    "github.com/example/news-summarizer/internal/toolserver"
)

// Outcome codes, shared by metrics labels and the HTTP error payload.
const (
    OutcomeSuccess         = "success"
    OutcomeInvalid         = "validation_error"
    OutcomeToolUnavailable = "tool_server_unavailable"
    OutcomeTimeout         = "timeout"
    OutcomeMaxTurns        = "max_turns_exceeded"
    OutcomeEmpty           = "empty_summary"
    OutcomeCanceled        = "canceled"
    OutcomeAgentFailed     = "agent_failed"
    OutcomePanic           = "internal_error"
)

// Outcome classifies a Summarize error. A start failure caused by a timeout
// still counts as the tool server being unavailable.
func Outcome(err error) string {
    switch {
    case err == nil:
        return OutcomeSuccess
    case errors.Is(err, ErrInvalidRequest):
        return OutcomeInvalid
    case errors.Is(err, toolserver.ErrStart):
        return OutcomeToolUnavailable
    case errors.Is(err, context.DeadlineExceeded):
        return OutcomeTimeout
    case errors.Is(err, agents.ErrMaxTurns):
        return OutcomeMaxTurns
    case errors.Is(err, ErrEmptySummary):
        return OutcomeEmpty
    case errors.Is(err, context.Canceled):
        return OutcomeCanceled
    }
    return OutcomeAgentFailed
}
