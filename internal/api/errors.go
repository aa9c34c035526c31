package api

import (
    "net/http"

    "github.com/example/news-summarizer/internal/models"
    "github.com/example/news-summarizer/internal/orchestrator"
)

const (
    codeValidation = orchestrator.OutcomeInvalid
    codeNotFound   = "not_found"
    codeInternal   = "internal_error"
)

var internalError = models.ErrorResponse{Detail: "Internal server error", Code: codeInternal}

// failureDetails is the client-safe text per outcome. Underlying errors are only logged.
var failureDetails = map[string]string{
    orchestrator.OutcomeToolUnavailable: "Error processing news: tool server unavailable",
    orchestrator.OutcomeTimeout:         "Error processing news: timed out",
    orchestrator.OutcomeMaxTurns:        "Error processing news: agent exceeded its turn budget",
    orchestrator.OutcomeEmpty:           "Error processing news: agent returned no summary",
    orchestrator.OutcomeCanceled:        "Error processing news: request canceled",
    orchestrator.OutcomeAgentFailed:     "Error processing news: agent run failed",
}

// translate maps a Summarize error to its status and payload.
func translate(err error) (int, models.ErrorResponse) {
    code := orchestrator.Outcome(err)
    if code == orchestrator.OutcomeInvalid {
        return http.StatusUnprocessableEntity, models.ErrorResponse{Detail: err.Error(), Code: code}
    }
    if detail, ok := failureDetails[code]; ok {
        return http.StatusInternalServerError, models.ErrorResponse{Detail: detail, Code: code}
    }
    return http.StatusInternalServerError, internalError
}
