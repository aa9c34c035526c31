package models

import (
    "fmt"
    "net/url"
    "strings"
)

type Status string

const (
    StatusReceived      Status = "received"
    StatusValidating    Status = "validating"
    StatusToolsStarting Status = "tools_starting"
    StatusAgentRunning  Status = "agent_running"
    StatusCompleted     Status = "completed"
    StatusFailed        Status = "failed"
)

// StatusSuccess is the fixed marker carried by every successful SummaryResponse.
const StatusSuccess = "success"

const DefaultLanguage = "vietnamese"

// SummaryRequest is the inbound body of POST /summarize.
type SummaryRequest struct {
    URL      string  `json:"url" binding:"required,http_url"`
    Language *string `json:"language"`
}

// LanguageOr returns the requested language, or def when the field is unset or blank.
func (r *SummaryRequest) LanguageOr(def string) string {
    if r.Language == nil || strings.TrimSpace(*r.Language) == "" { return def }
    return strings.TrimSpace(*r.Language)
}

// NormalizedURL parses the request URL and requires an absolute http(s) URL with a host.
func (r *SummaryRequest) NormalizedURL() (*url.URL, error) {
    u, err := url.Parse(strings.TrimSpace(r.URL))
    if err != nil { return nil, fmt.Errorf("invalid url: %w", err) }
    if u.Scheme != "http" && u.Scheme != "https" {
        return nil, fmt.Errorf("invalid url: scheme must be http or https, got %q", u.Scheme)
    }
    if u.Host == "" { return nil, fmt.Errorf("invalid url: missing host") }
    return u, nil
}

// Summary is the validated, immutable form of a SummaryRequest.
type Summary struct {
    URL      *url.URL
    Language string
}

type SummaryResponse struct {
    URL     string  `json:"url"`
    Summary string  `json:"summary"`
    Status  string  `json:"status"`
    Error   *string `json:"error"`
}

func NewSummaryResponse(u *url.URL, summary string) *SummaryResponse {
    return &SummaryResponse{URL: u.String(), Summary: summary, Status: StatusSuccess}
}

// ErrorResponse is the single failure payload for every route.
type ErrorResponse struct {
    Detail string `json:"detail"`
    Code   string `json:"code"`
}
