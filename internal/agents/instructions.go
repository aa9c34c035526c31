package agents

import (
    _ "embed"
    "fmt"
    "os"
    "strings"
    "text/template"
)

//go:embed instructions.tmpl
var defaultInstructions string

// Instructions is the agent's system prompt, parameterized by output language.
type Instructions struct {
    tmpl *template.Template
}

// LoadInstructions parses the template at path, or the built-in one when path is empty.
func LoadInstructions(path string) (*Instructions, error) {
    text := defaultInstructions
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil { return nil, fmt.Errorf("instructions: %w", err) }
        text = string(b)
    }
    return ParseInstructions(text)
}

func ParseInstructions(text string) (*Instructions, error) {
    t, err := template.New("instructions").Option("missingkey=error").Parse(text)
    if err != nil { return nil, fmt.Errorf("instructions: %w", err) }
    return &Instructions{tmpl: t}, nil
}

func (i *Instructions) Render(language string) (string, error) {
    var b strings.Builder
    if err := i.tmpl.Execute(&b, struct{ Language string }{language}); err != nil {
        return "", fmt.Errorf("instructions: render: %w", err)
    }
    return strings.TrimSpace(b.String()), nil
}

// Task is the user turn that starts a summarize run.
func Task(url string) string {
    return "Summarize the news content from this URL: " + url
}
