package imageprompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"postcraft/internal/app/model"
	"postcraft/internal/llm"
	"postcraft/pkg/prompts"
)

// Analysis is the structured description of a post used to compose an image prompt.
type Analysis struct {
	Subject string `json:"subject"`
	Mood    string `json:"mood"`
	Setting string `json:"setting"`
	Style   string `json:"style"`
}

// AnalysisParseError means the backend reply did not match the analysis schema.
type AnalysisParseError struct {
	Raw string
	Err error
}

func (e *AnalysisParseError) Error() string {
	return fmt.Sprintf("parse content analysis: %v", e.Err)
}

func (e *AnalysisParseError) Unwrap() error { return e.Err }

type Builder struct {
	client  llm.TextClient
	prompts *prompts.Prompts
}

func NewBuilder(client llm.TextClient, p *prompts.Prompts) *Builder {
	return &Builder{client: client, prompts: p}
}

// Build analyzes content and compiles the analysis into a prompt.
func (b *Builder) Build(ctx context.Context, content model.Content) (model.ImagePrompt, error) {
	analysis, err := b.Analyze(ctx, content)
	if err != nil {
		return "", err
	}
	return Compile(analysis), nil
}

func (b *Builder) Analyze(ctx context.Context, content model.Content) (Analysis, error) {
	prompt, err := b.prompts.RenderAnalysis(prompts.AnalysisParams{
		Topic: content.Topic,
		Body:  content.Body,
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := b.client.Complete(ctx, prompt, llm.AnalyticalTemperature)
	if err != nil {
		return Analysis{}, err
	}

	return ParseAnalysis(raw)
}

// ParseAnalysis decodes exactly one JSON object with the four analysis
// fields. Unknown fields, trailing data and blank fields are rejected.
func ParseAnalysis(raw string) (Analysis, error) {
	body := stripFence(strings.TrimSpace(raw))
	if body == "" {
		return Analysis{}, &AnalysisParseError{Raw: raw, Err: errors.New("empty reply")}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()

	var a Analysis
	if err := dec.Decode(&a); err != nil {
		return Analysis{}, &AnalysisParseError{Raw: raw, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Analysis{}, &AnalysisParseError{Raw: raw, Err: errors.New("unexpected data after JSON object")}
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"subject", a.Subject},
		{"mood", a.Mood},
		{"setting", a.Setting},
		{"style", a.Style},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Analysis{}, &AnalysisParseError{Raw: raw, Err: fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))}
	}

	return a, nil
}

// Compile joins the analysis in fixed order: subject, style, setting, mood.
func Compile(a Analysis) model.ImagePrompt {
	return model.ImagePrompt(fmt.Sprintf("%s, %s style, set in %s, with a %s mood",
		clean(a.Subject), clean(a.Style), clean(a.Setting), clean(a.Mood)))
}

func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, ".,;: ")
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	if nl := strings.Index(s, "\n"); nl >= 0 && !strings.Contains(s[:nl], "{") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}
