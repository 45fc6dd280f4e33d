package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"postcraft/internal/app/model"
	"postcraft/internal/llm"
	"postcraft/pkg/prompts"
)

const (
	fallbackHook     = "Ready to transform your approach?"
	fallbackAngle    = "Expert insights and practical tips"
	fallbackQuestion = "What's your experience with this?"
)

var ErrEmptyContent = errors.New("backend returned empty content")

// GenerationError reports which content stage failed.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

type Generator struct {
	client  llm.TextClient
	prompts *prompts.Prompts
}

func NewGenerator(client llm.TextClient, p *prompts.Prompts) *Generator {
	return &Generator{client: client, prompts: p}
}

// Generate produces the topic and body for req. Topic and body are both
// non-empty on success.
func (g *Generator) Generate(ctx context.Context, req model.Request) (model.Content, error) {
	topic, err := g.GenerateTopic(ctx, req)
	if err != nil {
		return model.Content{}, err
	}

	body, err := g.generateBody(ctx, req, topic)
	if err != nil {
		return model.Content{}, err
	}

	count := utf8.RuneCountInString(body)
	return model.Content{
		Topic:       topic.Title,
		Hook:        topic.Hook,
		Body:        body,
		CharCount:   count,
		WithinLimit: count <= req.Platform.CharLimit(),
	}, nil
}

func (g *Generator) GenerateTopic(ctx context.Context, req model.Request) (model.Topic, error) {
	prompt, err := g.prompts.RenderTopic(prompts.TopicParams{
		Platform: string(req.Platform),
		Niche:    req.Niche,
		Audience: req.Audience,
		Tone:     req.Tone,
	})
	if err != nil {
		return model.Topic{}, &GenerationError{Stage: "topic", Err: fmt.Errorf("render prompt: %w", err)}
	}

	raw, err := g.complete(ctx, prompt)
	if err != nil {
		return model.Topic{}, &GenerationError{Stage: "topic", Err: err}
	}

	topic := parseTopic(raw)
	if topic.Title == "" {
		return model.Topic{}, &GenerationError{Stage: "topic", Err: ErrEmptyContent}
	}
	slog.Debug("Generated topic", "title", topic.Title)
	return topic, nil
}

func (g *Generator) generateBody(ctx context.Context, req model.Request, topic model.Topic) (string, error) {
	prompt, err := g.prompts.RenderBody(prompts.BodyParams{
		Platform:           string(req.Platform),
		Audience:           req.Audience,
		Title:              topic.Title,
		Hook:               topic.Hook,
		Angle:              topic.Angle,
		EngagementQuestion: topic.EngagementQuestion,
		CharLimit:          req.Platform.CharLimit(),
	})
	if err != nil {
		return "", &GenerationError{Stage: "body", Err: fmt.Errorf("render prompt: %w", err)}
	}

	body, err := g.complete(ctx, prompt)
	if err != nil {
		return "", &GenerationError{Stage: "body", Err: err}
	}
	return body, nil
}

// complete re-requests once when the backend answers with blank text.
func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		text, err := g.client.Complete(ctx, prompt, llm.DefaultTemperature)
		if err != nil {
			return "", err
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, nil
		}
		slog.Warn("Empty completion, retrying", "attempt", attempt+1)
	}
	return "", ErrEmptyContent
}

func parseTopic(raw string) model.Topic {
	var topic model.Topic
	decoded := false
	if obj := extractJSONObject(raw); obj != "" {
		if err := json.Unmarshal([]byte(obj), &topic); err == nil {
			decoded = true
		} else {
			topic = model.Topic{}
		}
	}

	// A decoded object with a blank title stays blank.
	topic.Title = cleanLine(topic.Title)
	if topic.Title == "" && !decoded {
		topic.Title = firstLine(raw)
	}
	if strings.TrimSpace(topic.Hook) == "" {
		topic.Hook = fallbackHook
	}
	if strings.TrimSpace(topic.Angle) == "" {
		topic.Angle = fallbackAngle
	}
	if strings.TrimSpace(topic.EngagementQuestion) == "" {
		topic.EngagementQuestion = fallbackQuestion
	}
	return topic
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func firstLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		if cleaned := cleanLine(line); cleaned != "" && cleaned != "{" && cleaned != "```" && cleaned != "```json" {
			return cleaned
		}
	}
	return ""
}

func cleanLine(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "#*- ")
	s = strings.TrimRight(s, "* ")
	s = strings.Trim(s, "\"'")
	return strings.TrimSpace(s)
}
