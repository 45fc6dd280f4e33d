package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	p := Default()

	templates := map[string]string{
		"content.topic":     p.Content.Topic,
		"content.body":      p.Content.Body,
		"image.analysis":    p.Image.Analysis,
		"hashtags.generate": p.Hashtags.Generate,
		"chat.converse":     p.Chat.Converse,
		"chat.suggest":      p.Chat.Suggest,
		"chat.search":       p.Chat.Search,
	}
	for name, tmpl := range templates {
		if strings.TrimSpace(tmpl) == "" {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	originalWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(originalWd) }()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	p, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Content.Topic != Default().Content.Topic {
		t.Error("Load() without prompts.yaml should return defaults")
	}
}

func TestLoadFromOverlaysDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	promptsPath := filepath.Join(tmpDir, "custom.yaml")

	promptsContent := `
content:
  topic: "Custom topic for {{.Niche}}"
`
	if err := os.WriteFile(promptsPath, []byte(promptsContent), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFrom(promptsPath)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if p.Content.Topic != "Custom topic for {{.Niche}}" {
		t.Errorf("Content.Topic = %q, want custom", p.Content.Topic)
	}
	if p.Content.Body != Default().Content.Body {
		t.Error("Content.Body should keep the default")
	}
}

func TestLoadFromMissing(t *testing.T) {
	_, err := LoadFrom("/nonexistent/path.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	promptsPath := filepath.Join(tmpDir, "invalid.yaml")

	if err := os.WriteFile(promptsPath, []byte("not: valid: yaml: content:"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(promptsPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestRenderTopic(t *testing.T) {
	p := &Prompts{Content: ContentPrompts{Topic: "{{.Platform}} post on {{.Niche}} for {{.Audience}} ({{.Tone}})"}}

	got, err := p.RenderTopic(TopicParams{Platform: "instagram", Niche: "coffee", Audience: "adults", Tone: "engaging"})
	if err != nil {
		t.Fatalf("RenderTopic() error = %v", err)
	}

	want := "instagram post on coffee for adults (engaging)"
	if got != want {
		t.Errorf("RenderTopic() = %q, want %q", got, want)
	}
}

func TestRenderBodyIncludesLimit(t *testing.T) {
	got, err := Default().RenderBody(BodyParams{
		Platform:           "twitter",
		Audience:           "developers",
		Title:              "Go tips",
		Hook:               "Stop doing this",
		Angle:              "contrarian",
		EngagementQuestion: "What do you think?",
		CharLimit:          280,
	})
	if err != nil {
		t.Fatalf("RenderBody() error = %v", err)
	}

	for _, want := range []string{"twitter", "280", "Go tips", "What do you think?"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderBody() missing %q", want)
		}
	}
}

func TestRenderConverseHistory(t *testing.T) {
	p := Default()

	empty, err := p.RenderConverse(ConverseParams{Input: "hello"})
	if err != nil {
		t.Fatalf("RenderConverse() error = %v", err)
	}
	if strings.Contains(empty, "Previous conversation") {
		t.Error("RenderConverse() without history should omit the history block")
	}

	withHistory, err := p.RenderConverse(ConverseParams{
		History: []Turn{{Speaker: "Human", Text: "hi there"}, {Speaker: "AI", Text: "hello!"}},
		Input:   "next",
	})
	if err != nil {
		t.Fatalf("RenderConverse() error = %v", err)
	}
	if !strings.Contains(withHistory, "Human: hi there") || !strings.Contains(withHistory, "AI: hello!") {
		t.Errorf("RenderConverse() = %q, want history lines", withHistory)
	}
}

func TestRenderSearch(t *testing.T) {
	got, err := Default().RenderSearch(SearchParams{
		Query: "latte",
		Posts: []PostExcerpt{{Title: "Latte art", Excerpt: "Pour slowly"}},
	})
	if err != nil {
		t.Fatalf("RenderSearch() error = %v", err)
	}
	if !strings.Contains(got, `"latte"`) || !strings.Contains(got, "Post: Latte art") {
		t.Errorf("RenderSearch() = %q", got)
	}
}

func TestRenderInvalidTemplate(t *testing.T) {
	p := &Prompts{Content: ContentPrompts{Topic: "{{.Missing"}}
	if _, err := p.RenderTopic(TopicParams{}); err == nil {
		t.Error("expected error for invalid template")
	}
}
