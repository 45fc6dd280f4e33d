package prompts

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

//go:embed default.yaml
var defaultPrompts []byte

type Prompts struct {
	Content  ContentPrompts `yaml:"content"`
	Image    ImagePrompts   `yaml:"image"`
	Hashtags HashtagPrompts `yaml:"hashtags"`
	Chat     ChatPrompts    `yaml:"chat"`
}

type ContentPrompts struct {
	Topic string `yaml:"topic"`
	Body  string `yaml:"body"`
}

type ImagePrompts struct {
	Analysis string `yaml:"analysis"`
}

type HashtagPrompts struct {
	Generate string `yaml:"generate"`
}

type ChatPrompts struct {
	Converse string `yaml:"converse"`
	Suggest  string `yaml:"suggest"`
	Search   string `yaml:"search"`
}

type TopicParams struct {
	Platform string
	Niche    string
	Audience string
	Tone     string
}

type BodyParams struct {
	Platform           string
	Audience           string
	Title              string
	Hook               string
	Angle              string
	EngagementQuestion string
	CharLimit          int
}

type AnalysisParams struct {
	Topic string
	Body  string
}

type HashtagParams struct {
	Platform string
	Title    string
	Excerpt  string
	Limit    int
}

type Turn struct {
	Speaker string
	Text    string
}

type ConverseParams struct {
	History []Turn
	Input   string
}

type PostExcerpt struct {
	Title   string
	Excerpt string
}

type SuggestParams struct {
	Posts []PostExcerpt
}

type SearchParams struct {
	Query string
	Posts []PostExcerpt
}

// Default returns the prompts compiled into the binary.
func Default() *Prompts {
	var p Prompts
	if err := yaml.Unmarshal(defaultPrompts, &p); err != nil {
		panic(fmt.Sprintf("embedded prompts are invalid: %v", err))
	}
	return &p
}

// Load reads prompts.yaml from the working directory when present and falls
// back to the embedded defaults otherwise.
func Load() (*Prompts, error) {
	p, err := LoadFrom(defaultPromptsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return p, err
}

// LoadFrom overlays the file at path onto the embedded defaults, so a file
// only needs the templates it changes.
func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	return p, nil
}

func (p *Prompts) RenderTopic(params TopicParams) (string, error) {
	return render(p.Content.Topic, params)
}

func (p *Prompts) RenderBody(params BodyParams) (string, error) {
	return render(p.Content.Body, params)
}

func (p *Prompts) RenderAnalysis(params AnalysisParams) (string, error) {
	return render(p.Image.Analysis, params)
}

func (p *Prompts) RenderHashtags(params HashtagParams) (string, error) {
	return render(p.Hashtags.Generate, params)
}

func (p *Prompts) RenderConverse(params ConverseParams) (string, error) {
	return render(p.Chat.Converse, params)
}

func (p *Prompts) RenderSuggest(params SuggestParams) (string, error) {
	return render(p.Chat.Suggest, params)
}

func (p *Prompts) RenderSearch(params SearchParams) (string, error) {
	return render(p.Chat.Search, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
