package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"postcraft/internal/app/model"
	"postcraft/internal/llm"
	"postcraft/internal/storage"
	"postcraft/pkg/prompts"
)

const (
	excerptLength        = 200
	defaultSuggestWindow = 3

	noSuggestions   = "I don't have any relevant posts to suggest yet. Let's create some!"
	noSearchResults = "I couldn't find any similar posts. Let's create something new!"
	historyCleared  = "Conversation history cleared!"
	goodbye         = "Thanks for chatting! Keep creating amazing content!"
)

const HelpText = `Available commands:
  generate post <platform> <niche> <audience>  Generate a complete post
  suggest posts [platform|niche]               Get ideas based on saved posts
  search posts <query>                         Analyze saved posts matching a query
  chat <message>                               Talk about social media strategy
  clear                                        Clear conversation history
  help                                         Show this help message
  exit                                         End the conversation

Platforms: instagram, linkedin, twitter, facebook`

type Runner interface {
	Run(ctx context.Context, req model.Request) (*model.Result, error)
}

type PostIndex interface {
	ListRecent(platform model.Platform, niche string, limit int) []storage.Record
	Search(query string) []storage.Record
}

// Reply is what a handled command produced. Result is set for generate.
type Reply struct {
	Text   string
	Exit   bool
	Result *model.Result
}

type Options struct {
	Text     llm.TextClient
	Prompts  *prompts.Prompts
	Pipeline Runner
	Posts    PostIndex
	// MaxTurns bounds the history. Zero means DefaultMaxTurns.
	MaxTurns int
	// SuggestWindow is how many posts suggest and search analyze.
	SuggestWindow int
}

// Session holds one user's conversation history and dispatches commands.
type Session struct {
	text     llm.TextClient
	prompts  *prompts.Prompts
	pipeline Runner
	posts    PostIndex
	history  *History
	window   int
}

func NewSession(opts Options) *Session {
	p := opts.Prompts
	if p == nil {
		p = prompts.Default()
	}
	window := opts.SuggestWindow
	if window <= 0 {
		window = defaultSuggestWindow
	}
	return &Session{
		text:     opts.Text,
		prompts:  p,
		pipeline: opts.Pipeline,
		posts:    opts.Posts,
		history:  NewHistory(opts.MaxTurns),
		window:   window,
	}
}

func (s *Session) History() *History { return s.history }

// HandleLine parses and handles one input line.
func (s *Session) HandleLine(ctx context.Context, line string) (Reply, error) {
	cmd, err := Parse(line)
	if err != nil {
		return Reply{}, err
	}
	return s.Handle(ctx, cmd)
}

func (s *Session) Handle(ctx context.Context, cmd Command) (Reply, error) {
	switch c := cmd.(type) {
	case GenerateCommand:
		return s.generate(ctx, c)
	case SuggestCommand:
		return s.suggest(ctx, c)
	case SearchCommand:
		return s.search(ctx, c)
	case ChatCommand:
		return s.chat(ctx, c)
	case ClearCommand:
		s.history.Clear()
		return Reply{Text: historyCleared}, nil
	case HelpCommand:
		return Reply{Text: HelpText}, nil
	case ExitCommand:
		return Reply{Text: goodbye, Exit: true}, nil
	default:
		return Reply{}, fmt.Errorf("unsupported command %T", cmd)
	}
}

func (s *Session) generate(ctx context.Context, c GenerateCommand) (Reply, error) {
	if s.pipeline == nil {
		return Reply{}, errors.New("generate: pipeline not configured")
	}

	result, err := s.pipeline.Run(ctx, c.Request)
	if err != nil {
		return Reply{}, err
	}

	s.history.AddExchange(
		fmt.Sprintf("Generate a %s post about %s", c.Request.Platform, c.Request.Niche),
		"Generated post: "+result.Content.Topic,
	)
	return Reply{Text: FormatResult(result), Result: result}, nil
}

func (s *Session) suggest(ctx context.Context, c SuggestCommand) (Reply, error) {
	var posts []storage.Record
	if s.posts != nil {
		posts = s.posts.ListRecent(c.Platform, c.Niche, s.window)
	}
	if len(posts) == 0 {
		return Reply{Text: noSuggestions}, nil
	}

	prompt, err := s.prompts.RenderSuggest(prompts.SuggestParams{Posts: s.excerpts(posts)})
	if err != nil {
		return Reply{}, err
	}
	return s.analyze(ctx, "suggest", prompt)
}

func (s *Session) search(ctx context.Context, c SearchCommand) (Reply, error) {
	var posts []storage.Record
	if s.posts != nil {
		posts = s.posts.Search(c.Query)
	}
	if len(posts) == 0 {
		return Reply{Text: noSearchResults}, nil
	}

	prompt, err := s.prompts.RenderSearch(prompts.SearchParams{Query: c.Query, Posts: s.excerpts(posts)})
	if err != nil {
		return Reply{}, err
	}
	return s.analyze(ctx, "search", prompt)
}

func (s *Session) analyze(ctx context.Context, op, prompt string) (Reply, error) {
	if s.text == nil {
		return Reply{}, fmt.Errorf("%s: text backend not configured", op)
	}
	answer, err := s.text.Complete(ctx, prompt, llm.DefaultTemperature)
	if err != nil {
		return Reply{}, fmt.Errorf("%s: %w", op, err)
	}
	return Reply{Text: strings.TrimSpace(answer)}, nil
}

func (s *Session) excerpts(posts []storage.Record) []prompts.PostExcerpt {
	if len(posts) > s.window {
		posts = posts[:s.window]
	}
	out := make([]prompts.PostExcerpt, len(posts))
	for i, p := range posts {
		out[i] = prompts.PostExcerpt{Title: p.Title, Excerpt: p.Excerpt(excerptLength)}
	}
	return out
}

// chat sends the message with the current history. Turns are recorded only
// when the backend answers.
func (s *Session) chat(ctx context.Context, c ChatCommand) (Reply, error) {
	if s.text == nil {
		return Reply{}, errors.New("chat: text backend not configured")
	}

	prompt, err := s.prompts.RenderConverse(prompts.ConverseParams{
		History: s.history.promptTurns(),
		Input:   c.Text,
	})
	if err != nil {
		return Reply{}, err
	}

	answer, err := s.text.Complete(ctx, prompt, llm.DefaultTemperature)
	if err != nil {
		return Reply{}, fmt.Errorf("chat: %w", err)
	}
	answer = strings.TrimSpace(answer)

	s.history.AddExchange(c.Text, answer)
	slog.Debug("Chat turn recorded", "history", s.history.Len())
	return Reply{Text: answer}, nil
}
