package hashtag

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"postcraft/internal/app/model"
	"postcraft/internal/llm"
	"postcraft/pkg/prompts"
)

const excerptLength = 200

var inlineTag = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

// CategorizeFunc assigns a category to a normalized tag.
type CategorizeFunc func(tag string) model.Category

type Generator struct {
	client     llm.TextClient
	prompts    *prompts.Prompts
	categorize CategorizeFunc
}

func NewGenerator(client llm.TextClient, p *prompts.Prompts) *Generator {
	return &Generator{client: client, prompts: p, categorize: Categorize}
}

// WithCategorizer replaces the default categorization heuristic.
func (g *Generator) WithCategorizer(fn CategorizeFunc) *Generator {
	g.categorize = fn
	return g
}

// Generate never fails: any backend or parse problem falls back to tags
// derived from the topic. The result is deduped and capped at the
// platform's hashtag limit.
func (g *Generator) Generate(ctx context.Context, content model.Content, platform model.Platform) []model.Hashtag {
	tags, _ := g.GenerateWithStrategy(ctx, content, platform)
	return tags
}

// GenerateWithStrategy is Generate plus the alternatives and strategy notes
// from the reply. The strategy is empty when the reply carried none or the
// backend failed.
func (g *Generator) GenerateWithStrategy(ctx context.Context, content model.Content, platform model.Platform) ([]model.Hashtag, model.HashtagStrategy) {
	limit := platform.HashtagLimit()

	reply, err := g.request(ctx, content, platform, limit)
	if err != nil {
		slog.Warn("Hashtag generation failed, using defaults", "error", err)
	}

	tags := Normalize(reply.Tags, limit)
	if len(tags) == 0 {
		if err == nil {
			slog.Warn("No usable hashtags in reply, using defaults")
		}
		tags = Normalize(Defaults(content.Topic, platform), limit)
	}

	out := make([]model.Hashtag, len(tags))
	for i, tag := range tags {
		out[i] = model.Hashtag{Tag: tag, Category: g.safeCategorize(tag)}
	}

	strategy := reply.Strategy
	strategy.Alternatives = withoutTags(Normalize(strategy.Alternatives, limit), tags)
	return out, strategy
}

func (g *Generator) request(ctx context.Context, content model.Content, platform model.Platform, limit int) (Reply, error) {
	prompt, err := g.prompts.RenderHashtags(prompts.HashtagParams{
		Platform: platform.Title(),
		Title:    content.Topic,
		Excerpt:  excerpt(content.Body),
		Limit:    limit,
	})
	if err != nil {
		return Reply{}, err
	}

	raw, err := g.client.Complete(ctx, prompt, llm.DefaultTemperature)
	if err != nil {
		return Reply{}, err
	}
	return ParseReply(raw), nil
}

func (g *Generator) safeCategorize(tag string) (cat model.Category) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("Hashtag categorization panicked", "tag", tag, "panic", r)
			cat = model.CategoryUncategorized
		}
	}()
	if g.categorize == nil {
		return model.CategoryUncategorized
	}
	return g.categorize(tag)
}

// Reply is a parsed hashtag reply.
type Reply struct {
	Tags     []string
	Strategy model.HashtagStrategy
}

// Parse extracts candidate tags from a reply. It accepts {"hashtags": [...]},
// {"primary_hashtags": [...]}, a bare JSON array, or inline #tags in prose.
func Parse(reply string) []string {
	return ParseReply(reply).Tags
}

// ParseReply is Parse that also keeps alternative_hashtags, strategy and
// reach_prediction when the reply is a JSON object.
func ParseReply(reply string) Reply {
	if start, end := strings.Index(reply, "{"), strings.LastIndex(reply, "}"); start >= 0 && end > start {
		var obj struct {
			Hashtags        []string `json:"hashtags"`
			Primary         []string `json:"primary_hashtags"`
			Alternatives    []string `json:"alternative_hashtags"`
			Strategy        string   `json:"strategy"`
			ReachPrediction string   `json:"reach_prediction"`
		}
		if err := json.Unmarshal([]byte(reply[start:end+1]), &obj); err == nil {
			strategy := model.HashtagStrategy{
				Alternatives:    obj.Alternatives,
				Strategy:        strings.TrimSpace(obj.Strategy),
				ReachPrediction: strings.TrimSpace(obj.ReachPrediction),
			}
			if len(obj.Hashtags) > 0 {
				return Reply{Tags: obj.Hashtags, Strategy: strategy}
			}
			if len(obj.Primary) > 0 {
				return Reply{Tags: obj.Primary, Strategy: strategy}
			}
		}
	}

	if start, end := strings.Index(reply, "["), strings.LastIndex(reply, "]"); start >= 0 && end > start {
		var arr []string
		if err := json.Unmarshal([]byte(reply[start:end+1]), &arr); err == nil && len(arr) > 0 {
			return Reply{Tags: arr}
		}
	}

	return Reply{Tags: inlineTag.FindAllString(reply, -1)}
}

// withoutTags drops alternatives that already appear in tags.
func withoutTags(alternatives, tags []string) []string {
	used := make(map[string]bool, len(tags))
	for _, t := range tags {
		used[strings.ToLower(t)] = true
	}
	var out []string
	for _, a := range alternatives {
		if !used[strings.ToLower(a)] {
			out = append(out, a)
		}
	}
	return out
}

// Normalize strips '#', whitespace and punctuation, drops empty tags,
// dedupes case-insensitively keeping the first casing, and caps at limit.
func Normalize(raw []string, limit int) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, r := range raw {
		if limit > 0 && len(out) >= limit {
			break
		}
		tag := strings.Map(func(c rune) rune {
			if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
				return c
			}
			return -1
		}, r)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}

// Defaults returns topic words longer than three letters followed by the
// platform name, "content" and "socialmedia".
func Defaults(topic string, platform model.Platform) []string {
	var tags []string
	for _, word := range strings.Fields(strings.ToLower(topic)) {
		word = strings.TrimFunc(word, func(c rune) bool { return !unicode.IsLetter(c) && !unicode.IsDigit(c) })
		if len([]rune(word)) > 3 {
			tags = append(tags, word)
		}
	}
	if platform != "" {
		tags = append(tags, string(platform))
	}
	return append(tags, "content", "socialmedia")
}

func excerpt(body string) string {
	r := []rune(body)
	if len(r) <= excerptLength {
		return body
	}
	return string(r[:excerptLength]) + "..."
}
